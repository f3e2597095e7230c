package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"celestialview/internal/config"
	"celestialview/internal/llmcontracts"
)

const jsonMIMEType = "application/json"

// GeminiClient calls the Gemini API with a declared response schema.
type GeminiClient struct {
	credential   CredentialFunc
	defaultModel string
	endpoint     string
	logger       *slog.Logger
}

func NewGeminiClient(cfg config.LLMConfig, credential CredentialFunc, logger *slog.Logger) *GeminiClient {
	return &GeminiClient{
		credential:   credential,
		defaultModel: cfg.Model,
		endpoint:     cfg.BaseURL,
		logger:       logger,
	}
}

func (c *GeminiClient) GenerateStructured(ctx context.Context, req StructuredRequest) (string, error) {
	apiKey := ""
	if c.credential != nil {
		apiKey = c.credential()
	}
	if apiKey == "" {
		return "", ErrMissingCredential
	}

	model := req.Model
	if model == "" {
		model = c.defaultModel
	}
	if model == "" {
		return "", ErrInvalidModel
	}

	opts := []option.ClientOption{option.WithAPIKey(apiKey)}
	if c.endpoint != "" {
		opts = append(opts, option.WithEndpoint(c.endpoint))
	}

	// The key may change between calls, so the SDK client is per request.
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return "", fmt.Errorf("create gemini client: %w", err)
	}
	defer func() {
		if err := client.Close(); err != nil && c.logger != nil {
			c.logger.Warn("close gemini client", slog.String("error", err.Error()))
		}
	}()

	gm := client.GenerativeModel(model)
	gm.ResponseMIMEType = jsonMIMEType
	gm.ResponseSchema = toGenaiSchema(req.Contract)

	resp, err := gm.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := responseText(resp)
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}

	if c.logger != nil {
		c.logger.Debug("gemini response received",
			slog.String("model", model),
			slog.String("contract", req.Contract.Name),
			slog.Int("bytes", len(text)))
	}
	return text, nil
}

// toGenaiSchema converts a contract into the SDK's OpenAPI-subset schema.
func toGenaiSchema(contract llmcontracts.Contract) *genai.Schema {
	props := make(map[string]*genai.Schema, len(contract.Fields))
	for _, f := range contract.Fields {
		prop := &genai.Schema{
			Type:        genaiType(f.Type),
			Description: f.Description,
		}
		if len(f.Enum) > 0 {
			prop.Format = "enum"
			prop.Enum = append([]string(nil), f.Enum...)
		}
		props[f.Name] = prop
	}
	return &genai.Schema{
		Type:       genai.TypeObject,
		Properties: props,
		Required:   append([]string(nil), contract.Required...),
	}
}

func genaiType(t llmcontracts.FieldType) genai.Type {
	switch t {
	case llmcontracts.FieldString:
		return genai.TypeString
	default:
		return genai.TypeUnspecified
	}
}

func responseText(resp *genai.GenerateContentResponse) string {
	var b strings.Builder
	if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if txt, ok := part.(genai.Text); ok {
				b.WriteString(string(txt))
			}
		}
	}
	return b.String()
}
