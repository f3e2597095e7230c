package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"celestialview/internal/config"
)

const snippetLimit = 200

// OpenRouterClient talks to an OpenAI-compatible chat completions endpoint
// and requests structured output through response_format.json_schema.
type OpenRouterClient struct {
	credential   CredentialFunc
	baseURL      string
	defaultModel string
	httpClient   *http.Client
	logger       *slog.Logger
}

func NewOpenRouterClient(cfg config.LLMConfig, credential CredentialFunc, httpClient *http.Client, logger *slog.Logger) *OpenRouterClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &OpenRouterClient{
		credential:   credential,
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		defaultModel: cfg.Model,
		httpClient:   httpClient,
		logger:       logger,
	}
}

func (c *OpenRouterClient) GenerateStructured(ctx context.Context, req StructuredRequest) (string, error) {
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

	body := openRouterRequest{
		Model:    model,
		Messages: []message{{Role: "user", Content: req.Prompt}},
		ResponseFormat: &responseFormat{
			Type: "json_schema",
			JSONSchema: jsonSchemaFormat{
				Name:   strings.ToLower(req.Contract.Name),
				Strict: true,
				Schema: req.Contract.JSONSchema(),
			},
		},
	}

	answer, err := c.doRequest(ctx, apiKey, body)
	if err != nil {
		return "", err
	}
	if c.logger != nil {
		c.logger.Debug("openrouter response received",
			slog.String("model", model),
			slog.String("contract", req.Contract.Name),
			slog.Int("bytes", len(answer)))
	}
	return answer, nil
}

func (c *OpenRouterClient) doRequest(ctx context.Context, apiKey string, body openRouterRequest) (string, error) {
	buf, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/chat/completions", c.baseURL), bytes.NewReader(buf))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 300 {
		return "", &StatusError{Status: resp.StatusCode, Body: snippet(bodyBytes)}
	}

	var parsed openRouterResponse
	if err := json.Unmarshal(bodyBytes, &parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return "", ErrEmptyResponse
	}
	return parsed.Choices[0].Message.Content, nil
}

type openRouterRequest struct {
	Model          string          `json:"model"`
	Messages       []message       `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type       string           `json:"type"`
	JSONSchema jsonSchemaFormat `json:"json_schema"`
}

type jsonSchemaFormat struct {
	Name   string         `json:"name"`
	Strict bool           `json:"strict"`
	Schema map[string]any `json:"schema"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openRouterResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

// StatusError is a non-2xx answer from the upstream API.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.Status)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Status, e.Body)
}

func snippet(body []byte) string {
	if len(body) <= snippetLimit {
		return string(body)
	}
	return string(body[:snippetLimit])
}
