package reading

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"celestialview/internal/llm"
	"celestialview/internal/llmcontracts"
)

// ReaderConfig wires a Reader.
type ReaderConfig struct {
	Client  llm.Client
	Prompts *PromptBuilder
	// Model overrides the client's default model when set.
	Model  string
	Logger *slog.Logger
}

// Reader performs one reading: prompt, generative call, validation.
type Reader struct {
	client  llm.Client
	prompts *PromptBuilder
	model   string
	logger  *slog.Logger
}

func NewReader(cfg ReaderConfig) *Reader {
	prompts := cfg.Prompts
	if prompts == nil {
		prompts = NewPromptBuilder(nil)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{
		client:  cfg.Client,
		prompts: prompts,
		model:   cfg.Model,
		logger:  logger,
	}
}

// Fortune expects a request that already passed Validate.
func (r *Reader) Fortune(ctx context.Context, req FortuneRequest) (FortuneResponse, error) {
	raw, err := r.generate(ctx, KindFortune, llmcontracts.ContractFortuneV1, r.prompts.BuildFortunePrompt(req))
	if err != nil {
		return FortuneResponse{}, err
	}

	resp, err := ParseFortune(raw)
	if err != nil {
		r.logger.Warn("fortune response rejected", "error", err)
		return FortuneResponse{}, err
	}
	return resp, nil
}

func (r *Reader) Tarot(ctx context.Context) (TarotResponse, error) {
	raw, err := r.generate(ctx, KindTarot, llmcontracts.ContractTarotV1, r.prompts.BuildTarotPrompt())
	if err != nil {
		return TarotResponse{}, err
	}

	resp, err := ParseTarot(raw)
	if err != nil {
		r.logger.Warn("tarot response rejected", "error", err)
		return TarotResponse{}, err
	}
	return resp, nil
}

func (r *Reader) generate(ctx context.Context, kind Kind, contractName, prompt string) (string, error) {
	contract, err := llmcontracts.Lookup(contractName)
	if err != nil {
		return "", err
	}

	start := time.Now()
	raw, err := r.client.GenerateStructured(ctx, llm.StructuredRequest{
		Model:    r.model,
		Prompt:   prompt,
		Contract: contract,
	})
	if err != nil {
		classified := classify(kind, err)
		r.logger.Error("generative call failed",
			"kind", kind,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err,
		)
		return "", classified
	}

	r.logger.Debug("generative call done",
		"kind", kind,
		"duration_ms", time.Since(start).Milliseconds(),
		"bytes", len(raw),
	)
	return raw, nil
}

func classify(kind Kind, err error) error {
	switch {
	case errors.Is(err, llm.ErrMissingCredential):
		return &ConfigurationError{Err: err}
	case errors.Is(err, llm.ErrEmptyResponse):
		return &ValidationError{Kind: kind, Err: err}
	default:
		return &ServiceError{Kind: kind, Err: fmt.Errorf("generate %s: %w", kind, err)}
	}
}
