package llm

import (
	"context"
	"errors"
	"os"
	"strings"

	"celestialview/internal/llmcontracts"
)

var (
	// ErrMissingCredential is returned before any network activity when no API key is configured.
	ErrMissingCredential = errors.New("missing API credential")
	// ErrEmptyResponse means the service answered without any text.
	ErrEmptyResponse = errors.New("empty response from model")
	ErrInvalidModel  = errors.New("model is required")
)

// StructuredRequest is one generation call: a prompt plus the contract the
// reply is instructed to follow.
type StructuredRequest struct {
	Model    string
	Prompt   string
	Contract llmcontracts.Contract
}

// Client минимальный публичный интерфейс LLM клиента.
type Client interface {
	// GenerateStructured returns the raw text payload. It does not validate it.
	GenerateStructured(ctx context.Context, req StructuredRequest) (string, error)
}

// CredentialFunc returns the API key to use for the next call, or "" if none.
type CredentialFunc func() string

// EnvCredential reads the first non-empty variable among keys at call time.
func EnvCredential(keys ...string) CredentialFunc {
	return func() string {
		for _, key := range keys {
			if val := strings.TrimSpace(os.Getenv(key)); val != "" {
				return val
			}
		}
		return ""
	}
}

// StaticCredential always returns key.
func StaticCredential(key string) CredentialFunc {
	return func() string { return key }
}
