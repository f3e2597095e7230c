package llm

import (
	"fmt"
	"log/slog"
	"net/http"

	"celestialview/internal/config"
)

// credentialKeys lists, per provider, the environment variables consulted for the API key.
var credentialKeys = map[string][]string{
	config.ProviderGemini:     {"API_KEY", "GEMINI_API_KEY"},
	config.ProviderOpenRouter: {"API_KEY", "OPENROUTER_API_KEY"},
}

// NewClient builds the client for cfg.Provider. The credential is resolved
// from the environment at call time, never here.
func NewClient(cfg config.LLMConfig, httpClient *http.Client, logger *slog.Logger) (Client, error) {
	credential := EnvCredential(credentialKeys[cfg.Provider]...)

	switch cfg.Provider {
	case config.ProviderGemini:
		return NewGeminiClient(cfg, credential, logger), nil
	case config.ProviderOpenRouter:
		return NewOpenRouterClient(cfg, credential, httpClient, logger), nil
	default:
		return nil, fmt.Errorf("unsupported provider %q", cfg.Provider)
	}
}
