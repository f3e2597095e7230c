package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
)

const (
	defaultGeminiModel     = "gemini-2.5-flash"
	defaultOpenRouterModel = "google/gemini-2.5-flash"
	defaultOpenRouterURL   = "https://openrouter.ai/api/v1"
)

type Config struct {
	HTTPAddr       string
	LogLevel       string
	RequestTimeout time.Duration
	LLM            LLMConfig
	Session        SessionConfig
}

// LLMConfig describes the generative backend. The API key is deliberately
// absent: it is read from the environment on every call.
type LLMConfig struct {
	Provider string
	Model    string
	BaseURL  string
	Timeout  time.Duration
}

type SessionConfig struct {
	TTL           time.Duration
	SweepInterval time.Duration
	Key           string
	CookieSecure  bool
}

// Load reads configuration from the environment, an optional .env file and
// an optional config.{json,yaml,toml} in the working directory.
func Load() (Config, error) {
	// .env is optional; variables already set in the process win.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	v.SetConfigName("config")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("http_client_timeout", "30s")
	v.SetDefault("llm_provider", ProviderGemini)
	v.SetDefault("llm_timeout", "30s")
	v.SetDefault("session_ttl", "2h")
	v.SetDefault("session_sweep_interval", "10m")
	v.SetDefault("cookie_secure", false)
}

func fromViper(v *viper.Viper) (Config, error) {
	var cfg Config

	cfg.HTTPAddr = v.GetString("http_addr")
	cfg.LogLevel = strings.ToLower(v.GetString("log_level"))
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return Config{}, fmt.Errorf("invalid LOG_LEVEL %q", cfg.LogLevel)
	}

	reqTimeout, err := parseDuration(v.GetString("http_client_timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("parse HTTP_CLIENT_TIMEOUT: %w", err)
	}
	cfg.RequestTimeout = reqTimeout

	llmCfg, err := loadLLM(v)
	if err != nil {
		return Config{}, err
	}
	cfg.LLM = llmCfg

	sessionTTL, err := parseDuration(v.GetString("session_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SESSION_TTL: %w", err)
	}
	sweep, err := parseDuration(v.GetString("session_sweep_interval"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SESSION_SWEEP_INTERVAL: %w", err)
	}
	cfg.Session = SessionConfig{
		TTL:           sessionTTL,
		SweepInterval: sweep,
		Key:           v.GetString("session_key"),
		CookieSecure:  v.GetBool("cookie_secure"),
	}

	return cfg, nil
}

func loadLLM(v *viper.Viper) (LLMConfig, error) {
	cfg := LLMConfig{
		Provider: strings.ToLower(strings.TrimSpace(v.GetString("llm_provider"))),
		Model:    strings.TrimSpace(v.GetString("llm_model")),
		BaseURL:  strings.TrimRight(strings.TrimSpace(v.GetString("llm_base_url")), "/"),
	}

	timeout, err := parseDuration(v.GetString("llm_timeout"))
	if err != nil {
		return LLMConfig{}, fmt.Errorf("parse LLM_TIMEOUT: %w", err)
	}
	cfg.Timeout = timeout

	switch cfg.Provider {
	case ProviderGemini:
		if cfg.Model == "" {
			cfg.Model = defaultGeminiModel
		}
	case ProviderOpenRouter:
		if cfg.Model == "" {
			cfg.Model = defaultOpenRouterModel
		}
		if cfg.BaseURL == "" {
			cfg.BaseURL = defaultOpenRouterURL
		}
	default:
		return LLMConfig{}, fmt.Errorf("unsupported LLM_PROVIDER %q", cfg.Provider)
	}

	return cfg, nil
}

func parseDuration(value string) (time.Duration, error) {
	if value == "" {
		return 0, fmt.Errorf("duration is empty")
	}
	return time.ParseDuration(value)
}
