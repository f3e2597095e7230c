package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"celestialview/internal/config"
	"celestialview/internal/llm"
	"celestialview/internal/reading"
	"celestialview/internal/session"
	"celestialview/internal/transport"
)

const userAgent = "celestialview/1.0"

// app holds what every command needs once configuration is loaded.
type app struct {
	cfg    config.Config
	logger *slog.Logger
	reader *reading.Reader
}

func newRootCmd() *cobra.Command {
	serve := newServeCmd()

	// Без подкоманды запускаем сервер.
	root := &cobra.Command{
		Use:          "app",
		Short:        "Fortune and tarot readings backed by a generative model",
		SilenceUsage: true,
		RunE:         serve.RunE,
	}
	root.AddCommand(serve, newFortuneCmd(), newTarotCmd())
	return root
}

func loadApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := newLogger(cfg.LogLevel)

	if !llm.IsKnownModel(cfg.LLM.Provider, cfg.LLM.Model) {
		logger.Warn("model is not in the known list, using it anyway",
			slog.String("provider", cfg.LLM.Provider),
			slog.String("model", cfg.LLM.Model))
	}

	httpClient := transport.NewHTTPClient(cfg.RequestTimeout, userAgent)
	llmClient, err := llm.NewClient(cfg.LLM, httpClient, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to init llm client: %w", err)
	}

	reader := reading.NewReader(reading.ReaderConfig{
		Client:  llmClient,
		Prompts: reading.NewPromptBuilder(nil),
		Logger:  logger,
	})

	return &app{cfg: cfg, logger: logger, reader: reader}, nil
}

func (a *app) newController(mode reading.Kind) *session.Controller {
	return session.NewController(a.reader, session.Options{
		Timeout:     a.cfg.LLM.Timeout,
		InitialMode: mode,
		Logger:      a.logger,
	})
}
