package main

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"celestialview/internal/httpserver"
	"celestialview/internal/llm"
	"celestialview/internal/reading"
	"celestialview/internal/session"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			return a.serve()
		},
	}
}

func (a *app) serve() error {
	cfg, logger := a.cfg, a.logger

	sessionKey, err := cookieKey(cfg.Session.Key)
	if err != nil {
		return err
	}
	if cfg.Session.Key == "" {
		logger.Warn("SESSION_KEY is empty, sessions will not survive a restart")
	}

	store := session.NewStore(cfg.Session.TTL, func() *session.Controller {
		return a.newController(reading.KindFortune)
	})
	handler := httpserver.NewReadingHandler(httpserver.ReadingHandlerDeps{
		Sessions: store,
		Cookies:  httpserver.NewCookieStore(sessionKey, cfg.Session.CookieSecure, int(cfg.Session.TTL.Seconds())),
		Logger:   logger,
	})

	router := httpserver.NewRouter(httpserver.RouterDeps{
		Logger:  logger,
		Reading: handler,
	})

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.LLM.Timeout + 15*time.Second, // /api/fortune и /api/tarot ждут модель
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go store.RunJanitor(ctx, cfg.Session.SweepInterval, logger)

	go func() {
		logger.Info("server starting",
			slog.String("addr", cfg.HTTPAddr),
			slog.String("provider", cfg.LLM.Provider),
			slog.String("model", cfg.LLM.Model),
			slog.String("model_name", llm.GetModelName(cfg.LLM.Model)))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
	return nil
}

// cookieKey returns the configured key or a random one for this process.
func cookieKey(configured string) ([]byte, error) {
	if configured != "" {
		return []byte(configured), nil
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate session key: %w", err)
	}
	return key, nil
}
