package httpserver

import (
	"log/slog"
	"net/http"

	"celestialview/internal/middleware"
	"celestialview/internal/reading"

	"github.com/go-chi/chi/v5"
)

type RouterDeps struct {
	Logger  *slog.Logger
	Reading *ReadingHandler
}

// NewRouter собирает chi-роутер с общими middleware.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recover(deps.Logger, reading.MessageUnexpected))
	r.Use(middleware.Logging(deps.Logger))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/topics", deps.Reading.Topics)
		r.Get("/cards", deps.Reading.Cards)
		r.Get("/state", deps.Reading.State)
		r.Post("/mode", deps.Reading.SwitchMode)
		r.Post("/fortune", deps.Reading.SubmitFortune)
		r.Post("/tarot", deps.Reading.DrawTarot)
		r.Post("/reset", deps.Reading.Reset)
	})

	return r
}
