package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/iconidentify/ytgrab/internal/api/handler"
	mw "github.com/iconidentify/ytgrab/internal/api/middleware"
)

// NewRouter creates the HTTP router with all routes configured.
func NewRouter(
	searchHandler *handler.SearchHandler,
	healthHandler *handler.HealthHandler,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CleanPath)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.Logger(logger))
	r.Use(middleware.Recoverer)

	// Health endpoints
	r.Get("/health", healthHandler.Live)

	// Web UI
	r.Get("/", searchHandler.Page)
	r.Post("/search", searchHandler.Submit)
	r.Get("/download", searchHandler.Download)

	// JSON API
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.CORS)

		r.Get("/stats", healthHandler.Stats)
		r.Get("/session", searchHandler.State)
		r.Post("/search", searchHandler.APISearch)
	})

	return r
}
