package serverhttp

import (
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"quote-service/internal/config"
	"quote-service/internal/middleware"
	qHnd "quote-service/internal/quote/handler"
	"quote-service/server/http/handlers"
)

func NewRouter(cfg config.Config, logger zerolog.Logger, h *qHnd.Handler) *chi.Mux {
	r := chi.NewRouter()

	// order matters: recover -> requestID -> logging -> cors -> limit
	r.Use(middleware.Recover(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS(cfg.AllowOrigins))
	r.Use(middleware.LimitBytes(int64(cfg.MaxUploadMB) * 1024 * 1024))

	r.Get("/health", handlers.Health)

	r.Post("/chat", h.Chat())
	r.Post("/upload", h.Upload())
	r.Post("/export", h.Export())
	r.Get("/suppliers", h.Suppliers())

	return r
}
