package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/driftwell/discoveryengine/internal/httpapi/middleware"
)

// Router builds the full HTTP route table, grounded on
// _examples/2lar-b2/backend/interfaces/http/rest/router.go's chi.Router
// setup (request-id/real-ip/recoverer/logger middleware chain, then CORS,
// then a nested API route group).
func Router(h *Handler, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Logger(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Post("/submit-query", h.SubmitQuery)
		r.Get("/filter-options", h.FilterOptions)
		r.Post("/research", h.Research)
		r.Get("/admin/unknown-extractions", h.UnknownExtractions)
	})

	return r
}
