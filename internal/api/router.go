// Package api wires the HTTP routers for both services.
package api

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/Pkra99/minichat-v2/internal/api/middleware"
	"github.com/Pkra99/minichat-v2/internal/handlers"
)

// NewGatewayRouter creates and configures the gateway HTTP router.
func NewGatewayRouter(logger zerolog.Logger, h *handlers.Handler) *chi.Mux {
	r := chi.NewRouter()

	// Metrics middleware (first to capture all requests)
	r.Use(middleware.Metrics)

	// Security middleware (order matters!)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.MaxBodySize(8 * 1024)) // 8KB max body
	r.Use(middleware.RequireJSON)

	// Standard middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)

	// CORS - allow all origins (browser demos call from anywhere)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", middleware.TenantHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Metrics endpoint (for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	// Public routes (no tenant required)
	r.Get("/", h.Info)
	r.Get("/health", h.Health)

	// Tenant-scoped routes
	r.Route("/api/v2", func(r chi.Router) {
		r.Use(middleware.RequireTenant)

		r.Post("/chat", h.PostChat)
		r.Get("/chat/stream", h.StreamChat)
		r.Get("/debug/state", h.GetState)
		r.Delete("/debug/state", h.ClearState)
	})

	return r
}

// NewResponderRouter creates and configures the responder HTTP router.
func NewResponderRouter(logger zerolog.Logger, rh *handlers.ResponderHandler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Metrics)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.MaxBodySize(8 * 1024))
	r.Use(middleware.RequireJSON)
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)

	r.Handle("/metrics", promhttp.Handler())

	r.Get("/", rh.Info)
	r.Get("/health", rh.Health)
	r.Post("/respond", rh.Respond)

	return r
}
