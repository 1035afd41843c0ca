package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewProductRouter creates the product API router.
func NewProductRouter(h *ProductHandler) *chi.Mux {
	r := newRouter()

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", h.Health)
		r.Get("/products", h.ListProducts)
		r.Get("/products/{sku}", h.GetProduct)
	})

	return r
}

// NewAgentRouter creates the agent API router.
func NewAgentRouter(h *AgentHandler) *chi.Mux {
	r := newRouter()

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", h.Health)
		r.Post("/recommendations", h.Recommend)
	})

	return r
}

func newRouter() *chi.Mux {
	r := chi.NewRouter()

	// Global middleware (all routes)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware)
	r.Use(middleware.Recoverer)

	return r
}
