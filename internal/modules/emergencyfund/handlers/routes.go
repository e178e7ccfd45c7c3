package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all emergency fund routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/emergency-fund", func(r chi.Router) {
		r.Post("/status", h.HandleStatus)
	})
}
