package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all allocation routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/allocation", func(r chi.Router) {
		r.Get("/phase", h.HandleDetectPhase)
		r.Get("/targets/{phase}", h.HandleGetTargets)
		r.Post("/payday", h.HandlePayday)
	})
}
