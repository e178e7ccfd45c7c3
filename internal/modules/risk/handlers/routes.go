package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all risk metrics routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/risk", func(r chi.Router) {
		// Ratio endpoints take a return series
		r.Post("/sharpe", h.HandleSharpe)
		r.Post("/sortino", h.HandleSortino)
		r.Post("/volatility", h.HandleVolatility)

		r.Post("/max-drawdown", h.HandleMaxDrawdown)
		r.Post("/cagr", h.HandleCAGR)
		r.Post("/kelly", h.HandleKelly)
	})
}
