// Package handlers provides HTTP handlers for rebalancing operations.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/fintrack/internal/modules/rebalancing"
)

// Handler handles rebalancing HTTP requests
type Handler struct {
	driftThreshold float64
	log            zerolog.Logger
}

// NewHandler creates a new rebalancing handler. driftThreshold is used when
// a drift request omits its own.
func NewHandler(driftThreshold float64, log zerolog.Logger) *Handler {
	return &Handler{
		driftThreshold: driftThreshold,
		log:            log.With().Str("handler", "rebalancing").Logger(),
	}
}

// DriftRequest represents a request to check allocation drift
type DriftRequest struct {
	Current   map[string]float64 `json:"current"`
	Target    map[string]float64 `json:"target"`
	Threshold *float64           `json:"threshold,omitempty"`
}

// TradesRequest represents a request to calculate rebalancing trades
type TradesRequest struct {
	PortfolioValue float64            `json:"portfolio_value"`
	Current        map[string]float64 `json:"current"`
	Target         map[string]float64 `json:"target"`
}

// HandleCheckDrift handles POST /api/rebalancing/drift
func (h *Handler) HandleCheckDrift(w http.ResponseWriter, r *http.Request) {
	var req DriftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Debug().Err(err).Msg("Failed to decode request body")
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	threshold := h.driftThreshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}

	drift := rebalancing.CheckAllocationDrift(req.Current, req.Target, threshold)

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"threshold":       threshold,
			"drift":           drift,
			"needs_rebalance": rebalancing.NeedsRebalance(drift),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleCalculateTrades handles POST /api/rebalancing/trades
func (h *Handler) HandleCalculateTrades(w http.ResponseWriter, r *http.Request) {
	var req TradesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Debug().Err(err).Msg("Failed to decode request body")
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	trades := rebalancing.CalculateRebalanceTrades(req.PortfolioValue, req.Current, req.Target)

	var buys, sells float64
	for _, t := range trades {
		if t.Action == rebalancing.ActionBuy {
			buys += t.Amount
		} else {
			sells += t.Amount
		}
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"portfolio_value": req.PortfolioValue,
			"trades":          trades,
			"total_buy":       buys,
			"total_sell":      sells,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
