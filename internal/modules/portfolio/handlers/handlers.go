// Package handlers provides HTTP handlers for portfolio valuation and
// policy compliance.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/fintrack/internal/modules/portfolio"
)

// Handler handles portfolio HTTP requests
type Handler struct {
	limits portfolio.Limits
	log    zerolog.Logger
}

// NewHandler creates a new portfolio handler. limits apply to compliance
// requests that do not carry their own.
func NewHandler(limits portfolio.Limits, log zerolog.Logger) *Handler {
	return &Handler{
		limits: limits,
		log:    log.With().Str("handler", "portfolio").Logger(),
	}
}

// PositionsRequest carries the holdings to evaluate
type PositionsRequest struct {
	Positions []portfolio.Position `json:"positions"`
	Limits    *portfolio.Limits    `json:"limits,omitempty"`
}

// PositionValuation is a position with its derived values
type PositionValuation struct {
	portfolio.Position
	CostBasis            float64  `json:"cost_basis"`
	CurrentValue         *float64 `json:"current_value"`
	UnrealizedPnL        *float64 `json:"unrealized_pnl"`
	UnrealizedPnLPercent *float64 `json:"unrealized_pnl_percent"`
}

// HandleSummary handles POST /api/portfolio/summary
func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	positions, _, ok := h.decodePositions(w, r)
	if !ok {
		return
	}

	valuations := make([]PositionValuation, 0, len(positions))
	for _, p := range positions {
		valuations = append(valuations, PositionValuation{
			Position:             p,
			CostBasis:            p.CostBasis(),
			CurrentValue:         p.CurrentValue(),
			UnrealizedPnL:        p.UnrealizedPnL(),
			UnrealizedPnLPercent: p.UnrealizedPnLPercent(),
		})
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"summary":   portfolio.Summarize(positions),
			"weights":   portfolio.AllocationWeights(positions),
			"positions": valuations,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleCompliance handles POST /api/portfolio/compliance
func (h *Handler) HandleCompliance(w http.ResponseWriter, r *http.Request) {
	positions, limits, ok := h.decodePositions(w, r)
	if !ok {
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": portfolio.CheckCompliance(positions, limits),
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// decodePositions reads and normalizes the request holdings
func (h *Handler) decodePositions(w http.ResponseWriter, r *http.Request) ([]portfolio.Position, portfolio.Limits, bool) {
	var req PositionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Debug().Err(err).Msg("Failed to decode request body")
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return nil, portfolio.Limits{}, false
	}

	for i := range req.Positions {
		if req.Positions[i].Ticker == "" {
			h.writeError(w, http.StatusBadRequest, "ticker is required for every position")
			return nil, portfolio.Limits{}, false
		}
		req.Positions[i].Normalize()
	}

	limits := h.limits
	if req.Limits != nil {
		limits = *req.Limits
	}
	return req.Positions, limits, true
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
