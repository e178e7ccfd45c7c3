// Package handlers provides HTTP handlers for phase detection and payday
// allocation.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/fintrack/internal/modules/allocation"
	"github.com/aristath/fintrack/internal/modules/portfolio"
	"github.com/aristath/fintrack/pkg/formulas"
)

// Handler handles allocation HTTP requests
type Handler struct {
	log zerolog.Logger
}

// NewHandler creates a new allocation handler
func NewHandler(log zerolog.Logger) *Handler {
	return &Handler{
		log: log.With().Str("handler", "allocation").Logger(),
	}
}

// PaydayRequest represents a request to split monthly savings. When Phase is
// omitted it is detected from the emergency fund balance and target.
// Positions, when given, name the holdings each row suggests topping up.
type PaydayRequest struct {
	MonthlySavings       float64              `json:"monthly_savings"`
	Phase                *int                 `json:"phase,omitempty"`
	EmergencyFundBalance float64              `json:"emergency_fund_balance"`
	EmergencyFundTarget  float64              `json:"emergency_fund_target"`
	Positions            []portfolio.Position `json:"positions,omitempty"`
}

// HandleDetectPhase handles GET /api/allocation/phase?balance=&target=
func (h *Handler) HandleDetectPhase(w http.ResponseWriter, r *http.Request) {
	balance, err := queryFloat(r, "balance")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	target, err := queryFloat(r, "target")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	phase := allocation.DetectPhase(balance, target)
	weights, _ := allocation.TargetForPhase(phase)

	h.writeData(w, map[string]interface{}{
		"balance":        balance,
		"target":         target,
		"phase":          phase,
		"phase_label":    phase.Label(),
		"target_weights": weights,
	})
}

// HandleGetTargets handles GET /api/allocation/targets/{phase}
func (h *Handler) HandleGetTargets(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(chi.URLParam(r, "phase"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "phase must be an integer")
		return
	}

	phase := allocation.Phase(n)
	weights, err := allocation.TargetForPhase(phase)
	if err != nil {
		h.writeError(w, statusForError(err), err.Error())
		return
	}

	h.writeData(w, map[string]interface{}{
		"phase":          phase,
		"phase_label":    phase.Label(),
		"target_weights": weights,
	})
}

// HandlePayday handles POST /api/allocation/payday
func (h *Handler) HandlePayday(w http.ResponseWriter, r *http.Request) {
	var req PaydayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Debug().Err(err).Msg("Failed to decode request body")
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	phase := allocation.DetectPhase(req.EmergencyFundBalance, req.EmergencyFundTarget)
	if req.Phase != nil {
		phase = allocation.Phase(*req.Phase)
	}

	for i := range req.Positions {
		req.Positions[i].Normalize()
	}

	plan, err := allocation.PlanPayday(req.MonthlySavings, phase, portfolio.HoldingsByCategory(req.Positions))
	if err != nil {
		h.writeError(w, statusForError(err), err.Error())
		return
	}

	h.writeData(w, plan)
}

// queryFloat parses a required numeric query parameter
func queryFloat(r *http.Request, name string) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, errors.New(name + " is required")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.New(name + " must be a number")
	}
	return v, nil
}

func statusForError(err error) int {
	if errors.Is(err, formulas.ErrInvalidArgument) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (h *Handler) writeData(w http.ResponseWriter, data interface{}) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": data,
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
