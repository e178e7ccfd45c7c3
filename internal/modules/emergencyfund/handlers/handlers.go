// Package handlers provides HTTP handlers for emergency fund progress.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/fintrack/internal/modules/emergencyfund"
)

// defaultPlanMonths is the horizon used for the contribution plan when a
// request does not name one
const defaultPlanMonths = 12

// Handler handles emergency fund HTTP requests
type Handler struct {
	now func() time.Time
	log zerolog.Logger
}

// NewHandler creates a new emergency fund handler
func NewHandler(log zerolog.Logger) *Handler {
	return &Handler{
		now: time.Now,
		log: log.With().Str("handler", "emergency_fund").Logger(),
	}
}

// StatusRequest describes the fund and an optional savings plan.
// Zero target months or expenses fall back to the defaults.
type StatusRequest struct {
	TargetMonths        int     `json:"target_months"`
	MonthlyExpenses     float64 `json:"monthly_expenses"`
	CurrentBalance      float64 `json:"current_balance"`
	MonthlyContribution float64 `json:"monthly_contribution"`
	PlanMonths          int     `json:"plan_months"`
}

// HandleStatus handles POST /api/emergency-fund/status
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	var req StatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Debug().Err(err).Msg("Failed to decode request body")
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	fund := emergencyfund.New()
	if err := fund.Configure(req.TargetMonths, req.MonthlyExpenses); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	fund.Balance = req.CurrentBalance

	planMonths := req.PlanMonths
	if planMonths <= 0 {
		planMonths = defaultPlanMonths
	}

	data := map[string]interface{}{
		"status":                      fund.Status(),
		"plan_months":                 planMonths,
		"monthly_contribution_needed": fund.MonthlyContributionNeeded(planMonths),
		"estimated_completion":        nil,
	}
	if done, ok := fund.EstimateCompletion(req.MonthlyContribution, h.now()); ok {
		data["estimated_completion"] = done.Format("2006-01-02")
	}

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
