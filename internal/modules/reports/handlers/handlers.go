// Package handlers provides HTTP handlers for the allocation check-in and
// performance review reports.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/fintrack/internal/modules/reports"
	"github.com/aristath/fintrack/pkg/formulas"
)

// Handler handles report HTTP requests
type Handler struct {
	service *reports.Service
	log     zerolog.Logger
}

// NewHandler creates a new reports handler
func NewHandler(service *reports.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "reports").Logger(),
	}
}

// HandleAllocationReport handles POST /api/reports/allocation
func (h *Handler) HandleAllocationReport(w http.ResponseWriter, r *http.Request) {
	var in reports.AllocationInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.log.Debug().Err(err).Msg("Failed to decode request body")
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	report, err := h.service.BuildAllocation(in)
	if err != nil {
		h.fail(w, err, "Failed to build allocation report")
		return
	}

	h.writeData(w, report)
}

// HandlePerformanceReport handles POST /api/reports/performance
func (h *Handler) HandlePerformanceReport(w http.ResponseWriter, r *http.Request) {
	var in reports.PerformanceInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.log.Debug().Err(err).Msg("Failed to decode request body")
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	report, err := h.service.BuildPerformance(in)
	if err != nil {
		h.fail(w, err, "Failed to build performance report")
		return
	}

	h.writeData(w, report)
}

// fail maps calculator argument errors to 400 and anything else to 500
func (h *Handler) fail(w http.ResponseWriter, err error, msg string) {
	if errors.Is(err, formulas.ErrInvalidArgument) || errors.Is(err, formulas.ErrInvalidInput) {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.log.Error().Err(err).Msg(msg)
	h.writeError(w, http.StatusInternalServerError, msg)
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
