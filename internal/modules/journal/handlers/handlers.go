// Package handlers provides HTTP handlers for reviewing journal trades.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/fintrack/internal/modules/journal"
)

// Handler handles journal HTTP requests
type Handler struct {
	now func() time.Time
	log zerolog.Logger
}

// NewHandler creates a new journal handler
func NewHandler(log zerolog.Logger) *Handler {
	return &Handler{
		now: time.Now,
		log: log.With().Str("handler", "journal").Logger(),
	}
}

// ReviewRequest carries trades and optional filters, applied in order:
// ticker, tag, sentiment, date range, then the newest Limit trades.
type ReviewRequest struct {
	Trades    []journal.Trade   `json:"trades"`
	Ticker    string            `json:"ticker,omitempty"`
	Tag       string            `json:"tag,omitempty"`
	Sentiment journal.Sentiment `json:"sentiment,omitempty"`
	Start     *time.Time        `json:"start,omitempty"`
	End       *time.Time        `json:"end,omitempty"`
	Limit     int               `json:"limit,omitempty"`
}

// HandleReview handles POST /api/journal/review
func (h *Handler) HandleReview(w http.ResponseWriter, r *http.Request) {
	var req ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Debug().Err(err).Msg("Failed to decode request body")
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	j := journal.New()
	now := h.now()
	for i, t := range req.Trades {
		if _, err := j.Add(t, now); err != nil {
			h.log.Debug().Err(err).Int("index", i).Msg("Rejected trade")
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	if req.Ticker != "" {
		j = journal.New(j.ByTicker(req.Ticker)...)
	}
	if req.Tag != "" {
		j = journal.New(j.ByTag(req.Tag)...)
	}
	if req.Sentiment != "" {
		j = journal.New(j.BySentiment(req.Sentiment)...)
	}
	if req.Start != nil || req.End != nil {
		start, end := time.Time{}, now
		if req.Start != nil {
			start = *req.Start
		}
		if req.End != nil {
			end = *req.End
		}
		j = journal.New(j.InRange(start, end)...)
	}

	trades := j.Recent(-1)
	if req.Limit > 0 {
		trades = j.Recent(req.Limit)
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"trades": trades,
			"stats":  journal.ComputeStats(trades),
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
