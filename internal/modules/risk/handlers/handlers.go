// Package handlers provides HTTP handlers for risk metrics and position sizing.
package handlers

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/fintrack/pkg/formulas"
)

// Defaults are applied when a request omits an optional parameter
type Defaults struct {
	RiskFreeRate  float64
	MaxAllocation float64
}

// Handler handles risk metrics HTTP requests
type Handler struct {
	defaults Defaults
	log      zerolog.Logger
}

// NewHandler creates a new risk metrics handler
func NewHandler(defaults Defaults, log zerolog.Logger) *Handler {
	return &Handler{
		defaults: defaults,
		log:      log.With().Str("handler", "risk").Logger(),
	}
}

// SeriesRequest carries a return series. Elements are validated individually
// so a non-numeric entry is reported as invalid input.
type SeriesRequest struct {
	Returns      []interface{} `json:"returns"`
	RiskFreeRate *float64      `json:"risk_free_rate,omitempty"`
}

// DrawdownRequest carries a value series
type DrawdownRequest struct {
	Values []interface{} `json:"values"`
}

// CAGRRequest carries the growth inputs
type CAGRRequest struct {
	StartValue float64 `json:"start_value"`
	EndValue   float64 `json:"end_value"`
	Years      float64 `json:"years"`
}

// KellyRequest carries the Kelly inputs and optional sizing parameters
type KellyRequest struct {
	WinRate        float64  `json:"win_rate"`
	WinLossRatio   float64  `json:"win_loss_ratio"`
	PortfolioValue *float64 `json:"portfolio_value,omitempty"`
	MaxAllocation  *float64 `json:"max_allocation,omitempty"`
}

// HandleSharpe handles POST /api/risk/sharpe
func (h *Handler) HandleSharpe(w http.ResponseWriter, r *http.Request) {
	returns, rf, ok := h.decodeSeries(w, r)
	if !ok {
		return
	}

	data := map[string]interface{}{
		"periods":        len(returns),
		"risk_free_rate": rf,
	}
	putRatio(data, "sharpe_ratio", formulas.CalculateSharpeRatio(returns, rf))

	h.writeData(w, data)
}

// HandleSortino handles POST /api/risk/sortino
func (h *Handler) HandleSortino(w http.ResponseWriter, r *http.Request) {
	returns, rf, ok := h.decodeSeries(w, r)
	if !ok {
		return
	}

	data := map[string]interface{}{
		"periods":        len(returns),
		"risk_free_rate": rf,
	}
	putRatio(data, "sortino_ratio", formulas.CalculateSortinoRatio(returns, rf))

	h.writeData(w, data)
}

// HandleVolatility handles POST /api/risk/volatility
func (h *Handler) HandleVolatility(w http.ResponseWriter, r *http.Request) {
	returns, _, ok := h.decodeSeries(w, r)
	if !ok {
		return
	}

	h.writeData(w, map[string]interface{}{
		"periods":    len(returns),
		"volatility": formulas.CalculateVolatility(returns),
	})
}

// HandleMaxDrawdown handles POST /api/risk/max-drawdown
func (h *Handler) HandleMaxDrawdown(w http.ResponseWriter, r *http.Request) {
	var req DrawdownRequest
	if !h.decode(w, r, &req) {
		return
	}

	values, err := formulas.ToSeries(req.Values)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.writeData(w, formulas.CalculateMaxDrawdown(values))
}

// HandleCAGR handles POST /api/risk/cagr
func (h *Handler) HandleCAGR(w http.ResponseWriter, r *http.Request) {
	var req CAGRRequest
	if !h.decode(w, r, &req) {
		return
	}

	h.writeData(w, map[string]interface{}{
		"start_value": req.StartValue,
		"end_value":   req.EndValue,
		"years":       req.Years,
		"cagr":        formulas.CalculateCAGR(req.StartValue, req.EndValue, req.Years),
	})
}

// HandleKelly handles POST /api/risk/kelly
func (h *Handler) HandleKelly(w http.ResponseWriter, r *http.Request) {
	var req KellyRequest
	if !h.decode(w, r, &req) {
		return
	}

	fraction := formulas.KellyCriterion(req.WinRate, req.WinLossRatio)
	data := map[string]interface{}{
		"win_rate":       req.WinRate,
		"win_loss_ratio": req.WinLossRatio,
		"kelly_fraction": fraction,
	}

	if req.PortfolioValue != nil {
		maxAllocation := h.defaults.MaxAllocation
		if req.MaxAllocation != nil {
			maxAllocation = *req.MaxAllocation
		}
		data["portfolio_value"] = *req.PortfolioValue
		data["max_allocation"] = maxAllocation
		data["position_size"] = formulas.CalculatePositionSize(*req.PortfolioValue, fraction, maxAllocation)
	}

	h.writeData(w, data)
}

func (h *Handler) decodeSeries(w http.ResponseWriter, r *http.Request) ([]float64, float64, bool) {
	var req SeriesRequest
	if !h.decode(w, r, &req) {
		return nil, 0, false
	}

	returns, err := formulas.ToSeries(req.Returns)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return nil, 0, false
	}

	rf := h.defaults.RiskFreeRate
	if req.RiskFreeRate != nil {
		rf = *req.RiskFreeRate
	}
	return returns, rf, true
}

// decode reads a JSON body, keeping numbers as json.Number so series
// elements can be validated
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		h.log.Debug().Err(err).Msg("Failed to decode request body")
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return false
	}
	return true
}

// putRatio stores a ratio under key. Infinite values cannot be encoded as
// JSON, so they are written as null with a key_infinite flag.
func putRatio(data map[string]interface{}, key string, v float64) {
	if math.IsInf(v, 0) {
		data[key] = nil
		data[key+"_infinite"] = true
		return
	}
	data[key] = v
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
