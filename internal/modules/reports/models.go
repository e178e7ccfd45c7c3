package reports

import (
	"math"

	"github.com/aristath/fintrack/internal/modules/allocation"
	"github.com/aristath/fintrack/internal/modules/emergencyfund"
	"github.com/aristath/fintrack/internal/modules/journal"
	"github.com/aristath/fintrack/internal/modules/portfolio"
	"github.com/aristath/fintrack/internal/modules/rebalancing"
	"github.com/aristath/fintrack/pkg/formulas"
)

// AlertLevel classifies report alerts
type AlertLevel string

const (
	AlertOK      AlertLevel = "ok"
	AlertInfo    AlertLevel = "info"
	AlertWarning AlertLevel = "warning"
)

// Alert is a human-readable observation attached to a report
type Alert struct {
	Level   AlertLevel `json:"level"`
	Message string     `json:"message"`
}

// AllocationInput is the data an allocation report is built from.
// A nil EmergencyFund is derived from the emergency fund positions using
// the default target.
type AllocationInput struct {
	Positions      []portfolio.Position `json:"positions"`
	EmergencyFund  *emergencyfund.Fund  `json:"emergency_fund,omitempty"`
	DriftThreshold *float64             `json:"drift_threshold,omitempty"`
}

// AllocationReport is the daily allocation check-in
type AllocationReport struct {
	Phase          allocation.Phase           `json:"phase"`
	PhaseLabel     string                     `json:"phase_label"`
	EmergencyFund  emergencyfund.Status       `json:"emergency_fund"`
	Summary        portfolio.Summary          `json:"summary"`
	CurrentWeights map[string]float64         `json:"current_weights"`
	TargetWeights  map[string]float64         `json:"target_weights"`
	DriftThreshold float64                    `json:"drift_threshold"`
	Drift          []rebalancing.DriftEntry   `json:"drift"`
	NeedsRebalance bool                       `json:"needs_rebalance"`
	Trades         []rebalancing.Trade        `json:"trades"`
	Compliance     portfolio.ComplianceReport `json:"compliance"`
	Alerts         []Alert                    `json:"alerts"`
}

// PerformanceInput is the data a performance report is built from.
// When Returns is empty they are derived from Values. StartValue and
// EndValue default to the first and last of Values, Years defaults to the
// number of return periods over 252 trading days.
type PerformanceInput struct {
	Returns      []float64       `json:"returns,omitempty"`
	Values       []float64       `json:"values,omitempty"`
	StartValue   float64         `json:"start_value,omitempty"`
	EndValue     float64         `json:"end_value,omitempty"`
	Years        float64         `json:"years,omitempty"`
	RiskFreeRate *float64        `json:"risk_free_rate,omitempty"`
	Trades       []journal.Trade `json:"trades,omitempty"`
}

// PerformanceReport is the periodic performance review.
// Ratios that are infinite (zero volatility with a positive edge) are nil
// with the matching *Infinite flag set.
type PerformanceReport struct {
	Periods          int                     `json:"periods"`
	RiskFreeRate     float64                 `json:"risk_free_rate"`
	SharpeRatio      *float64                `json:"sharpe_ratio"`
	SharpeInfinite   bool                    `json:"sharpe_ratio_infinite,omitempty"`
	SortinoRatio     *float64                `json:"sortino_ratio"`
	SortinoInfinite  bool                    `json:"sortino_ratio_infinite,omitempty"`
	Volatility       float64                 `json:"volatility"`
	MaxDrawdown      formulas.DrawdownResult `json:"max_drawdown"`
	CAGR             float64                 `json:"cagr"`
	CumulativeReturn float64                 `json:"cumulative_return"`
	StartValue       float64                 `json:"start_value"`
	EndValue         float64                 `json:"end_value"`
	Years            float64                 `json:"years"`
	TradeStats       *journal.Stats          `json:"trade_stats,omitempty"`
}

// splitInfinite returns nil and true for infinite values, the value otherwise
func splitInfinite(v float64) (*float64, bool) {
	if math.IsInf(v, 0) {
		return nil, true
	}
	return &v, false
}
