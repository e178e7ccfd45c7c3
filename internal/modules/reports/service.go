// Package reports composes the calculators into the allocation check-in and
// the performance review. Inputs are supplied by the caller; computed
// reports are memoised through an injected cache.
package reports

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/fintrack/internal/clientdata"
	"github.com/aristath/fintrack/internal/modules/allocation"
	"github.com/aristath/fintrack/internal/modules/emergencyfund"
	"github.com/aristath/fintrack/internal/modules/journal"
	"github.com/aristath/fintrack/internal/modules/portfolio"
	"github.com/aristath/fintrack/internal/modules/rebalancing"
	"github.com/aristath/fintrack/pkg/formulas"
)

// Caches holds the per-report caches. Nil caches disable memoisation.
type Caches struct {
	Allocation  clientdata.Cache
	Performance clientdata.Cache
}

// Defaults are applied when an input omits a parameter
type Defaults struct {
	RiskFreeRate   float64
	DriftThreshold float64
}

// Service builds reports
type Service struct {
	caches   Caches
	defaults Defaults
	ttl      time.Duration
	log      zerolog.Logger
}

// NewService creates a report service
func NewService(caches Caches, defaults Defaults, log zerolog.Logger) *Service {
	return &Service{
		caches:   caches,
		defaults: defaults,
		ttl:      clientdata.TTLReport,
		log:      log.With().Str("component", "reports").Logger(),
	}
}

// BuildAllocation computes the allocation check-in for the given holdings
func (s *Service) BuildAllocation(in AllocationInput) (*AllocationReport, error) {
	threshold := s.defaults.DriftThreshold
	if in.DriftThreshold != nil {
		threshold = *in.DriftThreshold
	}
	if math.IsNaN(threshold) || math.IsInf(threshold, 0) {
		threshold = rebalancing.DefaultDriftThreshold
	}

	key, cacheable := cacheKey("allocation", in, resolvedSettings{DriftThreshold: threshold})
	report := &AllocationReport{}
	if cacheable && s.cached(s.caches.Allocation, "allocation", key, report) {
		return report, nil
	}

	positions := make([]portfolio.Position, len(in.Positions))
	for i, p := range in.Positions {
		p.Normalize()
		positions[i] = p
	}

	summary := portfolio.Summarize(positions)

	fund := in.EmergencyFund
	if fund == nil {
		fund = emergencyfund.New()
		fund.Balance = summary.EmergencyFundValue
	}

	phase := fund.Phase()
	target, err := allocation.TargetForPhase(phase)
	if err != nil {
		return nil, err
	}

	current := portfolio.AllocationWeights(positions)
	drift := rebalancing.CheckAllocationDrift(current, target, threshold)
	fundStatus := fund.Status()

	report = &AllocationReport{
		Phase:          phase,
		PhaseLabel:     phase.Label(),
		EmergencyFund:  fundStatus,
		Summary:        summary,
		CurrentWeights: current,
		TargetWeights:  target,
		DriftThreshold: threshold,
		Drift:          drift,
		NeedsRebalance: rebalancing.NeedsRebalance(drift),
		Trades:         rebalancing.CalculateRebalanceTrades(summary.TotalValue, current, target),
		Compliance:     portfolio.CheckCompliance(positions, portfolio.DefaultLimits()),
		Alerts:         allocationAlerts(drift, fundStatus),
	}

	if cacheable {
		s.store(s.caches.Allocation, "allocation", key, report)
	}
	return report, nil
}

func allocationAlerts(drift []rebalancing.DriftEntry, fund emergencyfund.Status) []Alert {
	alerts := []Alert{}

	for _, d := range drift {
		direction := "under"
		if d.Drift > 0 {
			direction = "over"
		}
		alerts = append(alerts, Alert{
			Level:   AlertWarning,
			Message: fmt.Sprintf("%s: %.1f%% %sweight", d.Asset, d.Amount*100, direction),
		})
	}

	if fund.CurrentPhase == allocation.PhaseFoundation {
		alerts = append(alerts, Alert{
			Level:   AlertInfo,
			Message: fmt.Sprintf("Phase 1 active - prioritize Emergency Fund (%.1f%% complete)", fund.ProgressPercent),
		})
	}

	if fund.IsComplete {
		alerts = append(alerts, Alert{
			Level:   AlertOK,
			Message: "Emergency Fund target reached, Phase 2 unlocked",
		})
	}

	return alerts
}

// BuildPerformance computes risk and return metrics for a return or value history
func (s *Service) BuildPerformance(in PerformanceInput) (*PerformanceReport, error) {
	returns := in.Returns
	if len(returns) == 0 {
		returns = formulas.CalculateReturns(in.Values)
	}
	if len(returns) == 0 && len(in.Values) == 0 {
		return nil, fmt.Errorf("%w: returns or values are required", formulas.ErrInvalidArgument)
	}

	trades, err := validateTrades(in.Trades)
	if err != nil {
		return nil, err
	}

	rf := s.defaults.RiskFreeRate
	if in.RiskFreeRate != nil {
		rf = *in.RiskFreeRate
	}

	key, cacheable := cacheKey("performance", in, resolvedSettings{RiskFreeRate: rf})
	report := &PerformanceReport{}
	if cacheable && s.cached(s.caches.Performance, "performance", key, report) {
		return report, nil
	}

	start, end := in.StartValue, in.EndValue
	if n := len(in.Values); n > 0 {
		if start == 0 {
			start = in.Values[0]
		}
		if end == 0 {
			end = in.Values[n-1]
		}
	}

	years := in.Years
	if years == 0 && len(returns) > 0 {
		years = float64(len(returns)) / formulas.TradingDaysPerYear
	}

	values := in.Values
	if len(values) == 0 {
		values = growthCurve(returns)
	}

	report = &PerformanceReport{
		Periods:          len(returns),
		RiskFreeRate:     rf,
		Volatility:       formulas.CalculateVolatility(returns),
		MaxDrawdown:      formulas.CalculateMaxDrawdown(values),
		CAGR:             formulas.CalculateCAGR(start, end, years),
		CumulativeReturn: formulas.CumulativeReturn(returns),
		StartValue:       start,
		EndValue:         end,
		Years:            years,
	}
	report.SharpeRatio, report.SharpeInfinite = splitInfinite(formulas.CalculateSharpeRatio(returns, rf))
	report.SortinoRatio, report.SortinoInfinite = splitInfinite(formulas.CalculateSortinoRatio(returns, rf))

	if len(trades) > 0 {
		stats := journal.ComputeStats(trades)
		report.TradeStats = &stats
	}

	if cacheable {
		s.store(s.caches.Performance, "performance", key, report)
	}
	return report, nil
}

// growthCurve compounds returns onto a unit starting value
func growthCurve(returns []float64) []float64 {
	if len(returns) == 0 {
		return []float64{}
	}
	curve := make([]float64, len(returns)+1)
	curve[0] = 1
	for i, r := range returns {
		curve[i+1] = curve[i] * (1 + r)
	}
	return curve
}

// validateTrades runs each trade through the same checks as journal entries
func validateTrades(trades []journal.Trade) ([]journal.Trade, error) {
	if len(trades) == 0 {
		return nil, nil
	}

	j := journal.New()
	now := time.Now()
	for i, t := range trades {
		if _, err := j.Add(t, now); err != nil {
			return nil, fmt.Errorf("trade %d: %w", i, err)
		}
	}
	return j.All(), nil
}

// resolvedSettings are the service defaults as applied to one request.
// They are part of the cache key so a configuration change never serves
// reports computed under the previous settings.
type resolvedSettings struct {
	RiskFreeRate   float64 `json:"risk_free_rate"`
	DriftThreshold float64 `json:"drift_threshold"`
}

// cacheKey hashes the canonical JSON encoding of the input together with the
// resolved settings. Inputs that cannot be encoded (NaN, Inf) are not cached.
func cacheKey(kind string, in interface{}, settings resolvedSettings) (string, bool) {
	raw, err := json.Marshal(struct {
		Input    interface{}      `json:"input"`
		Settings resolvedSettings `json:"settings"`
	}{in, settings})
	if err != nil {
		return "", false
	}
	sum := sha256.Sum256(append([]byte(kind+":"), raw...))
	return kind + ":" + hex.EncodeToString(sum[:]), true
}

func (s *Service) cached(cache clientdata.Cache, kind, key string, dst interface{}) bool {
	if cache == nil {
		return false
	}

	found, err := cache.Get(key, dst)
	if err != nil {
		s.log.Warn().Err(err).Str("report", kind).Msg("Failed to read cached report")
		return false
	}
	if found {
		s.log.Debug().Str("report", kind).Str("key", key).Msg("Serving cached report")
	}
	return found
}

func (s *Service) store(cache clientdata.Cache, kind, key string, report interface{}) {
	if cache == nil {
		return
	}
	if err := cache.Set(key, report, s.ttl); err != nil {
		s.log.Warn().Err(err).Str("report", kind).Msg("Failed to cache report")
	}
}
