package reports

import (
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/fintrack/internal/clientdata"
	"github.com/aristath/fintrack/internal/modules/allocation"
	"github.com/aristath/fintrack/internal/modules/emergencyfund"
	"github.com/aristath/fintrack/internal/modules/journal"
	"github.com/aristath/fintrack/internal/modules/portfolio"
	"github.com/aristath/fintrack/pkg/formulas"
)

var testDefaults = Defaults{RiskFreeRate: 0.05, DriftThreshold: 0.05}

func newTestService(caches Caches) *Service {
	return NewService(caches, testDefaults, zerolog.New(nil).Level(zerolog.Disabled))
}

// countingCache records lookups so tests can tell cache hits from recomputation
type countingCache struct {
	inner clientdata.Cache
	gets  int
	hits  int
	sets  int
}

func (c *countingCache) Get(key string, dst interface{}) (bool, error) {
	c.gets++
	found, err := c.inner.Get(key, dst)
	if found {
		c.hits++
	}
	return found, err
}

func (c *countingCache) Set(key string, value interface{}, ttl time.Duration) error {
	c.sets++
	return c.inner.Set(key, value, ttl)
}

func phaseOnePositions() []portfolio.Position {
	return []portfolio.Position{
		{Ticker: "rdpu", Platform: "bibit", Category: "money_market", Quantity: 1, AvgPrice: 5_000_000, Currency: "idr", IsEmergencyFund: true},
		{Ticker: "bbca", Platform: "stockbit", Category: "stocks", Quantity: 1, AvgPrice: 4_000_000, Currency: "idr"},
		{Ticker: "btc", Platform: "indodax", Category: "crypto", Quantity: 1, AvgPrice: 1_000_000, Currency: "idr"},
	}
}

func TestBuildAllocation_PhaseOne(t *testing.T) {
	svc := newTestService(Caches{})

	report, err := svc.BuildAllocation(AllocationInput{Positions: phaseOnePositions()})
	require.NoError(t, err)

	assert.Equal(t, allocation.PhaseFoundation, report.Phase)
	assert.Equal(t, "Foundation Building", report.PhaseLabel)
	assert.Equal(t, 0.80, report.TargetWeights["ef"])
	assert.InDelta(t, 0.50, report.CurrentWeights["ef"], 1e-9)
	assert.InDelta(t, 0.40, report.CurrentWeights["stocks"], 1e-9)
	assert.InDelta(t, 10_000_000, report.Summary.TotalValue, 1e-6)

	// ef is 30 points under target, stocks 30 over, crypto on target
	require.Len(t, report.Drift, 2)
	assert.True(t, report.NeedsRebalance)
	require.Len(t, report.Trades, 2)
	for _, tr := range report.Trades {
		assert.InDelta(t, 3_000_000, tr.Amount, 1e-6)
	}

	// Fund derived from ef positions with the default 36M target
	assert.Equal(t, 5_000_000.0, report.EmergencyFund.CurrentBalance)
	assert.False(t, report.EmergencyFund.IsComplete)

	levels := map[AlertLevel]int{}
	for _, a := range report.Alerts {
		levels[a.Level]++
	}
	assert.Equal(t, 2, levels[AlertWarning])
	assert.Equal(t, 1, levels[AlertInfo])
	assert.Equal(t, 0, levels[AlertOK])
}

func TestBuildAllocation_PhaseTwoWithExplicitFund(t *testing.T) {
	svc := newTestService(Caches{})
	fund := &emergencyfund.Fund{TargetMonths: 6, MonthlyExpenses: 1_000, Balance: 6_000}

	positions := []portfolio.Position{
		{Ticker: "CASH", Category: "money_market", Quantity: 1, AvgPrice: 2_000, IsEmergencyFund: true},
		{Ticker: "VOO", Category: "stocks", Quantity: 1, AvgPrice: 5_000},
		{Ticker: "BTC", Category: "crypto", Quantity: 1, AvgPrice: 2_000},
		{Ticker: "BND", Category: "bonds", Quantity: 1, AvgPrice: 1_000},
	}

	report, err := svc.BuildAllocation(AllocationInput{Positions: positions, EmergencyFund: fund})
	require.NoError(t, err)

	assert.Equal(t, allocation.PhaseAccumulation, report.Phase)
	assert.Empty(t, report.Drift)
	assert.False(t, report.NeedsRebalance)
	assert.Empty(t, report.Trades)

	require.Len(t, report.Alerts, 1)
	assert.Equal(t, AlertOK, report.Alerts[0].Level)
}

func TestBuildAllocation_CustomThreshold(t *testing.T) {
	svc := newTestService(Caches{})
	threshold := 0.5

	report, err := svc.BuildAllocation(AllocationInput{Positions: phaseOnePositions(), DriftThreshold: &threshold})
	require.NoError(t, err)
	assert.Equal(t, 0.5, report.DriftThreshold)
	assert.Empty(t, report.Drift)
	// Trades are computed regardless of the drift threshold
	assert.NotEmpty(t, report.Trades)
}

func TestBuildAllocation_Empty(t *testing.T) {
	svc := newTestService(Caches{})

	report, err := svc.BuildAllocation(AllocationInput{})
	require.NoError(t, err)
	assert.Equal(t, allocation.PhaseFoundation, report.Phase)
	assert.Empty(t, report.CurrentWeights)
	assert.Empty(t, report.Trades)
}

func TestBuildAllocation_Cached(t *testing.T) {
	cache := &countingCache{inner: clientdata.NewMemoryCache()}
	svc := newTestService(Caches{Allocation: cache})
	in := AllocationInput{Positions: phaseOnePositions()}

	first, err := svc.BuildAllocation(in)
	require.NoError(t, err)
	assert.Equal(t, 0, cache.hits)
	assert.Equal(t, 1, cache.sets)

	second, err := svc.BuildAllocation(in)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hits)
	assert.Equal(t, 1, cache.sets)

	assert.Equal(t, first.Phase, second.Phase)
	assert.Equal(t, first.TargetWeights, second.TargetWeights)
	assert.Equal(t, first.Drift, second.Drift)
	assert.Equal(t, first.Trades, second.Trades)

	// A different input misses
	in.Positions = in.Positions[:2]
	_, err = svc.BuildAllocation(in)
	require.NoError(t, err)
	assert.Equal(t, 2, cache.sets)
}

func TestBuildPerformance_FromReturns(t *testing.T) {
	svc := newTestService(Caches{})
	returns := []float64{0.01, -0.02, 0.015, 0.005, -0.01, 0.02}

	report, err := svc.BuildPerformance(PerformanceInput{Returns: returns})
	require.NoError(t, err)

	assert.Equal(t, len(returns), report.Periods)
	assert.Equal(t, 0.05, report.RiskFreeRate)
	require.NotNil(t, report.SharpeRatio)
	assert.InDelta(t, formulas.CalculateSharpeRatio(returns, 0.05), *report.SharpeRatio, 1e-12)
	require.NotNil(t, report.SortinoRatio)
	assert.InDelta(t, formulas.CalculateVolatility(returns), report.Volatility, 1e-12)
	assert.Greater(t, report.MaxDrawdown.MaxDrawdown, 0.0)
	assert.InDelta(t, formulas.CumulativeReturn(returns), report.CumulativeReturn, 1e-12)
	assert.InDelta(t, 6.0/252, report.Years, 1e-12)
	assert.Nil(t, report.TradeStats)
}

func TestBuildPerformance_FromValues(t *testing.T) {
	svc := newTestService(Caches{})
	values := []float64{100, 110, 105, 95, 100, 90, 95}

	report, err := svc.BuildPerformance(PerformanceInput{Values: values, Years: 1})
	require.NoError(t, err)

	assert.Equal(t, 6, report.Periods)
	assert.Equal(t, 100.0, report.StartValue)
	assert.Equal(t, 95.0, report.EndValue)
	assert.InDelta(t, -0.05, report.CAGR, 1e-9)
	assert.Equal(t, formulas.CalculateMaxDrawdown(values), report.MaxDrawdown)
}

func TestBuildPerformance_InfiniteSharpe(t *testing.T) {
	svc := newTestService(Caches{})
	rf := 0.0

	report, err := svc.BuildPerformance(PerformanceInput{Returns: []float64{0.01, 0.01}, RiskFreeRate: &rf})
	require.NoError(t, err)

	assert.Nil(t, report.SharpeRatio)
	assert.True(t, report.SharpeInfinite)
	assert.Nil(t, report.SortinoRatio)
	assert.True(t, report.SortinoInfinite)
}

func TestBuildPerformance_WithTrades(t *testing.T) {
	svc := newTestService(Caches{})
	trades := []journal.Trade{
		{Ticker: "A", Action: journal.ActionBuy, Quantity: 1, Price: 100},
		{Ticker: "A", Action: journal.ActionSell, Quantity: 1, Price: 120},
	}

	report, err := svc.BuildPerformance(PerformanceInput{Returns: []float64{0.01, 0.02}, Trades: trades})
	require.NoError(t, err)
	require.NotNil(t, report.TradeStats)
	assert.Equal(t, 2, report.TradeStats.TotalTrades)
	assert.Equal(t, 20.0, report.TradeStats.NetFlow)
}

func TestBuildPerformance_RequiresData(t *testing.T) {
	svc := newTestService(Caches{})

	_, err := svc.BuildPerformance(PerformanceInput{})
	assert.ErrorIs(t, err, formulas.ErrInvalidArgument)
}

func TestBuildPerformance_Cached(t *testing.T) {
	cache := &countingCache{inner: clientdata.NewMemoryCache()}
	svc := newTestService(Caches{Performance: cache})
	in := PerformanceInput{Returns: []float64{0.01, -0.005, 0.02}}

	first, err := svc.BuildPerformance(in)
	require.NoError(t, err)
	second, err := svc.BuildPerformance(in)
	require.NoError(t, err)

	assert.Equal(t, 1, cache.hits)
	assert.Equal(t, *first.SharpeRatio, *second.SharpeRatio)
	assert.Equal(t, first.Volatility, second.Volatility)
}

func TestBuildPerformance_NonFiniteInputSkipsCache(t *testing.T) {
	cache := &countingCache{inner: clientdata.NewMemoryCache()}
	svc := newTestService(Caches{Performance: cache})

	_, err := svc.BuildPerformance(PerformanceInput{Returns: []float64{0.01, math.NaN()}})
	require.NoError(t, err)
	assert.Equal(t, 0, cache.gets)
	assert.Equal(t, 0, cache.sets)
}

func TestCacheKey(t *testing.T) {
	in := PerformanceInput{Returns: []float64{0.1}}
	settings := resolvedSettings{RiskFreeRate: 0.05}

	a, ok := cacheKey("performance", in, settings)
	require.True(t, ok)
	b, _ := cacheKey("performance", in, settings)
	c, _ := cacheKey("allocation", in, settings)
	d, _ := cacheKey("performance", in, resolvedSettings{RiskFreeRate: 0.03})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, a, d)
	assert.Contains(t, a, "performance:")
}

func TestSharedCache_DefaultsChangeMisses(t *testing.T) {
	shared := clientdata.NewMemoryCache()
	log := zerolog.New(nil).Level(zerolog.Disabled)
	before := NewService(Caches{Allocation: shared, Performance: shared}, Defaults{RiskFreeRate: 0, DriftThreshold: 0.05}, log)
	after := NewService(Caches{Allocation: shared, Performance: shared}, Defaults{RiskFreeRate: 0.5, DriftThreshold: 0.5}, log)

	perf := PerformanceInput{Returns: []float64{0.01, -0.005, 0.02, 0.003}}
	_, err := before.BuildPerformance(perf)
	require.NoError(t, err)

	got, err := after.BuildPerformance(perf)
	require.NoError(t, err)
	assert.Equal(t, 0.5, got.RiskFreeRate)
	require.NotNil(t, got.SharpeRatio)
	assert.InDelta(t, formulas.CalculateSharpeRatio(perf.Returns, 0.5), *got.SharpeRatio, 1e-12)

	alloc := AllocationInput{Positions: phaseOnePositions()}
	_, err = before.BuildAllocation(alloc)
	require.NoError(t, err)

	report, err := after.BuildAllocation(alloc)
	require.NoError(t, err)
	assert.Equal(t, 0.5, report.DriftThreshold)
	assert.Empty(t, report.Drift)

	// An explicit value equal to the default shares the entry
	rf := 0.5
	again, err := after.BuildPerformance(PerformanceInput{Returns: perf.Returns, RiskFreeRate: &rf})
	require.NoError(t, err)
	assert.Equal(t, *got.SharpeRatio, *again.SharpeRatio)
}

func TestBuildPerformance_NormalizesTrades(t *testing.T) {
	svc := newTestService(Caches{})
	trades := []journal.Trade{
		{Ticker: "a", Action: "buy", Quantity: 10, Price: 100},
		{Ticker: "a", Action: "sell", Quantity: 5, Price: 120},
	}

	report, err := svc.BuildPerformance(PerformanceInput{Returns: []float64{0.01, 0.02}, Trades: trades})
	require.NoError(t, err)
	require.NotNil(t, report.TradeStats)
	assert.Equal(t, 1, report.TradeStats.Buys)
	assert.Equal(t, 1, report.TradeStats.Sells)
	assert.Equal(t, 1000.0, report.TradeStats.TotalBought)
	assert.Equal(t, 600.0, report.TradeStats.TotalSold)
}

func TestBuildPerformance_RejectsInvalidTrades(t *testing.T) {
	svc := newTestService(Caches{})

	tests := []struct {
		name  string
		trade journal.Trade
	}{
		{name: "unknown action", trade: journal.Trade{Ticker: "A", Action: "hold", Quantity: 5, Price: 100}},
		{name: "negative quantity", trade: journal.Trade{Ticker: "A", Action: "buy", Quantity: -5, Price: 100}},
		{name: "negative price", trade: journal.Trade{Ticker: "A", Action: "sell", Quantity: 5, Price: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trades := []journal.Trade{{Ticker: "A", Action: "buy", Quantity: 10, Price: 100}, tt.trade}
			_, err := svc.BuildPerformance(PerformanceInput{Returns: []float64{0.01, 0.02}, Trades: trades})
			assert.ErrorIs(t, err, formulas.ErrInvalidArgument)
		})
	}
}
