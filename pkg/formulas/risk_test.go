package formulas

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateSharpeRatio(t *testing.T) {
	tests := []struct {
		name         string
		returns      []float64
		riskFreeRate float64
		want         float64
		tolerance    float64
	}{
		{
			name:         "empty returns",
			returns:      []float64{},
			riskFreeRate: DefaultRiskFreeRate,
			want:         0,
		},
		{
			name:         "single return is insufficient data",
			returns:      []float64{0.01},
			riskFreeRate: DefaultRiskFreeRate,
			want:         0,
		},
		{
			name:         "two returns without risk-free rate",
			returns:      []float64{0.01, 0.03},
			riskFreeRate: 0,
			want:         math.Sqrt(504), // sqrt(252) * 0.02 / (0.01*sqrt(2))
			tolerance:    1e-9,
		},
		{
			name:         "rate at or below -100% is treated as zero",
			returns:      []float64{0.01, 0.03},
			riskFreeRate: -1,
			want:         math.Sqrt(504),
			tolerance:    1e-9,
		},
		{
			name:         "non-finite risk-free rate is treated as zero",
			returns:      []float64{0.01, 0.03},
			riskFreeRate: math.NaN(),
			want:         math.Sqrt(504),
			tolerance:    1e-9,
		},
		{
			name:         "constant negative returns are neutral",
			returns:      []float64{-0.01, -0.01},
			riskFreeRate: DefaultRiskFreeRate,
			want:         0,
		},
		{
			name:         "NaN element yields zero",
			returns:      []float64{0.01, math.NaN(), 0.02},
			riskFreeRate: DefaultRiskFreeRate,
			want:         0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateSharpeRatio(tt.returns, tt.riskFreeRate)
			assert.InDelta(t, tt.want, result, tt.tolerance)
		})
	}
}

func TestCalculateSharpeRatio_PositiveReturns(t *testing.T) {
	returns := []float64{0.01, 0.02, 0.015, 0.01, 0.005}
	assert.Greater(t, CalculateSharpeRatio(returns, 0.05), 0.0)
}

func TestCalculateSharpeRatio_ZeroVolatilityPositiveEdge(t *testing.T) {
	result := CalculateSharpeRatio([]float64{0.01, 0.01}, DefaultRiskFreeRate)
	assert.True(t, math.IsInf(result, 1), "expected +Inf, got %v", result)
}

func TestCalculateSharpeRatio_RiskFreeRateLowersRatio(t *testing.T) {
	returns := []float64{0.01, 0.02, -0.005, 0.015, 0.0}
	withoutRate := CalculateSharpeRatio(returns, 0)
	withRate := CalculateSharpeRatio(returns, 0.05)
	assert.Less(t, withRate, withoutRate)
}

func TestCalculateSortinoRatio(t *testing.T) {
	tests := []struct {
		name         string
		returns      []float64
		riskFreeRate float64
		want         float64
		tolerance    float64
	}{
		{
			name:    "single return is insufficient data",
			returns: []float64{-0.02},
			want:    0,
		},
		{
			name:         "population downside deviation",
			returns:      []float64{0.02, -0.01},
			riskFreeRate: 0,
			// mean 0.005, downside sqrt(0.0001/2)
			want:      math.Sqrt(TradingDaysPerYear) * 0.005 / math.Sqrt(0.0001/2),
			tolerance: 1e-9,
		},
		{
			name:         "all losses",
			returns:      []float64{-0.01, -0.03},
			riskFreeRate: 0,
			// mean -0.02, downside sqrt((0.0001+0.0009)/2)
			want:      math.Sqrt(TradingDaysPerYear) * -0.02 / math.Sqrt(0.0005),
			tolerance: 1e-9,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateSortinoRatio(tt.returns, tt.riskFreeRate)
			assert.InDelta(t, tt.want, result, tt.tolerance)
		})
	}
}

func TestCalculateSortinoRatio_NoDownside(t *testing.T) {
	result := CalculateSortinoRatio([]float64{0.01, 0.02, 0.03}, DefaultRiskFreeRate)
	assert.True(t, math.IsInf(result, 1), "expected +Inf, got %v", result)

	// No excess at all: zero mean with zero downside is neutral
	assert.Equal(t, 0.0, CalculateSortinoRatio([]float64{0, 0}, 0))
}

func TestCalculateSortinoRatio_DiffersFromSharpeDenominator(t *testing.T) {
	returns := []float64{0.01, 0.02, -0.005, 0.015, 0.01}
	sortino := CalculateSortinoRatio(returns, 0.05)
	sharpe := CalculateSharpeRatio(returns, 0.05)
	assert.False(t, math.IsNaN(sortino))
	assert.NotEqual(t, sharpe, sortino)
}

func TestCalculateMaxDrawdown(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   DrawdownResult
	}{
		{
			name:   "empty series",
			values: []float64{},
			want:   DrawdownResult{MaxDrawdown: 0, PeakIndex: -1, TroughIndex: -1},
		},
		{
			name:   "single value",
			values: []float64{100},
			want:   DrawdownResult{MaxDrawdown: 0, PeakIndex: 0, TroughIndex: 0},
		},
		{
			name:   "only up",
			values: []float64{100, 110, 120, 130},
			want:   DrawdownResult{MaxDrawdown: 0, PeakIndex: 0, TroughIndex: 0},
		},
		{
			name:   "decline with partial recovery",
			values: []float64{100, 110, 105, 95, 100, 90, 95},
			want:   DrawdownResult{MaxDrawdown: 1 - 90.0/110.0, PeakIndex: 1, TroughIndex: 5},
		},
		{
			name:   "earlier drawdown is deeper than the one after the global peak",
			values: []float64{100, 50, 200, 150},
			want:   DrawdownResult{MaxDrawdown: 0.5, PeakIndex: 0, TroughIndex: 1},
		},
		{
			name:   "non-positive peak contributes no drawdown",
			values: []float64{0, 0, 10, 5},
			want:   DrawdownResult{MaxDrawdown: 0.5, PeakIndex: 2, TroughIndex: 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateMaxDrawdown(tt.values)
			assert.InDelta(t, tt.want.MaxDrawdown, result.MaxDrawdown, 1e-12)
			assert.Equal(t, tt.want.PeakIndex, result.PeakIndex)
			assert.Equal(t, tt.want.TroughIndex, result.TroughIndex)
		})
	}
}

func TestCalculateMaxDrawdown_PeakPrecedesTrough(t *testing.T) {
	result := CalculateMaxDrawdown([]float64{100, 110, 105, 95, 100, 90, 95})
	assert.Greater(t, result.MaxDrawdown, 0.0)
	assert.Less(t, result.PeakIndex, result.TroughIndex)
}

func TestCalculateCAGR(t *testing.T) {
	assert.InDelta(t, 0.2247, CalculateCAGR(100, 150, 2), 0.01)
	assert.InDelta(t, math.Sqrt(1.5)-1, CalculateCAGR(100, 150, 2), 1e-12)
	assert.Less(t, CalculateCAGR(100, 80, 2), 0.0)

	assert.Equal(t, 0.0, CalculateCAGR(0, 100, 1))
	assert.Equal(t, 0.0, CalculateCAGR(100, 0, 1))
	assert.Equal(t, 0.0, CalculateCAGR(100, 150, 0))
	assert.Equal(t, 0.0, CalculateCAGR(-100, 150, 1))
	assert.Equal(t, 0.0, CalculateCAGR(math.Inf(1), 150, 1))
	assert.Equal(t, 0.0, CalculateCAGR(100, 150, math.NaN()))
}

func TestCalculateVolatility(t *testing.T) {
	assert.Equal(t, 0.0, CalculateVolatility(nil))
	assert.Equal(t, 0.0, CalculateVolatility([]float64{0.01}))
	assert.InDelta(t, 0.0, CalculateVolatility([]float64{0.01, 0.01, 0.01, 0.01}), 1e-12)

	// sample std of {0.01, -0.01} is 0.01*sqrt(2)
	assert.InDelta(t, 0.01*math.Sqrt(2)*math.Sqrt(TradingDaysPerYear), CalculateVolatility([]float64{0.01, -0.01}), 1e-12)

	assert.Greater(t, CalculateVolatility([]float64{0.01, -0.01, 0.02, -0.02, 0.01}), 0.0)
	assert.Equal(t, 0.0, CalculateVolatility([]float64{0.01, math.Inf(1)}))
}

func TestCalculateReturns(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   []float64
	}{
		{name: "empty values", values: []float64{}, want: []float64{}},
		{name: "single value", values: []float64{100}, want: []float64{}},
		{name: "up then down", values: []float64{100, 110, 99}, want: []float64{0.10, -0.10}},
		{name: "zero previous value", values: []float64{0, 10, 20}, want: []float64{0, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateReturns(tt.values)
			require.Len(t, result, len(tt.want))
			for i := range tt.want {
				assert.InDelta(t, tt.want[i], result[i], 1e-9)
			}
		})
	}
}

func TestCumulativeReturn(t *testing.T) {
	assert.Equal(t, 0.0, CumulativeReturn(nil))
	assert.InDelta(t, 1.1*0.9-1, CumulativeReturn([]float64{0.1, -0.1}), 1e-12)
}

func TestToSeries(t *testing.T) {
	series, err := ToSeries([]interface{}{1, 2.5, json.Number("3"), int64(-4), float32(0.5)})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2.5, 3, -4, 0.5}, series)

	empty, err := ToSeries([]interface{}{})
	require.NoError(t, err)
	assert.Empty(t, empty)

	invalid := [][]interface{}{
		{1.0, "abc"},
		{nil},
		{true},
		{[]interface{}{1.0}},
		{json.Number("1e")},
	}
	for _, raw := range invalid {
		_, err := ToSeries(raw)
		assert.ErrorIs(t, err, ErrInvalidInput, "input %v", raw)
	}
}
