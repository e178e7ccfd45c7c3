package allocation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/fintrack/pkg/formulas"
)

func TestDetectPhase(t *testing.T) {
	tests := []struct {
		name    string
		balance float64
		target  float64
		want    Phase
	}{
		{name: "under target", balance: 10_000, target: 36_000, want: PhaseFoundation},
		{name: "at target", balance: 36_000, target: 36_000, want: PhaseAccumulation},
		{name: "over target", balance: 50_000, target: 36_000, want: PhaseAccumulation},
		{name: "zero target", balance: 10_000, target: 0, want: PhaseAccumulation},
		{name: "negative target", balance: 10_000, target: -5, want: PhaseAccumulation},
		{name: "negative balance", balance: -1, target: 100, want: PhaseFoundation},
		{name: "NaN balance", balance: math.NaN(), target: 100, want: PhaseAccumulation},
		{name: "infinite target", balance: 10, target: math.Inf(1), want: PhaseAccumulation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectPhase(tt.balance, tt.target))
		})
	}
}

func TestDetectPhase_NonPositiveTargetAlwaysPhaseTwo(t *testing.T) {
	for _, target := range []float64{0, -1, -1000, math.Inf(-1)} {
		for _, balance := range []float64{-10, 0, 10, 1e9} {
			assert.Equal(t, PhaseAccumulation, DetectPhase(balance, target), "balance=%v target=%v", balance, target)
		}
	}
}

func TestTargetForPhase(t *testing.T) {
	phase1, err := TargetForPhase(PhaseFoundation)
	require.NoError(t, err)
	assert.Equal(t, 0.80, phase1["ef"])
	assert.Equal(t, 0.10, phase1["stocks"])
	assert.Equal(t, 0.10, phase1["crypto"])
	assert.Len(t, phase1, 3)

	phase2, err := TargetForPhase(PhaseAccumulation)
	require.NoError(t, err)
	assert.Equal(t, 0.50, phase2["stocks"])
	assert.Equal(t, 0.20, phase2["ef"])
	assert.Equal(t, 0.20, phase2["crypto"])
	assert.Equal(t, 0.10, phase2["bonds"])

	for _, target := range []map[string]float64{phase1, phase2} {
		total := 0.0
		for _, w := range target {
			total += w
		}
		assert.InDelta(t, 1.0, total, 1e-9)
	}
}

func TestTargetForPhase_ReturnsFreshMap(t *testing.T) {
	first, err := TargetForPhase(PhaseFoundation)
	require.NoError(t, err)
	first["ef"] = 0

	second, err := TargetForPhase(PhaseFoundation)
	require.NoError(t, err)
	assert.Equal(t, 0.80, second["ef"])
}

func TestTargetForPhase_InvalidPhase(t *testing.T) {
	for _, phase := range []Phase{0, 3, -1} {
		target, err := TargetForPhase(phase)
		assert.ErrorIs(t, err, formulas.ErrInvalidArgument)
		assert.Nil(t, target)
	}
}

func TestPhaseLabel(t *testing.T) {
	assert.Equal(t, "Foundation Building", PhaseFoundation.Label())
	assert.Equal(t, "Wealth Accumulation", PhaseAccumulation.Label())
	assert.False(t, Phase(7).Valid())
	assert.True(t, PhaseFoundation.Valid())
}

func TestPlanPayday(t *testing.T) {
	plan, err := PlanPayday(5_000_000, PhaseFoundation, nil)
	require.NoError(t, err)

	require.Len(t, plan.Allocations, 3)
	assert.Equal(t, "ef", plan.Allocations[0].Category)
	assert.InDelta(t, 4_000_000, plan.Allocations[0].Amount, 1e-6)
	// Equal amounts are ordered by name
	assert.Equal(t, "crypto", plan.Allocations[1].Category)
	assert.Equal(t, "stocks", plan.Allocations[2].Category)
	assert.InDelta(t, 5_000_000, plan.TotalAllocated, 1e-6)
	assert.Equal(t, "Foundation Building", plan.PhaseLabel)
	assert.Empty(t, plan.Allocations[0].Holdings)
	assert.Equal(t, "Add money market fund", plan.Allocations[0].Action)
}

func TestPlanPayday_Holdings(t *testing.T) {
	holdings := map[string][]string{
		"stocks": {"BBCA", "BBRI", "TLKM", "ASII", "VOO"},
		"crypto": {"BTC"},
	}

	plan, err := PlanPayday(1_000, PhaseAccumulation, holdings)
	require.NoError(t, err)

	actions := map[string]string{}
	for _, a := range plan.Allocations {
		actions[a.Category] = a.Action
	}
	assert.Equal(t, "Buy: BBCA, BBRI, TLKM (+2 more)", actions["stocks"])
	assert.Equal(t, "Buy: BTC", actions["crypto"])
	assert.Equal(t, "Add money market fund", actions["ef"])
	assert.Equal(t, "Add bonds to portfolio first", actions["bonds"])

	// The plan holds its own copy of the tickers
	holdings["crypto"][0] = "ETH"
	for _, a := range plan.Allocations {
		if a.Category == "crypto" {
			assert.Equal(t, []string{"BTC"}, a.Holdings)
		}
	}
}

func TestPlanPayday_TotalIsSumOfSortedRows(t *testing.T) {
	plan, err := PlanPayday(1_234_567.89, PhaseAccumulation, nil)
	require.NoError(t, err)

	sum := 0.0
	for _, a := range plan.Allocations {
		sum += a.Amount
	}
	assert.InDelta(t, sum, plan.TotalAllocated, 1e-6)

	for i := 0; i < 20; i++ {
		again, err := PlanPayday(1_234_567.89, PhaseAccumulation, nil)
		require.NoError(t, err)
		assert.Equal(t, plan.TotalAllocated, again.TotalAllocated)
	}
}

func TestPlanPayday_DegenerateSavings(t *testing.T) {
	for _, savings := range []float64{0, -100, math.NaN()} {
		plan, err := PlanPayday(savings, PhaseAccumulation, nil)
		require.NoError(t, err)
		assert.Empty(t, plan.Allocations)
		assert.Equal(t, 0.0, plan.TotalAllocated)
	}

	_, err := PlanPayday(1000, Phase(9), nil)
	assert.ErrorIs(t, err, formulas.ErrInvalidArgument)
}
