package formulas

import (
	"github.com/markcheno/go-talib"
)

// CalculateReturns converts a value series into simple periodic returns
// Returns[i] = (Value[i+1] - Value[i]) / Value[i]
//
// A zero previous value yields a 0 return. Fewer than 2 values yield an empty
// slice.
func CalculateReturns(values []float64) []float64 {
	if len(values) < 2 {
		return []float64{}
	}

	// Rocp leaves the first output slot as warm-up
	rocp := talib.Rocp(values, 1)
	returns := make([]float64, len(values)-1)
	copy(returns, rocp[1:])
	return returns
}

// CumulativeReturn compounds a return series into a single total return
func CumulativeReturn(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}

	growth := 1.0
	for _, r := range returns {
		growth *= 1 + r
	}

	total := growth - 1
	if !isFinite(total) {
		return 0
	}
	return total
}
