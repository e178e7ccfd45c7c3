package formulas

import "math"

// CalculateCAGR calculates Compound Annual Growth Rate between two point values
//
// Formula: CAGR = (Ending Value / Beginning Value)^(1/years) - 1
//
// Returns 0 when either value or the duration is non-positive or non-finite.
func CalculateCAGR(startValue, endValue, years float64) float64 {
	if !isFinite(startValue) || !isFinite(endValue) || !isFinite(years) {
		return 0
	}
	if startValue <= 0 || endValue <= 0 || years <= 0 {
		return 0
	}

	cagr := math.Pow(endValue/startValue, 1/years) - 1
	if !isFinite(cagr) {
		return 0
	}
	return cagr
}
