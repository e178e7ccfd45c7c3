package formulas

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// TradingDaysPerYear is the annualization constant for daily series.
const TradingDaysPerYear = 252

// DefaultRiskFreeRate is the annual effective risk-free rate used when the
// caller does not supply one.
const DefaultRiskFreeRate = 0.05

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// StdDev calculates the sample standard deviation (N-1 denominator)
func StdDev(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	return stat.StdDev(data, nil)
}

// CalculateVolatility calculates annualized volatility from daily returns
//
// Formula:
//
//	Volatility = StdDev(returns, N-1) × sqrt(252)
//
// Returns 0 for fewer than 2 returns or a non-finite standard deviation.
func CalculateVolatility(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}

	std := StdDev(returns)
	if !isFinite(std) {
		return 0
	}

	return std * math.Sqrt(TradingDaysPerYear)
}

// annualToPeriodicRate converts an annual effective rate into a per-period
// effective rate by compounding: (1 + annual)^(1/periods) - 1.
// Rates at or below -100% and invalid period counts map to 0.
func annualToPeriodicRate(annualRate float64, periodsPerYear int) float64 {
	if !isFinite(annualRate) || periodsPerYear <= 0 {
		return 0
	}
	if annualRate <= -1 {
		return 0
	}
	return math.Pow(1+annualRate, 1/float64(periodsPerYear)) - 1
}

// excessReturns subtracts a constant periodic rate from every return
func excessReturns(returns []float64, periodicRate float64) []float64 {
	excess := make([]float64, len(returns))
	for i, r := range returns {
		excess[i] = r - periodicRate
	}
	return excess
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func clip(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
