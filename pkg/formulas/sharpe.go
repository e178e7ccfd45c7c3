package formulas

import (
	"math"
)

// CalculateSharpeRatio calculates the annualized Sharpe Ratio
//
// Sharpe Ratio Formula:
//
//	Sharpe = sqrt(252) × mean(excess) / std(excess)
//	excess = return - periodic risk-free rate
//	periodic risk-free rate = (1 + annual)^(1/252) - 1
//
// The standard deviation uses the sample (N-1) denominator.
//
// Args:
//
//	returns: Daily simple returns
//	riskFreeRate: Annual effective risk-free rate (e.g., 0.05 for 5%)
//
// Returns:
//
//	Annualized Sharpe ratio. 0 for fewer than 2 returns or non-finite moments.
//	+Inf when volatility is zero and the mean excess return is positive,
//	0 when volatility is zero otherwise.
func CalculateSharpeRatio(returns []float64, riskFreeRate float64) float64 {
	if len(returns) < 2 {
		return 0
	}

	rf := annualToPeriodicRate(riskFreeRate, TradingDaysPerYear)
	excess := excessReturns(returns, rf)

	meanExcess := Mean(excess)
	stdExcess := StdDev(excess)

	if !isFinite(meanExcess) || !isFinite(stdExcess) {
		return 0
	}

	if stdExcess == 0 {
		return zeroRiskRatio(meanExcess)
	}

	return math.Sqrt(TradingDaysPerYear) * meanExcess / stdExcess
}

// CalculateSortinoRatio calculates the annualized Sortino Ratio
// Only considers downside volatility (excess returns below zero)
//
// Sortino Formula:
//
//	Sortino = sqrt(252) × mean(excess) / downside deviation
//	Downside Deviation = sqrt(mean(min(0, excess)^2))
//
// The downside deviation is a root-mean-square over all N observations, not a
// corrected sample statistic, so it does not share Sharpe's N-1 denominator.
//
// Args:
//
//	returns: Daily simple returns
//	riskFreeRate: Annual effective risk-free rate
//
// Returns:
//
//	Annualized Sortino ratio with the same insufficient-data and zero-risk
//	policy as CalculateSharpeRatio.
func CalculateSortinoRatio(returns []float64, riskFreeRate float64) float64 {
	if len(returns) < 2 {
		return 0
	}

	rf := annualToPeriodicRate(riskFreeRate, TradingDaysPerYear)
	excess := excessReturns(returns, rf)

	meanExcess := Mean(excess)

	var downsideSquaredSum float64
	for _, e := range excess {
		if e < 0 {
			downsideSquaredSum += e * e
		}
	}
	downsideDeviation := math.Sqrt(downsideSquaredSum / float64(len(excess)))

	if !isFinite(meanExcess) || !isFinite(downsideDeviation) {
		return 0
	}

	if downsideDeviation == 0 {
		return zeroRiskRatio(meanExcess)
	}

	return math.Sqrt(TradingDaysPerYear) * meanExcess / downsideDeviation
}

// zeroRiskRatio is the ratio reported when the risk denominator is zero:
// unbounded for a positive edge, neutral otherwise.
func zeroRiskRatio(meanExcess float64) float64 {
	if meanExcess > 0 {
		return math.Inf(1)
	}
	return 0
}
