package formulas

// DefaultMaxAllocation is the hard cap on a single position as a fraction of
// the portfolio.
const DefaultMaxAllocation = 0.25

// KellyCriterion computes the Half-Kelly position fraction
//
// Kelly Formula (binary bet):
//
//	f* = p - (1 - p) / b
//	f_half = f* / 2
//
// Args:
//
//	winRate: Probability of winning, clipped to [0, 1]
//	winLossRatio: Average win divided by average loss magnitude, must be > 0
//
// Returns:
//
//	Half-Kelly fraction in [0, 1]. 0 for invalid inputs or a non-positive edge.
func KellyCriterion(winRate, winLossRatio float64) float64 {
	if !isFinite(winRate) || !isFinite(winLossRatio) {
		return 0
	}
	if winLossRatio <= 0 {
		return 0
	}

	p := clip(winRate, 0, 1)
	fullKelly := p - (1-p)/winLossRatio
	halfKelly := 0.5 * fullKelly

	if !isFinite(halfKelly) {
		return 0
	}
	return clip(halfKelly, 0, 1)
}

// CalculatePositionSize converts a Kelly fraction into a currency amount
//
// Formula: size = portfolioValue × clip(kellyFraction, 0, maxAllocation)
//
// Returns 0 for non-finite inputs, a non-positive portfolio value or a
// non-positive cap.
func CalculatePositionSize(portfolioValue, kellyFraction, maxAllocation float64) float64 {
	if !isFinite(portfolioValue) || !isFinite(kellyFraction) || !isFinite(maxAllocation) {
		return 0
	}
	if portfolioValue <= 0 || maxAllocation <= 0 {
		return 0
	}

	fraction := clip(kellyFraction, 0, maxAllocation)
	size := portfolioValue * fraction
	if size < 0 {
		return 0
	}
	return size
}
