package formulas

// DrawdownResult represents the largest peak-to-trough decline of a series
type DrawdownResult struct {
	MaxDrawdown float64 `json:"max_drawdown"` // Positive fraction (0.25 = 25% below peak)
	PeakIndex   int     `json:"peak_index"`   // Index of the running peak when the maximum was recorded
	TroughIndex int     `json:"trough_index"` // Index of the trough
}

// CalculateMaxDrawdown calculates the maximum drawdown from a value series
//
// Drawdown Formula:
//
//	Drawdown_t = 1 - Value_t / RunningPeak_t
//	Max Drawdown = max over t of Drawdown_t
//
// The series is scanned left to right. PeakIndex is the index of the running
// peak at the moment the maximum was recorded, which is not necessarily the
// index of the global maximum value.
//
// Args:
//
//	values: Portfolio or equity values ordered in time
//
// Returns:
//
//	{0, -1, -1} for an empty series, {0, 0, 0} for a single value.
//	A series that never declines has MaxDrawdown 0.
func CalculateMaxDrawdown(values []float64) DrawdownResult {
	switch len(values) {
	case 0:
		return DrawdownResult{MaxDrawdown: 0, PeakIndex: -1, TroughIndex: -1}
	case 1:
		return DrawdownResult{}
	}

	peak := values[0]
	peakIndex := 0

	var best DrawdownResult

	for i, value := range values {
		if value > peak {
			peak = value
			peakIndex = i
		}

		drawdown := 0.0
		if peak > 0 {
			drawdown = 1 - value/peak
		}

		if isFinite(drawdown) && drawdown > best.MaxDrawdown {
			best = DrawdownResult{
				MaxDrawdown: drawdown,
				PeakIndex:   peakIndex,
				TroughIndex: i,
			}
		}
	}

	return best
}
