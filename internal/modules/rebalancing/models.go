// Package rebalancing detects allocation drift and computes the trades that
// bring a portfolio back to its target weights.
package rebalancing

import "math"

// Action is the direction of a rebalancing move
type Action string

const (
	ActionBuy  Action = "buy"
	ActionSell Action = "sell"
)

// DefaultDriftThreshold is the absolute weight deviation that triggers a drift record
const DefaultDriftThreshold = 0.05

// epsilon absorbs floating-point noise in weight and value comparisons
const epsilon = 1e-12

// DriftEntry describes one category whose weight deviates from target
type DriftEntry struct {
	Asset         string  `json:"asset"`
	Action        Action  `json:"action"`
	Amount        float64 `json:"amount"`
	CurrentWeight float64 `json:"current_weight"`
	TargetWeight  float64 `json:"target_weight"`
	Drift         float64 `json:"drift"` // current - target
}

// Trade is a monetary move toward the target allocation
type Trade struct {
	Asset        string  `json:"asset"`
	Action       Action  `json:"action"`
	Amount       float64 `json:"amount"`
	CurrentValue float64 `json:"current_value"`
	TargetValue  float64 `json:"target_value"`
	TradeValue   float64 `json:"trade_value"` // target - current, positive means buy
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
