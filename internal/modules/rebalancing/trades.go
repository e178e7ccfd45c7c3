package rebalancing

import (
	"math"
	"sort"
)

// CalculateRebalanceTrades computes the monetary trades that move a portfolio
// of portfolioValue from the current weights to the target weights.
//
// Formula: trade = portfolioValue * (target - current), per category over the
// union of keys. Positive trades are buys.
//
// A non-positive or non-finite portfolio value yields no trades. Categories
// already on target (within epsilon) are omitted. Trades are ordered by
// descending amount; equal amounts keep ascending key order.
func CalculateRebalanceTrades(portfolioValue float64, current, target map[string]float64) []Trade {
	trades := []Trade{}
	if math.IsNaN(portfolioValue) || math.IsInf(portfolioValue, 0) || portfolioValue <= 0 {
		return trades
	}

	for _, asset := range unionKeys(current, target) {
		currentValue := portfolioValue * finiteOrZero(current[asset])
		targetValue := portfolioValue * finiteOrZero(target[asset])
		tradeValue := targetValue - currentValue

		if math.Abs(tradeValue) <= epsilon {
			continue
		}

		action := ActionSell
		if tradeValue > 0 {
			action = ActionBuy
		}

		trades = append(trades, Trade{
			Asset:        asset,
			Action:       action,
			Amount:       math.Abs(tradeValue),
			CurrentValue: currentValue,
			TargetValue:  targetValue,
			TradeValue:   tradeValue,
		})
	}

	sort.SliceStable(trades, func(i, j int) bool {
		return trades[i].Amount > trades[j].Amount
	})

	return trades
}
