package portfolio

import (
	"gonum.org/v1/gonum/floats"

	"github.com/aristath/fintrack/internal/modules/allocation"
)

// CategorySummary aggregates the positions of one category
type CategorySummary struct {
	Value   float64 `json:"value"`
	Cost    float64 `json:"cost"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// Summary is the portfolio-wide totals
type Summary struct {
	TotalValue         float64                    `json:"total_value"`
	TotalCost          float64                    `json:"total_cost"`
	TotalPnL           float64                    `json:"total_pnl"`
	TotalPnLPercent    float64                    `json:"total_pnl_percent"`
	EmergencyFundValue float64                    `json:"emergency_fund_value"`
	PositionCount      int                        `json:"position_count"`
	ByCategory         map[string]CategorySummary `json:"by_category"`
}

// allocationKey is the weight-mapping label a position is reported under.
// Emergency fund positions always land in the "ef" bucket.
func allocationKey(p Position) string {
	if p.IsEmergencyFund {
		return allocation.CategoryEmergencyFund
	}
	return p.Category
}

// Summarize totals market value, cost and P&L across positions.
// Unpriced positions are valued at cost basis.
func Summarize(positions []Position) Summary {
	values := make([]float64, len(positions))
	costs := make([]float64, len(positions))
	summary := Summary{
		PositionCount: len(positions),
		ByCategory:    make(map[string]CategorySummary),
	}

	for i, p := range positions {
		values[i] = p.MarketValue()
		costs[i] = p.CostBasis()

		if p.IsEmergencyFund {
			summary.EmergencyFundValue += values[i]
		}

		key := allocationKey(p)
		cat := summary.ByCategory[key]
		cat.Value += values[i]
		cat.Cost += costs[i]
		cat.Count++
		summary.ByCategory[key] = cat
	}

	summary.TotalValue = floats.Sum(values)
	summary.TotalCost = floats.Sum(costs)
	summary.TotalPnL = summary.TotalValue - summary.TotalCost
	if summary.TotalCost > 0 {
		summary.TotalPnLPercent = summary.TotalPnL / summary.TotalCost * 100
	}

	if summary.TotalValue > 0 {
		for key, cat := range summary.ByCategory {
			cat.Percent = cat.Value / summary.TotalValue * 100
			summary.ByCategory[key] = cat
		}
	}

	return summary
}

// AllocationWeights maps each category to its fractional share of total
// market value. Returns an empty map when the portfolio has no value.
func AllocationWeights(positions []Position) map[string]float64 {
	weights := make(map[string]float64)

	total := 0.0
	for _, p := range positions {
		v := p.MarketValue()
		weights[allocationKey(p)] += v
		total += v
	}

	if total <= 0 {
		return map[string]float64{}
	}

	for key, v := range weights {
		weights[key] = v / total
	}
	return weights
}

// TotalValue is the summed market value of all positions
func TotalValue(positions []Position) float64 {
	total := 0.0
	for _, p := range positions {
		total += p.MarketValue()
	}
	return total
}

// HoldingsByCategory lists the tickers held under each weight-mapping label,
// in position order without duplicates
func HoldingsByCategory(positions []Position) map[string][]string {
	holdings := make(map[string][]string)
	seen := make(map[string]bool)
	for _, p := range positions {
		key := allocationKey(p)
		if seen[key+"/"+p.Ticker] {
			continue
		}
		seen[key+"/"+p.Ticker] = true
		holdings[key] = append(holdings[key], p.Ticker)
	}
	return holdings
}
