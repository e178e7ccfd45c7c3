package allocation

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// maxListedHoldings caps how many tickers a payday action names
const maxListedHoldings = 3

// defaultPaydayActions suggest what to buy in a category with no holdings
var defaultPaydayActions = map[string]string{
	CategoryEmergencyFund: "Add money market fund",
	CategoryStocks:        "Add stocks to portfolio first",
	CategoryCrypto:        "Add crypto to portfolio first",
	CategoryBonds:         "Add bonds to portfolio first",
}

// PaydayAllocation is one category's share of a monthly savings amount
type PaydayAllocation struct {
	Category string   `json:"category"`
	Weight   float64  `json:"weight"`
	Amount   float64  `json:"amount"`
	Holdings []string `json:"holdings"`
	Action   string   `json:"action"`
}

// PaydayPlan splits a monthly savings amount across the phase targets
type PaydayPlan struct {
	MonthlySavings float64            `json:"monthly_savings"`
	Phase          Phase              `json:"phase"`
	PhaseLabel     string             `json:"phase_label"`
	Allocations    []PaydayAllocation `json:"allocations"`
	TotalAllocated float64            `json:"total_allocated"`
}

// PlanPayday distributes savings according to the target weights of phase.
// holdings maps a category to the tickers already held in it and may be nil.
// Rows are ordered by descending amount, then by category name.
// Non-positive or non-finite savings produce a plan with no rows.
func PlanPayday(savings float64, phase Phase, holdings map[string][]string) (*PaydayPlan, error) {
	target, err := TargetForPhase(phase)
	if err != nil {
		return nil, err
	}

	plan := &PaydayPlan{
		MonthlySavings: savings,
		Phase:          phase,
		PhaseLabel:     phase.Label(),
		Allocations:    []PaydayAllocation{},
	}

	if math.IsNaN(savings) || math.IsInf(savings, 0) || savings <= 0 {
		plan.MonthlySavings = 0
		return plan, nil
	}

	for category, weight := range target {
		held := append([]string{}, holdings[category]...)
		plan.Allocations = append(plan.Allocations, PaydayAllocation{
			Category: category,
			Weight:   weight,
			Amount:   savings * weight,
			Holdings: held,
			Action:   paydayAction(category, held),
		})
	}

	sort.Slice(plan.Allocations, func(i, j int) bool {
		a, b := plan.Allocations[i], plan.Allocations[j]
		if a.Amount != b.Amount {
			return a.Amount > b.Amount
		}
		return a.Category < b.Category
	})

	amounts := make([]float64, len(plan.Allocations))
	for i, a := range plan.Allocations {
		amounts[i] = a.Amount
	}
	plan.TotalAllocated = floats.Sum(amounts)

	return plan, nil
}

// paydayAction names up to three held tickers to top up, or suggests a
// starting point for an empty category
func paydayAction(category string, held []string) string {
	if len(held) == 0 {
		if action, ok := defaultPaydayActions[category]; ok {
			return action
		}
		return "Define holdings first"
	}

	if len(held) <= maxListedHoldings {
		return "Buy: " + strings.Join(held, ", ")
	}
	return fmt.Sprintf("Buy: %s (+%d more)", strings.Join(held[:maxListedHoldings], ", "), len(held)-maxListedHoldings)
}
