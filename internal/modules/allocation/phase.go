// Package allocation provides investment phase detection and the target
// allocation weights associated with each phase.
package allocation

import (
	"fmt"
	"math"

	"github.com/aristath/fintrack/pkg/formulas"
)

// Phase is the coarse investment-policy stage
type Phase int

const (
	// PhaseFoundation: emergency fund below target, build the reserve first
	PhaseFoundation Phase = 1
	// PhaseAccumulation: emergency fund at or above target, invest for growth
	PhaseAccumulation Phase = 2
)

// Asset category labels used by the phase targets
const (
	CategoryEmergencyFund = "ef"
	CategoryStocks        = "stocks"
	CategoryCrypto        = "crypto"
	CategoryBonds         = "bonds"
)

// Label returns the human-readable phase name
func (p Phase) Label() string {
	switch p {
	case PhaseFoundation:
		return "Foundation Building"
	case PhaseAccumulation:
		return "Wealth Accumulation"
	default:
		return fmt.Sprintf("Unknown Phase %d", int(p))
	}
}

// Valid reports whether p is a known phase
func (p Phase) Valid() bool {
	return p == PhaseFoundation || p == PhaseAccumulation
}

// DetectPhase classifies the investment phase from emergency fund progress.
//
// Phase 1 while balance < target, Phase 2 otherwise. A non-positive or
// non-finite target, or a non-finite balance, is treated as already satisfied
// and yields Phase 2. The result depends only on the current inputs.
func DetectPhase(balance, target float64) Phase {
	if math.IsNaN(balance) || math.IsInf(balance, 0) || math.IsNaN(target) || math.IsInf(target, 0) {
		return PhaseAccumulation
	}
	if target <= 0 {
		return PhaseAccumulation
	}
	if balance < target {
		return PhaseFoundation
	}
	return PhaseAccumulation
}

// TargetForPhase returns the recommended allocation weights for a phase.
//
// Phase 1: 80% emergency fund, 10% stocks, 10% crypto.
// Phase 2: 20% emergency fund, 50% stocks, 20% crypto, 10% bonds.
//
// A fresh map is returned on every call, so callers may modify it.
func TargetForPhase(phase Phase) (map[string]float64, error) {
	switch phase {
	case PhaseFoundation:
		return map[string]float64{
			CategoryEmergencyFund: 0.80,
			CategoryStocks:        0.10,
			CategoryCrypto:        0.10,
		}, nil
	case PhaseAccumulation:
		return map[string]float64{
			CategoryEmergencyFund: 0.20,
			CategoryStocks:        0.50,
			CategoryCrypto:        0.20,
			CategoryBonds:         0.10,
		}, nil
	default:
		return nil, fmt.Errorf("%w: phase must be 1 or 2, got %d", formulas.ErrInvalidArgument, int(phase))
	}
}
