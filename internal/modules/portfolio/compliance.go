package portfolio

import (
	"fmt"
	"sort"
)

// Limits are the investment policy thresholds checked by CheckCompliance
type Limits struct {
	MaxSinglePosition float64 `json:"max_single_position"` // fraction of total value
	MaxCrypto         float64 `json:"max_crypto"`          // fraction of total value
}

// DefaultLimits returns the standard policy limits: 25% per position, 20% crypto
func DefaultLimits() Limits {
	return Limits{
		MaxSinglePosition: 0.25,
		MaxCrypto:         0.20,
	}
}

// CheckStatus is the outcome of one compliance rule
type CheckStatus string

const (
	StatusPass    CheckStatus = "pass"
	StatusWarning CheckStatus = "warning"
	StatusFail    CheckStatus = "fail"
)

// ComplianceCheck is one evaluated rule
type ComplianceCheck struct {
	Rule    string      `json:"rule"`
	Status  CheckStatus `json:"status"`
	Value   float64     `json:"value"`
	Limit   float64     `json:"limit"`
	Message string      `json:"message"`
}

// ComplianceReport collects all evaluated rules
type ComplianceReport struct {
	Checks     []ComplianceCheck `json:"checks"`
	Violations int               `json:"violations"`
	Warnings   int               `json:"warnings"`
	Compliant  bool              `json:"compliant"`
}

// CheckCompliance evaluates positions against the policy limits.
//
// Rules:
//   - single position: each non emergency-fund position must stay at or below
//     MaxSinglePosition of total value
//   - crypto: the crypto category must stay at or below MaxCrypto
//   - emergency fund: at least one emergency fund position must exist,
//     a missing fund is a warning
//
// Non-positive limits fall back to DefaultLimits.
func CheckCompliance(positions []Position, limits Limits) ComplianceReport {
	defaults := DefaultLimits()
	if limits.MaxSinglePosition <= 0 {
		limits.MaxSinglePosition = defaults.MaxSinglePosition
	}
	if limits.MaxCrypto <= 0 {
		limits.MaxCrypto = defaults.MaxCrypto
	}

	report := ComplianceReport{Checks: []ComplianceCheck{}}
	total := TotalValue(positions)

	if total > 0 {
		sorted := make([]Position, len(positions))
		copy(sorted, positions)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].MarketValue() > sorted[j].MarketValue()
		})

		for _, p := range sorted {
			if p.IsEmergencyFund {
				continue
			}
			weight := p.MarketValue() / total
			if weight > limits.MaxSinglePosition {
				report.add(ComplianceCheck{
					Rule:    "single_position",
					Status:  StatusFail,
					Value:   weight,
					Limit:   limits.MaxSinglePosition,
					Message: fmt.Sprintf("%s is %.1f%% of portfolio (limit %.1f%%)", p.Ticker, weight*100, limits.MaxSinglePosition*100),
				})
			}
		}

		crypto := AllocationWeights(positions)["crypto"]
		status := StatusPass
		if crypto > limits.MaxCrypto {
			status = StatusFail
		}
		report.add(ComplianceCheck{
			Rule:    "crypto_limit",
			Status:  status,
			Value:   crypto,
			Limit:   limits.MaxCrypto,
			Message: fmt.Sprintf("crypto allocation %.1f%% (limit %.1f%%)", crypto*100, limits.MaxCrypto*100),
		})
	}

	hasFund := false
	for _, p := range positions {
		if p.IsEmergencyFund {
			hasFund = true
			break
		}
	}
	if hasFund {
		report.add(ComplianceCheck{Rule: "emergency_fund", Status: StatusPass, Value: 1, Limit: 1, Message: "emergency fund established"})
	} else {
		report.add(ComplianceCheck{Rule: "emergency_fund", Status: StatusWarning, Value: 0, Limit: 1, Message: "no emergency fund position"})
	}

	report.Compliant = report.Violations == 0
	return report
}

func (r *ComplianceReport) add(c ComplianceCheck) {
	switch c.Status {
	case StatusFail:
		r.Violations++
	case StatusWarning:
		r.Warnings++
	}
	r.Checks = append(r.Checks, c)
}
