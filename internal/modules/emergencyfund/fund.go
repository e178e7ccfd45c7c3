// Package emergencyfund tracks progress of the emergency reserve toward its
// target, expressed in months of living expenses.
package emergencyfund

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/aristath/fintrack/internal/modules/allocation"
)

const (
	DefaultTargetMonths    = 6
	DefaultMonthlyExpenses = 6_000_000
)

// daysPerMonth is the month length used for completion estimates
const daysPerMonth = 30

// ErrInsufficientBalance is returned when a withdrawal exceeds the balance
var ErrInsufficientBalance = errors.New("insufficient emergency fund balance")

// HistoryEntry records the balance after each update
type HistoryEntry struct {
	Date          string  `json:"date"` // YYYY-MM-DD
	Balance       float64 `json:"balance"`
	MonthsCovered float64 `json:"months_covered"`
}

// Fund is the emergency fund state
type Fund struct {
	TargetMonths    int            `json:"target_months"`
	MonthlyExpenses float64        `json:"monthly_expenses"`
	Balance         float64        `json:"current_balance"`
	History         []HistoryEntry `json:"history,omitempty"`
}

// New creates a fund with the default target and an empty balance
func New() *Fund {
	return &Fund{
		TargetMonths:    DefaultTargetMonths,
		MonthlyExpenses: DefaultMonthlyExpenses,
	}
}

// TargetAmount is target months * monthly expenses
func (f *Fund) TargetAmount() float64 {
	return float64(f.TargetMonths) * f.MonthlyExpenses
}

// MonthsCovered is how many months of expenses the balance covers
func (f *Fund) MonthsCovered() float64 {
	if f.MonthlyExpenses <= 0 {
		return 0
	}
	return f.Balance / f.MonthlyExpenses
}

// ProgressPercent is balance / target as a percentage, capped at 100
func (f *Fund) ProgressPercent() float64 {
	target := f.TargetAmount()
	if target <= 0 {
		return 0
	}
	return math.Min(100, f.Balance/target*100)
}

// AmountRemaining is the shortfall against target, never negative
func (f *Fund) AmountRemaining() float64 {
	return math.Max(0, f.TargetAmount()-f.Balance)
}

// IsComplete reports whether the balance has reached target
func (f *Fund) IsComplete() bool {
	return f.Balance >= f.TargetAmount()
}

// Phase is the investment phase implied by the fund's progress
func (f *Fund) Phase() allocation.Phase {
	return allocation.DetectPhase(f.Balance, f.TargetAmount())
}

// Configure updates the target months and monthly expenses.
// Zero values leave the current setting unchanged.
func (f *Fund) Configure(targetMonths int, monthlyExpenses float64) error {
	if targetMonths < 0 {
		return fmt.Errorf("target months must not be negative, got %d", targetMonths)
	}
	if monthlyExpenses < 0 || math.IsNaN(monthlyExpenses) || math.IsInf(monthlyExpenses, 0) {
		return fmt.Errorf("monthly expenses must be a non-negative number, got %v", monthlyExpenses)
	}
	if targetMonths > 0 {
		f.TargetMonths = targetMonths
	}
	if monthlyExpenses > 0 {
		f.MonthlyExpenses = monthlyExpenses
	}
	return nil
}

// UpdateBalance sets the balance and appends a history entry dated at
func (f *Fund) UpdateBalance(balance float64, at time.Time) {
	f.Balance = balance
	f.History = append(f.History, HistoryEntry{
		Date:          at.Format("2006-01-02"),
		Balance:       balance,
		MonthsCovered: round(f.MonthsCovered(), 2),
	})
}

// Contribute adds amount to the balance
func (f *Fund) Contribute(amount float64, at time.Time) {
	f.UpdateBalance(f.Balance+amount, at)
}

// Withdraw removes amount from the balance
func (f *Fund) Withdraw(amount float64, at time.Time) error {
	if amount > f.Balance {
		return fmt.Errorf("%w: requested %.2f, available %.2f", ErrInsufficientBalance, amount, f.Balance)
	}
	f.UpdateBalance(f.Balance-amount, at)
	return nil
}

// MonthlyContributionNeeded is the monthly amount that closes the gap in months
func (f *Fund) MonthlyContributionNeeded(months int) float64 {
	if months <= 0 {
		return 0
	}
	return f.AmountRemaining() / float64(months)
}

// EstimateCompletion projects when the fund completes at a monthly contribution.
// Returns false when the contribution is non-positive or the fund is already complete.
func (f *Fund) EstimateCompletion(contribution float64, now time.Time) (time.Time, bool) {
	if contribution <= 0 || math.IsNaN(contribution) || math.IsInf(contribution, 0) || f.IsComplete() {
		return time.Time{}, false
	}
	months := f.AmountRemaining() / contribution
	days := months * daysPerMonth
	return now.Add(time.Duration(days * float64(24*time.Hour))), true
}

// Status is a rounded snapshot of the fund
type Status struct {
	CurrentBalance  float64          `json:"current_balance"`
	TargetAmount    float64          `json:"target_amount"`
	TargetMonths    int              `json:"target_months"`
	MonthlyExpenses float64          `json:"monthly_expenses"`
	MonthsCovered   float64          `json:"months_covered"`
	ProgressPercent float64          `json:"progress_percent"`
	AmountRemaining float64          `json:"amount_remaining"`
	CurrentPhase    allocation.Phase `json:"current_phase"`
	PhaseLabel      string           `json:"phase_label"`
	IsComplete      bool             `json:"is_complete"`
}

// Status returns the current snapshot, months to 2dp and progress to 1dp
func (f *Fund) Status() Status {
	phase := f.Phase()
	return Status{
		CurrentBalance:  f.Balance,
		TargetAmount:    f.TargetAmount(),
		TargetMonths:    f.TargetMonths,
		MonthlyExpenses: f.MonthlyExpenses,
		MonthsCovered:   round(f.MonthsCovered(), 2),
		ProgressPercent: round(f.ProgressPercent(), 1),
		AmountRemaining: f.AmountRemaining(),
		CurrentPhase:    phase,
		PhaseLabel:      phase.Label(),
		IsComplete:      f.IsComplete(),
	}
}

func round(val float64, decimals int) float64 {
	multiplier := math.Pow(10, float64(decimals))
	return math.Round(val*multiplier) / multiplier
}
