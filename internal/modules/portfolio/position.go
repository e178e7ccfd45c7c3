// Package portfolio holds position records and the portfolio-level totals,
// weight mappings and policy checks computed from them.
package portfolio

import (
	"strings"

	"github.com/google/uuid"
)

// Position is a holding of one ticker on one platform
type Position struct {
	ID              string   `json:"id"`
	Ticker          string   `json:"ticker"`
	Platform        string   `json:"platform"`
	Category        string   `json:"category"`
	Quantity        float64  `json:"quantity"`
	AvgPrice        float64  `json:"avg_price"`
	Currency        string   `json:"currency"`
	LastPrice       *float64 `json:"last_price,omitempty"`
	IsEmergencyFund bool     `json:"is_emergency_fund"`
}

// NewPosition creates a position with normalised identifiers and a fresh ID
func NewPosition(ticker, platform, category string, quantity, avgPrice float64, currency string, isEmergencyFund bool) Position {
	p := Position{
		ID:              NewPositionID(),
		Ticker:          ticker,
		Platform:        platform,
		Category:        category,
		Quantity:        quantity,
		AvgPrice:        avgPrice,
		Currency:        currency,
		IsEmergencyFund: isEmergencyFund,
	}
	p.Normalize()
	return p
}

// NewPositionID returns an identifier of the form POS-XXXXXXXX
func NewPositionID() string {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	return "POS-" + strings.ToUpper(hex[:8])
}

// Normalize upper-cases ticker and currency, lower-cases platform and category.
// Positions decoded from JSON go through this before any calculation.
func (p *Position) Normalize() {
	p.Ticker = strings.ToUpper(strings.TrimSpace(p.Ticker))
	p.Currency = strings.ToUpper(strings.TrimSpace(p.Currency))
	p.Platform = strings.ToLower(strings.TrimSpace(p.Platform))
	p.Category = strings.ToLower(strings.TrimSpace(p.Category))
	if p.ID == "" {
		p.ID = NewPositionID()
	}
}

// UpdatePrice records the latest market price
func (p *Position) UpdatePrice(price float64) {
	p.LastPrice = &price
}

// CostBasis is quantity * average price
func (p Position) CostBasis() float64 {
	return p.Quantity * p.AvgPrice
}

// CurrentValue is quantity * last price, nil when no price is known
func (p Position) CurrentValue() *float64 {
	if p.LastPrice == nil {
		return nil
	}
	v := p.Quantity * *p.LastPrice
	return &v
}

// MarketValue is the current value, falling back to cost basis when unpriced
func (p Position) MarketValue() float64 {
	if v := p.CurrentValue(); v != nil {
		return *v
	}
	return p.CostBasis()
}

// UnrealizedPnL is current value minus cost basis, nil when unpriced
func (p Position) UnrealizedPnL() *float64 {
	v := p.CurrentValue()
	if v == nil {
		return nil
	}
	pnl := *v - p.CostBasis()
	return &pnl
}

// UnrealizedPnLPercent is the unrealized P&L as a percentage of cost basis.
// Nil when unpriced or when the cost basis is zero.
func (p Position) UnrealizedPnLPercent() *float64 {
	pnl := p.UnrealizedPnL()
	cost := p.CostBasis()
	if pnl == nil || cost == 0 {
		return nil
	}
	pct := *pnl / cost * 100
	return &pct
}
