// Package journal records trades together with the reasoning behind them and
// summarises trading activity.
package journal

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aristath/fintrack/pkg/formulas"
)

// Action is the trade side
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
)

// ParseAction validates and normalises a trade side
func ParseAction(s string) (Action, error) {
	switch Action(strings.ToUpper(strings.TrimSpace(s))) {
	case ActionBuy:
		return ActionBuy, nil
	case ActionSell:
		return ActionSell, nil
	default:
		return "", fmt.Errorf("%w: action must be BUY or SELL, got %q", formulas.ErrInvalidArgument, s)
	}
}

// Sentiment is the trader's self-reported state of mind
type Sentiment string

const (
	SentimentConfident Sentiment = "confident"
	SentimentNeutral   Sentiment = "neutral"
	SentimentUncertain Sentiment = "uncertain"
	SentimentFearful   Sentiment = "fearful"
	SentimentGreedy    Sentiment = "greedy"
)

// Trade is one journal entry
type Trade struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Ticker    string    `json:"ticker"`
	Action    Action    `json:"action"`
	Quantity  float64   `json:"quantity"`
	Price     float64   `json:"price"`
	Category  string    `json:"category"`
	Currency  string    `json:"currency"`
	Thesis    string    `json:"thesis,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	Sentiment Sentiment `json:"sentiment,omitempty"`
	Phase     int       `json:"phase"`
	Fees      float64   `json:"fees"`
}

// NewTradeID returns an identifier of the form TRD-<year>-XXXXXX
func NewTradeID(now time.Time) string {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	return fmt.Sprintf("TRD-%d-%s", now.Year(), strings.ToUpper(hex[:6]))
}

// Normalize fills defaults and canonicalises identifiers
func (t *Trade) Normalize(now time.Time) {
	if t.Timestamp.IsZero() {
		t.Timestamp = now
	}
	if t.ID == "" {
		t.ID = NewTradeID(t.Timestamp)
	}
	t.Ticker = strings.ToUpper(strings.TrimSpace(t.Ticker))
	t.Action = Action(strings.ToUpper(string(t.Action)))
	t.Category = strings.ToLower(strings.TrimSpace(t.Category))
	t.Currency = strings.ToUpper(strings.TrimSpace(t.Currency))
	if t.Sentiment == "" {
		t.Sentiment = SentimentNeutral
	}
	if t.Phase == 0 {
		t.Phase = 1
	}
}

// TotalValue is quantity * price, excluding fees
func (t Trade) TotalValue() float64 {
	return t.Quantity * t.Price
}

// TotalWithFees is the cash impact: buys add fees, sells subtract them
func (t Trade) TotalWithFees() float64 {
	if t.Action == ActionBuy {
		return t.TotalValue() + t.Fees
	}
	return t.TotalValue() - t.Fees
}
