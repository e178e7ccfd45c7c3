package journal

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aristath/fintrack/pkg/formulas"
)

// Journal is an ordered collection of trades
type Journal struct {
	trades []Trade
}

// New creates a journal holding trades
func New(trades ...Trade) *Journal {
	j := &Journal{trades: make([]Trade, 0, len(trades))}
	j.trades = append(j.trades, trades...)
	return j
}

// Add validates and appends a trade, returning the stored copy
func (j *Journal) Add(t Trade, now time.Time) (Trade, error) {
	t.Normalize(now)

	action, err := ParseAction(string(t.Action))
	if err != nil {
		return Trade{}, err
	}
	t.Action = action

	if t.Quantity <= 0 {
		return Trade{}, fmt.Errorf("%w: quantity must be positive, got %v", formulas.ErrInvalidArgument, t.Quantity)
	}
	if t.Price < 0 {
		return Trade{}, fmt.Errorf("%w: price must not be negative, got %v", formulas.ErrInvalidArgument, t.Price)
	}

	j.trades = append(j.trades, t)
	return t, nil
}

// All returns a copy of every trade in insertion order
func (j *Journal) All() []Trade {
	out := make([]Trade, len(j.trades))
	copy(out, j.trades)
	return out
}

// Len is the number of trades
func (j *Journal) Len() int {
	return len(j.trades)
}

// Get finds a trade by ID
func (j *Journal) Get(id string) (Trade, bool) {
	for _, t := range j.trades {
		if t.ID == id {
			return t, true
		}
	}
	return Trade{}, false
}

// ByTicker returns all trades for ticker, case-insensitive
func (j *Journal) ByTicker(ticker string) []Trade {
	ticker = strings.ToUpper(ticker)
	return j.filter(func(t Trade) bool { return t.Ticker == ticker })
}

// ByTag returns all trades carrying tag, case-insensitive
func (j *Journal) ByTag(tag string) []Trade {
	return j.filter(func(t Trade) bool {
		for _, tg := range t.Tags {
			if strings.EqualFold(tg, tag) {
				return true
			}
		}
		return false
	})
}

// BySentiment returns all trades logged with sentiment
func (j *Journal) BySentiment(s Sentiment) []Trade {
	return j.filter(func(t Trade) bool { return t.Sentiment == s })
}

// Recent returns up to limit trades, newest first
func (j *Journal) Recent(limit int) []Trade {
	sorted := j.All()
	sort.SliceStable(sorted, func(a, b int) bool {
		return sorted[a].Timestamp.After(sorted[b].Timestamp)
	})
	if limit >= 0 && limit < len(sorted) {
		sorted = sorted[:limit]
	}
	return sorted
}

// InRange returns trades with start <= timestamp <= end, oldest first
func (j *Journal) InRange(start, end time.Time) []Trade {
	result := j.filter(func(t Trade) bool {
		return !t.Timestamp.Before(start) && !t.Timestamp.After(end)
	})
	sort.SliceStable(result, func(a, b int) bool {
		return result[a].Timestamp.Before(result[b].Timestamp)
	})
	return result
}

func (j *Journal) filter(keep func(Trade) bool) []Trade {
	out := []Trade{}
	for _, t := range j.trades {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

// Stats summarises trading activity
type Stats struct {
	TotalTrades  int     `json:"total_trades"`
	Buys         int     `json:"buys"`
	Sells        int     `json:"sells"`
	TotalBought  float64 `json:"total_bought"`
	TotalSold    float64 `json:"total_sold"`
	NetFlow      float64 `json:"net_flow"` // sold - bought
	TotalFees    float64 `json:"total_fees"`
	AvgTradeSize float64 `json:"avg_trade_size"`
}

// Stats computes activity statistics over every trade in the journal
func (j *Journal) Stats() Stats {
	return ComputeStats(j.trades)
}

// ComputeStats computes activity statistics over trades
func ComputeStats(trades []Trade) Stats {
	s := Stats{TotalTrades: len(trades)}
	if len(trades) == 0 {
		return s
	}

	total := 0.0
	for _, t := range trades {
		v := t.TotalValue()
		total += v
		s.TotalFees += t.Fees

		switch t.Action {
		case ActionBuy:
			s.Buys++
			s.TotalBought += v
		case ActionSell:
			s.Sells++
			s.TotalSold += v
		}
	}

	s.NetFlow = s.TotalSold - s.TotalBought
	s.AvgTradeSize = total / float64(len(trades))
	return s
}
