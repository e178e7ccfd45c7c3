package journal

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/fintrack/pkg/formulas"
)

var base = time.Date(2026, 1, 10, 10, 0, 0, 0, time.UTC)

func seedJournal(t *testing.T) *Journal {
	t.Helper()
	j := New()

	entries := []Trade{
		{Ticker: "bbca", Action: "buy", Quantity: 100, Price: 9000, Category: "ID_Stocks", Currency: "idr", Tags: []string{"Dividend"}, Timestamp: base},
		{Ticker: "voo", Action: "BUY", Quantity: 2, Price: 500, Category: "us_stocks", Currency: "usd", Fees: 1, Timestamp: base.AddDate(0, 0, 2)},
		{Ticker: "BBCA", Action: "sell", Quantity: 50, Price: 9500, Category: "id_stocks", Currency: "IDR", Fees: 2, Sentiment: SentimentGreedy, Timestamp: base.AddDate(0, 0, 5)},
	}
	for _, e := range entries {
		_, err := j.Add(e, base)
		require.NoError(t, err)
	}
	return j
}

func TestParseAction(t *testing.T) {
	tests := []struct {
		in      string
		want    Action
		wantErr bool
	}{
		{in: "BUY", want: ActionBuy},
		{in: "sell", want: ActionSell},
		{in: " Buy ", want: ActionBuy},
		{in: "hold", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAction(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, formulas.ErrInvalidArgument)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewTradeID(t *testing.T) {
	id := NewTradeID(base)
	assert.Regexp(t, regexp.MustCompile(`^TRD-2026-[0-9A-F]{6}$`), id)
}

func TestTrade_Totals(t *testing.T) {
	buy := Trade{Action: ActionBuy, Quantity: 10, Price: 100, Fees: 5}
	sell := Trade{Action: ActionSell, Quantity: 10, Price: 100, Fees: 5}

	assert.Equal(t, 1000.0, buy.TotalValue())
	assert.Equal(t, 1005.0, buy.TotalWithFees())
	assert.Equal(t, 995.0, sell.TotalWithFees())
}

func TestJournal_AddNormalises(t *testing.T) {
	j := seedJournal(t)
	require.Equal(t, 3, j.Len())

	first := j.All()[0]
	assert.Equal(t, "BBCA", first.Ticker)
	assert.Equal(t, ActionBuy, first.Action)
	assert.Equal(t, "id_stocks", first.Category)
	assert.Equal(t, "IDR", first.Currency)
	assert.Equal(t, SentimentNeutral, first.Sentiment)
	assert.Equal(t, 1, first.Phase)

	got, ok := j.Get(first.ID)
	require.True(t, ok)
	assert.Equal(t, first, got)

	_, ok = j.Get("TRD-0000-NOPE")
	assert.False(t, ok)
}

func TestJournal_AddRejectsInvalid(t *testing.T) {
	j := New()

	_, err := j.Add(Trade{Ticker: "X", Action: "HOLD", Quantity: 1, Price: 1}, base)
	assert.ErrorIs(t, err, formulas.ErrInvalidArgument)

	_, err = j.Add(Trade{Ticker: "X", Action: ActionBuy, Quantity: 0, Price: 1}, base)
	assert.ErrorIs(t, err, formulas.ErrInvalidArgument)

	_, err = j.Add(Trade{Ticker: "X", Action: ActionSell, Quantity: 1, Price: -1}, base)
	assert.ErrorIs(t, err, formulas.ErrInvalidArgument)

	assert.Equal(t, 0, j.Len())
}

func TestJournal_AddDefaultsTimestamp(t *testing.T) {
	j := New()
	tr, err := j.Add(Trade{Ticker: "X", Action: ActionBuy, Quantity: 1, Price: 1}, base)
	require.NoError(t, err)
	assert.Equal(t, base, tr.Timestamp)
	assert.Contains(t, tr.ID, "TRD-2026-")
}

func TestJournal_Queries(t *testing.T) {
	j := seedJournal(t)

	assert.Len(t, j.ByTicker("bbca"), 2)
	assert.Len(t, j.ByTag("dividend"), 1)
	assert.Len(t, j.BySentiment(SentimentGreedy), 1)
	assert.Empty(t, j.ByTicker("NONE"))

	recent := j.Recent(2)
	require.Len(t, recent, 2)
	assert.Equal(t, "BBCA", recent[0].Ticker)
	assert.Equal(t, ActionSell, recent[0].Action)
	assert.Equal(t, "VOO", recent[1].Ticker)

	assert.Len(t, j.Recent(10), 3)
}

func TestJournal_InRange(t *testing.T) {
	j := seedJournal(t)

	inclusive := j.InRange(base, base.AddDate(0, 0, 2))
	require.Len(t, inclusive, 2)
	assert.Equal(t, "BBCA", inclusive[0].Ticker)
	assert.Equal(t, "VOO", inclusive[1].Ticker)

	assert.Empty(t, j.InRange(base.AddDate(1, 0, 0), base.AddDate(2, 0, 0)))
}

func TestJournal_Stats(t *testing.T) {
	j := seedJournal(t)
	s := j.Stats()

	assert.Equal(t, 3, s.TotalTrades)
	assert.Equal(t, 2, s.Buys)
	assert.Equal(t, 1, s.Sells)
	assert.Equal(t, 901_000.0, s.TotalBought)
	assert.Equal(t, 475_000.0, s.TotalSold)
	assert.Equal(t, -426_000.0, s.NetFlow)
	assert.Equal(t, 3.0, s.TotalFees)
	assert.InDelta(t, 1_376_000.0/3, s.AvgTradeSize, 1e-9)

	empty := New().Stats()
	assert.Equal(t, Stats{}, empty)
}
