package strategies

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/backtester/journal"
	"github.com/rustyeddy/backtester/market"
	"github.com/rustyeddy/backtester/sim"
)

func bar(dayOffset int, adjClose float64) market.Bar {
	base := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	return market.Bar{
		Date:     base.AddDate(0, 0, dayOffset),
		Open:     adjClose,
		High:     adjClose,
		Low:      adjClose,
		Close:    adjClose,
		AdjClose: adjClose,
		Volume:   1000,
	}
}

func dec(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

// run pushes bars through the engine and strategy the way the runner
// does: advance, act, mark.
func run(t *testing.T, strat Strategy, mem *journal.Memory, bars []market.Bar) *sim.Engine {
	t.Helper()
	ctx := context.Background()
	e := sim.NewEngine(mem, sim.SameBar)
	e.SetCash(dec(1000))
	for _, b := range bars {
		require.NoError(t, e.UpdateBar(b))
		require.NoError(t, strat.OnBar(ctx, e, b))
		require.NoError(t, e.MarkToMarket())
	}
	return e
}

func TestCrossoverEntersAndExits(t *testing.T) {
	// SMA(1) vs SMA(2): entry triggers on bar 2 (20 > 15), exit on
	// bar 3 (17.5 > 15).
	strat := NewGoldenCross("SPY", 1, 2)
	mem := journal.NewMemory()

	e := run(t, strat, mem, []market.Bar{bar(0, 10), bar(1, 20), bar(2, 15)})

	trades := mem.Trades()
	require.Len(t, trades, 1)
	tr := trades[0]
	assert.True(t, tr.EntryPrice.Equal(dec(20)))
	assert.True(t, tr.ExitPrice.Equal(dec(15)))
	assert.True(t, tr.Quantity.Equal(dec(47.5)))
	assert.True(t, tr.Profit.Equal(dec(-237.5)))
	assert.True(t, e.GetCash().Equal(dec(762.5)), "cash = %s", e.GetCash())
}

func TestCrossoverWaitsForWarmup(t *testing.T) {
	strat := NewGoldenCross("SPY", 2, 4)
	mem := journal.NewMemory()

	// Rising prices would trigger an entry immediately if the warmup
	// guard were missing.
	e := run(t, strat, mem, []market.Bar{bar(0, 10), bar(1, 20), bar(2, 30)})

	assert.Nil(t, e.OpenPosition("SPY"))
	assert.Empty(t, mem.Trades())
}

func TestCrossoverOneTransitionPerBar(t *testing.T) {
	// On the entry bar the exit branch must not run even though the
	// position exists by then.
	strat := NewGoldenCross("SPY", 1, 2)
	mem := journal.NewMemory()

	e := run(t, strat, mem, []market.Bar{bar(0, 10), bar(1, 20)})

	require.NotNil(t, e.OpenPosition("SPY"))
	assert.Empty(t, mem.Trades(), "entered and held, no same-bar round trip")
}

func TestEMASMACrossIndicators(t *testing.T) {
	strat := NewEMASMACross("SPY", 20, 50)
	inds := strat.Indicators()
	require.Len(t, inds, 2)
	assert.Equal(t, "SMA(20)", inds[0].Name())
	assert.Equal(t, "EMA(50)", inds[1].Name())
}

func TestMonthlyMA(t *testing.T) {
	cal, err := market.NewCalendar([]string{"2020-01-04", "2020-01-08"})
	require.NoError(t, err)

	// SMA(2): ready from bar 1 on. Bar 3 (Jan 4) is a month end with
	// close 30 > sma 25 -> enter. Bar 7 (Jan 8) is a month end with
	// close 10 < sma 15 -> exit.
	strat := NewMonthlyMA("SPY", 2, cal)
	mem := journal.NewMemory()

	bars := []market.Bar{
		bar(0, 20), bar(1, 20),
		bar(2, 20), bar(3, 30), // month end, above SMA -> enter at 30
		bar(4, 40), bar(5, 35),
		bar(6, 20), bar(7, 10), // month end, below SMA -> exit at 10
	}
	e := run(t, strat, mem, bars)

	trades := mem.Trades()
	require.Len(t, trades, 1)
	assert.True(t, trades[0].EntryPrice.Equal(dec(30)))
	assert.True(t, trades[0].ExitPrice.Equal(dec(10)))
	assert.Nil(t, e.OpenPosition("SPY"))
}

func TestMonthlyMAIgnoresMidMonthSignals(t *testing.T) {
	cal, err := market.NewCalendar([]string{"2020-12-31"}) // never hit
	require.NoError(t, err)

	strat := NewMonthlyMA("SPY", 2, cal)
	mem := journal.NewMemory()

	e := run(t, strat, mem, []market.Bar{bar(0, 10), bar(1, 20), bar(2, 30), bar(3, 40)})

	assert.Nil(t, e.OpenPosition("SPY"))
	assert.Empty(t, mem.Trades())
}

func TestByName(t *testing.T) {
	cal := market.DeriveMonthEnds(nil)

	cases := []struct {
		name string
		want string
	}{
		{"noop", "noop"},
		{"ema-sma-cross", "ema-sma-cross"},
		{"EMASMA", "ema-sma-cross"},
		{"golden-cross", "golden-cross"},
		{"gc", "golden-cross"},
		{"monthly-ma", "monthly-ma"},
	}
	for _, tc := range cases {
		s, err := ByName(tc.name, "SPY", 0, 0, cal)
		require.NoError(t, err, tc.name)
		assert.Equal(t, tc.want, s.Name())
	}

	_, err := ByName("bogus", "SPY", 0, 0, cal)
	assert.Error(t, err)

	_, err = ByName("monthly-ma", "SPY", 0, 0, nil)
	assert.Error(t, err, "monthly-ma requires a calendar")
}
