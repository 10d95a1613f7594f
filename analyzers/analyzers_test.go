package analyzers

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/backtester/journal"
)

func equityCurve(values ...float64) []journal.EquitySnapshot {
	base := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]journal.EquitySnapshot, len(values))
	for i, v := range values {
		out[i] = journal.EquitySnapshot{
			Time:   base.AddDate(0, 0, i),
			Cash:   decimal.NewFromFloat(v),
			Equity: decimal.NewFromFloat(v),
		}
	}
	return out
}

func trade(profit, ret float64) journal.TradeRecord {
	return journal.TradeRecord{
		Profit:    decimal.NewFromFloat(profit),
		ReturnPct: decimal.NewFromFloat(ret),
	}
}

func TestReturns(t *testing.T) {
	t.Run("per-bar returns", func(t *testing.T) {
		rets := PerBarReturns(equityCurve(100, 110, 99))
		require.Len(t, rets, 2)
		assert.InDelta(t, 0.10, rets[0], 1e-9)
		assert.InDelta(t, -0.10, rets[1], 1e-9)
	})

	t.Run("cumulative is compounded", func(t *testing.T) {
		cum := CumulativeReturn(equityCurve(100, 110, 99))
		assert.InDelta(t, -0.01, cum, 1e-9) // 1.1 * 0.9 - 1
	})

	t.Run("single point history", func(t *testing.T) {
		assert.Empty(t, PerBarReturns(equityCurve(100)))
		assert.Equal(t, 0.0, CumulativeReturn(equityCurve(100)))
	})

	t.Run("empty history", func(t *testing.T) {
		assert.Equal(t, 0.0, CumulativeReturn(nil))
	})
}

func TestSharpeRatio(t *testing.T) {
	t.Run("constant equity is not applicable", func(t *testing.T) {
		res := SharpeRatio(equityCurve(100, 100, 100, 100), 0.05, 252)
		assert.False(t, res.Defined)
	})

	t.Run("too short history is not applicable", func(t *testing.T) {
		assert.False(t, SharpeRatio(equityCurve(100), 0.05, 252).Defined)
		assert.False(t, SharpeRatio(equityCurve(100, 110), 0.05, 252).Defined)
	})

	t.Run("matches hand computation", func(t *testing.T) {
		// returns: +10%, -10%
		res := SharpeRatio(equityCurve(100, 110, 99), 0, 252)
		require.True(t, res.Defined)

		mean := (0.10 + -0.10) / 2
		sd := math.Sqrt(math.Pow(0.10-mean, 2)+math.Pow(-0.10-mean, 2)) / math.Sqrt(1)
		want := mean / sd * math.Sqrt(252)
		assert.InDelta(t, want, res.Value, 1e-9)
	})

	t.Run("risk free rate lowers the ratio", func(t *testing.T) {
		withRF := SharpeRatio(equityCurve(100, 102, 104, 103, 107), 0.05, 252)
		without := SharpeRatio(equityCurve(100, 102, 104, 103, 107), 0, 252)
		require.True(t, withRF.Defined)
		require.True(t, without.Defined)
		assert.Less(t, withRF.Value, without.Value)
	})
}

func TestDrawdown(t *testing.T) {
	t.Run("no decline", func(t *testing.T) {
		res := Drawdown(equityCurve(100, 110, 120))
		assert.Equal(t, 0.0, res.MaxDrawdown)
		assert.Equal(t, time.Duration(0), res.LongestDuration)
	})

	t.Run("peak to trough", func(t *testing.T) {
		res := Drawdown(equityCurve(100, 120, 90, 130))
		assert.InDelta(t, 0.25, res.MaxDrawdown, 1e-9) // (120-90)/120
	})

	t.Run("duration runs until recovery", func(t *testing.T) {
		// Peak on day 1, under water days 2-3, new peak day 4.
		res := Drawdown(equityCurve(100, 120, 90, 110, 130))
		assert.Equal(t, 2*24*time.Hour, res.LongestDuration)
	})

	t.Run("unrecovered tail counts", func(t *testing.T) {
		res := Drawdown(equityCurve(100, 120, 90, 95, 100))
		assert.Equal(t, 3*24*time.Hour, res.LongestDuration)
	})

	t.Run("empty history", func(t *testing.T) {
		res := Drawdown(nil)
		assert.Equal(t, 0.0, res.MaxDrawdown)
	})
}

func TestTrades(t *testing.T) {
	t.Run("empty ledger", func(t *testing.T) {
		stats := Trades(nil)
		assert.Equal(t, 0, stats.All.Count)
		assert.Equal(t, 0, stats.Profitable.Count)
		assert.Equal(t, 0, stats.Unprofitable.Count)
		// No NaNs in the zero value.
		assert.False(t, math.IsNaN(stats.All.Profit.Mean))
	})

	t.Run("partitions on profit sign", func(t *testing.T) {
		stats := Trades([]journal.TradeRecord{
			trade(100, 0.10),
			trade(-50, -0.05),
			trade(0, 0), // breakeven counts as unprofitable
			trade(30, 0.03),
		})

		assert.Equal(t, 4, stats.All.Count)
		assert.Equal(t, 2, stats.Profitable.Count)
		assert.Equal(t, 2, stats.Unprofitable.Count)

		assert.InDelta(t, 20.0, stats.All.Profit.Mean, 1e-9)
		assert.InDelta(t, 100.0, stats.All.Profit.Max, 1e-9)
		assert.InDelta(t, -50.0, stats.All.Profit.Min, 1e-9)

		assert.InDelta(t, 65.0, stats.Profitable.Profit.Mean, 1e-9)
		assert.InDelta(t, -25.0, stats.Unprofitable.Profit.Mean, 1e-9)
		assert.InDelta(t, 0.065, stats.Profitable.ReturnPct.Mean, 1e-9)
	})

	t.Run("population stddev", func(t *testing.T) {
		stats := Trades([]journal.TradeRecord{trade(10, 0), trade(30, 0)})
		assert.InDelta(t, 10.0, stats.All.Profit.StdDev, 1e-9)
	})

	t.Run("single trade has zero stddev", func(t *testing.T) {
		stats := Trades([]journal.TradeRecord{trade(10, 0.1)})
		assert.Equal(t, 1, stats.All.Count)
		assert.InDelta(t, 0.0, stats.All.Profit.StdDev, 1e-9)
	})
}

func TestBuildReport(t *testing.T) {
	t.Run("empty run falls back to initial cash", func(t *testing.T) {
		mem := journal.NewMemory()
		rep := Build(mem, decimal.NewFromInt(1000), 0.05, 252)

		assert.True(t, rep.FinalEquity.Equal(decimal.NewFromInt(1000)))
		assert.Equal(t, 0.0, rep.CumulativeReturn)
		assert.False(t, rep.Sharpe.Defined)
		assert.Equal(t, 0, rep.Trades.All.Count)
	})

	t.Run("uses last equity snapshot", func(t *testing.T) {
		mem := journal.NewMemory()
		for _, e := range equityCurve(1000, 1100, 990) {
			require.NoError(t, mem.RecordEquity(e))
		}
		rep := Build(mem, decimal.NewFromInt(1000), 0.05, 252)
		assert.True(t, rep.FinalEquity.Equal(decimal.NewFromFloat(990)))
		assert.InDelta(t, -0.01, rep.CumulativeReturn, 1e-9)
	})
}
