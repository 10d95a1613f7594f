package analyzers

import (
	"math"

	"github.com/rustyeddy/backtester/journal"
)

// Summary holds descriptive statistics over one series of values.
type Summary struct {
	Mean   float64
	StdDev float64
	Max    float64
	Min    float64
}

// SubsetStats describes one slice of the trade ledger. Profit and
// ReturnPct are only meaningful when Count > 0; callers must check
// Count before reading them, which is why the zero value carries no
// NaNs.
type SubsetStats struct {
	Count     int
	Profit    Summary
	ReturnPct Summary
}

// TradeStats partitions the ledger into all, profitable (profit > 0)
// and unprofitable (profit <= 0) trades.
type TradeStats struct {
	All          SubsetStats
	Profitable   SubsetStats
	Unprofitable SubsetStats
}

// Trades computes ledger statistics. Each subset is computed only when
// it is non-empty; an empty ledger yields zero counts and no NaNs.
func Trades(ledger []journal.TradeRecord) TradeStats {
	var all, wins, losses []journal.TradeRecord
	all = ledger
	for _, t := range ledger {
		if t.Profit.Sign() > 0 {
			wins = append(wins, t)
		} else {
			losses = append(losses, t)
		}
	}

	return TradeStats{
		All:          subset(all),
		Profitable:   subset(wins),
		Unprofitable: subset(losses),
	}
}

func subset(trades []journal.TradeRecord) SubsetStats {
	s := SubsetStats{Count: len(trades)}
	if len(trades) == 0 {
		return s
	}

	profits := make([]float64, len(trades))
	returns := make([]float64, len(trades))
	for i, t := range trades {
		profits[i] = t.Profit.InexactFloat64()
		returns[i] = t.ReturnPct.InexactFloat64()
	}
	s.Profit = summarize(profits)
	s.ReturnPct = summarize(returns)
	return s
}

// summarize computes mean, population standard deviation and extrema.
// xs must be non-empty.
func summarize(xs []float64) Summary {
	var sum float64
	max := math.Inf(-1)
	min := math.Inf(1)
	for _, x := range xs {
		sum += x
		if x > max {
			max = x
		}
		if x < min {
			min = x
		}
	}
	mean := sum / float64(len(xs))

	var ss float64
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}

	return Summary{
		Mean:   mean,
		StdDev: math.Sqrt(ss / float64(len(xs))),
		Max:    max,
		Min:    min,
	}
}
