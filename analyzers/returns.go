// Package analyzers derives performance statistics from a finished
// run: the per-bar equity history and the trade ledger. Everything here
// is a pure read-time computation; nothing mutates engine state and
// nothing prints.
package analyzers

import "github.com/rustyeddy/backtester/journal"

// PerBarReturns converts the equity history into simple per-bar
// returns: r_t = equity_t/equity_{t-1} - 1. A history with fewer than
// two points yields an empty slice.
func PerBarReturns(equity []journal.EquitySnapshot) []float64 {
	if len(equity) < 2 {
		return nil
	}
	out := make([]float64, 0, len(equity)-1)
	for i := 1; i < len(equity); i++ {
		prev := equity[i-1].Equity.InexactFloat64()
		cur := equity[i].Equity.InexactFloat64()
		if prev == 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, cur/prev-1)
	}
	return out
}

// CumulativeReturn is the compounded return over the whole history,
// Π(1+r_t) - 1. Zero for a history of one point or fewer.
func CumulativeReturn(equity []journal.EquitySnapshot) float64 {
	cum := 1.0
	for _, r := range PerBarReturns(equity) {
		cum *= 1 + r
	}
	return cum - 1
}
