package analyzers

import (
	"github.com/shopspring/decimal"

	"github.com/rustyeddy/backtester/journal"
)

// Report bundles every analyzer output for one run. It is a plain data
// structure; formatting and printing live with the caller.
type Report struct {
	FinalEquity      decimal.Decimal
	CumulativeReturn float64
	Sharpe           SharpeResult
	Drawdown         DrawdownResult
	Trades           TradeStats
}

// Build runs all analyzers over the recorded history. initialCash is
// the fallback final equity for a run that saw no bars.
func Build(mem *journal.Memory, initialCash decimal.Decimal, riskFreeRate float64, periodsPerYear int) Report {
	equity := mem.Equity()

	final := initialCash
	if len(equity) > 0 {
		final = equity[len(equity)-1].Equity
	}

	return Report{
		FinalEquity:      final,
		CumulativeReturn: CumulativeReturn(equity),
		Sharpe:           SharpeRatio(equity, riskFreeRate, periodsPerYear),
		Drawdown:         Drawdown(equity),
		Trades:           Trades(mem.Trades()),
	}
}
