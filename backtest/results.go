package backtest

import (
	"fmt"
	"io"
	"time"

	"github.com/rustyeddy/backtester/analyzers"
)

// PrintReport writes the analyzer report in the classic layout:
// headline figures, then one block per trade subset. Currency values
// print with 2 decimals, trade-stat percentages with none. Subset
// statistics only print when the subset is non-empty.
func PrintReport(w io.Writer, rep analyzers.Report) {
	fmt.Fprintf(w, "Final portfolio value: $%s\n", rep.FinalEquity.StringFixed(2))
	fmt.Fprintf(w, "Cumulative returns: %.2f %%\n", rep.CumulativeReturn*100)
	if rep.Sharpe.Defined {
		fmt.Fprintf(w, "Sharpe ratio: %.2f\n", rep.Sharpe.Value)
	} else {
		fmt.Fprintln(w, "Sharpe ratio: n/a")
	}
	fmt.Fprintf(w, "Max. drawdown: %.2f %%\n", rep.Drawdown.MaxDrawdown*100)
	fmt.Fprintf(w, "Longest drawdown duration: %d days\n", durationDays(rep.Drawdown.LongestDuration))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Total trades: %d\n", rep.Trades.All.Count)
	printSubset(w, rep.Trades.All, "profit", "Profits")

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Profitable trades: %d\n", rep.Trades.Profitable.Count)
	printSubset(w, rep.Trades.Profitable, "profit", "Profits")

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Unprofitable trades: %d\n", rep.Trades.Unprofitable.Count)
	printSubset(w, rep.Trades.Unprofitable, "loss", "Losses")
}

func printSubset(w io.Writer, s analyzers.SubsetStats, label, plural string) {
	if s.Count == 0 {
		return
	}
	fmt.Fprintf(w, "Avg. %s: $%.0f\n", label, s.Profit.Mean)
	fmt.Fprintf(w, "%s std. dev.: $%.0f\n", plural, s.Profit.StdDev)
	fmt.Fprintf(w, "Max. %s: $%.0f\n", label, s.Profit.Max)
	fmt.Fprintf(w, "Min. %s: $%.0f\n", label, s.Profit.Min)
	fmt.Fprintf(w, "Avg. return: %.0f %%\n", s.ReturnPct.Mean*100)
	fmt.Fprintf(w, "Returns std. dev.: %.0f %%\n", s.ReturnPct.StdDev*100)
	fmt.Fprintf(w, "Max. return: %.0f %%\n", s.ReturnPct.Max*100)
	fmt.Fprintf(w, "Min. return: %.0f %%\n", s.ReturnPct.Min*100)
}

func durationDays(d time.Duration) int {
	return int(d.Hours() / 24)
}
