package analyzers

import (
	"math"

	"github.com/rustyeddy/backtester/journal"
)

// SharpeResult carries the annualized Sharpe ratio. Defined is false
// when the ratio cannot be computed: too few returns, or zero
// volatility (constant equity).
type SharpeResult struct {
	Value   float64
	Defined bool
}

// SharpeRatio computes the annualized Sharpe ratio of the equity
// history: mean excess per-bar return over the sample standard
// deviation of per-bar returns, scaled by sqrt(periodsPerYear).
// riskFreeRate is annual and is de-annualized by periodsPerYear.
func SharpeRatio(equity []journal.EquitySnapshot, riskFreeRate float64, periodsPerYear int) SharpeResult {
	returns := PerBarReturns(equity)
	if len(returns) < 2 {
		return SharpeResult{}
	}

	perBarRF := riskFreeRate / float64(periodsPerYear)

	var meanExcess float64
	for _, r := range returns {
		meanExcess += r - perBarRF
	}
	meanExcess /= float64(len(returns))

	vol := sampleStdDev(returns)
	if vol == 0 {
		return SharpeResult{}
	}

	return SharpeResult{
		Value:   meanExcess / vol * math.Sqrt(float64(periodsPerYear)),
		Defined: true,
	}
}

// sampleStdDev is the n-1 standard deviation of xs. Zero for fewer
// than two samples.
func sampleStdDev(xs []float64) float64 {
	n := len(xs)
	if n < 2 {
		return 0
	}
	var mean float64
	for _, x := range xs {
		mean += x
	}
	mean /= float64(n)

	var ss float64
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(n-1))
}
