package analyzers

import (
	"time"

	"github.com/rustyeddy/backtester/journal"
)

// DrawdownResult reports the worst peak-to-trough equity decline and
// the longest time spent below a prior peak.
type DrawdownResult struct {
	// MaxDrawdown is the largest (peak - equity)/peak seen, in [0, 1].
	MaxDrawdown float64

	// LongestDuration is the longest stretch between setting a peak
	// and recovering to a new one. If the history ends under water the
	// unrecovered tail counts.
	LongestDuration time.Duration
}

// Drawdown walks the equity history once, tracking the running peak.
func Drawdown(equity []journal.EquitySnapshot) DrawdownResult {
	var res DrawdownResult
	if len(equity) == 0 {
		return res
	}

	peak := equity[0].Equity.InexactFloat64()
	peakTime := equity[0].Time

	for _, e := range equity[1:] {
		v := e.Equity.InexactFloat64()
		if v >= peak {
			peak = v
			peakTime = e.Time
			continue
		}

		if peak > 0 {
			dd := (peak - v) / peak
			if dd > res.MaxDrawdown {
				res.MaxDrawdown = dd
			}
		}
		if dur := e.Time.Sub(peakTime); dur > res.LongestDuration {
			res.LongestDuration = dur
		}
	}

	return res
}
