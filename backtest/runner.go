package backtest

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rustyeddy/backtester/market"
	"github.com/rustyeddy/backtester/sim"
	"github.com/rustyeddy/backtester/strategies"
)

// IndicatorPoint is one bar's value of one indicator. Defined is false
// while the indicator is still warming up.
type IndicatorPoint struct {
	Time    time.Time
	Value   float64
	Defined bool
}

// Result summarizes a finished run. The indicator series are keyed by
// indicator name ("SMA(200)") for external overlay plotting.
type Result struct {
	Bars  int
	Start time.Time
	End   time.Time

	FinalEquity decimal.Decimal

	IndicatorSeries map[string][]IndicatorPoint
}

// RunnerOptions controls end-of-run behavior.
type RunnerOptions struct {
	// CloseEnd exits any open position on the last bar so the final
	// equity is all cash. Off by default: the source strategies leave
	// the last position open and value it mark-to-market.
	CloseEnd    bool
	CloseReason string
}

// Runner executes one backtest: for each bar, advance the engine, let
// the strategy act, mark to market, then snapshot the indicators. The
// per-bar step order is fixed; every stage depends on the state left by
// the previous one.
type Runner struct {
	Engine   *sim.Engine
	Feed     BarFeed
	Strategy strategies.Strategy
	Options  RunnerOptions

	// Logger receives fill events. Defaults to a nop logger.
	Logger *zap.Logger
}

// Run drains the feed. It returns the first error encountered; a
// malformed bar or broker contract violation aborts the run.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	if r.Engine == nil {
		return Result{}, fmt.Errorf("backtest: Engine is required")
	}
	if r.Feed == nil {
		return Result{}, fmt.Errorf("backtest: Feed is required")
	}
	if r.Strategy == nil {
		return Result{}, fmt.Errorf("backtest: Strategy is required")
	}
	defer r.Feed.Close()

	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	r.Engine.SetFillListener(&logFills{log: logger, strategy: r.Strategy.Name()})

	res := Result{
		IndicatorSeries: make(map[string][]IndicatorPoint),
	}

	for {
		bar, ok, err := r.Feed.Next()
		if err != nil {
			return Result{}, fmt.Errorf("backtest: feed: %w", err)
		}
		if !ok {
			break
		}

		if err := r.Engine.UpdateBar(bar); err != nil {
			return Result{}, err
		}
		if err := r.Strategy.OnBar(ctx, r.Engine, bar); err != nil {
			return Result{}, fmt.Errorf("backtest: strategy %s: %w", r.Strategy.Name(), err)
		}
		if err := r.Engine.MarkToMarket(); err != nil {
			return Result{}, fmt.Errorf("backtest: journal: %w", err)
		}

		for _, ind := range r.Strategy.Indicators() {
			res.IndicatorSeries[ind.Name()] = append(res.IndicatorSeries[ind.Name()], IndicatorPoint{
				Time:    bar.Date,
				Value:   ind.Value(),
				Defined: ind.Ready(),
			})
		}

		if res.Bars == 0 {
			res.Start = bar.Date
		}
		res.End = bar.Date
		res.Bars++
	}

	if r.Options.CloseEnd {
		if err := r.Engine.CloseAll(ctx, r.Options.CloseReason); err != nil {
			return Result{}, err
		}
		// Re-snapshot so the equity history reflects the flattening.
		if err := r.Engine.MarkToMarket(); err != nil {
			return Result{}, fmt.Errorf("backtest: journal: %w", err)
		}
	}

	res.FinalEquity = r.Engine.Equity()
	return res, nil
}

// logFills logs every execution through zap. This is the observable
// notification each strategy transition emits.
type logFills struct {
	log      *zap.Logger
	strategy string
}

func (l *logFills) OnFill(f sim.Fill) {
	l.log.Info("fill",
		zap.String("strategy", l.strategy),
		zap.String("instrument", f.Instrument),
		zap.String("side", f.Side),
		zap.String("date", f.Time.Format("2006-01-02")),
		zap.String("quantity", f.Quantity.String()),
		zap.String("price", f.Price.StringFixed(2)),
	)
}

var _ sim.FillListener = (*logFills)(nil)

// LoadBars drains a feed into a slice. Useful when the caller needs
// the bars twice, e.g. to derive a month-end calendar before running.
func LoadBars(feed BarFeed) ([]market.Bar, error) {
	defer feed.Close()
	var bars []market.Bar
	for {
		b, ok, err := feed.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return bars, nil
		}
		bars = append(bars, b)
	}
}
