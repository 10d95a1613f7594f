// Package strategies contains the per-bar decision rules. A strategy
// is a small state machine, flat or long, that reads its indicators and
// the current bar and places market orders through the broker.
package strategies

import (
	"context"
	"fmt"
	"strings"

	"github.com/rustyeddy/backtester/broker"
	"github.com/rustyeddy/backtester/indicators"
	"github.com/rustyeddy/backtester/market"
)

// Strategy is called once per bar, after the engine has advanced to it.
// Implementations must be deterministic and must absorb "indicator not
// ready" by skipping the bar, never by returning an error.
type Strategy interface {
	// Name returns a stable identifier like "golden-cross".
	Name() string

	// Indicators exposes the strategy's indicators so the runner can
	// record their per-bar values for overlays.
	Indicators() []indicators.Indicator

	// OnBar updates indicators and evaluates the transition rule for
	// one bar. Entry and exit are mutually exclusive within a bar.
	OnBar(ctx context.Context, b broker.Broker, bar market.Bar) error
}

// ByName constructs a strategy from its registry name.
//
// fast and slow override the default indicator windows when positive.
// cal is required by monthly-ma and ignored by the others.
func ByName(name, instrument string, fast, slow int, cal *market.Calendar) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "noop", "none":
		return Noop{}, nil

	case "ema-sma-cross", "emasma":
		if fast <= 0 {
			fast = 20
		}
		if slow <= 0 {
			slow = 50
		}
		return NewEMASMACross(instrument, fast, slow), nil

	case "golden-cross", "gc":
		if fast <= 0 {
			fast = 50
		}
		if slow <= 0 {
			slow = 200
		}
		return NewGoldenCross(instrument, fast, slow), nil

	case "monthly-ma", "monthly":
		if slow <= 0 {
			slow = 200
		}
		if cal == nil {
			return nil, fmt.Errorf("strategies: monthly-ma needs a month-end calendar")
		}
		return NewMonthlyMA(instrument, slow, cal), nil

	default:
		return nil, fmt.Errorf("strategies: unknown strategy %q (supported: noop, ema-sma-cross, golden-cross, monthly-ma)", name)
	}
}

// Noop does nothing. Baseline for wiring tests.
type Noop struct{}

func (Noop) Name() string { return "noop" }

func (Noop) Indicators() []indicators.Indicator { return nil }

func (Noop) OnBar(context.Context, broker.Broker, market.Bar) error {
	return nil
}
