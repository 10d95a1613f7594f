package strategies

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/backtester/broker"
	"github.com/rustyeddy/backtester/indicators"
	"github.com/rustyeddy/backtester/market"
)

// Crossover holds a long position while the fast average is above the
// slow one. It enters when fast > slow and exits when slow > fast;
// both averages run off the adjusted close. The two branches are
// mutually exclusive within a bar: a flat strategy only considers
// entering, a long one only considers exiting.
type Crossover struct {
	name       string
	Instrument string

	fast indicators.Indicator
	slow indicators.Indicator

	pos *broker.Position
}

// NewEMASMACross trades SMA(fast) against EMA(slow), the 20/50 variant.
func NewEMASMACross(instrument string, fast, slow int) *Crossover {
	return &Crossover{
		name:       "ema-sma-cross",
		Instrument: instrument,
		fast:       indicators.NewSMA(fast),
		slow:       indicators.NewEMA(slow),
	}
}

// NewGoldenCross trades SMA(fast) against SMA(slow), the 50/200 variant.
func NewGoldenCross(instrument string, fast, slow int) *Crossover {
	return &Crossover{
		name:       "golden-cross",
		Instrument: instrument,
		fast:       indicators.NewSMA(fast),
		slow:       indicators.NewSMA(slow),
	}
}

func (s *Crossover) Name() string { return s.name }

func (s *Crossover) Indicators() []indicators.Indicator {
	return []indicators.Indicator{s.fast, s.slow}
}

func (s *Crossover) OnBar(ctx context.Context, b broker.Broker, bar market.Bar) error {
	s.fast.Update(bar.AdjClose)
	s.slow.Update(bar.AdjClose)

	// Wait until both averages have a value.
	if !s.fast.Ready() || !s.slow.Ready() {
		return nil
	}

	if s.pos == nil {
		if s.fast.Value() > s.slow.Value() {
			price := decimal.NewFromFloat(bar.AdjClose)
			quantity := broker.SizeOrder(b.GetCash(), price)
			pos, err := b.EnterLong(ctx, s.Instrument, quantity)
			if err != nil {
				return err
			}
			s.pos = pos
		}
	} else if s.slow.Value() > s.fast.Value() {
		if err := b.ExitMarket(ctx, s.pos); err != nil {
			return err
		}
		s.pos = nil
	}

	return nil
}
