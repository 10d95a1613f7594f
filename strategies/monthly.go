package strategies

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/backtester/broker"
	"github.com/rustyeddy/backtester/indicators"
	"github.com/rustyeddy/backtester/market"
)

// MonthlyMA rebalances only on the last trading day of each month: it
// goes long when the adjusted close is above the long moving average
// and flattens when it is below. Between month ends it does nothing.
type MonthlyMA struct {
	Instrument string

	sma *indicators.SMA
	cal *market.Calendar

	pos *broker.Position
}

// NewMonthlyMA creates the monthly moving-average threshold strategy.
// period is the SMA window (200 in the classic form); cal marks the
// month-end trading days.
func NewMonthlyMA(instrument string, period int, cal *market.Calendar) *MonthlyMA {
	return &MonthlyMA{
		Instrument: instrument,
		sma:        indicators.NewSMA(period),
		cal:        cal,
	}
}

func (s *MonthlyMA) Name() string { return "monthly-ma" }

func (s *MonthlyMA) Indicators() []indicators.Indicator {
	return []indicators.Indicator{s.sma}
}

func (s *MonthlyMA) OnBar(ctx context.Context, b broker.Broker, bar market.Bar) error {
	s.sma.Update(bar.AdjClose)

	if !s.sma.Ready() {
		return nil
	}
	if !s.cal.IsMonthEnd(bar.Date) {
		return nil
	}

	close := bar.AdjClose

	if s.pos == nil {
		if close > s.sma.Value() {
			price := decimal.NewFromFloat(close)
			quantity := broker.SizeOrder(b.GetCash(), price)
			pos, err := b.EnterLong(ctx, s.Instrument, quantity)
			if err != nil {
				return err
			}
			s.pos = pos
		}
	} else if close < s.sma.Value() {
		if err := b.ExitMarket(ctx, s.pos); err != nil {
			return err
		}
		s.pos = nil
	}

	return nil
}
