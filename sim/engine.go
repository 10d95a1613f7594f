// Package sim implements the backtesting broker: cash and position
// accounting, market-order fills against the current bar, and per-bar
// mark-to-market snapshots written to a journal.
package sim

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/backtester/broker"
	"github.com/rustyeddy/backtester/internal/id"
	"github.com/rustyeddy/backtester/journal"
	"github.com/rustyeddy/backtester/market"
)

// FillTiming selects which bar a market order fills on.
type FillTiming string

const (
	// SameBar fills orders at the adjusted close of the bar that
	// produced the signal. This is the observed behavior of the
	// strategies this engine reproduces.
	SameBar FillTiming = "same-bar"

	// NextBar queues orders and fills them at the following bar's
	// adjusted close.
	NextBar FillTiming = "next-bar"
)

// ParseFillTiming validates a fill timing string.
func ParseFillTiming(s string) (FillTiming, error) {
	switch FillTiming(s) {
	case SameBar, NextBar:
		return FillTiming(s), nil
	case "":
		return SameBar, nil
	default:
		return "", fmt.Errorf("sim: unknown fill timing %q (want %q or %q)", s, SameBar, NextBar)
	}
}

// Fill describes an executed order, passed to the fill listener so
// external code can log or display executions.
type Fill struct {
	Time       time.Time
	Instrument string
	Side       string // "BUY" or "SELL"
	Quantity   decimal.Decimal
	Price      decimal.Decimal
}

// FillListener is notified after every execution. Implementations must
// not call back into the engine.
type FillListener interface {
	OnFill(Fill)
}

type pendingKind int

const (
	pendingEntry pendingKind = iota
	pendingExit
)

type pendingOrder struct {
	kind pendingKind
	pos  *broker.Position
}

// Engine is the simulated broker. It advances one bar at a time, in
// lockstep with the feed: UpdateBar, then strategy callbacks (which may
// place orders), then MarkToMarket. A single run is single-threaded by
// design; the engine does no locking.
type Engine struct {
	cash      decimal.Decimal
	positions map[string]*broker.Position
	pending   []pendingOrder
	timing    FillTiming
	journal   journal.Journal
	listener  FillListener

	cur     market.Bar
	haveBar bool
	row     int
}

var _ broker.Broker = (*Engine)(nil)

// NewEngine creates an engine writing to j, filling orders per timing.
func NewEngine(j journal.Journal, timing FillTiming) *Engine {
	if timing == "" {
		timing = SameBar
	}
	return &Engine{
		cash:      decimal.Zero,
		positions: make(map[string]*broker.Position),
		timing:    timing,
		journal:   j,
	}
}

// SetFillListener installs an optional execution listener.
func (e *Engine) SetFillListener(l FillListener) { e.listener = l }

func (e *Engine) GetCash() decimal.Decimal { return e.cash }

func (e *Engine) SetCash(amount decimal.Decimal) { e.cash = amount }

// OpenPosition returns the open position for the instrument, or nil.
func (e *Engine) OpenPosition(instrument string) *broker.Position {
	return e.positions[instrument]
}

// UpdateBar advances the simulation clock to bar. It validates the bar,
// enforces strictly increasing dates, and in next-bar mode fills any
// orders queued on the previous bar at this bar's adjusted close.
// Must be called before the strategy sees the bar.
func (e *Engine) UpdateBar(bar market.Bar) error {
	if err := bar.Validate(e.row); err != nil {
		return err
	}
	if e.haveBar && !bar.Date.After(e.cur.Date) {
		return &market.MalformedBarError{
			Row:    e.row,
			Reason: fmt.Sprintf("date %s not after previous %s", bar.DateKey(), e.cur.DateKey()),
		}
	}
	e.cur = bar
	e.haveBar = true
	e.row++

	return e.fillPending()
}

func (e *Engine) fillPending() error {
	if len(e.pending) == 0 {
		return nil
	}
	queued := e.pending
	e.pending = nil

	for _, po := range queued {
		switch po.kind {
		case pendingEntry:
			if err := e.fillEntry(po.pos); err != nil {
				return err
			}
		case pendingExit:
			if err := e.fillExit(po.pos, "MarketExit"); err != nil {
				return err
			}
		}
	}
	return nil
}

// EnterLong opens a long position of quantity units. With same-bar
// timing the fill happens immediately at the current bar's adjusted
// close; with next-bar timing the order is queued and the returned
// position stays closed until the next bar arrives.
func (e *Engine) EnterLong(ctx context.Context, instrument string, quantity decimal.Decimal) (*broker.Position, error) {
	_ = ctx // deterministic replay; no cancellation points

	if !e.haveBar {
		return nil, fmt.Errorf("sim: enter long before first bar")
	}
	if quantity.Sign() < 0 {
		return nil, fmt.Errorf("sim: negative quantity %s", quantity)
	}
	if existing := e.positions[instrument]; existing != nil {
		return nil, fmt.Errorf("sim: position already open for %s", instrument)
	}

	pos := &broker.Position{
		ID:         id.New(),
		Instrument: instrument,
		Quantity:   quantity,
	}

	if e.timing == NextBar {
		e.pending = append(e.pending, pendingOrder{kind: pendingEntry, pos: pos})
		return pos, nil
	}

	if err := e.fillEntry(pos); err != nil {
		return nil, err
	}
	return pos, nil
}

func (e *Engine) fillEntry(pos *broker.Position) error {
	price := decimal.NewFromFloat(e.cur.AdjClose)
	cost := pos.Quantity.Mul(price)
	if cost.GreaterThan(e.cash) {
		return fmt.Errorf("sim: enter %s qty=%s cost=%s cash=%s: %w",
			pos.Instrument, pos.Quantity, cost, e.cash, broker.ErrInsufficientFunds)
	}

	e.cash = e.cash.Sub(cost)
	pos.EntryTime = e.cur.Date
	pos.EntryPrice = price
	pos.Open = true
	e.positions[pos.Instrument] = pos

	e.notify(Fill{
		Time:       e.cur.Date,
		Instrument: pos.Instrument,
		Side:       "BUY",
		Quantity:   pos.Quantity,
		Price:      price,
	})
	return nil
}

// ExitMarket closes the position at the current bar's adjusted close
// (or queues the exit in next-bar mode), returns the proceeds to cash
// and appends a TradeRecord to the journal.
func (e *Engine) ExitMarket(ctx context.Context, pos *broker.Position) error {
	_ = ctx

	if pos == nil || !pos.Open {
		return broker.ErrNoOpenPosition
	}
	if e.positions[pos.Instrument] != pos {
		return broker.ErrNoOpenPosition
	}

	if e.timing == NextBar {
		e.pending = append(e.pending, pendingOrder{kind: pendingExit, pos: pos})
		return nil
	}
	return e.fillExit(pos, "MarketExit")
}

func (e *Engine) fillExit(pos *broker.Position, reason string) error {
	if !pos.Open {
		return broker.ErrNoOpenPosition
	}

	price := decimal.NewFromFloat(e.cur.AdjClose)
	proceeds := pos.Quantity.Mul(price)
	e.cash = e.cash.Add(proceeds)

	pos.ExitTime = e.cur.Date
	pos.ExitPrice = price
	pos.RealizedPL = price.Sub(pos.EntryPrice).Mul(pos.Quantity)
	pos.Open = false
	delete(e.positions, pos.Instrument)

	cost := pos.EntryPrice.Mul(pos.Quantity)
	ret := decimal.Zero
	if cost.Sign() != 0 {
		ret = pos.RealizedPL.Div(cost)
	}

	if err := e.journal.RecordTrade(journal.TradeRecord{
		TradeID:    pos.ID,
		Instrument: pos.Instrument,
		Quantity:   pos.Quantity,
		EntryPrice: pos.EntryPrice,
		ExitPrice:  price,
		EntryTime:  pos.EntryTime,
		ExitTime:   pos.ExitTime,
		Profit:     pos.RealizedPL,
		ReturnPct:  ret,
		Reason:     reason,
	}); err != nil {
		return err
	}

	e.notify(Fill{
		Time:       e.cur.Date,
		Instrument: pos.Instrument,
		Side:       "SELL",
		Quantity:   pos.Quantity,
		Price:      price,
	})
	return nil
}

// MarkToMarket values the account at the current bar and records an
// equity snapshot. Called once per bar, after the strategy has run.
func (e *Engine) MarkToMarket() error {
	if !e.haveBar {
		return nil
	}

	equity := e.cash
	price := decimal.NewFromFloat(e.cur.AdjClose)
	for _, pos := range e.positions {
		equity = equity.Add(pos.MarketValue(price))
	}

	return e.journal.RecordEquity(journal.EquitySnapshot{
		Time:   e.cur.Date,
		Cash:   e.cash,
		Equity: equity,
	})
}

// Equity returns cash plus the mark-to-market value of open positions
// at the current bar.
func (e *Engine) Equity() decimal.Decimal {
	equity := e.cash
	if !e.haveBar {
		return equity
	}
	price := decimal.NewFromFloat(e.cur.AdjClose)
	for _, pos := range e.positions {
		equity = equity.Add(pos.MarketValue(price))
	}
	return equity
}

// CloseAll exits every open position at the current bar, recording the
// given reason. Used to flatten the book when the feed ends.
func (e *Engine) CloseAll(ctx context.Context, reason string) error {
	_ = ctx
	if reason == "" {
		reason = "EndOfFeed"
	}
	for _, pos := range e.positions {
		if err := e.fillExit(pos, reason); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) notify(f Fill) {
	if e.listener != nil {
		e.listener.OnFill(f)
	}
}
