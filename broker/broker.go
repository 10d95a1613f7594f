// Package broker defines the order execution and accounting contract a
// strategy trades against. The sim package provides the backtesting
// implementation.
package broker

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrInsufficientFunds is returned when an entry order is sized
	// larger than the available cash. The sizing policy (CashFraction)
	// prevents this by construction, so seeing it means a sizing bug.
	ErrInsufficientFunds = errors.New("broker: insufficient funds")

	// ErrNoOpenPosition is returned when an exit is requested for a
	// position that is not open. It indicates a strategy state bug.
	ErrNoOpenPosition = errors.New("broker: no open position")
)

// Broker executes market orders against the current bar and tracks cash
// and the open position. At most one position per instrument may be
// open at a time.
type Broker interface {
	// GetCash returns the uncommitted cash balance.
	GetCash() decimal.Decimal

	// SetCash sets the starting balance. Initialization only; calling
	// it mid-run invalidates the equity history.
	SetCash(amount decimal.Decimal)

	// EnterLong buys quantity units at the current fill price and opens
	// a position. Fails with ErrInsufficientFunds if quantity times the
	// fill price exceeds cash.
	EnterLong(ctx context.Context, instrument string, quantity decimal.Decimal) (*Position, error)

	// ExitMarket sells the position at the current fill price, records
	// the completed trade and returns the cash. Fails with
	// ErrNoOpenPosition if the position is not open.
	ExitMarket(ctx context.Context, pos *Position) error
}

// Position is a single long holding. It is owned by the broker while
// open; once closed it is a read-only record.
type Position struct {
	ID         string
	Instrument string
	Quantity   decimal.Decimal

	EntryTime  time.Time
	EntryPrice decimal.Decimal

	// Set on exit; zero while the position is open.
	ExitTime   time.Time
	ExitPrice  decimal.Decimal
	RealizedPL decimal.Decimal

	Open bool
}

// MarketValue returns quantity times the given mark price.
func (p *Position) MarketValue(price decimal.Decimal) decimal.Decimal {
	return p.Quantity.Mul(price)
}
