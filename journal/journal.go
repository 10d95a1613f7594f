// Package journal records what happened during a run: one TradeRecord
// per closed position and one EquitySnapshot per bar. The memory
// journal feeds the analyzers; the CSV and SQLite journals persist the
// same records for later inspection.
package journal

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeRecord is an immutable snapshot of a completed round trip.
// Profit is (exit - entry) * quantity; ReturnPct is profit over the
// entry cost.
type TradeRecord struct {
	TradeID    string
	Instrument string
	Quantity   decimal.Decimal
	EntryPrice decimal.Decimal
	ExitPrice  decimal.Decimal
	EntryTime  time.Time
	ExitTime   time.Time
	Profit     decimal.Decimal
	ReturnPct  decimal.Decimal
	Reason     string
}

// EquitySnapshot is the account state after marking a bar to market.
// Equity is cash plus the market value of the open position.
type EquitySnapshot struct {
	Time   time.Time
	Cash   decimal.Decimal
	Equity decimal.Decimal
}

// Journal receives records as the simulation produces them.
// Implementations must preserve insertion order.
type Journal interface {
	RecordTrade(TradeRecord) error
	RecordEquity(EquitySnapshot) error
	Close() error
}

// Tee fans each record out to several journals, stopping on the first
// error.
type Tee []Journal

func (t Tee) RecordTrade(r TradeRecord) error {
	for _, j := range t {
		if err := j.RecordTrade(r); err != nil {
			return err
		}
	}
	return nil
}

func (t Tee) RecordEquity(e EquitySnapshot) error {
	for _, j := range t {
		if err := j.RecordEquity(e); err != nil {
			return err
		}
	}
	return nil
}

func (t Tee) Close() error {
	var first error
	for _, j := range t {
		if err := j.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
