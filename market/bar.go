// Package market holds the core price data types shared by the feed,
// the simulator and the strategies.
package market

import (
	"fmt"
	"math"
	"time"
)

// Bar is one trading day's OHLC record. AdjClose is the split/dividend
// adjusted close; every fill and indicator in this repo runs off it.
// Bars are value types and never mutated after creation.
type Bar struct {
	Date     time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	AdjClose float64
	Volume   float64
}

// MalformedBarError reports a bar that cannot be part of a backtest:
// missing date, non-finite prices, or out-of-order timestamps. Row is
// the zero-based position of the offending bar in its feed.
type MalformedBarError struct {
	Row    int
	Reason string
}

func (e *MalformedBarError) Error() string {
	return fmt.Sprintf("malformed bar at row %d: %s", e.Row, e.Reason)
}

// Validate checks the bar fields. Row is only used for the error message.
func (b Bar) Validate(row int) error {
	if b.Date.IsZero() {
		return &MalformedBarError{Row: row, Reason: "missing date"}
	}
	for _, p := range []struct {
		name  string
		value float64
	}{
		{"open", b.Open},
		{"high", b.High},
		{"low", b.Low},
		{"close", b.Close},
		{"adj close", b.AdjClose},
	} {
		if math.IsNaN(p.value) || math.IsInf(p.value, 0) {
			return &MalformedBarError{Row: row, Reason: fmt.Sprintf("non-finite %s", p.name)}
		}
	}
	if b.AdjClose <= 0 {
		return &MalformedBarError{Row: row, Reason: fmt.Sprintf("non-positive adj close %v", b.AdjClose)}
	}
	return nil
}

// DateKey returns the bar's date as an ISO string (yyyy-mm-dd), the form
// used by the month-end calendar.
func (b Bar) DateKey() string {
	return b.Date.Format("2006-01-02")
}
