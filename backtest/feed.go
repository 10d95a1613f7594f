// Package backtest drives a strategy over a bar feed and collects the
// run's outputs.
package backtest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/backtester/market"
)

// BarFeed yields daily bars in ascending date order, one at a time.
// Implementations are forward-only and deterministic: Next returns
// (ok=false, err=nil) at end of data and is never called again after
// that. Re-running a backtest means acquiring a fresh feed.
type BarFeed interface {
	Next() (b market.Bar, ok bool, err error)
	Close() error
}

// SliceFeed replays an in-memory bar slice. Used by tests and by
// callers that already parsed their data.
type SliceFeed struct {
	bars []market.Bar
	idx  int
}

func NewSliceFeed(bars []market.Bar) *SliceFeed {
	return &SliceFeed{bars: bars}
}

func (f *SliceFeed) Next() (market.Bar, bool, error) {
	if f.idx >= len(f.bars) {
		return market.Bar{}, false, nil
	}
	b := f.bars[f.idx]
	f.idx++
	return b, true, nil
}

func (f *SliceFeed) Close() error { return nil }

// CSVFeed reads daily bars from a Yahoo-format CSV:
//
//	Date,Open,High,Low,Close,Adj Close,Volume
//
// with dates as yyyy-mm-dd. A header row is required. Rows are
// returned in file order; ordering is enforced downstream by the
// engine.
type CSVFeed struct {
	f   *os.File
	r   *csv.Reader
	row int

	sawHeader bool
}

func NewCSVFeed(path string) (*CSVFeed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	return &CSVFeed{f: f, r: r}, nil
}

func (f *CSVFeed) Close() error {
	if f.f != nil {
		return f.f.Close()
	}
	return nil
}

func (f *CSVFeed) Next() (market.Bar, bool, error) {
	for {
		row, err := f.r.Read()
		if err == io.EOF {
			return market.Bar{}, false, nil
		}
		if err != nil {
			return market.Bar{}, false, err
		}
		if len(row) == 0 {
			continue
		}

		if !f.sawHeader {
			f.sawHeader = true
			if strings.EqualFold(strings.TrimSpace(row[0]), "date") {
				continue
			}
		}

		b, err := parseBarRow(row, f.row)
		if err != nil {
			return market.Bar{}, false, err
		}
		f.row++
		return b, true, nil
	}
}

func parseBarRow(row []string, n int) (market.Bar, error) {
	if len(row) < 7 {
		return market.Bar{}, &market.MalformedBarError{
			Row:    n,
			Reason: fmt.Sprintf("want 7 columns (date,open,high,low,close,adj close,volume), got %d", len(row)),
		}
	}

	date, err := time.Parse("2006-01-02", strings.TrimSpace(row[0]))
	if err != nil {
		return market.Bar{}, &market.MalformedBarError{Row: n, Reason: fmt.Sprintf("bad date %q", row[0])}
	}

	vals := make([]float64, 6)
	for i := 1; i < 7; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(row[i]), 64)
		if err != nil {
			return market.Bar{}, &market.MalformedBarError{Row: n, Reason: fmt.Sprintf("bad number %q", row[i])}
		}
		vals[i-1] = v
	}

	b := market.Bar{
		Date:     date,
		Open:     vals[0],
		High:     vals[1],
		Low:      vals[2],
		Close:    vals[3],
		AdjClose: vals[4],
		Volume:   vals[5],
	}
	if err := b.Validate(n); err != nil {
		return market.Bar{}, err
	}
	return b, nil
}
