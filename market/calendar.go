package market

import (
	"fmt"
	"time"
)

// Calendar answers "is this date the last trading day of its month?".
// The dates normally come from an external exchange-calendar service;
// DeriveMonthEnds builds the same set from a bar series when no service
// is available.
type Calendar struct {
	monthEnds map[string]struct{}
}

// NewCalendar builds a calendar from ISO date strings (yyyy-mm-dd).
func NewCalendar(isoDates []string) (*Calendar, error) {
	ends := make(map[string]struct{}, len(isoDates))
	for _, d := range isoDates {
		if _, err := time.Parse("2006-01-02", d); err != nil {
			return nil, fmt.Errorf("calendar: bad date %q: %w", d, err)
		}
		ends[d] = struct{}{}
	}
	return &Calendar{monthEnds: ends}, nil
}

// IsMonthEnd reports whether t falls on a month-end trading day.
func (c *Calendar) IsMonthEnd(t time.Time) bool {
	_, ok := c.monthEnds[t.Format("2006-01-02")]
	return ok
}

// Len returns the number of month-end days in the calendar.
func (c *Calendar) Len() int { return len(c.monthEnds) }

// DeriveMonthEnds scans date-ascending bars and keeps the last bar date
// seen in each calendar month. It is a stand-in for an exchange calendar
// when the bar series itself already excludes holidays.
func DeriveMonthEnds(bars []Bar) *Calendar {
	ends := make(map[string]struct{})
	var prev Bar
	havePrev := false
	for _, b := range bars {
		if havePrev {
			py, pm, _ := prev.Date.Date()
			cy, cm, _ := b.Date.Date()
			if py != cy || pm != cm {
				ends[prev.DateKey()] = struct{}{}
			}
		}
		prev = b
		havePrev = true
	}
	if havePrev {
		ends[prev.DateKey()] = struct{}{}
	}
	return &Calendar{monthEnds: ends}
}
