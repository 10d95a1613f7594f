package indicators

import (
	"fmt"
	"math"
)

// SMA is a streaming Simple Moving Average over the last period prices.
// It keeps a fixed-capacity ring of raw prices and a running sum, so an
// update is O(1): evict the oldest price, admit the new one.
type SMA struct {
	period int
	buf    []float64
	head   int
	count  int
	sum    float64
}

// NewSMA creates a Simple Moving Average with the given period.
// Period must be positive.
func NewSMA(period int) *SMA {
	if period <= 0 {
		panic(fmt.Sprintf("indicators: SMA period must be positive, got %d", period))
	}
	return &SMA{
		period: period,
		buf:    make([]float64, period),
	}
}

func (s *SMA) Name() string {
	return fmt.Sprintf("SMA(%d)", s.period)
}

func (s *SMA) Warmup() int {
	return s.period
}

func (s *SMA) Reset() {
	s.head = 0
	s.count = 0
	s.sum = 0
}

func (s *SMA) Update(price float64) {
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return
	}
	if s.count == s.period {
		s.sum -= s.buf[s.head]
	} else {
		s.count++
	}
	s.buf[s.head] = price
	s.sum += price
	s.head = (s.head + 1) % s.period
}

func (s *SMA) Ready() bool {
	return s.count == s.period
}

func (s *SMA) Value() float64 {
	if !s.Ready() {
		return 0
	}
	return s.sum / float64(s.period)
}

// EMA is a streaming Exponential Moving Average with smoothing factor
// 2/(period+1). The first defined value is the SMA of the first period
// prices; after that each update folds the new price into the previous
// smoothed value.
type EMA struct {
	period     int
	multiplier float64
	ema        float64
	count      int
	warmupSum  float64
}

// NewEMA creates an Exponential Moving Average with the given period.
// Period must be positive.
func NewEMA(period int) *EMA {
	if period <= 0 {
		panic(fmt.Sprintf("indicators: EMA period must be positive, got %d", period))
	}
	return &EMA{
		period:     period,
		multiplier: 2.0 / float64(period+1),
	}
}

func (e *EMA) Name() string {
	return fmt.Sprintf("EMA(%d)", e.period)
}

func (e *EMA) Warmup() int {
	return e.period
}

func (e *EMA) Reset() {
	e.ema = 0
	e.count = 0
	e.warmupSum = 0
}

func (e *EMA) Update(price float64) {
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return
	}
	if e.count < e.period {
		// Accumulate the SMA seed during warmup.
		e.warmupSum += price
		e.count++
		if e.count == e.period {
			e.ema = e.warmupSum / float64(e.period)
		}
		return
	}
	e.ema = (price-e.ema)*e.multiplier + e.ema
}

func (e *EMA) Ready() bool {
	return e.count >= e.period
}

func (e *EMA) Value() float64 {
	if !e.Ready() {
		return 0
	}
	return e.ema
}
