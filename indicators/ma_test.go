package indicators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSMA(t *testing.T) {
	prices := []float64{102, 105, 106, 108, 110}

	t.Run("null until window is full", func(t *testing.T) {
		sma := NewSMA(3)
		assert.Equal(t, "SMA(3)", sma.Name())
		assert.Equal(t, 3, sma.Warmup())
		assert.False(t, sma.Ready())
		assert.Equal(t, 0.0, sma.Value())

		sma.Update(prices[0])
		assert.False(t, sma.Ready())
		sma.Update(prices[1])
		assert.False(t, sma.Ready())

		sma.Update(prices[2])
		assert.True(t, sma.Ready())
		assert.InDelta(t, (102.0+105.0+106.0)/3.0, sma.Value(), 1e-9)
	})

	t.Run("slides over the last n prices", func(t *testing.T) {
		sma := NewSMA(3)
		for _, p := range prices {
			sma.Update(p)
		}
		assert.InDelta(t, (106.0+108.0+110.0)/3.0, sma.Value(), 1e-9)
	})

	t.Run("stays defined once ready", func(t *testing.T) {
		sma := NewSMA(2)
		for _, p := range prices {
			sma.Update(p)
			if sma.Ready() {
				break
			}
		}
		for _, p := range prices {
			sma.Update(p)
			assert.True(t, sma.Ready())
		}
	})

	t.Run("skips non-finite prices without corrupting state", func(t *testing.T) {
		sma := NewSMA(2)
		sma.Update(10)
		sma.Update(math.NaN())
		assert.False(t, sma.Ready())
		sma.Update(math.Inf(1))
		assert.False(t, sma.Ready())

		sma.Update(20)
		assert.True(t, sma.Ready())
		assert.InDelta(t, 15.0, sma.Value(), 1e-9)
	})

	t.Run("reset clears state", func(t *testing.T) {
		sma := NewSMA(2)
		sma.Update(10)
		sma.Update(20)
		assert.True(t, sma.Ready())

		sma.Reset()
		assert.False(t, sma.Ready())
		assert.Equal(t, 0.0, sma.Value())
	})

	t.Run("rejects non-positive period", func(t *testing.T) {
		assert.Panics(t, func() { NewSMA(0) })
	})
}

func TestEMA(t *testing.T) {
	prices := []float64{102, 105, 106, 108, 110, 111, 113}

	t.Run("seed equals SMA of first n prices", func(t *testing.T) {
		ema := NewEMA(3)
		sma := NewSMA(3)

		for i := 0; i < 3; i++ {
			ema.Update(prices[i])
			sma.Update(prices[i])
		}
		assert.True(t, ema.Ready())
		assert.InDelta(t, sma.Value(), ema.Value(), 1e-9)
	})

	t.Run("applies smoothing after the seed", func(t *testing.T) {
		ema := NewEMA(3)
		for i := 0; i < 4; i++ {
			ema.Update(prices[i])
		}
		// alpha = 2/(3+1) = 0.5
		seed := (102.0 + 105.0 + 106.0) / 3.0
		want := (108.0-seed)*0.5 + seed
		assert.InDelta(t, want, ema.Value(), 1e-9)
	})

	t.Run("null until warmup", func(t *testing.T) {
		ema := NewEMA(5)
		assert.Equal(t, "EMA(5)", ema.Name())
		for i := 0; i < 4; i++ {
			ema.Update(prices[i])
			assert.False(t, ema.Ready())
		}
		ema.Update(prices[4])
		assert.True(t, ema.Ready())
	})

	t.Run("skips non-finite prices", func(t *testing.T) {
		a := NewEMA(2)
		b := NewEMA(2)
		for _, p := range prices[:4] {
			a.Update(p)
			b.Update(p)
			b.Update(math.NaN())
		}
		assert.InDelta(t, a.Value(), b.Value(), 1e-9)
	})

	t.Run("reset clears state", func(t *testing.T) {
		ema := NewEMA(2)
		ema.Update(10)
		ema.Update(20)
		assert.True(t, ema.Ready())

		ema.Reset()
		assert.False(t, ema.Ready())
		assert.Equal(t, 0.0, ema.Value())
	})
}

func TestIndicatorInterface(t *testing.T) {
	var _ Indicator = &SMA{}
	var _ Indicator = &EMA{}
}
