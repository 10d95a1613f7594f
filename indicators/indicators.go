// Package indicators provides streaming technical indicators over a
// price series. Indicators are fed one closed bar's price at a time and
// report no value until their warmup window is full.
package indicators

// Indicator computes a single streaming value from a price series.
// It is deterministic: the same sequence of updates always produces the
// same sequence of values.
type Indicator interface {
	// Name returns a stable identifier like "SMA(20)" or "EMA(50)".
	Name() string

	// Warmup returns how many updates are needed before Ready() is true.
	Warmup() int

	// Reset clears all internal state.
	Reset()

	// Update consumes the next price. Non-finite prices are skipped and
	// leave the indicator state untouched.
	Update(price float64)

	// Ready reports whether Value() is meaningful (warmup completed).
	// Once ready an indicator stays ready.
	Ready() bool

	// Value returns the current indicator value. Callers must check
	// Ready() first; before warmup it returns 0.
	Value() float64
}
