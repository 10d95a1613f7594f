package journal

// Memory keeps every record in insertion order. It is the journal the
// analyzers read at the end of a run.
type Memory struct {
	trades []TradeRecord
	equity []EquitySnapshot
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) RecordTrade(r TradeRecord) error {
	m.trades = append(m.trades, r)
	return nil
}

func (m *Memory) RecordEquity(e EquitySnapshot) error {
	m.equity = append(m.equity, e)
	return nil
}

func (m *Memory) Close() error { return nil }

// Trades returns the trade ledger in close order. The slice is owned by
// the journal; callers must not mutate it.
func (m *Memory) Trades() []TradeRecord { return m.trades }

// Equity returns the per-bar equity history in bar order.
func (m *Memory) Equity() []EquitySnapshot { return m.equity }
