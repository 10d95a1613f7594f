package journal

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

// SQLite persists trades and equity snapshots to a SQLite database.
// Decimal values are stored as REAL; the memory journal remains the
// exact source the analyzers read.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(trade_id, instrument, quantity, entry_price, exit_price, entry_time, exit_time, profit, return_pct, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TradeID, t.Instrument,
		t.Quantity.InexactFloat64(), t.EntryPrice.InexactFloat64(), t.ExitPrice.InexactFloat64(),
		t.EntryTime, t.ExitTime,
		t.Profit.InexactFloat64(), t.ReturnPct.InexactFloat64(), t.Reason,
	)
	return err
}

func (j *SQLite) RecordEquity(e EquitySnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO equity (time, cash, equity) VALUES (?, ?, ?)`,
		e.Time, e.Cash.InexactFloat64(), e.Equity.InexactFloat64(),
	)
	return err
}

// ListTradesClosedBetween returns trades with exit_time in [from, to),
// ordered by exit time.
func (j *SQLite) ListTradesClosedBetween(from, to time.Time) ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT trade_id, instrument, quantity, entry_price, exit_price,
		       entry_time, exit_time, profit, return_pct, reason
		FROM trades
		WHERE exit_time >= ? AND exit_time < ?
		ORDER BY exit_time`,
		from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		var t TradeRecord
		var qty, entry, exit, profit, ret float64
		if err := rows.Scan(
			&t.TradeID, &t.Instrument, &qty, &entry, &exit,
			&t.EntryTime, &t.ExitTime, &profit, &ret, &t.Reason,
		); err != nil {
			return nil, err
		}
		t.Quantity = decimal.NewFromFloat(qty)
		t.EntryPrice = decimal.NewFromFloat(entry)
		t.ExitPrice = decimal.NewFromFloat(exit)
		t.Profit = decimal.NewFromFloat(profit)
		t.ReturnPct = decimal.NewFromFloat(ret)
		out = append(out, t)
	}
	return out, rows.Err()
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
