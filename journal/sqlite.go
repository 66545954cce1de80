package journal

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

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
		return nil, fmt.Errorf("create journal schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordFill(f Fill) error {
	_, err := j.db.Exec(`
		INSERT INTO fills
		(fill_id, time, side, symbol, quantity, price, cash_after)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.Time, string(f.Side), f.Symbol, f.Quantity, f.Price, f.CashAfter,
	)
	return err
}

func (j *SQLite) RecordCash(c CashChange) error {
	_, err := j.db.Exec(`
		INSERT INTO cash
		(time, previous, balance, reason)
		VALUES (?, ?, ?, ?)`,
		c.Time, c.Previous, c.Balance, c.Reason,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
