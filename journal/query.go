package journal

import (
	"database/sql"
	"errors"
	"fmt"
)

// GetFill returns a single fill by ID.
func (j *SQLite) GetFill(id string) (Fill, error) {
	row := j.db.QueryRow(`
		SELECT fill_id, time, side, symbol, quantity, price, cash_after
		FROM fills
		WHERE fill_id = ?`, id)

	f, err := scanFill(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Fill{}, fmt.Errorf("fill %q not found", id)
		}
		return Fill{}, err
	}
	return f, nil
}

// ListFills returns fills in time order. An empty symbol lists every fill.
func (j *SQLite) ListFills(symbol string) ([]Fill, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if symbol == "" {
		rows, err = j.db.Query(`
			SELECT fill_id, time, side, symbol, quantity, price, cash_after
			FROM fills
			ORDER BY time ASC, fill_id ASC`)
	} else {
		rows, err = j.db.Query(`
			SELECT fill_id, time, side, symbol, quantity, price, cash_after
			FROM fills
			WHERE symbol = ?
			ORDER BY time ASC, fill_id ASC`, symbol)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Fill
	for rows.Next() {
		f, err := scanFill(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListCash returns cash changes in time order.
func (j *SQLite) ListCash() ([]CashChange, error) {
	rows, err := j.db.Query(`
		SELECT time, previous, balance, reason
		FROM cash
		ORDER BY time ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CashChange
	for rows.Next() {
		var c CashChange
		if err := rows.Scan(&c.Time, &c.Previous, &c.Balance, &c.Reason); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFill(s scanner) (Fill, error) {
	var (
		f    Fill
		side string
	)
	err := s.Scan(&f.ID, &f.Time, &side, &f.Symbol, &f.Quantity, &f.Price, &f.CashAfter)
	f.Side = Side(side)
	return f, err
}
