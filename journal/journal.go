// journal/journal.go
package journal

import "time"

type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// Fill is one executed buy or sell against the ledger.
type Fill struct {
	ID        string
	Time      time.Time
	Side      Side
	Symbol    string
	Quantity  float64
	Price     float64
	CashAfter float64
}

// Notional is the cash that changed hands.
func (f Fill) Notional() float64 {
	return f.Quantity * f.Price
}

// CashChange records an explicit overwrite of the cash balance.
type CashChange struct {
	Time     time.Time
	Previous float64
	Balance  float64
	Reason   string
}

type Journal interface {
	RecordFill(Fill) error
	RecordCash(CashChange) error
	Close() error
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordFill(Fill) error       { return nil }
func (Nop) RecordCash(CashChange) error { return nil }
func (Nop) Close() error                { return nil }
