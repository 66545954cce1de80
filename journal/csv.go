// journal/csv.go
package journal

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"
)

type CSV struct {
	fills  *csv.Writer
	cash   *csv.Writer
	ff, cf *os.File
}

var (
	fillsHeader = []string{"fill_id", "time", "side", "symbol", "quantity", "price", "cash_after"}
	cashHeader  = []string{"time", "previous", "balance", "reason"}
)

// NewCSV opens the fills and cash logs for appending. A header row is written
// only to a file that is still empty, so earlier sessions are kept.
func NewCSV(fillsPath, cashPath string) (*CSV, error) {
	ff, fw, err := openLog(fillsPath, fillsHeader)
	if err != nil {
		return nil, err
	}
	cf, cw, err := openLog(cashPath, cashHeader)
	if err != nil {
		ff.Close()
		return nil, err
	}
	return &CSV{fw, cw, ff, cf}, nil
}

func openLog(path string, header []string) (*os.File, *csv.Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := writeRow(w, header); err != nil {
			f.Close()
			return nil, nil, fmt.Errorf("write header %s: %w", path, err)
		}
	}
	return f, w, nil
}

func (j *CSV) RecordFill(f Fill) error {
	return writeRow(j.fills, []string{
		f.ID,
		f.Time.Format(time.RFC3339),
		string(f.Side),
		f.Symbol,
		num(f.Quantity),
		num(f.Price),
		num(f.CashAfter),
	})
}

func (j *CSV) RecordCash(c CashChange) error {
	return writeRow(j.cash, []string{
		c.Time.Format(time.RFC3339),
		num(c.Previous),
		num(c.Balance),
		c.Reason,
	})
}

func (j *CSV) Close() error {
	j.fills.Flush()
	if err := j.fills.Error(); err != nil {
		return err
	}
	j.cash.Flush()
	if err := j.cash.Error(); err != nil {
		return err
	}

	if err := j.ff.Close(); err != nil {
		return err
	}
	if err := j.cf.Close(); err != nil {
		return err
	}
	return nil
}

func writeRow(w *csv.Writer, row []string) error {
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func num(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
