package journal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCSVJournalHeaders(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fillsPath := filepath.Join(dir, "fills.csv")
	cashPath := filepath.Join(dir, "cash.csv")

	j, err := NewCSV(fillsPath, cashPath)
	require.NoError(t, err)
	assert.NoError(t, j.Close())

	fills := readCSV(t, fillsPath)
	cash := readCSV(t, cashPath)

	assert.Equal(t, [][]string{{"fill_id", "time", "side", "symbol", "quantity", "price", "cash_after"}}, fills)
	assert.Equal(t, [][]string{{"time", "previous", "balance", "reason"}}, cash)
}

func TestCSVJournalRecordFill(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fillsPath := filepath.Join(dir, "fills.csv")
	cashPath := filepath.Join(dir, "cash.csv")

	j, err := NewCSV(fillsPath, cashPath)
	require.NoError(t, err)

	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, j.RecordFill(Fill{
		ID:        "F1",
		Time:      ts,
		Side:      Sell,
		Symbol:    "AAA",
		Quantity:  5,
		Price:     150,
		CashAfter: 0,
	}))

	// rows are flushed as they are written
	rows := readCSV(t, fillsPath)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"F1", "2024-01-02T03:04:05Z", "SELL", "AAA", "5.000000", "150.000000", "0.000000"}, rows[1])

	assert.NoError(t, j.Close())
}

func TestCSVJournalRecordCash(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fillsPath := filepath.Join(dir, "fills.csv")
	cashPath := filepath.Join(dir, "cash.csv")

	j, err := NewCSV(fillsPath, cashPath)
	require.NoError(t, err)

	ts := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)
	require.NoError(t, j.RecordCash(CashChange{Time: ts, Previous: -750, Balance: -700, Reason: "deposit"}))
	require.NoError(t, j.Close())

	rows := readCSV(t, cashPath)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"2024-02-03T04:05:06Z", "-750.000000", "-700.000000", "deposit"}, rows[1])
}

func TestCSVJournalBadPath(t *testing.T) {
	t.Parallel()

	_, err := NewCSV(filepath.Join(t.TempDir(), "missing", "fills.csv"), "cash.csv")
	assert.Error(t, err)
}

func TestCSVJournalReopenAppends(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fillsPath := filepath.Join(dir, "fills.csv")
	cashPath := filepath.Join(dir, "cash.csv")
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	j, err := NewCSV(fillsPath, cashPath)
	require.NoError(t, err)
	require.NoError(t, j.RecordFill(Fill{ID: "F1", Time: ts, Side: Buy, Symbol: "AAA", Quantity: 1, Price: 100, CashAfter: -100}))
	require.NoError(t, j.RecordCash(CashChange{Time: ts, Previous: -100, Balance: 0, Reason: "set"}))
	require.NoError(t, j.Close())

	j, err = NewCSV(fillsPath, cashPath)
	require.NoError(t, err)
	require.NoError(t, j.RecordFill(Fill{ID: "F2", Time: ts, Side: Sell, Symbol: "AAA", Quantity: 1, Price: 101, CashAfter: 101}))
	require.NoError(t, j.Close())

	fills := readCSV(t, fillsPath)
	require.Len(t, fills, 3)
	assert.Equal(t, "fill_id", fills[0][0])
	assert.Equal(t, []string{"F1", "2024-01-02T03:04:05Z", "BUY", "AAA", "1.000000", "100.000000", "-100.000000"}, fills[1])
	assert.Equal(t, "F2", fills[2][0])

	cash := readCSV(t, cashPath)
	require.Len(t, cash, 2)
	assert.Equal(t, "set", cash[1][3])
}
