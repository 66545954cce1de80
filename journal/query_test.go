package journal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedFills(t *testing.T, j *SQLite) time.Time {
	t.Helper()

	t0 := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	fills := []Fill{
		{ID: "01", Time: t0, Side: Buy, Symbol: "AAA", Quantity: 10, Price: 100, CashAfter: -1000},
		{ID: "02", Time: t0.Add(time.Second), Side: Buy, Symbol: "AAA", Quantity: 10, Price: 200, CashAfter: -3000},
		{ID: "03", Time: t0.Add(2 * time.Second), Side: Buy, Symbol: "BBB", Quantity: 1, Price: 50, CashAfter: -3050},
		{ID: "04", Time: t0.Add(3 * time.Second), Side: Sell, Symbol: "AAA", Quantity: 15, Price: 150, CashAfter: -800},
	}
	for _, f := range fills {
		require.NoError(t, j.RecordFill(f))
	}
	return t0
}

func TestGetFill(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	defer j.Close()
	t0 := seedFills(t, j)

	f, err := j.GetFill("04")
	require.NoError(t, err)
	assert.Equal(t, Sell, f.Side)
	assert.Equal(t, "AAA", f.Symbol)
	assert.Equal(t, 15.0, f.Quantity)
	assert.Equal(t, 2250.0, f.Notional())
	assert.True(t, f.Time.Equal(t0.Add(3*time.Second)))

	_, err = j.GetFill("missing")
	assert.ErrorContains(t, err, "not found")
}

func TestListFills(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	defer j.Close()
	seedFills(t, j)

	all, err := j.ListFills("")
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, []string{"01", "02", "03", "04"}, []string{all[0].ID, all[1].ID, all[2].ID, all[3].ID})

	aaa, err := j.ListFills("AAA")
	require.NoError(t, err)
	assert.Len(t, aaa, 3)
	for _, f := range aaa {
		assert.Equal(t, "AAA", f.Symbol)
	}

	none, err := j.ListFills("ZZZ")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestListCash(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	defer j.Close()

	t0 := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, j.RecordCash(CashChange{Time: t0, Previous: 0, Balance: 50, Reason: "deposit"}))
	require.NoError(t, j.RecordCash(CashChange{Time: t0.Add(time.Minute), Previous: 50, Balance: 10, Reason: "set"}))

	got, err := j.ListCash()
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "deposit", got[0].Reason)
	assert.Equal(t, 10.0, got[1].Balance)
}
