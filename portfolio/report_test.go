package portfolio

import (
	"bytes"
	"testing"
	"time"

	"github.com/rustyeddy/stakesim/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportWriteOrg(t *testing.T) {
	t.Parallel()

	sum := Summarize(
		[]market.Position{
			{Symbol: "AAA", Category: "Stocks", Quantity: 10, AvgBuyPrice: 100},
			{Symbol: "BBB", Category: "Crypto", Quantity: 30, AvgBuyPrice: 20},
		},
		map[string]market.PriceTick{"AAA": tick("AAA", 110)},
		-250,
	)

	var buf bytes.Buffer
	err := Report{
		Summary: sum,
		Created: time.Date(2024, 3, 15, 14, 20, 0, 0, time.UTC),
		Title:   "weekly",
		Notes:   []string{"rebalance crypto"},
	}.WriteOrg(&buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "* PORTFOLIO: weekly")
	assert.Contains(t, out, ":CREATED:     [2024-03-15 Fri 14:20]")
	assert.Contains(t, out, ":POSITIONS:   2")
	assert.Contains(t, out, ":TOTAL_VALUE: 1700.00")
	assert.Contains(t, out, ":GAIN:        100.00")
	assert.Contains(t, out, ":NET_WORTH:   1450.00")
	assert.Contains(t, out, "| AAA | Stocks | 10 | 100.00 | 110.00 | 1100.00 | 10.00 | 25.00 |")
	assert.Contains(t, out, "| BBB | Crypto | 30 | 20.00 | 20.00 | 600.00 | 0.00 | 75.00 |")
	assert.Contains(t, out, "- rebalance crypto")
}

func TestReportWithoutNotes(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Report{}.WriteOrg(&buf))
	assert.Contains(t, buf.String(), "* PORTFOLIO: snapshot")
	assert.NotContains(t, buf.String(), "** Notes")
}
