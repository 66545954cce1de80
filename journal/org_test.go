package journal

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatFillOrg(t *testing.T) {
	t.Parallel()

	fill := Fill{
		ID:        "01HV3K9Z8Q4W7XJ2N6M5R1T0AB",
		Time:      time.Date(2024, 3, 15, 10, 30, 45, 0, time.UTC),
		Side:      Buy,
		Symbol:    "NVDA",
		Quantity:  20,
		Price:     98.75,
		CashAfter: -1975,
	}

	result := FormatFillOrg(fill)

	assert.Contains(t, result, "** BUY NVDA (M5R1T0AB)")
	assert.Contains(t, result, ":PROPERTIES:")
	assert.Contains(t, result, ":ID: 01HV3K9Z8Q4W7XJ2N6M5R1T0AB")
	assert.Contains(t, result, ":TIME: 2024-03-15T10:30:45Z")
	assert.Contains(t, result, ":QUANTITY: 20")
	assert.Contains(t, result, ":PRICE: 98.75")
	assert.Contains(t, result, ":NOTIONAL: 1975.00")
	assert.Contains(t, result, ":CASH_AFTER: -1975.00")
	assert.Contains(t, result, ":END:")
	assert.Contains(t, result, "*** Notes")
}

func TestFormatFillOrgShortID(t *testing.T) {
	t.Parallel()

	result := FormatFillOrg(Fill{ID: "short", Side: Sell, Symbol: "ETH", Quantity: 1.5, Price: 3000})
	assert.Contains(t, result, "** SELL ETH (short)")
	assert.Contains(t, result, ":QUANTITY: 1.5")
}

func TestFormatFillsOrg(t *testing.T) {
	t.Parallel()

	fills := []Fill{
		{ID: "a", Side: Buy, Symbol: "AAA"},
		{ID: "b", Side: Sell, Symbol: "BBB"},
	}

	result := FormatFillsOrg(fills)
	assert.Equal(t, 2, strings.Count(result, ":PROPERTIES:"))
	assert.Contains(t, result, "\n\n\n** SELL BBB (b)")

	assert.Empty(t, FormatFillsOrg(nil))
}
