package journal

import (
	"fmt"
	"strings"
	"time"
)

// FormatFillOrg renders a Fill as an Org-mode heading with its facts in a
// PROPERTIES drawer and an empty Notes section.
func FormatFillOrg(f Fill) string {
	var b strings.Builder
	fmt.Fprintf(&b, "** %s %s (%s)\n", f.Side, f.Symbol, shortID(f.ID))
	b.WriteString(":PROPERTIES:\n")
	fmt.Fprintf(&b, ":ID: %s\n", f.ID)
	fmt.Fprintf(&b, ":TIME: %s\n", f.Time.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, ":SIDE: %s\n", f.Side)
	fmt.Fprintf(&b, ":SYMBOL: %s\n", f.Symbol)
	fmt.Fprintf(&b, ":QUANTITY: %g\n", f.Quantity)
	fmt.Fprintf(&b, ":PRICE: %.2f\n", f.Price)
	fmt.Fprintf(&b, ":NOTIONAL: %.2f\n", f.Notional())
	fmt.Fprintf(&b, ":CASH_AFTER: %.2f\n", f.CashAfter)
	b.WriteString(":END:\n")
	b.WriteString("\n")
	b.WriteString("*** Notes\n- \n")
	return b.String()
}

// FormatFillsOrg renders multiple fills separated by blank lines.
func FormatFillsOrg(fills []Fill) string {
	var b strings.Builder
	for i, f := range fills {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(FormatFillOrg(f))
	}
	return b.String()
}

// shortID keeps the random tail of a ULID; the head is the timestamp.
func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[len(full)-8:]
}
