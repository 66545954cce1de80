package cmd

import (
	"fmt"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// formatMoney renders amount in currency using its symbol and minor units.
func formatMoney(amount float64, currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		return fmt.Sprintf("%.2f %s", amount, currency)
	}
	factor, _ := decimal.NewFromInt(10).PowInt32(int32(cur.Fraction))
	minor := decimal.NewFromFloat(amount).Mul(factor).Round(0)
	return money.New(minor.IntPart(), cur.Code).Display()
}

func formatPercent(x float64) string {
	return fmt.Sprintf("%+.2f%%", x)
}

func arrow(direction int) string {
	switch {
	case direction > 0:
		return "▲"
	case direction < 0:
		return "▼"
	default:
		return "•"
	}
}
