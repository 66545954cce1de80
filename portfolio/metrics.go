// Package portfolio derives valuation figures from holdings and live prices.
//
// Everything here is recomputed from scratch on demand. Nothing mutates the
// ledger or the price store.
package portfolio

import (
	"github.com/rustyeddy/stakesim/market"
	"github.com/shopspring/decimal"
)

// Metrics is one position valued at the current price.
type Metrics struct {
	market.Position

	CurrentPrice float64 `json:"currentPrice"`
	TotalValue   float64 `json:"totalValue"`
	InitialValue float64 `json:"initialValue"`
	// PercentDiff is the unrealized gain relative to cost, in percent.
	PercentDiff float64 `json:"percentDiff"`
	// Percent is this position's share of the total held quantity, in percent.
	Percent float64 `json:"percent"`
}

// Gain is the unrealized profit or loss.
func (m Metrics) Gain() float64 {
	return m.TotalValue - m.InitialValue
}

// ComputeMetrics values each position in order. A symbol without a live
// price is valued at its average buy price.
func ComputeMetrics(positions []market.Position, prices map[string]market.PriceTick) []Metrics {
	var qtySum float64
	for _, p := range positions {
		qtySum += p.Quantity
	}

	out := make([]Metrics, 0, len(positions))
	for _, p := range positions {
		price := p.AvgBuyPrice
		if t, ok := prices[p.Symbol]; ok {
			price = t.Price
		}

		m := Metrics{
			Position:     p,
			CurrentPrice: price,
			TotalValue:   p.Quantity * price,
			InitialValue: p.Quantity * p.AvgBuyPrice,
		}
		if m.InitialValue != 0 {
			m.PercentDiff = (m.TotalValue - m.InitialValue) / m.InitialValue * 100
		}
		if qtySum != 0 {
			m.Percent = p.Quantity / qtySum * 100
		}
		out = append(out, m)
	}
	return out
}

// TotalValue sums the market value of every position.
func TotalValue(metrics []Metrics) float64 {
	return sum(metrics, func(m Metrics) float64 { return m.TotalValue })
}

// TotalCost sums what was paid for every position still held.
func TotalCost(metrics []Metrics) float64 {
	return sum(metrics, func(m Metrics) float64 { return m.InitialValue })
}

func TotalGain(metrics []Metrics) float64 {
	return TotalValue(metrics) - TotalCost(metrics)
}

func sum(metrics []Metrics, f func(Metrics) float64) float64 {
	total := decimal.Zero
	for _, m := range metrics {
		total = total.Add(decimal.NewFromFloat(f(m)))
	}
	return total.InexactFloat64()
}
