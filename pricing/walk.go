package pricing

import (
	"math"

	"github.com/rustyeddy/stakesim/market"
	"github.com/shopspring/decimal"
)

// Volatility scales the uniform draw into a symmetric move of at most ±1%.
const Volatility = 0.02

// NextPrice applies one random-walk step to price. u must be a uniform draw
// from [0, 1); it is centred to [-0.5, 0.5) here. The result is rounded to
// cents and never falls below market.MinPrice.
func NextPrice(price, u float64) float64 {
	delta := price * (u - 0.5) * Volatility
	return math.Max(market.MinPrice, Round2(price+delta))
}

// Round2 rounds x to two decimal places, half away from zero.
func Round2(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	return decimal.NewFromFloat(x).Round(2).InexactFloat64()
}
