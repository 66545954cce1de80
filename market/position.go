package market

// Position is a holding of Quantity units of Symbol at a weighted average cost.
// The JSON layout matches the bundled portfolio.json asset.
type Position struct {
	ID          string  `json:"id"`
	Symbol      string  `json:"symbol"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Quantity    float64 `json:"quantity"`
	AvgBuyPrice float64 `json:"avgBuyPrice"`
}

// CostBasis is what the position cost at its average buy price.
func (p Position) CostBasis() float64 {
	return p.Quantity * p.AvgBuyPrice
}

// ClonePositions returns a copy that can be handed out without aliasing.
func ClonePositions(ps []Position) []Position {
	if ps == nil {
		return []Position{}
	}
	out := make([]Position, len(ps))
	copy(out, ps)
	return out
}

// Holdings pairs every position with the cash balance at the same instant.
type Holdings struct {
	Positions []Position `json:"positions"`
	Cash      float64    `json:"cash"`
}
