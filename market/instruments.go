// market/instruments.go
package market

// Instrument is the static reference data for a tradable symbol.
// Instruments are loaded once and never mutated.
type Instrument struct {
	ID       string `json:"id,omitempty"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

// Quote is one row of the pricing feed. It doubles as the seed for the
// price simulator.
type Quote struct {
	ID     string  `json:"id"`
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
}

// Product is a catalog entry: an instrument joined with its reference price.
type Product struct {
	ID       string  `json:"id"`
	Symbol   string  `json:"symbol"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
}

func (p Product) Instrument() Instrument {
	return Instrument{
		ID:       p.ID,
		Symbol:   p.Symbol,
		Name:     p.Name,
		Category: p.Category,
	}
}

func (p Product) Quote() Quote {
	return Quote{ID: p.ID, Symbol: p.Symbol, Price: p.Price}
}

// Quotes returns the seed prices of a catalog, in catalog order.
func Quotes(products []Product) []Quote {
	out := make([]Quote, 0, len(products))
	for _, p := range products {
		out = append(out, p.Quote())
	}
	return out
}

// FindProduct returns the first product with the given symbol.
func FindProduct(products []Product, symbol string) (Product, bool) {
	for _, p := range products {
		if p.Symbol == symbol {
			return p, true
		}
	}
	return Product{}, false
}
