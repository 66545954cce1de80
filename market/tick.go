package market

import (
	"encoding/json"
)

const (
	// HistorySize is the number of recent prices each tick keeps.
	HistorySize = 30

	// MinPrice is the floor applied to every simulated price.
	MinPrice = 0.01
)

// History is a fixed capacity ring of the most recent prices, oldest first.
// It is a value type so copies handed to subscribers never alias the store.
type History struct {
	vals  [HistorySize]float64
	start int
	n     int
}

// NewHistory returns a full history holding HistorySize copies of price.
func NewHistory(price float64) History {
	var h History
	for i := range h.vals {
		h.vals[i] = price
	}
	h.n = HistorySize
	return h
}

// Push appends v, evicting the oldest entry once the ring is full.
func (h *History) Push(v float64) {
	if h.n < HistorySize {
		h.vals[(h.start+h.n)%HistorySize] = v
		h.n++
		return
	}
	h.vals[h.start] = v
	h.start = (h.start + 1) % HistorySize
}

func (h History) Len() int { return h.n }

// At returns the i-th entry, 0 being the oldest.
func (h History) At(i int) float64 {
	if i < 0 || i >= h.n {
		return 0
	}
	return h.vals[(h.start+i)%HistorySize]
}

// Last returns the newest entry, or 0 for an empty history.
func (h History) Last() float64 {
	if h.n == 0 {
		return 0
	}
	return h.At(h.n - 1)
}

// Values returns the entries in chronological order.
func (h History) Values() []float64 {
	out := make([]float64, h.n)
	for i := range out {
		out[i] = h.At(i)
	}
	return out
}

// Min and Max are used by sparkline renderers to scale the y axis.
func (h History) Min() float64 {
	if h.n == 0 {
		return 0
	}
	m := h.At(0)
	for i := 1; i < h.n; i++ {
		if v := h.At(i); v < m {
			m = v
		}
	}
	return m
}

func (h History) Max() float64 {
	if h.n == 0 {
		return 0
	}
	m := h.At(0)
	for i := 1; i < h.n; i++ {
		if v := h.At(i); v > m {
			m = v
		}
	}
	return m
}

func (h History) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.Values())
}

func (h *History) UnmarshalJSON(data []byte) error {
	var vals []float64
	if err := json.Unmarshal(data, &vals); err != nil {
		return err
	}
	*h = History{}
	for _, v := range vals {
		h.Push(v)
	}
	return nil
}

// PriceTick is the simulated state of one instrument.
// Price always equals History.Last().
type PriceTick struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	PrevPrice float64 `json:"prevPrice"`
	History   History `json:"history"`
}

// NewPriceTick seeds a tick with a flat history at price.
func NewPriceTick(symbol string, price float64) PriceTick {
	return PriceTick{
		Symbol:    symbol,
		Price:     price,
		PrevPrice: price,
		History:   NewHistory(price),
	}
}

// Change is the move since the previous tick.
func (t PriceTick) Change() float64 {
	return t.Price - t.PrevPrice
}

// ChangePercent is Change relative to the previous price.
func (t PriceTick) ChangePercent() float64 {
	if t.PrevPrice == 0 {
		return 0
	}
	return (t.Price - t.PrevPrice) / t.PrevPrice * 100
}

// Direction is +1 for an uptick, -1 for a downtick and 0 otherwise.
func (t PriceTick) Direction() int {
	switch {
	case t.Price > t.PrevPrice:
		return 1
	case t.Price < t.PrevPrice:
		return -1
	}
	return 0
}
