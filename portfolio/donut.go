package portfolio

// Segment is one arc of an allocation ring.
type Segment struct {
	Symbol  string  `json:"symbol"`
	Percent float64 `json:"percent"`
	Length  float64 `json:"length"`
	Offset  float64 `json:"offset"`
}

// Donut lays the allocation of metrics around a circle of circumference c.
// Segments follow input order starting from the zero point; when the percents
// sum to 100 they cover the ring exactly once.
func Donut(c float64, metrics []Metrics) []Segment {
	out := make([]Segment, 0, len(metrics))
	var before float64
	for _, m := range metrics {
		out = append(out, Segment{
			Symbol:  m.Symbol,
			Percent: m.Percent,
			Length:  c * m.Percent / 100,
			Offset:  c * (1 - before/100),
		})
		before += m.Percent
	}
	return out
}
