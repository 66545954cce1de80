package portfolio

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rustyeddy/stakesim/market"
	"github.com/rustyeddy/stakesim/pubsub"
	"github.com/shopspring/decimal"
)

// Summary is the whole portfolio at one instant.
type Summary struct {
	Metrics    []Metrics `json:"metrics"`
	TotalValue float64   `json:"totalValue"`
	TotalCost  float64   `json:"totalCost"`
	Cash       float64   `json:"cash"`
}

func (s Summary) Gain() float64 {
	return s.TotalValue - s.TotalCost
}

// GainPercent is the unrealized gain over cost, 0 with nothing held.
func (s Summary) GainPercent() float64 {
	if s.TotalCost == 0 {
		return 0
	}
	return s.Gain() / s.TotalCost * 100
}

// NetWorth is holdings plus cash.
func (s Summary) NetWorth() float64 {
	return decimal.NewFromFloat(s.TotalValue).Add(decimal.NewFromFloat(s.Cash)).InexactFloat64()
}

// Summarize values positions against prices.
func Summarize(positions []market.Position, prices map[string]market.PriceTick, cash float64) Summary {
	m := ComputeMetrics(positions, prices)
	return Summary{
		Metrics:    m,
		TotalValue: TotalValue(m),
		TotalCost:  TotalCost(m),
		Cash:       cash,
	}
}

// HoldingsFeed delivers positions and cash as one snapshot per change.
type HoldingsFeed interface {
	SubscribeHoldings() *pubsub.Subscription[market.Holdings]
}

type PriceFeed interface {
	SubscribeAll() *pubsub.Subscription[map[string]market.PriceTick]
}

// Valuator keeps a Summary current as holdings and prices move. Positions
// and cash always come from the same snapshot; a summary may still pair a
// fresh trade with a price from the previous tick.
type Valuator struct {
	holdings HoldingsFeed
	prices   PriceFeed

	topic *pubsub.Topic[Summary]
	log   zerolog.Logger
}

type Option func(*Valuator)

func WithLogger(l zerolog.Logger) Option {
	return func(v *Valuator) { v.log = l.With().Str("component", "valuator").Logger() }
}

func NewValuator(holdings HoldingsFeed, prices PriceFeed, opts ...Option) *Valuator {
	v := &Valuator{
		holdings: holdings,
		prices:   prices,
		topic:    pubsub.NewTopic[Summary](),
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Subscribe follows every recomputed summary, starting with the latest one
// when Run has produced any.
func (v *Valuator) Subscribe() *pubsub.Subscription[Summary] {
	return v.topic.Subscribe()
}

func (v *Valuator) Latest() (Summary, bool) {
	return v.topic.Latest()
}

// Run recomputes on every input change until ctx is done or an input feed
// closes. Subscribers are closed when Run returns.
func (v *Valuator) Run(ctx context.Context) error {
	hs := v.holdings.SubscribeHoldings()
	defer hs.Close()
	qs := v.prices.SubscribeAll()
	defer qs.Close()
	defer v.topic.Close()

	var (
		holdings market.Holdings
		prices   map[string]market.PriceTick
	)

	for {
		select {
		case <-ctx.Done():
			return nil
		case h, ok := <-hs.C():
			if !ok {
				v.log.Debug().Msg("holdings feed closed")
				return nil
			}
			holdings = h
		case q, ok := <-qs.C():
			if !ok {
				v.log.Debug().Msg("price feed closed")
				return nil
			}
			prices = q
		}

		s := Summarize(holdings.Positions, prices, holdings.Cash)
		v.topic.Publish(s)
		v.log.Trace().Float64("value", s.TotalValue).Float64("cash", s.Cash).Msg("revalued")
	}
}
