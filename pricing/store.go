// Package pricing simulates and broadcasts instrument prices.
//
// A Store is seeded once with reference prices and then advanced by Tick,
// either directly or from Run on a fixed interval. Every tick mutates all
// tracked symbols before anything is published, so subscribers never see a
// half-updated market.
package pricing

import (
	"math"
	"math/rand/v2"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/rustyeddy/stakesim/market"
	"github.com/rustyeddy/stakesim/pubsub"
)

type Store struct {
	mu          sync.Mutex
	ticks       map[string]*market.PriceTick
	order       []string
	topics      map[string]*pubsub.Topic[market.PriceTick]
	all         *pubsub.Topic[map[string]market.PriceTick]
	initialized bool
	enabled     atomic.Bool
	ticked      atomic.Uint64

	rnd    func() float64
	log    zerolog.Logger
	buffer int
}

type Option func(*Store)

// WithRand replaces the uniform [0, 1) source used for price moves.
func WithRand(f func() float64) Option {
	return func(s *Store) { s.rnd = f }
}

// WithSeed makes the random walk reproducible.
func WithSeed(seed uint64) Option {
	return func(s *Store) {
		r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
		s.rnd = r.Float64
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.log = l.With().Str("component", "pricing").Logger() }
}

// WithBuffer sets the per-subscriber buffer of every topic the store creates.
func WithBuffer(n int) Option {
	return func(s *Store) { s.buffer = n }
}

// WithUpdatesEnabled sets the initial state of the update switch.
func WithUpdatesEnabled(on bool) Option {
	return func(s *Store) { s.enabled.Store(on) }
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		ticks:  make(map[string]*market.PriceTick),
		topics: make(map[string]*pubsub.Topic[market.PriceTick]),
		rnd:    rand.Float64,
		log:    zerolog.Nop(),
		buffer: pubsub.DefaultBuffer,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.all = pubsub.NewTopicWith(map[string]market.PriceTick{}, pubsub.WithBuffer(s.buffer))
	return s
}

// Initialize seeds the store. Only the first call has any effect; it returns
// false when the store was already initialized. Seeds with a non-positive or
// non-finite price are skipped. A repeated symbol takes the later price.
func (s *Store) Initialize(seeds []market.Quote) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		s.log.Debug().Msg("prices already initialized")
		return false
	}

	for _, q := range seeds {
		if q.Symbol == "" || !(q.Price > 0) || math.IsInf(q.Price, 0) {
			s.log.Warn().Str("symbol", q.Symbol).Float64("price", q.Price).Msg("skipping invalid seed price")
			continue
		}
		tick := market.NewPriceTick(q.Symbol, q.Price)
		if _, seen := s.ticks[q.Symbol]; !seen {
			s.order = append(s.order, q.Symbol)
		}
		s.ticks[q.Symbol] = &tick
	}

	for _, sym := range s.order {
		s.topics[sym] = pubsub.NewTopicWith(*s.ticks[sym], pubsub.WithBuffer(s.buffer))
	}
	s.initialized = true
	s.all.Publish(s.snapshotLocked())

	s.log.Info().Int("symbols", len(s.order)).Msg("prices initialized")
	return true
}

func (s *Store) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

// SetUpdatesEnabled turns the simulation on or off. While off, ticks are
// suppressed rather than queued.
func (s *Store) SetUpdatesEnabled(on bool) {
	if s.enabled.Swap(on) != on {
		s.log.Info().Bool("enabled", on).Msg("price updates toggled")
	}
}

func (s *Store) UpdatesEnabled() bool {
	return s.enabled.Load()
}

// Ticks reports how many ticks have mutated prices so far.
func (s *Store) Ticks() uint64 {
	return s.ticked.Load()
}

// Tick advances every symbol by one random-walk step and publishes the result.
// It reports whether anything changed.
func (s *Store) Tick() bool {
	if !s.enabled.Load() {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.order) == 0 {
		return false
	}

	for _, sym := range s.order {
		t := s.ticks[sym]
		t.PrevPrice = t.Price
		t.Price = NextPrice(t.Price, s.rnd())
		t.History.Push(t.Price)
	}

	snap := make(map[string]market.PriceTick, len(s.order))
	for _, sym := range s.order {
		t := *s.ticks[sym]
		s.topics[sym].Publish(t)
		snap[sym] = t
	}
	s.all.Publish(snap)

	n := s.ticked.Add(1)
	s.log.Trace().Uint64("tick", n).Int("symbols", len(snap)).Msg("prices ticked")
	return true
}

// Get returns a copy of the current tick for symbol.
func (s *Store) Get(symbol string) (market.PriceTick, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.ticks[symbol]
	if !ok {
		return market.PriceTick{}, false
	}
	return *t, true
}

// All returns a snapshot of every tracked tick.
func (s *Store) All() map[string]market.PriceTick {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Symbols returns the tracked symbols in seed order.
func (s *Store) Symbols() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.order...)
}

// Subscribe follows one symbol. The current tick is delivered immediately.
// The second result is false for a symbol that is not tracked.
func (s *Store) Subscribe(symbol string) (*pubsub.Subscription[market.PriceTick], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.topics[symbol]
	if !ok {
		return nil, false
	}
	return t.Subscribe(), true
}

// SubscribeAll follows the whole market. The latest snapshot is delivered
// immediately; before Initialize it is an empty map.
func (s *Store) SubscribeAll() *pubsub.Subscription[map[string]market.PriceTick] {
	return s.all.Subscribe()
}

// Close ends every subscription.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.topics {
		t.Close()
	}
	s.all.Close()
}

func (s *Store) snapshotLocked() map[string]market.PriceTick {
	out := make(map[string]market.PriceTick, len(s.ticks))
	for sym, t := range s.ticks {
		out[sym] = *t
	}
	return out
}
