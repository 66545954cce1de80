// Package session wires the price store, catalog, ledger and valuator into
// one explicitly constructed application session.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rustyeddy/stakesim/catalog"
	"github.com/rustyeddy/stakesim/config"
	"github.com/rustyeddy/stakesim/journal"
	"github.com/rustyeddy/stakesim/ledger"
	"github.com/rustyeddy/stakesim/market"
	"github.com/rustyeddy/stakesim/portfolio"
	"github.com/rustyeddy/stakesim/pricing"
	"github.com/rustyeddy/stakesim/pubsub"
	"github.com/rustyeddy/stakesim/store"
	"golang.org/x/sync/errgroup"
)

type Session struct {
	cfg      *config.Config
	log      zerolog.Logger
	interval time.Duration

	catalog  *catalog.Cached
	prices   *pricing.Store
	ledger   *ledger.Ledger
	valuator *portfolio.Valuator

	kv      store.Store
	journal journal.Journal
	ownKV   bool
	ownJrnl bool

	mu              sync.Mutex
	positionsLoaded bool
	closed          bool
}

type options struct {
	log     zerolog.Logger
	src     catalog.Source
	kv      store.Store
	journal journal.Journal
	rnd     func() float64
}

type Option func(*options)

func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithSource overrides the asset location from the config.
func WithSource(src catalog.Source) Option {
	return func(o *options) { o.src = src }
}

// WithStore supplies the key-value store. The caller keeps ownership.
func WithStore(kv store.Store) Option {
	return func(o *options) { o.kv = kv }
}

// WithJournal supplies the journal. The caller keeps ownership.
func WithJournal(j journal.Journal) Option {
	return func(o *options) { o.journal = j }
}

// WithRand replaces the uniform [0, 1) source of the price walk.
func WithRand(f func() float64) Option {
	return func(o *options) { o.rnd = f }
}

// Open builds a session from cfg and loads the catalog and starting
// positions. A nil cfg means config.Default(). A reference data failure does
// not fail Open; it is logged and returned again by Load, which may be
// retried.
func Open(ctx context.Context, cfg *config.Config, opts ...Option) (*Session, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	interval, err := cfg.Simulation.ParseInterval()
	if err != nil {
		return nil, err
	}

	o := options{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Session{
		cfg:      cfg,
		log:      o.log.With().Str("component", "session").Logger(),
		interval: interval,
	}

	if o.src == nil {
		o.src = NewSource(cfg.Assets)
	}
	s.catalog = catalog.NewCached(catalog.NewLoader(o.src, catalog.WithLogger(o.log)))

	s.kv = o.kv
	if s.kv == nil {
		if s.kv, err = OpenStore(cfg.Storage); err != nil {
			return nil, err
		}
		s.ownKV = true
	}

	s.journal = o.journal
	if s.journal == nil {
		if s.journal, err = OpenJournal(cfg.Journal); err != nil {
			s.closeOwned()
			return nil, err
		}
		s.ownJrnl = true
	}

	s.ledger, err = ledger.New(s.kv, ledger.WithJournal(s.journal), ledger.WithLogger(o.log))
	if err != nil {
		s.closeOwned()
		return nil, fmt.Errorf("open ledger: %w", err)
	}

	popts := []pricing.Option{
		pricing.WithLogger(o.log),
		pricing.WithUpdatesEnabled(cfg.Simulation.UpdatesEnabled),
	}
	switch {
	case o.rnd != nil:
		popts = append(popts, pricing.WithRand(o.rnd))
	case cfg.Simulation.Seed != 0:
		popts = append(popts, pricing.WithSeed(cfg.Simulation.Seed))
	}
	s.prices = pricing.NewStore(popts...)

	s.valuator = portfolio.NewValuator(s.ledger, s.prices, portfolio.WithLogger(o.log))

	if err := s.Load(ctx); err != nil {
		s.log.Warn().Err(err).Msg("reference data not loaded")
	}
	return s, nil
}

// Load fetches the catalog, seeds prices from it and installs the starting
// positions. Each step happens once; later calls only retry what failed.
func (s *Session) Load(ctx context.Context) error {
	products, err := s.catalog.Catalog(ctx)
	if err != nil {
		return err
	}
	if s.prices.Initialize(market.Quotes(products)) {
		s.log.Info().Int("products", len(products)).Msg("catalog loaded")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.positionsLoaded {
		return nil
	}
	ps, err := s.catalog.Loader().LoadPositions(ctx)
	if err != nil {
		return err
	}
	s.ledger.SetPositions(ps)
	s.positionsLoaded = true
	return nil
}

// Start runs the price timer and the valuator until ctx is done.
func (s *Session) Start(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.prices.Run(gctx, s.interval) })
	g.Go(func() error { return s.valuator.Run(gctx) })

	s.log.Info().Dur("interval", s.interval).Bool("updates", s.prices.UpdatesEnabled()).Msg("session started")
	return g.Wait()
}

// Close ends all subscriptions and releases the store and journal when the
// session opened them.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.prices.Close()
	s.ledger.Close()
	return s.closeOwned()
}

func (s *Session) closeOwned() error {
	var errs []error
	if s.ownJrnl && s.journal != nil {
		errs = append(errs, s.journal.Close())
	}
	if s.ownKV && s.kv != nil {
		errs = append(errs, s.kv.Close())
	}
	return errors.Join(errs...)
}

func (s *Session) Config() *config.Config { return s.cfg }

func (s *Session) Ledger() *ledger.Ledger { return s.ledger }

func (s *Session) Prices() *pricing.Store { return s.prices }

func (s *Session) Valuator() *portfolio.Valuator { return s.valuator }

// Catalog returns the joined product list.
func (s *Session) Catalog(ctx context.Context) ([]market.Product, error) {
	return s.catalog.Catalog(ctx)
}

// InitPrices seeds the price store directly. It is a no-op once prices are
// seeded, including by Load.
func (s *Session) InitPrices(seeds []market.Quote) bool {
	return s.prices.Initialize(seeds)
}

func (s *Session) SetPriceUpdatesEnabled(on bool) {
	s.prices.SetUpdatesEnabled(on)
}

func (s *Session) GetPrice(symbol string) (market.PriceTick, bool) {
	return s.prices.Get(symbol)
}

func (s *Session) GetAllPrices() map[string]market.PriceTick {
	return s.prices.All()
}

func (s *Session) SubscribePrice(symbol string) (*pubsub.Subscription[market.PriceTick], bool) {
	return s.prices.Subscribe(symbol)
}

func (s *Session) SubscribeAllPrices() *pubsub.Subscription[map[string]market.PriceTick] {
	return s.prices.SubscribeAll()
}

// SubscribeSummary follows the live portfolio summary produced while Start
// is running.
func (s *Session) SubscribeSummary() *pubsub.Subscription[portfolio.Summary] {
	return s.valuator.Subscribe()
}

// Buy purchases qty of symbol at its current price and returns that price.
// The name and category come from the catalog.
func (s *Session) Buy(ctx context.Context, symbol string, qty float64) (float64, error) {
	p, price, err := s.quote(ctx, symbol)
	if err != nil {
		return 0, err
	}
	err = s.ledger.Buy(ledger.BuyRequest{
		ID:       p.ID,
		Symbol:   p.Symbol,
		Name:     p.Name,
		Category: p.Category,
		Quantity: qty,
		Price:    price,
	})
	return price, err
}

// Sell disposes of qty of symbol at its current price and returns that price.
func (s *Session) Sell(ctx context.Context, symbol string, qty float64) (float64, error) {
	_, price, err := s.quote(ctx, symbol)
	if err != nil {
		return 0, err
	}
	return price, s.ledger.Sell(symbol, qty, price)
}

// quote resolves symbol in the catalog and prices it from the live tick,
// falling back to the catalog price.
func (s *Session) quote(ctx context.Context, symbol string) (market.Product, float64, error) {
	p, ok, err := s.catalog.Product(ctx, symbol)
	if err != nil {
		return market.Product{}, 0, err
	}
	if !ok {
		return market.Product{}, 0, fmt.Errorf("%w: %s", ledger.ErrUnknownSymbol, symbol)
	}
	price := p.Price
	if t, ok := s.prices.Get(symbol); ok {
		price = t.Price
	}
	return p, price, nil
}

func (s *Session) SetCash(amount float64) error {
	return s.ledger.SetCash(amount)
}

func (s *Session) Deposit(amount float64) (float64, error) {
	return s.ledger.Deposit(amount)
}

func (s *Session) Positions() []market.Position {
	return s.ledger.Positions()
}

func (s *Session) Cash() float64 {
	return s.ledger.Cash()
}

func (s *Session) ComputeMetrics(positions []market.Position, prices map[string]market.PriceTick) []portfolio.Metrics {
	return portfolio.ComputeMetrics(positions, prices)
}

func (s *Session) TotalValue(metrics []portfolio.Metrics) float64 {
	return portfolio.TotalValue(metrics)
}

// Summary values the current holdings against the current prices.
func (s *Session) Summary() portfolio.Summary {
	h := s.ledger.Holdings()
	return portfolio.Summarize(h.Positions, s.prices.All(), h.Cash)
}

func (s *Session) KonamiActive() bool {
	on, err := store.Bool(s.kv, store.KeyKonamiActive)
	if err != nil {
		s.log.Warn().Err(err).Msg("read konami flag")
	}
	return on
}

func (s *Session) SetKonamiActive(on bool) error {
	return store.SetBool(s.kv, store.KeyKonamiActive, on)
}
