// Package catalog loads the static reference data: the pricing feed, the
// instrument list and the starting positions.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rustyeddy/stakesim/market"
	"golang.org/x/sync/errgroup"
)

// Asset names, relative to a Source.
const (
	PricingFile     = "pricing.json"
	InstrumentsFile = "instrument-list.json"
	PositionsFile   = "portfolio.json"
)

// ErrCatalogUnavailable wraps every load failure.
var ErrCatalogUnavailable = errors.New("catalog unavailable")

type Loader struct {
	src Source
	log zerolog.Logger
}

type Option func(*Loader)

func WithLogger(l zerolog.Logger) Option {
	return func(ld *Loader) { ld.log = l.With().Str("component", "catalog").Logger() }
}

func NewLoader(src Source, opts ...Option) *Loader {
	l := &Loader{src: src, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Loader) LoadQuotes(ctx context.Context) ([]market.Quote, error) {
	return decode[market.Quote](ctx, l.src, PricingFile)
}

func (l *Loader) LoadInstruments(ctx context.Context) ([]market.Instrument, error) {
	return decode[market.Instrument](ctx, l.src, InstrumentsFile)
}

// LoadPositions reads the starting positions.
func (l *Loader) LoadPositions(ctx context.Context) ([]market.Position, error) {
	ps, err := decode[market.Position](ctx, l.src, PositionsFile)
	if err != nil {
		l.log.Error().Err(err).Msg("load positions failed")
		return nil, err
	}
	l.log.Debug().Int("positions", len(ps)).Msg("positions loaded")
	return ps, nil
}

// LoadCatalog fetches pricing and instruments concurrently and joins them.
func (l *Loader) LoadCatalog(ctx context.Context) ([]market.Product, error) {
	var (
		quotes      []market.Quote
		instruments []market.Instrument
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		quotes, err = l.LoadQuotes(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		instruments, err = l.LoadInstruments(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		l.log.Error().Err(err).Msg("load catalog failed")
		return nil, err
	}

	products := Join(quotes, instruments)
	if dropped := len(quotes) - len(products); dropped > 0 {
		l.log.Debug().Int("dropped", dropped).Msg("quotes without instrument")
	}
	l.log.Info().Int("products", len(products)).Msg("catalog loaded")
	return products, nil
}

// Join merges quotes with instruments by symbol, keeping quote order.
// Rows without a match on the other side are dropped.
func Join(quotes []market.Quote, instruments []market.Instrument) []market.Product {
	bySymbol := make(map[string]market.Instrument, len(instruments))
	for _, in := range instruments {
		if _, dup := bySymbol[in.Symbol]; !dup {
			bySymbol[in.Symbol] = in
		}
	}

	out := make([]market.Product, 0, len(quotes))
	for _, q := range quotes {
		in, ok := bySymbol[q.Symbol]
		if !ok {
			continue
		}
		out = append(out, market.Product{
			ID:       q.ID,
			Symbol:   q.Symbol,
			Name:     in.Name,
			Category: in.Category,
			Price:    q.Price,
		})
	}
	return out
}

func decode[T any](ctx context.Context, src Source, name string) ([]T, error) {
	rc, err := src.Open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrCatalogUnavailable, name, err)
	}
	defer rc.Close()

	var out []T
	if err := json.NewDecoder(rc).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", ErrCatalogUnavailable, name, err)
	}
	return out, nil
}

// Cached loads the catalog once and serves copies afterwards.
// A failed load is not cached, so the next call tries again.
type Cached struct {
	loader *Loader

	mu       sync.Mutex
	products []market.Product
	loaded   bool
}

func NewCached(l *Loader) *Cached {
	return &Cached{loader: l}
}

func (c *Cached) Catalog(ctx context.Context) ([]market.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.loaded {
		ps, err := c.loader.LoadCatalog(ctx)
		if err != nil {
			return nil, err
		}
		c.products = ps
		c.loaded = true
	}
	return append([]market.Product(nil), c.products...), nil
}

// Product looks a symbol up in the cached catalog.
func (c *Cached) Product(ctx context.Context, symbol string) (market.Product, bool, error) {
	ps, err := c.Catalog(ctx)
	if err != nil {
		return market.Product{}, false, err
	}
	p, ok := market.FindProduct(ps, symbol)
	return p, ok, nil
}

// Loader exposes the underlying loader for one-shot reads.
func (c *Cached) Loader() *Loader {
	return c.loader
}
