// Package ledger holds the investor's positions and cash balance.
//
// Buys fold into a quantity-weighted average cost, sells reduce the held
// quantity and never touch that average, and the cash balance is written
// through to a key-value store so it outlives the process. Positions live in
// memory only.
package ledger

import (
	"errors"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rustyeddy/stakesim/journal"
	"github.com/rustyeddy/stakesim/market"
	"github.com/rustyeddy/stakesim/pkg/id"
	"github.com/rustyeddy/stakesim/pubsub"
	"github.com/rustyeddy/stakesim/store"
)

var (
	ErrInvalidOrder         = errors.New("invalid order")
	ErrInsufficientHoldings = errors.New("insufficient holdings")
	ErrUnknownSymbol        = errors.New("unknown symbol")
)

// dust below which a remaining quantity counts as fully sold
const dust = 1e-9

type BuyRequest struct {
	ID       string
	Symbol   string
	Name     string
	Category string
	Quantity float64
	Price    float64
}

type Ledger struct {
	mu        sync.Mutex
	positions []market.Position
	cash      float64

	kv      store.Store
	journal journal.Journal
	log     zerolog.Logger
	now     func() time.Time

	// holdings is the source of truth for subscribers; the positions and
	// cash topics are projections of each holdings snapshot.
	holdings  *pubsub.Topic[market.Holdings]
	posTopic  *pubsub.Topic[[]market.Position]
	cashTopic *pubsub.Topic[float64]
}

type Option func(*Ledger)

func WithJournal(j journal.Journal) Option {
	return func(l *Ledger) {
		if j != nil {
			l.journal = j
		}
	}
}

func WithLogger(lg zerolog.Logger) Option {
	return func(l *Ledger) { l.log = lg.With().Str("component", "ledger").Logger() }
}

// WithPositions sets the holdings the ledger starts with.
func WithPositions(ps []market.Position) Option {
	return func(l *Ledger) { l.positions = market.ClonePositions(ps) }
}

// WithClock replaces time.Now for journal timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// New builds a ledger backed by kv. The cash balance is restored from
// store.KeyCashBalance; a missing or unreadable value starts at zero.
func New(kv store.Store, opts ...Option) (*Ledger, error) {
	if kv == nil {
		kv = store.NewMemory()
	}
	l := &Ledger{
		kv:      kv,
		journal: journal.Nop{},
		log:     zerolog.Nop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}

	cash, ok, err := store.Float(kv, store.KeyCashBalance)
	switch {
	case err != nil:
		l.log.Warn().Err(err).Msg("ignoring stored cash balance")
	case ok && !math.IsNaN(cash) && !math.IsInf(cash, 0):
		l.cash = cash
	}

	if l.positions == nil {
		l.positions = []market.Position{}
	}
	h := l.snapshotLocked()
	l.holdings = pubsub.NewTopicWith(h)
	l.posTopic = pubsub.NewTopicWith(market.ClonePositions(h.Positions))
	l.cashTopic = pubsub.NewTopicWith(h.Cash)

	l.log.Debug().Float64("cash", l.cash).Int("positions", len(l.positions)).Msg("ledger ready")
	return l, nil
}

// Buy adds req.Quantity at req.Price to the position for req.Symbol, creating
// it when absent, and debits the cost from cash. Cash may go negative.
func (l *Ledger) Buy(req BuyRequest) error {
	if req.Symbol == "" || !positive(req.Quantity) || !positive(req.Price) {
		return ErrInvalidOrder
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if i := l.indexLocked(req.Symbol); i >= 0 {
		p := &l.positions[i]
		total := p.Quantity + req.Quantity
		p.AvgBuyPrice = (p.AvgBuyPrice*p.Quantity + req.Price*req.Quantity) / total
		p.Quantity = total
	} else {
		pid := req.ID
		if pid == "" {
			pid = id.New()
		}
		l.positions = append(l.positions, market.Position{
			ID:          pid,
			Symbol:      req.Symbol,
			Name:        req.Name,
			Category:    req.Category,
			Quantity:    req.Quantity,
			AvgBuyPrice: req.Price,
		})
	}
	l.cash -= req.Quantity * req.Price

	l.persistLocked()
	l.recordFillLocked(journal.Buy, req.Symbol, req.Quantity, req.Price)
	l.publishLocked()

	l.log.Info().Str("symbol", req.Symbol).Float64("qty", req.Quantity).Float64("price", req.Price).
		Float64("cash", l.cash).Msg("buy")
	return nil
}

// Sell removes qty of symbol at price and credits the proceeds. Selling more
// than is held, or a symbol that is not held, changes nothing and returns
// ErrInsufficientHoldings.
func (l *Ledger) Sell(symbol string, qty, price float64) error {
	if symbol == "" || !positive(qty) || !positive(price) {
		return ErrInvalidOrder
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexLocked(symbol)
	if i < 0 || l.positions[i].Quantity < qty {
		l.log.Debug().Str("symbol", symbol).Float64("qty", qty).Msg("sell ignored")
		return ErrInsufficientHoldings
	}

	left := l.positions[i].Quantity - qty
	if left <= dust {
		l.positions = append(l.positions[:i:i], l.positions[i+1:]...)
	} else {
		l.positions[i].Quantity = left
	}
	l.cash += qty * price

	l.persistLocked()
	l.recordFillLocked(journal.Sell, symbol, qty, price)
	l.publishLocked()

	l.log.Info().Str("symbol", symbol).Float64("qty", qty).Float64("price", price).
		Float64("cash", l.cash).Msg("sell")
	return nil
}

// SetCash overwrites the cash balance.
func (l *Ledger) SetCash(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return ErrInvalidOrder
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.setCashLocked(amount, "set")
	return nil
}

// Deposit adds a positive amount to cash and returns the new balance.
func (l *Ledger) Deposit(amount float64) (float64, error) {
	if !positive(amount) {
		return 0, ErrInvalidOrder
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.setCashLocked(l.cash+amount, "deposit")
	return l.cash, nil
}

// SetPositions replaces every holding at once. Entries without a symbol or
// with a non-positive quantity are dropped.
func (l *Ledger) SetPositions(ps []market.Position) {
	kept := make([]market.Position, 0, len(ps))
	for _, p := range ps {
		if p.Symbol == "" || !positive(p.Quantity) {
			l.log.Warn().Str("symbol", p.Symbol).Float64("qty", p.Quantity).Msg("dropping position")
			continue
		}
		if p.ID == "" {
			p.ID = id.New()
		}
		kept = append(kept, p)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.positions = kept
	l.publishLocked()
}

func (l *Ledger) Positions() []market.Position {
	l.mu.Lock()
	defer l.mu.Unlock()
	return market.ClonePositions(l.positions)
}

func (l *Ledger) Position(symbol string) (market.Position, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i := l.indexLocked(symbol); i >= 0 {
		return l.positions[i], true
	}
	return market.Position{}, false
}

func (l *Ledger) Cash() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cash
}

// Holdings returns positions and cash read under one lock.
func (l *Ledger) Holdings() market.Holdings {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}

// SubscribeHoldings replays the current positions and cash together and then
// one snapshot per change. A trade is never seen half applied.
func (l *Ledger) SubscribeHoldings() *pubsub.Subscription[market.Holdings] {
	return l.holdings.Subscribe()
}

// SubscribePositions replays the current positions and then every change.
func (l *Ledger) SubscribePositions() *pubsub.Subscription[[]market.Position] {
	return l.posTopic.Subscribe()
}

// SubscribeCash replays the current balance and then every change.
func (l *Ledger) SubscribeCash() *pubsub.Subscription[float64] {
	return l.cashTopic.Subscribe()
}

// Close ends all subscriptions. The store and journal belong to the caller.
func (l *Ledger) Close() {
	l.holdings.Close()
	l.posTopic.Close()
	l.cashTopic.Close()
}

func (l *Ledger) setCashLocked(amount float64, reason string) {
	prev := l.cash
	l.cash = amount

	l.persistLocked()
	if err := l.journal.RecordCash(journal.CashChange{
		Time:     l.now().UTC(),
		Previous: prev,
		Balance:  amount,
		Reason:   reason,
	}); err != nil {
		l.log.Error().Err(err).Msg("journal cash change")
	}
	l.publishLocked()

	l.log.Info().Float64("previous", prev).Float64("cash", amount).Str("reason", reason).Msg("cash updated")
}

func (l *Ledger) indexLocked(symbol string) int {
	for i := range l.positions {
		if l.positions[i].Symbol == symbol {
			return i
		}
	}
	return -1
}

func (l *Ledger) persistLocked() {
	if err := store.SetFloat(l.kv, store.KeyCashBalance, l.cash); err != nil {
		l.log.Error().Err(err).Float64("cash", l.cash).Msg("persist cash balance")
	}
}

func (l *Ledger) recordFillLocked(side journal.Side, symbol string, qty, price float64) {
	now := l.now()
	err := l.journal.RecordFill(journal.Fill{
		ID:        id.NewAt(now),
		Time:      now.UTC(),
		Side:      side,
		Symbol:    symbol,
		Quantity:  qty,
		Price:     price,
		CashAfter: l.cash,
	})
	if err != nil {
		l.log.Error().Err(err).Str("symbol", symbol).Msg("journal fill")
	}
}

func (l *Ledger) snapshotLocked() market.Holdings {
	return market.Holdings{Positions: market.ClonePositions(l.positions), Cash: l.cash}
}

func (l *Ledger) publishLocked() {
	h := l.snapshotLocked()
	l.holdings.Publish(h)
	l.posTopic.Publish(market.ClonePositions(h.Positions))
	l.cashTopic.Publish(h.Cash)
}

func positive(x float64) bool {
	return x > 0 && !math.IsInf(x, 0)
}
