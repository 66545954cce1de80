package pricing

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/rustyeddy/stakesim/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixed returns a rand source that always yields u.
func fixed(u float64) func() float64 {
	return func() float64 { return u }
}

func newSeededStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	opts = append([]Option{WithUpdatesEnabled(true)}, opts...)
	s := NewStore(opts...)
	require.True(t, s.Initialize([]market.Quote{
		{ID: "1", Symbol: "AAA", Price: 100},
		{ID: "2", Symbol: "BBB", Price: 50},
	}))
	t.Cleanup(s.Close)
	return s
}

func TestInitializeSeedsFlatHistory(t *testing.T) {
	t.Parallel()

	s := newSeededStore(t)

	tick, ok := s.Get("AAA")
	require.True(t, ok)
	assert.Equal(t, 100.0, tick.Price)
	assert.Equal(t, 100.0, tick.PrevPrice)
	assert.Equal(t, market.HistorySize, tick.History.Len())
	for _, v := range tick.History.Values() {
		assert.Equal(t, 100.0, v)
	}
	assert.Equal(t, []string{"AAA", "BBB"}, s.Symbols())
	assert.True(t, s.Initialized())
}

func TestInitializeIsIdempotent(t *testing.T) {
	t.Parallel()

	s := newSeededStore(t)
	assert.False(t, s.Initialize([]market.Quote{{Symbol: "AAA", Price: 1}, {Symbol: "CCC", Price: 3}}))

	tick, _ := s.Get("AAA")
	assert.Equal(t, 100.0, tick.Price)
	_, ok := s.Get("CCC")
	assert.False(t, ok)
}

func TestInitializeSkipsInvalidSeeds(t *testing.T) {
	t.Parallel()

	s := NewStore()
	s.Initialize([]market.Quote{
		{Symbol: "OK", Price: 1},
		{Symbol: "ZERO", Price: 0},
		{Symbol: "NEG", Price: -2},
		{Symbol: "", Price: 3},
		{Symbol: "OK", Price: 2},
	})

	assert.Equal(t, []string{"OK"}, s.Symbols())
	tick, _ := s.Get("OK")
	assert.Equal(t, 2.0, tick.Price)
}

func TestTickAppliesRandomWalk(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		u    float64
		want float64
	}{
		{"max up", 0.999999, 101},
		{"max down", 0, 99},
		{"flat", 0.5, 100},
		{"quarter up", 0.75, 100.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSeededStore(t, WithRand(fixed(tt.u)))
			require.True(t, s.Tick())

			tick, _ := s.Get("AAA")
			assert.InDelta(t, tt.want, tick.Price, 1e-9)
			assert.Equal(t, 100.0, tick.PrevPrice)
			assert.Equal(t, tick.Price, tick.History.Last())
			assert.Equal(t, market.HistorySize, tick.History.Len())
		})
	}
}

func TestNextPriceFloor(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewPCG(1, 2))
	price := 0.01
	for i := 0; i < 10_000; i++ {
		price = NextPrice(price, r.Float64())
		require.GreaterOrEqual(t, price, market.MinPrice)
	}
	assert.Equal(t, market.MinPrice, NextPrice(0.01, 0))
}

func TestNextPriceStaysWithinOnePercent(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewPCG(3, 4))
	for i := 0; i < 10_000; i++ {
		got := NextPrice(1000, r.Float64())
		require.InDelta(t, 1000, got, 10.005)
	}
}

func TestRound2(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1.23, Round2(1.234))
	assert.Equal(t, 1.24, Round2(1.235))
	assert.Equal(t, -1.24, Round2(-1.235))
	assert.Equal(t, 100.0, Round2(100))
}

func TestHistoryTracksLastThirtyTicks(t *testing.T) {
	t.Parallel()

	s := newSeededStore(t, WithSeed(42))

	var emitted []float64
	for i := 0; i < 100; i++ {
		require.True(t, s.Tick())
		tick, _ := s.Get("BBB")
		emitted = append(emitted, tick.Price)

		require.Equal(t, market.HistorySize, tick.History.Len())
		require.GreaterOrEqual(t, tick.Price, market.MinPrice)
		if len(emitted) >= market.HistorySize {
			require.Equal(t, emitted[len(emitted)-market.HistorySize:], tick.History.Values())
		}
	}
	assert.Equal(t, uint64(100), s.Ticks())
}

func TestDisabledTicksAreSuppressed(t *testing.T) {
	t.Parallel()

	s := newSeededStore(t, WithRand(fixed(0.9)))
	s.SetUpdatesEnabled(false)
	assert.False(t, s.UpdatesEnabled())

	all := s.SubscribeAll()
	defer all.Close()
	<-all.C()

	for i := 0; i < 5; i++ {
		assert.False(t, s.Tick())
	}
	tick, _ := s.Get("AAA")
	assert.Equal(t, 100.0, tick.Price)
	assert.Equal(t, uint64(0), s.Ticks())
	select {
	case <-all.C():
		t.Fatal("no snapshot expected while disabled")
	default:
	}

	s.SetUpdatesEnabled(true)
	require.True(t, s.Tick())
	tick, _ = s.Get("AAA")
	assert.Equal(t, 100.8, tick.Price)
	assert.Equal(t, uint64(1), s.Ticks())
}

func TestStoreDisabledByDefault(t *testing.T) {
	t.Parallel()

	s := NewStore()
	s.Initialize([]market.Quote{{Symbol: "AAA", Price: 10}})
	assert.False(t, s.UpdatesEnabled())
	assert.False(t, s.Tick())
}

func TestTickBeforeInitialize(t *testing.T) {
	t.Parallel()

	s := NewStore(WithUpdatesEnabled(true))
	assert.False(t, s.Tick())
	assert.Empty(t, s.All())
}

func TestSubscribeReplaysLatest(t *testing.T) {
	t.Parallel()

	s := newSeededStore(t, WithRand(fixed(0.75)))
	s.Tick()

	sub, ok := s.Subscribe("AAA")
	require.True(t, ok)
	defer sub.Close()

	first := <-sub.C()
	assert.Equal(t, 100.5, first.Price)

	s.Tick()
	next := <-sub.C()
	assert.Equal(t, 100.5, next.PrevPrice)
	assert.Equal(t, Round2(100.5*1.005), next.Price)
}

func TestSubscribeUnknownSymbol(t *testing.T) {
	t.Parallel()

	s := newSeededStore(t)
	sub, ok := s.Subscribe("NOPE")
	assert.False(t, ok)
	assert.Nil(t, sub)

	_, ok = s.Get("NOPE")
	assert.False(t, ok)
}

func TestSubscribeAllSeesWholeTicks(t *testing.T) {
	t.Parallel()

	s := newSeededStore(t, WithSeed(7))
	all := s.SubscribeAll()
	defer all.Close()

	initial := <-all.C()
	require.Len(t, initial, 2)

	for i := 0; i < 10; i++ {
		s.Tick()
		snap := <-all.C()
		require.Len(t, snap, 2)

		// both symbols have moved the same number of times
		a, b := snap["AAA"], snap["BBB"]
		assert.Equal(t, a.History.Len(), b.History.Len())
		assert.Equal(t, a.Price, a.History.Last())
		assert.Equal(t, b.Price, b.History.Last())

		cur := s.All()
		assert.Equal(t, cur["AAA"].Price, a.Price)
		assert.Equal(t, cur["BBB"].Price, b.Price)
	}
}

func TestSubscribeAllBeforeInitialize(t *testing.T) {
	t.Parallel()

	s := NewStore()
	all := s.SubscribeAll()
	defer all.Close()

	snap := <-all.C()
	assert.Empty(t, snap)

	s.Initialize([]market.Quote{{Symbol: "AAA", Price: 5}})
	snap = <-all.C()
	assert.Equal(t, 5.0, snap["AAA"].Price)
}

func TestSnapshotsAreCopies(t *testing.T) {
	t.Parallel()

	s := newSeededStore(t)
	snap := s.All()
	tick := snap["AAA"]
	tick.Price = 1
	snap["AAA"] = tick

	got, _ := s.Get("AAA")
	assert.Equal(t, 100.0, got.Price)
}

func TestCloseEndsSubscriptions(t *testing.T) {
	t.Parallel()

	s := NewStore()
	s.Initialize([]market.Quote{{Symbol: "AAA", Price: 5}})
	sub, _ := s.Subscribe("AAA")
	<-sub.C()
	s.Close()

	_, ok := <-sub.C()
	assert.False(t, ok)
}

func TestRunStopsOnCancel(t *testing.T) {
	t.Parallel()

	s := newSeededStore(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, time.Second) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop")
	}
}

func TestRunTicksOnSchedule(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for the wall clock")
	}
	t.Parallel()

	s := newSeededStore(t, WithSeed(1))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _ = s.Run(ctx, time.Second) }()

	assert.Eventually(t, func() bool { return s.Ticks() >= 1 }, 3*time.Second, 50*time.Millisecond)
}
