// Package pubsub broadcasts values to many independent subscribers.
//
// A Topic remembers the last published value and replays it to every new
// subscriber, so a late subscriber starts from the current state and then
// follows each later update. Publishing never blocks: every subscription owns
// a bounded buffer and, when the buffer is full, the oldest pending value is
// dropped in favour of the new one. A slow consumer therefore always catches
// up to the latest state.
package pubsub

import (
	"sync"
)

// DefaultBuffer is the per-subscription buffer when no option is given.
const DefaultBuffer = 16

type options struct {
	buffer int
}

type Option func(*options)

// WithBuffer sets the per-subscription buffer size. Values below 1 are raised to 1.
func WithBuffer(n int) Option {
	return func(o *options) {
		if n < 1 {
			n = 1
		}
		o.buffer = n
	}
}

type Topic[T any] struct {
	mu     sync.Mutex
	latest T
	has    bool
	closed bool
	buffer int
	subs   map[*Subscription[T]]struct{}
}

func NewTopic[T any](opts ...Option) *Topic[T] {
	o := options{buffer: DefaultBuffer}
	for _, opt := range opts {
		opt(&o)
	}
	return &Topic[T]{
		buffer: o.buffer,
		subs:   make(map[*Subscription[T]]struct{}),
	}
}

// NewTopicWith returns a topic that already holds v as its latest value.
func NewTopicWith[T any](v T, opts ...Option) *Topic[T] {
	t := NewTopic[T](opts...)
	t.latest = v
	t.has = true
	return t
}

// Publish records v as the latest value and delivers it to every subscriber
// before returning. Publishing on a closed topic is a no-op.
func (t *Topic[T]) Publish(v T) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return
	}
	t.latest = v
	t.has = true
	for s := range t.subs {
		s.deliver(v)
	}
}

// Latest returns the last published value.
func (t *Topic[T]) Latest() (T, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.latest, t.has
}

// Subscribe registers a new subscriber. If a value was published before, it
// is already waiting on the returned subscription's channel.
// Subscribing to a closed topic returns an already closed subscription.
func (t *Topic[T]) Subscribe() *Subscription[T] {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := &Subscription[T]{
		topic: t,
		ch:    make(chan T, t.buffer),
	}
	if t.closed {
		s.done = true
		close(s.ch)
		return s
	}
	if t.has {
		s.ch <- t.latest
	}
	t.subs[s] = struct{}{}
	return s
}

// Len reports the number of live subscriptions.
func (t *Topic[T]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.subs)
}

// Close ends every subscription. Further publishes are ignored.
func (t *Topic[T]) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return
	}
	t.closed = true
	for s := range t.subs {
		s.closeLocked()
	}
	clear(t.subs)
}

func (t *Topic[T]) remove(s *Subscription[T]) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.subs[s]; !ok {
		return
	}
	delete(t.subs, s)
	s.closeLocked()
}

// Subscription is one consumer's view of a Topic.
type Subscription[T any] struct {
	topic *Topic[T]
	ch    chan T

	// guarded by topic.mu
	done    bool
	dropped int
}

// C returns the delivery channel. It is closed when the subscription or the
// topic is closed.
func (s *Subscription[T]) C() <-chan T {
	return s.ch
}

// Close unsubscribes. It is safe to call more than once.
func (s *Subscription[T]) Close() {
	s.topic.remove(s)
}

// Dropped reports how many values were discarded because the consumer lagged.
func (s *Subscription[T]) Dropped() int {
	s.topic.mu.Lock()
	defer s.topic.mu.Unlock()
	return s.dropped
}

// deliver runs with topic.mu held; the consumer is the only concurrent reader.
func (s *Subscription[T]) deliver(v T) {
	select {
	case s.ch <- v:
		return
	default:
	}

	select {
	case <-s.ch:
		s.dropped++
	default:
	}

	select {
	case s.ch <- v:
	default:
		s.dropped++
	}
}

func (s *Subscription[T]) closeLocked() {
	if s.done {
		return
	}
	s.done = true
	close(s.ch)
}
