package rs

import (
	"sync"
)

// A Cancellable owns the right to terminate exactly one subscription.
type Cancellable interface {
	Cancel()
}

// CancelFunc adapts a bare function into a Cancellable.
type CancelFunc func()

func (f CancelFunc) Cancel() { f() }

// Attach subscribes s to p and returns a Cancellable for the subscription the
// publisher creates. Cancelling before the publisher has delivered its
// subscription is remembered and applied as soon as it arrives.
func Attach[T any](p Publisher[T], s Subscriber[T]) Cancellable {
	c := &capturingSubscriber[T]{inner: s}
	p.Subscribe(c)
	return c
}

type capturingSubscriber[T any] struct {
	inner     Subscriber[T]
	mu        sync.Mutex
	sub       Subscription
	cancelled bool
}

func (c *capturingSubscriber[T]) OnSubscribe(s Subscription) {
	c.mu.Lock()
	c.sub = s
	cancelled := c.cancelled
	c.mu.Unlock()
	if cancelled {
		s.Cancel()
		return
	}
	c.inner.OnSubscribe(s)
}

func (c *capturingSubscriber[T]) OnNext(v T) Demand {
	return c.inner.OnNext(v)
}

func (c *capturingSubscriber[T]) OnComplete(cm Completion) {
	c.inner.OnComplete(cm)
}

func (c *capturingSubscriber[T]) Cancel() {
	c.mu.Lock()
	s := c.sub
	c.cancelled = true
	c.mu.Unlock()
	if s != nil {
		s.Cancel()
	}
}

// A Bag owns live Cancellables and tears them all down together. Storing
// transfers ownership into the bag; Cancel empties it, cancelling every held
// handle exactly once, in no particular order. A handle stored after the bag
// was torn down is cancelled immediately.
//
// The zero value is ready to use.
type Bag struct {
	mu       sync.Mutex
	held     []Cancellable
	torndown bool
}

// Store transfers ownership of c into the bag.
func (b *Bag) Store(c Cancellable) {
	b.mu.Lock()
	if b.torndown {
		b.mu.Unlock()
		c.Cancel()
		return
	}
	b.held = append(b.held, c)
	b.mu.Unlock()
}

// Cancel tears the bag down. Each handle held at that point is cancelled
// once; the bag accepts no further storage without immediate cancellation.
func (b *Bag) Cancel() {
	b.mu.Lock()
	held := b.held
	b.held = nil
	b.torndown = true
	b.mu.Unlock()
	for _, c := range held {
		c.Cancel()
	}
}

// Len reports how many handles the bag currently holds.
func (b *Bag) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.held)
}
