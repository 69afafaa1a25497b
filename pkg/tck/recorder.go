package tck

import (
	"sync"

	"github.com/snayrouz/combine-go/pkg/rs"
)

// EventKind tags one observed signal in a subscription's life.
type EventKind int

const (
	EventSubscribe EventKind = iota
	EventValue
	EventCompletion
)

// Event is one recorded signal.
type Event[T any] struct {
	Kind       EventKind
	Value      T
	Completion rs.Completion
}

// Recorder is a Subscriber that records everything it sees, with a fixed
// requesting policy: `initial` is requested on subscribe, `onEach` is
// returned from every OnNext. Pass NoDemand for both to build a subscriber
// that never requests anything.
type Recorder[T any] struct {
	initial rs.Demand
	onEach  rs.Demand

	mu     sync.Mutex
	events []Event[T]
	sub    rs.Subscription
}

// NewRecorder returns a recorder with the given requesting policy.
func NewRecorder[T any](initial, onEach rs.Demand) *Recorder[T] {
	return &Recorder[T]{initial: initial, onEach: onEach}
}

func (r *Recorder[T]) OnSubscribe(s rs.Subscription) {
	r.mu.Lock()
	r.sub = s
	r.events = append(r.events, Event[T]{Kind: EventSubscribe})
	r.mu.Unlock()
	if !r.initial.IsZero() {
		s.Request(r.initial)
	}
}

func (r *Recorder[T]) OnNext(v T) rs.Demand {
	r.mu.Lock()
	r.events = append(r.events, Event[T]{Kind: EventValue, Value: v})
	r.mu.Unlock()
	return r.onEach
}

func (r *Recorder[T]) OnComplete(c rs.Completion) {
	r.mu.Lock()
	r.events = append(r.events, Event[T]{Kind: EventCompletion, Completion: c})
	r.mu.Unlock()
}

// Request asks for more demand on the recorded subscription.
func (r *Recorder[T]) Request(d rs.Demand) {
	r.mu.Lock()
	s := r.sub
	r.mu.Unlock()
	if s != nil {
		s.Request(d)
	}
}

// Cancel cancels the recorded subscription.
func (r *Recorder[T]) Cancel() {
	r.mu.Lock()
	s := r.sub
	r.mu.Unlock()
	if s != nil {
		s.Cancel()
	}
}

// Events returns a copy of everything recorded so far.
func (r *Recorder[T]) Events() []Event[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event[T], len(r.events))
	copy(out, r.events)
	return out
}

// Values returns the recorded values in delivery order.
func (r *Recorder[T]) Values() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []T
	for _, e := range r.events {
		if e.Kind == EventValue {
			out = append(out, e.Value)
		}
	}
	return out
}

// Completions returns every recorded terminal event. A conforming publisher
// produces at most one.
func (r *Recorder[T]) Completions() []rs.Completion {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []rs.Completion
	for _, e := range r.events {
		if e.Kind == EventCompletion {
			out = append(out, e.Completion)
		}
	}
	return out
}

// Terminal returns the first recorded completion, if any.
func (r *Recorder[T]) Terminal() (rs.Completion, bool) {
	cs := r.Completions()
	if len(cs) == 0 {
		return rs.Completion{}, false
	}
	return cs[0], true
}

// Finished reports whether the stream ended normally.
func (r *Recorder[T]) Finished() bool {
	c, ok := r.Terminal()
	return ok && !c.IsFailure()
}

// Err returns the failure the stream ended with, if it ended in one.
func (r *Recorder[T]) Err() error {
	c, ok := r.Terminal()
	if !ok {
		return nil
	}
	return c.Err()
}
