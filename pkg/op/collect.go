package op

import (
	"sync"

	"github.com/snayrouz/combine-go/internal/account"
	"github.com/snayrouz/combine-go/pkg/rs"
)

// Collect buffers every upstream value and emits them as one slice when the
// upstream finishes normally, followed by Finished. If the upstream fails,
// the buffer is discarded and the failure propagates with no value emitted.
//
// The buffer is unbounded by design - collecting an infinite publisher never
// emits and never stops growing. Upstream demand is always unbounded; the
// downstream's demand only gates the final slice, which is held until the
// first request if none is outstanding when the upstream finishes.
func Collect[T any](p rs.Publisher[T]) rs.Publisher[[]T] {
	return collectPublisher[T]{p}
}

type collectPublisher[T any] struct {
	source rs.Publisher[T]
}

func (c collectPublisher[T]) Subscribe(s rs.Subscriber[[]T]) {
	c.source.Subscribe(&collectSubscriber[T]{sink: s})
}

// collectSubscriber is both the upstream subscriber and the downstream
// subscription: the demand ledger it carries belongs to the downstream.
type collectSubscriber[T any] struct {
	ledger account.Ledger
	sink   rs.Subscriber[[]T]

	mu       sync.Mutex
	buf      []T
	upstream rs.Subscription
	done     bool
	flushed  bool
}

func (cs *collectSubscriber[T]) OnSubscribe(s rs.Subscription) {
	cs.mu.Lock()
	cs.upstream = s
	cs.mu.Unlock()
	cs.sink.OnSubscribe(cs)
	s.Request(rs.UnboundedDemand)
}

func (cs *collectSubscriber[T]) OnNext(v T) rs.Demand {
	cs.mu.Lock()
	cs.buf = append(cs.buf, v)
	cs.mu.Unlock()
	return rs.NoDemand
}

func (cs *collectSubscriber[T]) OnComplete(c rs.Completion) {
	if c.IsFailure() {
		cs.mu.Lock()
		cs.buf = nil
		cs.mu.Unlock()
		if cs.ledger.Terminate() {
			cs.sink.OnComplete(c)
		}
		return
	}
	cs.mu.Lock()
	cs.done = true
	cs.mu.Unlock()
	cs.tryFlush()
}

func (cs *collectSubscriber[T]) Request(d rs.Demand) {
	cs.ledger.Credit(d)
	cs.tryFlush()
}

func (cs *collectSubscriber[T]) Cancel() {
	if !cs.ledger.Cancel() {
		return
	}
	cs.mu.Lock()
	up := cs.upstream
	cs.buf = nil
	cs.mu.Unlock()
	if up != nil {
		up.Cancel()
	}
}

func (cs *collectSubscriber[T]) tryFlush() {
	cs.mu.Lock()
	if !cs.done || cs.flushed {
		cs.mu.Unlock()
		return
	}
	if !cs.ledger.Claim() {
		// No demand yet; the slice waits for the first request.
		cs.mu.Unlock()
		return
	}
	cs.flushed = true
	buf := cs.buf
	cs.mu.Unlock()

	if buf == nil {
		buf = []T{}
	}
	cs.sink.OnNext(buf)
	if cs.ledger.Terminate() {
		cs.sink.OnComplete(rs.Finished())
	}
}
