package op

import (
	"sync/atomic"

	"github.com/snayrouz/combine-go/pkg/rs"
)

// TryMap transforms each upstream value with a fallible f. The first
// transform error becomes a failed completion downstream; the upstream
// subscription is cancelled at that point and no further values are
// requested or forwarded.
func TryMap[T, U any](p rs.Publisher[T], f func(T) (U, error)) rs.Publisher[U] {
	return tryMapPublisher[T, U]{p, f}
}

type tryMapPublisher[T, U any] struct {
	source rs.Publisher[T]
	f      func(T) (U, error)
}

func (m tryMapPublisher[T, U]) Subscribe(s rs.Subscriber[U]) {
	m.source.Subscribe(&tryMapSubscriber[T, U]{sink: s, f: m.f})
}

type tryMapSubscriber[T, U any] struct {
	sink     rs.Subscriber[U]
	f        func(T) (U, error)
	upstream rs.Subscription
	failed   atomic.Bool
}

func (ts *tryMapSubscriber[T, U]) OnSubscribe(s rs.Subscription) {
	ts.upstream = s
	ts.sink.OnSubscribe(s)
}

func (ts *tryMapSubscriber[T, U]) OnNext(v T) rs.Demand {
	if ts.failed.Load() {
		return rs.NoDemand
	}
	u, err := ts.f(v)
	if err != nil {
		if ts.failed.CompareAndSwap(false, true) {
			ts.upstream.Cancel()
			ts.sink.OnComplete(rs.Failed(err))
		}
		return rs.NoDemand
	}
	return ts.sink.OnNext(u)
}

func (ts *tryMapSubscriber[T, U]) OnComplete(c rs.Completion) {
	// A producer that raced our cancel may still complete; the failure we
	// already delivered stays the one and only terminal event.
	if ts.failed.Load() {
		return
	}
	ts.sink.OnComplete(c)
}
