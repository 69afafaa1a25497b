package op

import (
	"sync"

	"github.com/eapache/queue"

	"github.com/snayrouz/combine-go/internal/account"
	"github.com/snayrouz/combine-go/pkg/rs"
)

// FlatMap invokes f for every upstream value, subscribes the produced inner
// publisher immediately, and merges all inner values into one downstream
// stream. Values interleave in the order the inner publishers happen to
// produce them - input order is not preserved once several inners are live
// at the same time.
//
// Downstream completion requires both the upstream and every spawned inner
// publisher to have finished (and the merge queue to have drained). Any
// failure - upstream or inner - fails the whole composition once, cancelling
// the upstream and the remaining inner subscriptions.
//
// Inner values arriving beyond downstream demand are buffered in a FIFO
// queue; the buffer is only bounded by how far the inners outrun the
// downstream.
func FlatMap[T, U any](p rs.Publisher[T], f func(T) rs.Publisher[U]) rs.Publisher[U] {
	return flatMapPublisher[T, U]{p, f}
}

type flatMapPublisher[T, U any] struct {
	source rs.Publisher[T]
	f      func(T) rs.Publisher[U]
}

func (fm flatMapPublisher[T, U]) Subscribe(s rs.Subscriber[U]) {
	st := &flatMapState[T, U]{
		sink:    s,
		f:       fm.f,
		pending: queue.New(),
	}
	fm.source.Subscribe(&flatMapOuter[T, U]{st})
}

// flatMapState is the downstream subscription and the merge point shared by
// the outer subscriber and every inner subscriber.
type flatMapState[T, U any] struct {
	ledger account.Ledger // downstream demand
	sink   rs.Subscriber[U]
	f      func(T) rs.Publisher[U]
	inners rs.Bag

	mu         sync.Mutex
	pending    *queue.Queue // merged values awaiting downstream demand
	upstream   rs.Subscription
	active     int // inner publishers not yet completed
	sourceDone bool
	failed     bool
	draining   bool
}

func (st *flatMapState[T, U]) Request(d rs.Demand) {
	st.ledger.Credit(d)
	st.drain()
}

func (st *flatMapState[T, U]) Cancel() {
	if !st.ledger.Cancel() {
		return
	}
	st.mu.Lock()
	up := st.upstream
	st.mu.Unlock()
	if up != nil {
		up.Cancel()
	}
	st.inners.Cancel()
}

func (st *flatMapState[T, U]) fail(c rs.Completion) {
	st.mu.Lock()
	if st.failed {
		st.mu.Unlock()
		return
	}
	st.failed = true
	st.pending = queue.New() // discard anything queued
	up := st.upstream
	st.mu.Unlock()

	if up != nil {
		up.Cancel()
	}
	st.inners.Cancel()
	if st.ledger.Terminate() {
		st.sink.OnComplete(c)
	}
}

// drain moves queued values downstream as long as demand allows, then
// delivers Finished once everything upstream and inner has wound down.
// The draining flag keeps reentrant Request calls from recursing.
func (st *flatMapState[T, U]) drain() {
	st.mu.Lock()
	if st.draining {
		st.mu.Unlock()
		return
	}
	st.draining = true
	st.mu.Unlock()
	defer func() {
		st.mu.Lock()
		st.draining = false
		st.mu.Unlock()
	}()

	for {
		st.mu.Lock()
		if st.failed {
			st.mu.Unlock()
			return
		}
		if st.pending.Length() == 0 {
			finished := st.sourceDone && st.active == 0
			st.mu.Unlock()
			if finished {
				if st.ledger.Terminate() {
					st.sink.OnComplete(rs.Finished())
				}
			}
			return
		}
		if !st.ledger.Claim() {
			st.mu.Unlock()
			return
		}
		v := st.pending.Remove().(U)
		st.mu.Unlock()

		st.ledger.Credit(st.sink.OnNext(v))
	}
}

type flatMapOuter[T, U any] struct {
	st *flatMapState[T, U]
}

func (o *flatMapOuter[T, U]) OnSubscribe(s rs.Subscription) {
	st := o.st
	st.mu.Lock()
	st.upstream = s
	st.mu.Unlock()
	st.sink.OnSubscribe(st)
	s.Request(rs.UnboundedDemand)
}

func (o *flatMapOuter[T, U]) OnNext(v T) rs.Demand {
	st := o.st
	st.mu.Lock()
	if st.failed || !st.ledger.Live() {
		st.mu.Unlock()
		return rs.NoDemand
	}
	st.active++
	st.mu.Unlock()

	inner := st.f(v)
	st.inners.Store(rs.Attach(inner, &flatMapInner[T, U]{st}))
	return rs.NoDemand
}

func (o *flatMapOuter[T, U]) OnComplete(c rs.Completion) {
	st := o.st
	if c.IsFailure() {
		st.fail(c)
		return
	}
	st.mu.Lock()
	st.sourceDone = true
	st.mu.Unlock()
	st.drain()
}

type flatMapInner[T, U any] struct {
	st *flatMapState[T, U]
}

func (in *flatMapInner[T, U]) OnSubscribe(s rs.Subscription) {
	s.Request(rs.UnboundedDemand)
}

func (in *flatMapInner[T, U]) OnNext(v U) rs.Demand {
	st := in.st
	st.mu.Lock()
	if st.failed || !st.ledger.Live() {
		st.mu.Unlock()
		return rs.NoDemand
	}
	st.pending.Add(v)
	st.mu.Unlock()
	st.drain()
	return rs.NoDemand
}

func (in *flatMapInner[T, U]) OnComplete(c rs.Completion) {
	st := in.st
	if c.IsFailure() {
		st.fail(c)
		return
	}
	st.mu.Lock()
	st.active--
	st.mu.Unlock()
	st.drain()
}
