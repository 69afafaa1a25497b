package pub

import (
	"sync"

	"github.com/snayrouz/combine-go/internal/account"
	"github.com/snayrouz/combine-go/pkg/rs"
)

// FromSlice emits the elements of vs in order, never pushing past the
// demand outstanding at the moment of each emission. Once the last element
// has gone out the sequence has reached its natural end, and Finished is
// delivered even if no demand remains - downstream operators rely on the
// completion always arriving. Never fails.
func FromSlice[T any](vs []T) rs.Publisher[T] {
	return slicePublisher[T]{vs}
}

type slicePublisher[T any] struct {
	vs []T
}

func (p slicePublisher[T]) Subscribe(s rs.Subscriber[T]) {
	sub := &sliceSubscription[T]{vs: p.vs, sink: s}
	s.OnSubscribe(sub)
	if len(p.vs) == 0 {
		if sub.ledger.Terminate() {
			s.OnComplete(rs.Finished())
		}
	}
}

type sliceSubscription[T any] struct {
	ledger account.Ledger
	sink   rs.Subscriber[T]
	vs     []T

	mu       sync.Mutex
	next     int
	draining bool
}

func (sub *sliceSubscription[T]) Request(d rs.Demand) {
	sub.ledger.Credit(d)
	sub.drain()
}

func (sub *sliceSubscription[T]) Cancel() {
	sub.ledger.Cancel()
}

// drain delivers as many elements as the ledger allows. A reentrant Request
// from inside OnNext only credits the ledger and returns; the outermost
// drain picks the new demand up on its next loop, so deep chains don't
// recurse.
func (sub *sliceSubscription[T]) drain() {
	sub.mu.Lock()
	if sub.draining {
		sub.mu.Unlock()
		return
	}
	sub.draining = true
	sub.mu.Unlock()
	defer func() {
		sub.mu.Lock()
		sub.draining = false
		sub.mu.Unlock()
	}()

	for {
		sub.mu.Lock()
		i := sub.next
		sub.mu.Unlock()
		if i >= len(sub.vs) {
			return
		}
		if !sub.ledger.Claim() {
			return
		}
		sub.mu.Lock()
		sub.next = i + 1
		last := sub.next == len(sub.vs)
		sub.mu.Unlock()

		sub.ledger.Credit(sub.sink.OnNext(sub.vs[i]))

		if last {
			if sub.ledger.Terminate() {
				sub.sink.OnComplete(rs.Finished())
			}
			return
		}
	}
}
