package pub

import (
	"sync/atomic"

	"github.com/snayrouz/combine-go/internal/account"
	"github.com/snayrouz/combine-go/pkg/rs"
)

// Just delivers exactly one fixed value and then finishes. Each subscriber
// replays the value independently; any requested demand >= 1 unlocks it.
// Never fails.
func Just[T any](v T) rs.Publisher[T] {
	return justPublisher[T]{v}
}

type justPublisher[T any] struct {
	value T
}

func (p justPublisher[T]) Subscribe(s rs.Subscriber[T]) {
	s.OnSubscribe(&justSubscription[T]{value: p.value, sink: s})
}

type justSubscription[T any] struct {
	ledger    account.Ledger
	value     T
	sink      rs.Subscriber[T]
	delivered atomic.Bool
}

func (sub *justSubscription[T]) Request(d rs.Demand) {
	sub.ledger.Credit(d)
	if !sub.ledger.Claim() {
		return
	}
	if !sub.delivered.CompareAndSwap(false, true) {
		return
	}
	sub.sink.OnNext(sub.value)
	if sub.ledger.Terminate() {
		sub.sink.OnComplete(rs.Finished())
	}
}

func (sub *justSubscription[T]) Cancel() {
	sub.ledger.Cancel()
}
