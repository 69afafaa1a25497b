// Package pub provides the concrete publishers of this module: fixed values,
// in-memory sequences, immediate terminals, and one timer-driven source.
//
// Everything here delivers synchronously on the caller's goroutine except
// Ticker, which documents its own scheduling.
package pub

import (
	"github.com/snayrouz/combine-go/internal/account"
	"github.com/snayrouz/combine-go/pkg/rs"
)

// Anon adapts a bare subscribe function into a Publisher, for one-off
// streams that don't warrant a named type.
func Anon[T any](subscribe func(rs.Subscriber[T])) rs.Publisher[T] {
	return anonymousPublisher[T]{subscribe}
}

type anonymousPublisher[T any] struct {
	subscribe func(rs.Subscriber[T])
}

func (a anonymousPublisher[T]) Subscribe(s rs.Subscriber[T]) {
	a.subscribe(s)
}

// Empty completes every subscriber immediately, without waiting for any
// demand: the sequence's natural end is already reached when it is
// subscribed. Never fails.
func Empty[T any]() rs.Publisher[T] {
	return terminalPublisher[T]{rs.Finished()}
}

// Fail delivers a failed completion to every subscriber immediately.
func Fail[T any](err error) rs.Publisher[T] {
	return terminalPublisher[T]{rs.Failed(err)}
}

type terminalPublisher[T any] struct {
	completion rs.Completion
}

func (p terminalPublisher[T]) Subscribe(s rs.Subscriber[T]) {
	sub := &inertSubscription{}
	s.OnSubscribe(sub)
	if sub.ledger.Terminate() {
		s.OnComplete(p.completion)
	}
}

// A subscription with nothing left to deliver. Requests only feed the
// ledger, which nobody will claim from again.
type inertSubscription struct {
	ledger account.Ledger
}

func (s *inertSubscription) Request(d rs.Demand) { s.ledger.Credit(d) }
func (s *inertSubscription) Cancel()             { s.ledger.Cancel() }
