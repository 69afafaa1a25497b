// Package op provides the operator publishers: each wraps an upstream
// publisher and re-emits its values, transformed, to the operator's own
// subscribers. Construction is lazy - nothing touches the upstream until
// someone subscribes downstream.
//
// Failure propagation is uniform: once any stage emits a failed completion
// it travels downstream unchanged through every subsequent operator, and no
// operator swallows it.
package op

import (
	"github.com/snayrouz/combine-go/pkg/rs"
)

// Map transforms each upstream value 1:1 with f. Stateless; the completion
// passes through unchanged, and the demand a downstream subscriber returns
// flows upstream additively, untouched.
func Map[T, U any](p rs.Publisher[T], f func(T) U) rs.Publisher[U] {
	return mapPublisher[T, U]{p, f}
}

type mapPublisher[T, U any] struct {
	source rs.Publisher[T]
	f      func(T) U
}

func (m mapPublisher[T, U]) Subscribe(s rs.Subscriber[U]) {
	m.source.Subscribe(&mapSubscriber[T, U]{sink: s, f: m.f})
}

type mapSubscriber[T, U any] struct {
	sink rs.Subscriber[U]
	f    func(T) U
}

func (ms *mapSubscriber[T, U]) OnSubscribe(s rs.Subscription) {
	// The upstream subscription is handed straight through: requesting and
	// cancelling need no mediation for a 1:1 operator.
	ms.sink.OnSubscribe(s)
}

func (ms *mapSubscriber[T, U]) OnNext(v T) rs.Demand {
	return ms.sink.OnNext(ms.f(v))
}

func (ms *mapSubscriber[T, U]) OnComplete(c rs.Completion) {
	ms.sink.OnComplete(c)
}

// Filter re-emits only the values keep accepts. Each dropped value claims a
// unit of upstream demand the downstream never saw, so Filter credits one
// replacement unit upstream per drop to keep the pipeline moving.
func Filter[T any](p rs.Publisher[T], keep func(T) bool) rs.Publisher[T] {
	return filterPublisher[T]{p, keep}
}

type filterPublisher[T any] struct {
	source rs.Publisher[T]
	keep   func(T) bool
}

func (f filterPublisher[T]) Subscribe(s rs.Subscriber[T]) {
	f.source.Subscribe(&filterSubscriber[T]{sink: s, keep: f.keep})
}

type filterSubscriber[T any] struct {
	sink rs.Subscriber[T]
	keep func(T) bool
}

func (fs *filterSubscriber[T]) OnSubscribe(s rs.Subscription) {
	fs.sink.OnSubscribe(s)
}

func (fs *filterSubscriber[T]) OnNext(v T) rs.Demand {
	if fs.keep(v) {
		return fs.sink.OnNext(v)
	}
	return rs.MaxDemand(1)
}

func (fs *filterSubscriber[T]) OnComplete(c rs.Completion) {
	fs.sink.OnComplete(c)
}
