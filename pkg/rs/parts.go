package rs

import (
	"fmt"
)

// SubscriberParts assembles a Subscriber from named functions, so that
// anonymous sinks can be declared inline without a new type each time.
// Nil slots are filled with sensible defaults by Build.
type SubscriberParts[T any] struct {
	OnSubscribe func(Subscription)
	OnNext      func(T) Demand
	OnComplete  func(Completion)
}

// Build fills in any nil functions and returns the assembled Subscriber.
// The default OnNext returns NoDemand; the default OnComplete complains
// about unhandled failures on stdout, which is loud enough to notice and
// harmless enough for throwaway sinks.
func (s *SubscriberParts[T]) Build() Subscriber[T] {
	if s.OnSubscribe == nil {
		s.OnSubscribe = func(Subscription) {}
	}
	if s.OnNext == nil {
		s.OnNext = func(T) Demand { return NoDemand }
	}
	if s.OnComplete == nil {
		s.OnComplete = func(c Completion) {
			if c.IsFailure() {
				fmt.Printf("Unhandled failure: %s\n", c.Err())
			}
		}
	}
	return &assembledSubscriber[T]{s}
}

type assembledSubscriber[T any] struct {
	parts *SubscriberParts[T]
}

func (as *assembledSubscriber[T]) OnSubscribe(s Subscription) {
	as.parts.OnSubscribe(s)
}
func (as *assembledSubscriber[T]) OnNext(v T) Demand {
	return as.parts.OnNext(v)
}
func (as *assembledSubscriber[T]) OnComplete(c Completion) {
	as.parts.OnComplete(c)
}

// SubscriptionParts assembles a Subscription from named functions.
type SubscriptionParts struct {
	Request func(Demand)
	Cancel  func()
}

func (s *SubscriptionParts) Build() Subscription {
	if s.Request == nil {
		s.Request = func(Demand) {}
	}
	if s.Cancel == nil {
		s.Cancel = func() {}
	}
	return &assembledSubscription{s}
}

type assembledSubscription struct {
	parts *SubscriptionParts
}

func (as *assembledSubscription) Request(d Demand) {
	as.parts.Request(d)
}
func (as *assembledSubscription) Cancel() {
	as.parts.Cancel()
}

// Sink builds a Subscriber that requests unbounded demand up front and hands
// every value to onNext. Either callback may be nil.
func Sink[T any](onNext func(T), onComplete func(Completion)) Subscriber[T] {
	parts := &SubscriberParts[T]{
		OnSubscribe: func(s Subscription) { s.Request(UnboundedDemand) },
		OnComplete:  onComplete,
	}
	if onNext != nil {
		parts.OnNext = func(v T) Demand {
			onNext(v)
			return NoDemand
		}
	}
	return parts.Build()
}
