// Package rs defines the core streaming contract: publishers that emit
// sequenced values according to the demand their subscribers signal, and the
// subscription handle that ties one publisher to one subscriber.
//
// The shape is deliberately close to the reactive-streams interface family,
// expressed with type parameters rather than interface{} values. Failures are
// plain errors carried inside the terminal Completion; a publisher documented
// as never-failing simply never delivers a failed completion.
package rs

// A Publisher is a provider of a potentially unbounded number of sequenced
// elements, publishing them according to the demand received from its
// Subscriber.
//
// Subscribe is a factory method: it can be called multiple times, each call
// starting a fresh, independent Subscription.
type Publisher[T any] interface {
	Subscribe(s Subscriber[T])
}

// A Subscriber receives exactly one OnSubscribe call after being passed to
// Publisher.Subscribe; the Subscription it is handed is how it requests
// elements and how it bails out early.
//
// No value is delivered before the first Request. The Demand returned from
// OnNext is added to the outstanding total - it never replaces it - so a
// subscriber that returns MaxDemand(1) from every OnNext keeps a rolling
// ceiling open rather than resetting it.
//
// OnComplete is terminal and delivered at most once; after it, the link is
// inert. A finite publisher that reaches its natural end delivers Finished
// even if the subscriber has no demand outstanding at that moment.
type Subscriber[T any] interface {
	OnSubscribe(s Subscription)
	OnNext(v T) Demand
	OnComplete(c Completion)
}

// Represents a one-to-one lifecycle of a Subscriber subscribing to a
// Publisher. After Cancel returns, no further values or completions may be
// delivered over this subscription, even if the producer is mid-flight.
type Subscription interface {
	Request(d Demand)
	Cancel()
}
