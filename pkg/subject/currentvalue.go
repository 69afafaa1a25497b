package subject

import (
	"sync"

	"github.com/snayrouz/combine-go/pkg/rs"
)

// CurrentValue is a passthrough subject that additionally owns a single
// current value, readable and writable independent of any subscription
// activity. A new subscriber has the value at attach time snapshotted and
// receives it on its first demand, before any value sent after that.
//
// Setting Value is equivalent to Send. After the subject freezes, the value
// stops changing and sends are dropped as usual.
type CurrentValue[T any] struct {
	pt Passthrough[T]

	mu  sync.Mutex
	val T
}

// NewCurrentValue returns a subject holding initial.
func NewCurrentValue[T any](initial T) *CurrentValue[T] {
	return &CurrentValue[T]{val: initial}
}

// Subscribe attaches s, owing it the current value as of this call.
func (cv *CurrentValue[T]) Subscribe(s rs.Subscriber[T]) {
	cv.mu.Lock()
	v := cv.val
	cv.mu.Unlock()
	cv.pt.subscribe(s, &v)
}

// Send updates the current value and fans it out like Passthrough.Send.
func (cv *CurrentValue[T]) Send(v T) {
	cv.mu.Lock()
	if !cv.pt.Frozen() {
		cv.val = v
	}
	cv.mu.Unlock()
	cv.pt.Send(v)
}

// SendCompletion freezes the subject. The current value remains readable.
func (cv *CurrentValue[T]) SendCompletion(c rs.Completion) {
	cv.pt.SendCompletion(c)
}

// Value returns the current value.
func (cv *CurrentValue[T]) Value() T {
	cv.mu.Lock()
	defer cv.mu.Unlock()
	return cv.val
}

// SetValue is Send by another name, for property-style call sites.
func (cv *CurrentValue[T]) SetValue(v T) {
	cv.Send(v)
}

// Frozen reports whether a completion has been sent.
func (cv *CurrentValue[T]) Frozen() bool {
	return cv.pt.Frozen()
}

// SubscriberCount reports how many subscribers are currently attached.
func (cv *CurrentValue[T]) SubscriberCount() int {
	return cv.pt.SubscriberCount()
}
