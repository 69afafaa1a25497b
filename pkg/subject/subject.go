// Package subject provides hot, multicast publishers that are driven
// imperatively: external code pushes values and the terminal completion in,
// and the subject fans them out to every attached subscriber.
//
// Subjects share live state across subscribers, unlike the cold sources in
// pkg/pub which replay independently per subscription. All subject state is
// serialized by a single mutex; Send, Subscribe and per-subscriber cancels
// are safe to call from multiple goroutines.
package subject

import (
	"sync"

	"github.com/google/uuid"

	"github.com/snayrouz/combine-go/internal/account"
	"github.com/snayrouz/combine-go/pkg/rs"
)

// Passthrough multicasts sent values to the subscribers attached at the
// moment of each Send. There is no replay: a subscriber attached after a
// value was sent never sees it, and a subscriber whose outstanding demand
// is zero misses the value entirely - the subject buffers nothing.
//
// Sending a completion freezes the subject. The completion reaches every
// attached subscriber exactly once; any value sent afterwards is silently
// dropped (intentionally lossy, not an error) and further completions are
// ignored. A subscriber attaching after the freeze receives the stored
// completion immediately.
//
// The zero value is ready to use.
type Passthrough[T any] struct {
	mu         sync.Mutex
	subs       map[uuid.UUID]*subjectSubscription[T]
	done       bool
	completion rs.Completion
}

// NewPassthrough returns an empty passthrough subject.
func NewPassthrough[T any]() *Passthrough[T] {
	return &Passthrough[T]{}
}

// Subscribe attaches s. The subject keeps per-subscriber demand accounts:
// the additive demand rule applies to each subscriber independently.
func (p *Passthrough[T]) Subscribe(s rs.Subscriber[T]) {
	p.subscribe(s, nil)
}

func (p *Passthrough[T]) subscribe(s rs.Subscriber[T], replay *T) {
	sub := &subjectSubscription[T]{
		id:     uuid.New(),
		sink:   s,
		detach: p.detach,
	}
	if replay != nil {
		sub.replay = replay
	}
	s.OnSubscribe(sub)

	p.mu.Lock()
	if p.done {
		c := p.completion
		p.mu.Unlock()
		if sub.ledger.Terminate() {
			s.OnComplete(c)
		}
		return
	}
	if p.subs == nil {
		p.subs = make(map[uuid.UUID]*subjectSubscription[T])
	}
	p.subs[sub.id] = sub
	p.mu.Unlock()
}

// Send fans v out to every attached subscriber that can claim one unit of
// demand. After the subject is frozen, Send is a silent no-op.
func (p *Passthrough[T]) Send(v T) {
	for _, sub := range p.snapshot() {
		sub.deliver(v)
	}
}

// SendCompletion freezes the subject, delivering c to every attached
// subscriber. Only the first completion counts.
func (p *Passthrough[T]) SendCompletion(c rs.Completion) {
	p.mu.Lock()
	if p.done {
		p.mu.Unlock()
		return
	}
	p.done = true
	p.completion = c
	subs := make([]*subjectSubscription[T], 0, len(p.subs))
	for _, sub := range p.subs {
		subs = append(subs, sub)
	}
	p.subs = nil
	p.mu.Unlock()

	for _, sub := range subs {
		if sub.ledger.Terminate() {
			sub.sink.OnComplete(c)
		}
	}
}

// Frozen reports whether a completion has been sent.
func (p *Passthrough[T]) Frozen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// SubscriberCount reports how many subscribers are currently attached.
func (p *Passthrough[T]) SubscriberCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.subs)
}

func (p *Passthrough[T]) snapshot() []*subjectSubscription[T] {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done || len(p.subs) == 0 {
		return nil
	}
	out := make([]*subjectSubscription[T], 0, len(p.subs))
	for _, sub := range p.subs {
		out = append(out, sub)
	}
	return out
}

func (p *Passthrough[T]) detach(id uuid.UUID) {
	p.mu.Lock()
	delete(p.subs, id)
	p.mu.Unlock()
}

// The live link between one subject and one subscriber. Cancelling detaches
// only this subscriber; the subject and its other subscribers are unaffected.
type subjectSubscription[T any] struct {
	ledger account.Ledger
	id     uuid.UUID
	sink   rs.Subscriber[T]
	detach func(uuid.UUID)

	mu     sync.Mutex
	replay *T // value snapshotted at attach, owed before anything newer
}

func (sub *subjectSubscription[T]) Request(d rs.Demand) {
	sub.ledger.Credit(d)

	sub.mu.Lock()
	if sub.replay != nil && sub.ledger.Claim() {
		v := *sub.replay
		sub.replay = nil
		sub.mu.Unlock()
		sub.ledger.Credit(sub.sink.OnNext(v))
		return
	}
	sub.mu.Unlock()
}

func (sub *subjectSubscription[T]) Cancel() {
	if sub.ledger.Cancel() {
		sub.detach(sub.id)
	}
}

func (sub *subjectSubscription[T]) deliver(v T) {
	if !sub.ledger.Claim() {
		return
	}
	sub.ledger.Credit(sub.sink.OnNext(v))
}
