// Package tck is a small conformance kit for Publisher implementations: a
// recording subscriber for tests, and a probe that drives a publisher
// through a scripted scenario while checking the core delivery rules.
//
// The rules checked are the ones every publisher in this module must obey:
// no value before the first request, never more values than the cumulative
// requested demand, nothing after cancel, and at most one terminal event.
package tck

import (
	"fmt"
	"sync"

	"github.com/snayrouz/combine-go/pkg/rs"
)

// A Violation describes one protocol rule a publisher broke.
type Violation struct {
	Rule   string
	Detail string
}

func (v Violation) String() string {
	return v.Rule + ": " + v.Detail
}

// A Step is one scripted action against the subscription under test.
// Exactly one field should be meaningful: a non-zero Request, or Cancel.
type Step struct {
	Request rs.Demand
	Cancel  bool
}

// Probe is a Subscriber that audits a publisher against the delivery rules
// while a script (or a test) drives its subscription.
type Probe[T any] struct {
	mu         sync.Mutex
	sub        rs.Subscription
	subscribed bool
	granted    rs.Demand // cumulative requested + returned demand
	delivered  int
	terminals  int
	cancelled  bool
	violations []Violation

	// OnEach is returned from every OnNext and counted into the granted
	// total. Defaults to NoDemand.
	OnEach rs.Demand
}

func (p *Probe[T]) OnSubscribe(s rs.Subscription) {
	p.mu.Lock()
	p.sub = s
	p.subscribed = true
	p.mu.Unlock()
}

func (p *Probe[T]) OnNext(v T) rs.Demand {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch {
	case !p.subscribed:
		p.flag("value before subscribe", fmt.Sprintf("value %v delivered before OnSubscribe", v))
	case p.cancelled:
		p.flag("value after cancel", fmt.Sprintf("value %v delivered after Cancel returned", v))
	case p.terminals > 0:
		p.flag("value after completion", fmt.Sprintf("value %v delivered after the terminal event", v))
	case !p.granted.IsUnbounded() && p.delivered >= p.granted.Count():
		p.flag("demand overrun", fmt.Sprintf("value %v exceeds cumulative demand %s", v, p.granted))
	}
	p.delivered++
	p.granted = p.granted.Add(p.OnEach)
	return p.OnEach
}

func (p *Probe[T]) OnComplete(c rs.Completion) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancelled {
		p.flag("completion after cancel", fmt.Sprintf("%s delivered after Cancel returned", c))
	}
	if p.terminals > 0 {
		p.flag("double completion", fmt.Sprintf("second terminal event %s", c))
	}
	p.terminals++
}

// Request drives the subscription and accounts the demand.
func (p *Probe[T]) Request(d rs.Demand) {
	p.mu.Lock()
	p.granted = p.granted.Add(d)
	s := p.sub
	p.mu.Unlock()
	if s != nil {
		s.Request(d)
	}
}

// Cancel drives the subscription; everything delivered afterwards is a
// violation.
func (p *Probe[T]) Cancel() {
	p.mu.Lock()
	s := p.sub
	p.mu.Unlock()
	if s != nil {
		s.Cancel()
	}
	p.mu.Lock()
	p.cancelled = true
	p.mu.Unlock()
}

// Violations returns everything flagged so far.
func (p *Probe[T]) Violations() []Violation {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Violation, len(p.violations))
	copy(out, p.violations)
	return out
}

// Delivered reports how many values arrived.
func (p *Probe[T]) Delivered() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.delivered
}

// Terminated reports whether a terminal event arrived.
func (p *Probe[T]) Terminated() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.terminals > 0
}

func (p *Probe[T]) flag(rule, detail string) {
	p.violations = append(p.violations, Violation{Rule: rule, Detail: detail})
}

// Check subscribes a fresh probe to p, runs the script, and returns any rule
// violations observed. Steps after a Cancel exercise the inertness of the
// link; a conforming publisher delivers nothing further.
func Check[T any](p rs.Publisher[T], script []Step) []Violation {
	probe := &Probe[T]{}
	p.Subscribe(probe)
	for _, step := range script {
		if step.Cancel {
			probe.Cancel()
			continue
		}
		probe.Request(step.Request)
	}
	return probe.Violations()
}
