// Package account implements the per-subscription demand bookkeeping shared
// by every publisher in this module: a small saturating-sum state machine
// rather than ad hoc counters, because the additive demand rule is easy to
// get subtly wrong.
package account

import (
	"sync"

	"github.com/snayrouz/combine-go/pkg/rs"
)

type state int

const (
	live state = iota
	cancelled
	terminated
)

// A Ledger tracks the outstanding demand and delivery state of one
// subscription. Producers Credit demand as it is requested (or returned from
// OnNext), Claim one unit before each emission, and move the ledger into a
// terminal state exactly once via Cancel or Terminate.
//
// The zero value is a live ledger with no demand.
type Ledger struct {
	mu      sync.Mutex
	pending rs.Demand
	state   state
}

// Credit adds newly requested demand to the outstanding total. Saturating;
// ignored once the ledger is no longer live.
func (l *Ledger) Credit(d rs.Demand) {
	l.mu.Lock()
	if l.state == live {
		l.pending = l.pending.Add(d)
	}
	l.mu.Unlock()
}

// Claim consumes one unit of outstanding demand, reporting whether the
// producer may emit a value. Unbounded demand always claims; a terminal
// ledger never does.
func (l *Ledger) Claim() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != live {
		return false
	}
	if l.pending.IsUnbounded() {
		return true
	}
	if l.pending.IsZero() {
		return false
	}
	l.pending = rs.MaxDemand(l.pending.Count() - 1)
	return true
}

// Cancel moves a live ledger to the cancelled state, dropping any
// outstanding demand. It reports whether this call performed the move, so
// exactly one caller runs the associated teardown.
func (l *Ledger) Cancel() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != live {
		return false
	}
	l.state = cancelled
	l.pending = rs.NoDemand
	return true
}

// Terminate moves a live ledger to the terminated state. It reports whether
// this call performed the move; only that caller may deliver the terminal
// completion, which keeps the at-most-once rule in one place.
func (l *Ledger) Terminate() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != live {
		return false
	}
	l.state = terminated
	l.pending = rs.NoDemand
	return true
}

// Live reports whether the ledger has reached neither terminal state.
func (l *Ledger) Live() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state == live
}

// Cancelled reports whether the subscription was cancelled.
func (l *Ledger) Cancelled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state == cancelled
}

// Outstanding returns the demand currently on the books.
func (l *Ledger) Outstanding() rs.Demand {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pending
}
