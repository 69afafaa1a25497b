package rs

import (
	"fmt"
	"math"
)

// Demand is the accounting unit of backpressure: how many more values a
// subscriber is currently willing to accept. It is either a non-negative
// count or unbounded.
//
// The zero value is NoDemand.
type Demand struct {
	n         int
	unbounded bool
}

var (
	// NoDemand accepts nothing further.
	NoDemand = Demand{}
	// UnboundedDemand accepts everything the publisher can produce.
	UnboundedDemand = Demand{unbounded: true}
)

// MaxDemand accepts up to n further values. Negative counts clamp to zero.
func MaxDemand(n int) Demand {
	if n < 0 {
		n = 0
	}
	return Demand{n: n}
}

// Add sums two demands, saturating: unbounded absorbs any operand, and a
// bounded sum that would overflow saturates to unbounded. The result is
// never negative.
func (d Demand) Add(o Demand) Demand {
	if d.unbounded || o.unbounded {
		return UnboundedDemand
	}
	if d.n > math.MaxInt-o.n {
		return UnboundedDemand
	}
	return Demand{n: d.n + o.n}
}

// IsUnbounded reports whether the demand has no ceiling.
func (d Demand) IsUnbounded() bool { return d.unbounded }

// IsZero reports whether the demand admits no further values.
func (d Demand) IsZero() bool { return !d.unbounded && d.n == 0 }

// Count returns the bounded count. Only meaningful when !IsUnbounded.
func (d Demand) Count() int { return d.n }

func (d Demand) String() string {
	if d.unbounded {
		return "unbounded"
	}
	return fmt.Sprintf("max(%d)", d.n)
}
