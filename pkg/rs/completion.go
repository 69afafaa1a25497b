package rs

// Completion is the single terminal signal of a subscription: either a
// normal finish or a failure carrying an error. At most one completion is
// ever delivered per subscription; after it the link is inert.
type Completion struct {
	err    error
	failed bool
}

// Finished is the normal end of a sequence.
func Finished() Completion { return Completion{} }

// Failed ends a sequence with err. Operators propagate a failure downstream
// unchanged; none may swallow it silently.
func Failed(err error) Completion { return Completion{err: err, failed: true} }

// IsFailure reports whether the sequence ended in an error.
func (c Completion) IsFailure() bool { return c.failed }

// Err returns the carried error, nil for a normal finish.
func (c Completion) Err() error { return c.err }

func (c Completion) String() string {
	if c.failed {
		return "failed(" + c.err.Error() + ")"
	}
	return "finished"
}
