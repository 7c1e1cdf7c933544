package clock

import "time"

// Clock abstracts wall time so reconciliation is deterministic in tests.
type Clock interface {
	Now() time.Time
}

type Real struct{}

func (Real) Now() time.Time {
	return time.Now().UTC()
}

// Fixed always reports the same instant. Advance it explicitly.
type Fixed struct {
	T time.Time
}

func (f *Fixed) Now() time.Time {
	return f.T
}

func (f *Fixed) Advance(d time.Duration) {
	f.T = f.T.Add(d)
}
