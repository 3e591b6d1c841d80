// Package clock abstracts the current time so that interval comparisons
// (tariff validity, assignment windows) take an explicit as-of instant.
package clock

import "time"

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// NewSystem returns a Clock backed by the wall clock, in UTC.
func NewSystem() Clock { return systemClock{} }
