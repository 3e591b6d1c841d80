package clock

import "time"

// FakeClock is a Clock pinned to a programmable instant. Tests use it
// to resolve tariffs and assignment windows at a fixed as-of date
// instead of the wall clock.
type FakeClock struct {
	now time.Time
}

// NewFakeClock pins the clock to t, normalized to UTC.
func NewFakeClock(t time.Time) *FakeClock {
	return &FakeClock{now: t.UTC()}
}

func (c *FakeClock) Now() time.Time { return c.now }

// Set moves the clock to t, normalized to UTC.
func (c *FakeClock) Set(t time.Time) { c.now = t.UTC() }

// Advance moves the clock forward by d.
func (c *FakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }
