package common

import "time"

// Clock supplies the current time. Day rollover and recontact cooldowns read it
// so tests can pin "today".
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns time.Now.
func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant.
type FixedClock struct {
	T time.Time
}

// Now returns the fixed instant.
func (c *FixedClock) Now() time.Time { return c.T }

// Advance moves the fixed instant forward.
func (c *FixedClock) Advance(d time.Duration) { c.T = c.T.Add(d) }
