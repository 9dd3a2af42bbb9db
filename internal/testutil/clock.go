package testutil

import (
	"sync"
	"time"
)

// FixedWallClock is a wall clock that only moves when told to.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type FixedWallClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFixedWallClock creates a clock stopped at now, converted to UTC.
func NewFixedWallClock(now time.Time) *FixedWallClock {
	return &FixedWallClock{now: now.UTC()}
}

// NewFixedWallClockUnix creates a clock stopped at the given unix second.
func NewFixedWallClockUnix(sec int64) *FixedWallClock {
	return NewFixedWallClock(time.Unix(sec, 0))
}

// Now returns the stopped time.
func (c *FixedWallClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *FixedWallClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set moves the clock to t.
func (c *FixedWallClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t.UTC()
}
