package testutil

import (
	"sync"
	"time"
)

// Epoch is the first instant a SteppingClock reports.
var Epoch = time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)

// SteppingClock is a deterministic wall clock for store tests.
//
// Each call to Now advances by a fixed step, so a scenario run twice
// produces identical timestamps and records created in sequence always
// have distinct created_at values.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type SteppingClock struct {
	mu    sync.Mutex
	start time.Time
	step  time.Duration
	n     int64
}

// NewSteppingClock creates a clock starting at Epoch with a one-second step.
//
// The first call to Now() returns Epoch.
func NewSteppingClock() *SteppingClock {
	return NewSteppingClockAt(Epoch, time.Second)
}

// NewSteppingClockAt creates a clock with an explicit start and step.
func NewSteppingClockAt(start time.Time, step time.Duration) *SteppingClock {
	return &SteppingClock{start: start.UTC(), step: step}
}

// Now returns the current instant and advances the clock by one step.
func (c *SteppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.start.Add(time.Duration(c.n) * c.step)
	c.n++
	return t
}

// Peek returns the instant the next Now call will report.
func (c *SteppingClock) Peek() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.start.Add(time.Duration(c.n) * c.step)
}

// Reset rewinds the clock to its start.
//
// Used for test reuse. After Reset(), the next call to Now() returns the start.
func (c *SteppingClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n = 0
}

// FrozenClock always reports the same instant. Useful to exercise callers
// that must cope with a clock that does not advance.
type FrozenClock struct {
	At time.Time
}

// Now returns c.At.
func (c FrozenClock) Now() time.Time {
	return c.At
}
