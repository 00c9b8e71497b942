package store

import (
	"sync"
	"time"
)

// Clock supplies record timestamps.
type Clock interface {
	Now() time.Time
}

// MonotonicClock wraps a time source and guarantees strictly increasing
// results, so an update always advances updated_at even when two writes
// land within the same clock tick.
//
// Thread-safety: safe for concurrent use.
type MonotonicClock struct {
	mu   sync.Mutex
	last time.Time
	now  func() time.Time
}

// NewMonotonicClock creates a clock over time.Now.
func NewMonotonicClock() *MonotonicClock {
	return &MonotonicClock{now: time.Now}
}

// NewMonotonicClockFrom creates a clock over an arbitrary time source.
// Used by tests to pin timestamps.
func NewMonotonicClockFrom(now func() time.Time) *MonotonicClock {
	return &MonotonicClock{now: now}
}

// Observe raises the floor for later results to t, so a clock that starts
// behind already stored timestamps still moves past them.
func (c *MonotonicClock) Observe(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	t = t.UTC().Truncate(time.Microsecond)
	if t.After(c.last) {
		c.last = t
	}
}

// Now returns the current UTC time, bumped by one microsecond past the
// previous result when the source has not advanced.
func (c *MonotonicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.now().UTC().Truncate(time.Microsecond)
	if !t.After(c.last) {
		t = c.last.Add(time.Microsecond)
	}
	c.last = t
	return t
}
