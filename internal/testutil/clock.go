package testutil

import (
	"sync"
	"time"
)

// Epoch is the first time a StepClock returns.
var Epoch = time.Date(2024, 12, 2, 8, 0, 0, 0, time.UTC)

// StepClock is a deterministic timestamp source for tests.
//
// Each call to Now returns Epoch advanced by one more step than the last
// call, so every write in a test gets a distinct, predictable timestamp.
// StepClock satisfies engine.Clock.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type StepClock struct {
	mu   sync.Mutex
	step time.Duration
	n    int64
}

// NewStepClock creates a clock that advances by step per call.
// The first call to Now() returns Epoch.
func NewStepClock(step time.Duration) *StepClock {
	return &StepClock{step: step}
}

// Now returns the next timestamp.
func (c *StepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := Epoch.Add(time.Duration(c.n) * c.step)
	c.n++
	return t
}

// Calls returns how many times Now has been called.
func (c *StepClock) Calls() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

// Reset rewinds the clock so the next Now() returns Epoch again.
func (c *StepClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n = 0
}
