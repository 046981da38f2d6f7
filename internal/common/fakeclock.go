package common

import (
	"context"
	"sync"
	"time"
)

// FakeClock is a manually driven Clock. Sleeps return immediately and
// advance the clock; timers only fire from Advance or FireNext, on the
// calling goroutine.
type FakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
	sleeps []time.Duration
}

type fakeTimer struct {
	clock   *FakeClock
	when    time.Time
	f       func()
	fired   bool
	stopped bool
}

func NewFakeClock(now time.Time) *FakeClock {
	return &FakeClock{now: now}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	timer := &fakeTimer{clock: c, when: c.now.Add(d), f: f}
	c.timers = append(c.timers, timer)
	return timer
}

func (c *FakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	return nil
}

// Sleeps returns every duration passed to Sleep so far.
func (c *FakeClock) Sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.sleeps...)
}

// Pending returns the number of timers that have neither fired nor been stopped.
func (c *FakeClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	count := 0
	for _, timer := range c.timers {
		if !timer.fired && !timer.stopped {
			count++
		}
	}
	return count
}

// NextDelay returns how far in the future the earliest pending timer is.
func (c *FakeClock) NextDelay() (time.Duration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	next := c.earliestLocked()
	if next == nil {
		return 0, false
	}
	return next.when.Sub(c.now), true
}

// FireNext moves the clock to the earliest pending timer and runs it.
// It returns false when nothing is pending.
func (c *FakeClock) FireNext() bool {
	c.mu.Lock()
	next := c.earliestLocked()
	if next == nil {
		c.mu.Unlock()
		return false
	}
	next.fired = true
	if next.when.After(c.now) {
		c.now = next.when
	}
	c.mu.Unlock()

	next.f()
	return true
}

// Advance moves the clock forward by d, firing every timer that falls due.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		next := c.earliestLocked()
		if next == nil || next.when.After(target) {
			if target.After(c.now) {
				c.now = target
			}
			c.mu.Unlock()
			return
		}
		next.fired = true
		if next.when.After(c.now) {
			c.now = next.when
		}
		c.mu.Unlock()

		next.f()
	}
}

func (c *FakeClock) earliestLocked() *fakeTimer {
	var next *fakeTimer
	for _, timer := range c.timers {
		if timer.fired || timer.stopped {
			continue
		}
		if next == nil || timer.when.Before(next.when) {
			next = timer
		}
	}
	return next
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}
