package common

import (
	"context"
	"time"
)

// Clock is the source of time for everything that waits or schedules.
// Production code uses NewClock; tests drive a FakeClock by hand.
type Clock interface {
	Now() time.Time
	// AfterFunc calls f in its own goroutine once d has elapsed
	AfterFunc(d time.Duration, f func()) Timer
	// Sleep blocks for d or until ctx is done
	Sleep(ctx context.Context, d time.Duration) error
}

// Timer is a pending call scheduled with Clock.AfterFunc.
type Timer interface {
	// Stop prevents the call from firing. It returns false if the call
	// already fired or was already stopped.
	Stop() bool
}

type realClock struct{}

func NewClock() Clock {
	return realClock{}
}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
