package common

import (
	"time"
)

// This stopwatch keeps track of how long a unit of work takes.
// Start it, do the work, and ask it how much time went by.
type Stopwatch struct {
	clock     Clock
	startTime time.Time
	Running   bool
}

func NewStopwatch(clock Clock) Stopwatch {
	return Stopwatch{clock: clock}
}

func (s *Stopwatch) Start() {
	s.Running = true
	s.startTime = s.clock.Now()
}

// Stop the stopwatch and return the time elapsed since it started
func (s *Stopwatch) Stop() time.Duration {
	elapsed := s.Elapsed()
	s.Running = false
	return elapsed
}

func (s *Stopwatch) StartTime() time.Time {
	return s.startTime
}

// Return the time elapsed since the stopwatch started.
// A stopwatch that never started reports zero
func (s *Stopwatch) Elapsed() time.Duration {
	if s.startTime.IsZero() {
		return 0
	}
	return s.clock.Now().Sub(s.startTime)
}
