package common

import (
	"context"
	"time"
)

// A pacer spaces a sequence of requests by a fixed delay.
// The first request goes through immediately, every later one waits,
// so n requests incur exactly n-1 waits.
type Pacer struct {
	delay   time.Duration
	clock   Clock
	started bool
}

func NewPacer(delay time.Duration, clock Clock) *Pacer {
	return &Pacer{delay: delay, clock: clock}
}

// Wait blocks until the next request is allowed
func (p *Pacer) Wait(ctx context.Context) error {
	if !p.started {
		p.started = true
		return nil
	}
	if p.delay <= 0 {
		return nil
	}
	return p.clock.Sleep(ctx, p.delay)
}
