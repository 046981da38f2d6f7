package common

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RateLimiter keeps a sequence of requests within a set of restrictions,
// blocking callers until their request fits. A rate limit reported by the
// remote side pauses every request for a while.
type RateLimiter struct {
	mu           sync.Mutex
	restrictions []Restriction
	history      []time.Time   // Requests still inside some window, oldest first
	window       time.Duration // Longest restriction
	pausedUntil  time.Time
	clock        Clock
	logger       zerolog.Logger
}

func NewRateLimiter(clock Clock, restrictions ...Restriction) *RateLimiter {
	rl := &RateLimiter{
		restrictions: append([]Restriction(nil), restrictions...),
		clock:        clock,
		logger:       log.With().Str("service", "RateLimiter").Logger(),
	}
	for _, restriction := range restrictions {
		if restriction.Duration > rl.window {
			rl.window = restriction.Duration
		}
	}
	return rl
}

// Wait blocks until a request is allowed and records it
func (rl *RateLimiter) Wait(ctx context.Context) error {
	for {
		wait := rl.reserve()
		if wait <= 0 {
			return nil
		}
		rl.logger.Debug().Msg(fmt.Sprintf("Request delayed %s by rate limits", wait))
		if err := rl.clock.Sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// ReceivedRateLimit holds back every request for the given duration
func (rl *RateLimiter) ReceivedRateLimit(pause time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	until := rl.clock.Now().Add(pause)
	if until.After(rl.pausedUntil) {
		rl.pausedUntil = until
	}
	rl.logger.Warn().Msg(fmt.Sprintf("Rate limited by the remote side, pausing requests for %s", pause))
}

// reserve records a request when allowed, or returns how long to wait
func (rl *RateLimiter) reserve() time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.clock.Now()
	if now.Before(rl.pausedUntil) {
		return rl.pausedUntil.Sub(now)
	}
	rl.trim(now)

	var wait time.Duration
	for _, restriction := range rl.restrictions {
		if w := restriction.Analyse(rl.history, now); w > wait {
			wait = w
		}
	}
	if wait > 0 {
		return wait
	}
	rl.history = append(rl.history, now)
	return 0
}

// Trim the history, leaving only the requests that are young enough
// to be affected by at least one restriction
func (rl *RateLimiter) trim(now time.Time) {
	index := 0
	for index < len(rl.history) && now.Sub(rl.history[index]) >= rl.window {
		index++
	}
	rl.history = rl.history[index:]
}
