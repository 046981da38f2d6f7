package common

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRestrictionAnalyse(t *testing.T) {
	restriction := Restriction{Requests: 2, Duration: time.Second}
	now := epoch.Add(10 * time.Second)

	assert.Zero(t, restriction.Analyse(nil, now))
	assert.Zero(t, restriction.Analyse([]time.Time{now.Add(-500 * time.Millisecond)}, now))
	// Old requests do not count
	assert.Zero(t, restriction.Analyse([]time.Time{now.Add(-2 * time.Second), now.Add(-time.Second), now}, now))
	assert.Equal(t, 700*time.Millisecond, restriction.Analyse([]time.Time{now.Add(-300 * time.Millisecond), now.Add(-100 * time.Millisecond)}, now))
	assert.Zero(t, Restriction{}.Analyse([]time.Time{now}, now))
}

func TestRateLimiterSingleRestriction(t *testing.T) {
	clock := NewFakeClock(epoch)
	limiter := NewRateLimiter(clock, Restriction{Requests: 2, Duration: time.Second})

	for i := 0; i < 3; i++ {
		require.NoError(t, limiter.Wait(context.Background()))
	}

	assert.Equal(t, []time.Duration{time.Second}, clock.Sleeps())
}

func TestRateLimiterHonoursEveryRestriction(t *testing.T) {
	clock := NewFakeClock(epoch)
	limiter := NewRateLimiter(clock,
		Restriction{Requests: 2, Duration: time.Second},
		Restriction{Requests: 3, Duration: 10 * time.Second},
	)

	for i := 0; i < 4; i++ {
		require.NoError(t, limiter.Wait(context.Background()))
	}

	assert.Equal(t, []time.Duration{time.Second, 9 * time.Second}, clock.Sleeps())
	assert.Equal(t, epoch.Add(10*time.Second), clock.Now())
}

func TestRateLimiterPausesAfterRemoteLimit(t *testing.T) {
	clock := NewFakeClock(epoch)
	limiter := NewRateLimiter(clock, Restriction{Requests: 100, Duration: time.Minute})

	require.NoError(t, limiter.Wait(context.Background()))
	limiter.ReceivedRateLimit(5 * time.Second)
	// A shorter pause does not cut the current one
	limiter.ReceivedRateLimit(time.Second)
	require.NoError(t, limiter.Wait(context.Background()))

	assert.Equal(t, []time.Duration{5 * time.Second}, clock.Sleeps())
}

func TestRateLimiterStopsWithContext(t *testing.T) {
	clock := NewFakeClock(epoch)
	limiter := NewRateLimiter(clock, Restriction{Requests: 1, Duration: time.Minute})
	require.NoError(t, limiter.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, limiter.Wait(ctx), context.Canceled)
}
