package common

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2025, time.March, 3, 12, 0, 0, 0, time.UTC)

func TestPacerWaitsBetweenRequestsOnly(t *testing.T) {
	clock := NewFakeClock(epoch)
	pacer := NewPacer(600*time.Millisecond, clock)

	for i := 0; i < 4; i++ {
		require.NoError(t, pacer.Wait(context.Background()))
	}

	assert.Equal(t, []time.Duration{600 * time.Millisecond, 600 * time.Millisecond, 600 * time.Millisecond}, clock.Sleeps())
}

func TestPacerWithoutDelayNeverSleeps(t *testing.T) {
	clock := NewFakeClock(epoch)
	pacer := NewPacer(0, clock)

	require.NoError(t, pacer.Wait(context.Background()))
	require.NoError(t, pacer.Wait(context.Background()))

	assert.Empty(t, clock.Sleeps())
}

func TestPacerStopsOnCancelledContext(t *testing.T) {
	clock := NewFakeClock(epoch)
	pacer := NewPacer(time.Second, clock)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, pacer.Wait(ctx))
	assert.ErrorIs(t, pacer.Wait(ctx), context.Canceled)
}

func TestFakeClockFiresTimersInOrder(t *testing.T) {
	clock := NewFakeClock(epoch)
	var fired []string
	clock.AfterFunc(2*time.Minute, func() { fired = append(fired, "late") })
	clock.AfterFunc(time.Minute, func() { fired = append(fired, "early") })
	stopped := clock.AfterFunc(90*time.Second, func() { fired = append(fired, "stopped") })

	assert.True(t, stopped.Stop())
	assert.False(t, stopped.Stop())
	assert.Equal(t, 2, clock.Pending())

	delay, ok := clock.NextDelay()
	require.True(t, ok)
	assert.Equal(t, time.Minute, delay)

	clock.Advance(3 * time.Minute)

	assert.Equal(t, []string{"early", "late"}, fired)
	assert.Equal(t, epoch.Add(3*time.Minute), clock.Now())
	assert.Zero(t, clock.Pending())
	assert.False(t, clock.FireNext())
}

func TestStopwatchMeasuresElapsedTime(t *testing.T) {
	clock := NewFakeClock(epoch)
	stopwatch := NewStopwatch(clock)
	assert.Zero(t, stopwatch.Elapsed())

	stopwatch.Start()
	assert.True(t, stopwatch.Running)
	require.NoError(t, clock.Sleep(context.Background(), 1500*time.Millisecond))

	assert.Equal(t, 1500*time.Millisecond, stopwatch.Stop())
	assert.False(t, stopwatch.Running)
	assert.Equal(t, epoch, stopwatch.StartTime())
}
