package monitor

import (
	"context"
	"fmt"
	"rustbot/internal/common"
	"rustbot/internal/discord"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	disabledMessage   = "Monitoring Disabled: BattleMetrics token is missing."
	allFailedMessage  = "Failed to fetch status for all monitored servers."
	internalErrFormat = "An internal error occurred during the update: %v"
)

type Config struct {
	// Interval between the end of a cycle and the start of the next one
	Interval time.Duration
	// InitialDelay before the first cycle after Start
	InitialDelay time.Duration
	// RequestDelay between two consecutive status lookups
	RequestDelay time.Duration
}

type CycleResult string

const (
	ResultOK       CycleResult = "ok"
	ResultEmpty    CycleResult = "empty"
	ResultFailed   CycleResult = "failed"
	ResultError    CycleResult = "error"
	ResultPanic    CycleResult = "panic"
	ResultDisabled CycleResult = "disabled"
)

// CycleReport summarises the last finished cycle.
type CycleReport struct {
	ID       string        `json:"id"`
	Reason   string        `json:"reason"`
	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"duration"`
	Result   CycleResult   `json:"result"`
	Tracked  int           `json:"tracked"`
	Failures int           `json:"failures"`
	Action   Action        `json:"action"`
}

type Snapshot struct {
	Enabled   bool         `json:"enabled"`
	Running   bool         `json:"running"`
	Stopped   bool         `json:"stopped"`
	NextRun   *time.Time   `json:"nextRun,omitempty"`
	Tracked   int          `json:"tracked"`
	LastCycle *CycleReport `json:"lastCycle,omitempty"`
}

type Option func(*Coordinator)

func WithClock(clock common.Clock) Option {
	return func(c *Coordinator) {
		c.clock = clock
	}
}

func WithMetrics(metrics *Metrics) Option {
	return func(c *Coordinator) {
		c.metrics = metrics
	}
}

// Coordinator runs monitoring cycles, either periodically or on request,
// and never lets two cycles overlap.
//
// The next periodic run is always armed when a cycle finishes, counting the
// interval from that moment. Every armed timer carries a generation number;
// arming or cancelling bumps the generation so a callback from a replaced
// timer does nothing.
type Coordinator struct {
	config     Config
	source     StatusSource
	store      Store
	renderer   Renderer
	clock      common.Clock
	metrics    *Metrics
	sequencer  *Sequencer
	reconciler *Reconciler
	logger     zerolog.Logger

	running atomic.Bool

	mu         sync.Mutex
	ctx        context.Context
	timer      common.Timer
	generation uint64
	nextRun    time.Time
	started    bool
	stopped    bool
	last       *CycleReport
}

func NewCoordinator(config Config, source StatusSource, store Store, messenger discord.Messenger, renderer Renderer, opts ...Option) *Coordinator {
	c := &Coordinator{
		config:   config,
		source:   source,
		store:    store,
		renderer: renderer,
		clock:    common.NewClock(),
		ctx:      context.Background(),
		logger:   log.With().Str("service", "Coordinator").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.sequencer = NewSequencer(source, config.RequestDelay, c.clock, c.metrics)
	c.reconciler = NewReconciler(messenger, store, c.metrics)
	return c
}

// Start arms the first cycle after the initial delay. Without an API
// credential it does nothing. ctx is used by every timer driven cycle.
func (c *Coordinator) Start(ctx context.Context) {
	if !c.source.Enabled() {
		c.logger.Warn().Msg("Monitoring not started: BattleMetrics token is missing")
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		c.logger.Warn().Msg("Monitoring has been stopped and cannot start again")
		return
	}
	if c.started {
		c.logger.Warn().Msg("Monitoring already started")
		return
	}
	c.started = true
	c.ctx = ctx
	c.logger.Info().Msg(fmt.Sprintf("Starting monitoring. Interval: %s, initial delay: %s", c.config.Interval, c.config.InitialDelay))
	c.scheduleLocked(c.config.InitialDelay)
}

// Stop cancels the pending run. A cycle already running finishes, but nothing
// is scheduled after it.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}
	c.stopped = true
	c.cancelTimerLocked()
	c.logger.Info().Msg("Monitoring stopped")
}

// TriggerUpdate runs a cycle right away on the calling goroutine. It returns
// false without waiting when a cycle is already running.
func (c *Coordinator) TriggerUpdate(ctx context.Context) (bool, error) {
	if !c.source.Enabled() {
		c.metrics.observeTrigger("disabled")
		return false, ErrDisabled
	}
	c.mu.Lock()
	stopped := c.stopped
	c.mu.Unlock()
	if stopped {
		c.metrics.observeTrigger("stopped")
		return false, ErrStopped
	}

	if !c.running.CompareAndSwap(false, true) {
		c.logger.Warn().Msg("Manual update rejected: an update is already in progress")
		c.metrics.observeTrigger("busy")
		return false, nil
	}
	c.metrics.observeTrigger("accepted")
	c.logger.Info().Msg("Manual update triggered")

	c.mu.Lock()
	c.cancelTimerLocked()
	c.mu.Unlock()

	c.execute(ctx, "manual")
	return true, nil
}

// Snapshot describes the current state for the status endpoint.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	snapshot := Snapshot{
		Enabled: c.source.Enabled(),
		Running: c.running.Load(),
		Stopped: c.stopped,
		Tracked: len(c.store.List()),
	}
	if c.timer != nil {
		next := c.nextRun
		snapshot.NextRun = &next
	}
	if c.last != nil {
		last := *c.last
		snapshot.LastCycle = &last
	}
	return snapshot
}

func (c *Coordinator) scheduleLocked(delay time.Duration) {
	if c.stopped {
		return
	}
	c.cancelTimerLocked()
	if delay < 0 {
		delay = 0
	}
	generation := c.generation
	c.nextRun = c.clock.Now().Add(delay)
	c.timer = c.clock.AfterFunc(delay, func() { c.onTimer(generation) })
	c.logger.Debug().Msg(fmt.Sprintf("Next update scheduled in %s", delay))
}

func (c *Coordinator) cancelTimerLocked() {
	c.generation++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Coordinator) onTimer(generation uint64) {
	c.mu.Lock()
	if generation != c.generation || c.stopped {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	ctx := c.ctx
	c.mu.Unlock()

	// A manual trigger won the race and will schedule the next run itself
	if !c.running.CompareAndSwap(false, true) {
		return
	}
	c.execute(ctx, "timer")
}

// execute runs one cycle. The caller must hold the running flag.
func (c *Coordinator) execute(ctx context.Context, reason string) {
	defer func() {
		c.running.Store(false)
		c.mu.Lock()
		c.scheduleLocked(c.config.Interval)
		c.mu.Unlock()
	}()

	report := CycleReport{ID: uuid.NewString(), Reason: reason}
	logger := c.logger.With().Str("cycle", report.ID).Logger()
	logger.Info().Msg(fmt.Sprintf("Starting monitoring cycle (%s)", reason))

	stopwatch := common.NewStopwatch(c.clock)
	stopwatch.Start()
	c.runCycle(ctx, logger, &report)
	report.Started = stopwatch.StartTime()
	report.Duration = stopwatch.Stop()

	c.metrics.observeCycle(report.Result, report.Duration.Seconds())
	logger.Info().Msg(fmt.Sprintf("Monitoring cycle finished in %s with result %s", report.Duration, report.Result))

	c.mu.Lock()
	c.last = &report
	c.mu.Unlock()
}

func (c *Coordinator) runCycle(ctx context.Context, logger zerolog.Logger, report *CycleReport) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Msg(fmt.Sprintf("Unexpected error during monitoring cycle: %v", r))
			report.Result = ResultPanic
			report.Action = c.showError(ctx, logger, fmt.Sprintf(internalErrFormat, r))
		}
	}()

	entities := c.store.List()
	report.Tracked = len(entities)
	c.metrics.setTracked(len(entities))

	if len(entities) == 0 {
		logger.Info().Msg("No servers configured for monitoring")
		report.Result = ResultEmpty
		action, err := c.reconciler.DeleteOrphan(ctx)
		report.Action = action
		if err != nil {
			logger.Error().Err(err).Msg("Could not delete orphaned live message")
			report.Result = ResultError
		}
		return
	}

	if !c.source.Enabled() {
		report.Result = ResultDisabled
		report.Action = c.showError(ctx, logger, disabledMessage)
		return
	}

	statuses := c.sequencer.FetchAll(ctx, entities)
	cards := make([]*discordgo.MessageEmbed, 0, len(statuses))
	for i, status := range statuses {
		if status.IsFailed() {
			report.Failures++
		}
		if card := c.renderer.RenderCard(status, entities[i]); card != nil {
			cards = append(cards, card)
		}
	}

	if len(cards) == 0 || report.Failures == len(statuses) {
		logger.Error().Msg("No server status could be fetched")
		report.Result = ResultFailed
		report.Action = c.showError(ctx, logger, allFailedMessage)
		return
	}

	action, err := c.reconciler.Sync(ctx, cards)
	report.Action = action
	if err != nil {
		logger.Error().Err(err).Msg("Could not update the live message")
		report.Result = ResultError
		return
	}
	report.Result = ResultOK
}

// showError replaces the live message content with a single error card.
func (c *Coordinator) showError(ctx context.Context, logger zerolog.Logger, message string) (action Action) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Msg(fmt.Sprintf("Could not display monitoring error: %v", r))
			action = ActionNone
		}
	}()

	action, err := c.reconciler.Sync(ctx, []*discordgo.MessageEmbed{c.renderer.RenderErrorCard(message)})
	if err != nil {
		logger.Error().Err(err).Msg("Could not display monitoring error")
	}
	return action
}
