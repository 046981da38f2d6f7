package monitor

import (
	"context"
	"fmt"
	"rustbot/internal/common"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Sequencer fetches the status of every tracked entity one after the other,
// waiting a fixed delay between consecutive requests.
type Sequencer struct {
	source  StatusSource
	delay   time.Duration
	clock   common.Clock
	metrics *Metrics
	logger  zerolog.Logger
}

func NewSequencer(source StatusSource, delay time.Duration, clock common.Clock, metrics *Metrics) *Sequencer {
	return &Sequencer{
		source:  source,
		delay:   delay,
		clock:   clock,
		metrics: metrics,
		logger:  log.With().Str("service", "Sequencer").Logger(),
	}
}

// FetchAll returns one status per entity, in the same order as entities.
func (s *Sequencer) FetchAll(ctx context.Context, entities []TrackedEntity) []EntityStatus {
	statuses := make([]EntityStatus, 0, len(entities))
	pacer := common.NewPacer(s.delay, s.clock)
	for _, entity := range entities {
		if err := pacer.Wait(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("Request delay interrupted")
		}
		status := s.fetch(ctx, entity.ID)
		s.metrics.observeFetch(status)
		statuses = append(statuses, status)
	}
	return statuses
}

func (s *Sequencer) fetch(ctx context.Context, entityID string) (status EntityStatus) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Msg(fmt.Sprintf("Status source panicked for server %s: %v", entityID, r))
			status = Failed(entityID, s.clock.Now(), Failure{Kind: FetchException})
		}
	}()

	s.logger.Debug().Msg(fmt.Sprintf("Fetching status for server %s", entityID))
	status = s.source.FetchStatus(ctx, entityID)

	// A result without payload breaks the source contract
	if status.Server == nil && status.Failure == nil {
		s.logger.Error().Msg(fmt.Sprintf("Status source returned an empty result for server %s", entityID))
		return Failed(entityID, s.clock.Now(), Failure{Kind: FetchException})
	}
	if status.EntityID == "" {
		status.EntityID = entityID
	}
	if status.Failure != nil {
		s.logger.Warn().Msg(fmt.Sprintf("Could not fetch server %s: %s", entityID, status.Failure))
	}
	return status
}
