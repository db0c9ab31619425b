package service

import (
	"context"
	"time"

	"roomstay/internal/domain"
	"roomstay/internal/events"
	"roomstay/internal/metrics"
	"roomstay/internal/models"

	"github.com/rs/zerolog"
)

// EventLifecycleService drives pricing events through
// scheduled -> active -> completed, with cancelled as the terminal escape
// hatch. Transitions rely on the repository's status-guarded update, so a
// repeated run is a no-op rather than a double transition.
type EventLifecycleService struct {
	repo     domain.Repository
	cache    domain.PriceCache
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewEventLifecycleService(repo domain.Repository, cache domain.PriceCache, eventBus domain.EventPublisher, logger *zerolog.Logger) *EventLifecycleService {
	return &EventLifecycleService{
		repo:     repo,
		cache:    cache,
		eventBus: eventBus,
		logger:   logger,
	}
}

// RunDaily applies the date-driven transitions for one calendar day:
// scheduled events whose window covers today become active, active events
// whose window has passed become completed. One failing event never blocks
// the rest of the batch.
func (s *EventLifecycleService) RunDaily(ctx context.Context, today time.Time) error {
	day := models.Day(today)
	transitions := 0

	scheduled, err := s.repo.GetEventsByStatus(ctx, models.EventStatusScheduled)
	if err != nil {
		return err
	}
	for i := range scheduled {
		event := &scheduled[i]
		if !event.CoversDate(day) {
			continue
		}
		if err := s.transition(ctx, event.ID, []string{models.EventStatusScheduled}, models.EventStatusActive, "schedule"); err != nil {
			s.logger.Error().Err(err).Int64("event_id", event.ID).Str("name", event.Name).Msg("daily activation failed")
			continue
		}
		transitions++
	}

	active, err := s.repo.GetEventsByStatus(ctx, models.EventStatusActive)
	if err != nil {
		return err
	}
	for i := range active {
		event := &active[i]
		if !event.EndDate.Before(day) {
			continue
		}
		if err := s.transition(ctx, event.ID, []string{models.EventStatusActive}, models.EventStatusCompleted, "schedule"); err != nil {
			s.logger.Error().Err(err).Int64("event_id", event.ID).Str("name", event.Name).Msg("daily completion failed")
			continue
		}
		transitions++
	}

	s.logger.Info().Str("day", day.Format(models.DateLayout)).Int("transitions", transitions).Msg("daily lifecycle run finished")
	return nil
}

func (s *EventLifecycleService) ActivateEvent(ctx context.Context, id int64) error {
	return s.transition(ctx, id, []string{models.EventStatusScheduled}, models.EventStatusActive, "manual")
}

func (s *EventLifecycleService) CompleteEvent(ctx context.Context, id int64) error {
	return s.transition(ctx, id, []string{models.EventStatusActive}, models.EventStatusCompleted, "manual")
}

func (s *EventLifecycleService) CancelEvent(ctx context.Context, id int64) error {
	return s.transition(ctx, id, []string{models.EventStatusScheduled, models.EventStatusActive}, models.EventStatusCancelled, "manual")
}

func (s *EventLifecycleService) transition(ctx context.Context, id int64, from []string, to, trigger string) error {
	if err := s.repo.TransitionEventStatus(ctx, id, from, to); err != nil {
		return err
	}

	metrics.IncEventTransition(to)

	// Any status change shifts which adjustments are active; cached quotes
	// are stale the moment the update commits.
	if s.cache != nil {
		if err := s.cache.Clear(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("price cache clear failed")
		}
	}

	s.publishTransition(ctx, id, to, trigger)
	return nil
}

func (s *EventLifecycleService) publishTransition(ctx context.Context, id int64, to, trigger string) {
	if s.eventBus == nil {
		return
	}

	payload := events.LifecycleEventPayload{
		EventID: id,
		To:      to,
		Trigger: trigger,
	}
	if event, err := s.repo.GetRoomEvent(ctx, id); err == nil {
		payload.Name = event.Name
	}

	var eventType string
	switch to {
	case models.EventStatusActive:
		eventType = events.EventPricingActivated
	case models.EventStatusCompleted:
		eventType = events.EventPricingCompleted
	case models.EventStatusCancelled:
		eventType = events.EventPricingCancelled
	default:
		return
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("event_id", id).Msg("publish event error")
	}
}
