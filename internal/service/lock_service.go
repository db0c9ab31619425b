package service

import (
	"context"
	"errors"
	"time"

	"roomstay/internal/config"
	"roomstay/internal/database"
	"roomstay/internal/domain"
	"roomstay/internal/events"
	"roomstay/internal/metrics"
	"roomstay/internal/models"
	"roomstay/internal/worker"

	"github.com/rs/zerolog"
)

// LockService issues, releases and converts temporary room locks on top of
// the repository's transactional check-and-insert.
type LockService struct {
	repo     domain.Repository
	eventBus domain.EventPublisher
	ttl      time.Duration
	retry    worker.RetryPolicy
	logger   *zerolog.Logger
}

func NewLockService(repo domain.Repository, eventBus domain.EventPublisher, cfg config.LocksConfig, logger *zerolog.Logger) *LockService {
	return &LockService{
		repo:     repo,
		eventBus: eventBus,
		ttl:      cfg.TTL(),
		retry: worker.RetryPolicy{
			MaxRetries:   cfg.AcquireMaxAttempts - 1,
			InitialDelay: cfg.AcquireBackoff(),
			MaxDelay:     time.Second,
		},
		logger: logger,
	}
}

// retryableAcquireError keeps contract errors out of the retry loop: an
// occupied room or bad input stays occupied no matter how often we ask.
func retryableAcquireError(err error) bool {
	switch {
	case errors.Is(err, database.ErrRoomUnavailable),
		errors.Is(err, database.ErrDataIntegrity),
		errors.Is(err, database.ErrRoomNotFound),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return false
	}
	return true
}

func (s *LockService) Acquire(ctx context.Context, roomID int64, checkin, checkout time.Time, actorID int64) (*models.RoomLock, error) {
	var lock *models.RoomLock
	err := s.retry.Do(ctx, func() error {
		var err error
		lock, err = s.repo.AcquireLock(ctx, roomID, checkin, checkout, actorID, s.ttl)
		return err
	}, retryableAcquireError)

	if err != nil {
		if errors.Is(err, database.ErrRoomUnavailable) {
			metrics.IncLockAcquisition("conflict")
		} else {
			metrics.IncLockAcquisition("error")
			s.logger.Error().Err(err).Int64("room_id", roomID).Msg("lock acquire failed")
		}
		return nil, err
	}

	metrics.IncLockAcquisition("ok")
	s.logger.Info().
		Str("token", lock.Token).
		Int64("room_id", roomID).
		Time("expires_at", lock.ExpiresAt).
		Msg("lock acquired")

	s.publishLockEvent(events.EventLockAcquired, lock)
	return lock, nil
}

func (s *LockService) Release(ctx context.Context, token string) error {
	if err := s.repo.ReleaseLock(ctx, token); err != nil {
		return err
	}

	if lock, err := s.repo.GetLockByToken(ctx, token); err == nil {
		s.publishLockEvent(events.EventLockReleased, lock)
	}

	s.logger.Info().Str("token", token).Msg("lock released")
	return nil
}

func (s *LockService) Convert(ctx context.Context, token string, bookingID int64) error {
	err := s.repo.ConvertLockToBooking(ctx, token, bookingID)
	if err != nil {
		metrics.IncLockConversion("error")
		return err
	}

	metrics.IncLockConversion("ok")
	s.logger.Info().Str("token", token).Int64("booking_id", bookingID).Msg("lock converted to booking")

	if lock, getErr := s.repo.GetLockByToken(ctx, token); getErr == nil {
		s.publishLockEvent(events.EventLockConverted, lock)
	}

	return nil
}

func (s *LockService) SweepExpired(ctx context.Context) (int64, error) {
	now := time.Now().UTC()
	swept, err := s.repo.SweepExpiredLocks(ctx, now)
	if err != nil {
		s.logger.Error().Err(err).Msg("lock sweep failed")
		return 0, err
	}

	metrics.AddLocksSwept(swept)
	if swept > 0 {
		s.logger.Info().Int64("swept", swept).Msg("expired locks released")
		if s.eventBus != nil {
			_ = s.eventBus.PublishJSON(events.EventLocksSwept, events.SweepEventPayload{Swept: swept, At: now})
		}
	}

	return swept, nil
}

func (s *LockService) publishLockEvent(eventType string, lock *models.RoomLock) {
	if s.eventBus == nil {
		return
	}

	payload := events.LockEventPayload{
		Token:     lock.Token,
		RoomID:    lock.RoomID,
		ActorID:   lock.ActorID,
		BookingID: lock.BookingID,
		Checkin:   lock.Checkin,
		Checkout:  lock.Checkout,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Str("token", lock.Token).Msg("publish event error")
	}
}
