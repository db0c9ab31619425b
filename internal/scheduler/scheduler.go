package scheduler

import (
	"context"
	"time"

	"roomstay/internal/config"
	"roomstay/internal/domain"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
)

// Scheduler owns the two recurring jobs of the subsystem: the daily
// pricing-event lifecycle run and the lock expiry sweep. Both jobs run in
// singleton mode, so a slow pass is never overlapped by the next one.
type Scheduler struct {
	inner     gocron.Scheduler
	lifecycle domain.EventLifecycle
	locks     domain.LockManager
	cfg       *config.Config
	logger    *zerolog.Logger
}

func New(lifecycle domain.EventLifecycle, locks domain.LockManager, cfg *config.Config, logger *zerolog.Logger) (*Scheduler, error) {
	inner, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	return &Scheduler{
		inner:     inner,
		lifecycle: lifecycle,
		locks:     locks,
		cfg:       cfg,
		logger:    logger,
	}, nil
}

// Start registers the jobs and launches the scheduler goroutine.
func (s *Scheduler) Start(ctx context.Context) error {
	hour, minute := s.cfg.DailyRunClock()

	_, err := s.inner.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(uint(hour), uint(minute), 0))),
		gocron.NewTask(func() {
			if err := s.lifecycle.RunDaily(ctx, time.Now().UTC()); err != nil {
				s.logger.Error().Err(err).Msg("daily lifecycle run failed")
			}
		}),
		gocron.WithName("event-lifecycle-daily"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return err
	}

	_, err = s.inner.NewJob(
		gocron.DurationJob(s.cfg.Locks.SweepInterval()),
		gocron.NewTask(func() {
			if _, err := s.locks.SweepExpired(ctx); err != nil {
				s.logger.Error().Err(err).Msg("lock sweep failed")
			}
		}),
		gocron.WithName("lock-expiry-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return err
	}

	s.inner.Start()
	s.logger.Info().
		Int("hour", hour).
		Int("minute", minute).
		Dur("sweep_interval", s.cfg.Locks.SweepInterval()).
		Msg("scheduler started")
	return nil
}

// Shutdown stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Shutdown() error {
	return s.inner.Shutdown()
}
