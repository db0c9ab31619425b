package repository

import (
	"context"
	"sync/atomic"
	"time"

	"roomstay/internal/domain"
	"roomstay/internal/models"

	"github.com/rs/zerolog"
)

type FailoverPriceCache struct {
	primary   domain.PriceCache
	fallback  domain.PriceCache
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck time.Time
}

func NewFailoverPriceCache(primary, fallback domain.PriceCache, logger *zerolog.Logger) *FailoverPriceCache {
	return &FailoverPriceCache{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverPriceCache) Get(ctx context.Context, roomID int64, date string) (*models.PriceQuote, error) {
	if !r.isDown.Load() {
		quote, err := r.primary.Get(ctx, roomID, date)
		if err == nil {
			return quote, nil
		}
		r.logger.Error().Err(err).Msg("Primary price cache failed, falling back to memory")
		r.isDown.Store(true)
		r.lastCheck = time.Now()
	}

	// Try to recover after 1 minute
	if r.isDown.Load() && time.Since(r.lastCheck) > time.Minute {
		quote, err := r.primary.Get(ctx, roomID, date)
		if err == nil {
			r.isDown.Store(false)
			return quote, nil
		}
		r.lastCheck = time.Now()
	}

	return r.fallback.Get(ctx, roomID, date)
}

func (r *FailoverPriceCache) Set(ctx context.Context, quote *models.PriceQuote) error {
	if !r.isDown.Load() {
		err := r.primary.Set(ctx, quote)
		if err == nil {
			return nil
		}
		r.logger.Error().Err(err).Msg("Primary price cache failed, falling back to memory")
		r.isDown.Store(true)
		r.lastCheck = time.Now()
	}

	return r.fallback.Set(ctx, quote)
}

func (r *FailoverPriceCache) Clear(ctx context.Context) error {
	// Clear both sides; a stale entry surviving in either defeats the point.
	var primaryErr error
	if !r.isDown.Load() {
		primaryErr = r.primary.Clear(ctx)
		if primaryErr != nil {
			r.logger.Error().Err(primaryErr).Msg("Primary price cache failed, falling back to memory")
			r.isDown.Store(true)
			r.lastCheck = time.Now()
		}
	}

	if err := r.fallback.Clear(ctx); err != nil {
		return err
	}
	return primaryErr
}
