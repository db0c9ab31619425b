package service

import (
	"context"
	"math"
	"time"

	"roomstay/internal/domain"
	"roomstay/internal/metrics"
	"roomstay/internal/models"

	"github.com/rs/zerolog"
)

// PricingService resolves the final nightly price of a room from its base
// price, its own sale percent and the active event adjustments.
type PricingService struct {
	repo   domain.Repository
	cache  domain.PriceCache
	logger *zerolog.Logger
}

func NewPricingService(repo domain.Repository, cache domain.PriceCache, logger *zerolog.Logger) *PricingService {
	return &PricingService{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

func (s *PricingService) ResolvePrice(ctx context.Context, roomID int64, date time.Time) (*models.PriceQuote, error) {
	day := models.Day(date).Format(models.DateLayout)

	if s.cache != nil {
		quote, err := s.cache.Get(ctx, roomID, day)
		if err != nil {
			s.logger.Warn().Err(err).Int64("room_id", roomID).Msg("price cache read failed")
		} else if quote != nil {
			metrics.IncPriceResolution("cache")
			return quote, nil
		}
	}

	room, err := s.repo.GetRoomPricing(ctx, roomID)
	if err != nil {
		return nil, err
	}

	// Скидка самого номера применяется до событийных корректировок
	salePrice := room.BasePrice
	if room.SalePercent > 0 {
		salePrice = room.BasePrice * (100 - room.SalePercent) / 100
	}

	adjustments, err := s.activeAdjustmentsFor(ctx, room, date)
	if err != nil {
		return nil, err
	}

	quote := &models.PriceQuote{
		RoomID:    roomID,
		Date:      day,
		BasePrice: room.BasePrice,
		SalePrice: salePrice,
	}

	price := salePrice
	for _, adj := range adjustments {
		price = applyAdjustment(price, adj.PriceAdjustment)
		quote.Applied = append(quote.Applied, models.AppliedAdjustment{
			AdjustmentID:   adj.ID,
			EventID:        adj.EventID,
			AdjustmentType: adj.AdjustmentType,
			Direction:      adj.Direction,
			Value:          adj.Value,
			TargetType:     adj.TargetType,
			PriceAfter:     price,
		})
	}

	quote.FinalPrice = roundHalfUp(price)

	if s.cache != nil {
		if err := s.cache.Set(ctx, quote); err != nil {
			s.logger.Warn().Err(err).Int64("room_id", roomID).Msg("price cache write failed")
		}
	}

	metrics.IncPriceResolution("db")
	return quote, nil
}

// GetActiveAdjustmentsForRoom returns the adjustments that would apply to the
// room on the given date, already filtered to the winning target level and in
// application order.
func (s *PricingService) GetActiveAdjustmentsForRoom(ctx context.Context, roomID int64, date time.Time) ([]models.ActiveAdjustment, error) {
	room, err := s.repo.GetRoomPricing(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return s.activeAdjustmentsFor(ctx, room, date)
}

// activeAdjustmentsFor keeps only the most specific match level: a rule
// targeting the room itself beats room-type rules, which beat category
// rules. Repository order (event start date, then adjustment id) is
// preserved within the winning level.
func (s *PricingService) activeAdjustmentsFor(ctx context.Context, room *models.RoomPricing, date time.Time) ([]models.ActiveAdjustment, error) {
	all, err := s.repo.GetActiveAdjustments(ctx, room.BranchID, models.Day(date))
	if err != nil {
		return nil, err
	}

	best := models.MatchLevelNone
	for _, adj := range all {
		if level := adj.MatchLevel(*room); level > best {
			best = level
		}
	}
	if best == models.MatchLevelNone {
		return nil, nil
	}

	var matched []models.ActiveAdjustment
	for _, adj := range all {
		if adj.MatchLevel(*room) == best {
			matched = append(matched, adj)
		}
	}
	return matched, nil
}

// applyAdjustment applies one rule and clamps the result at zero; a chain of
// decreases can never drive a price negative.
func applyAdjustment(price float64, adj models.PriceAdjustment) float64 {
	var delta float64
	switch adj.AdjustmentType {
	case models.AdjustmentPercentage:
		delta = price * adj.Value / 100
	case models.AdjustmentFixedAmount:
		delta = adj.Value
	default:
		return price
	}

	if adj.Direction == models.DirectionDecrease {
		price -= delta
	} else {
		price += delta
	}

	if price < 0 {
		return 0
	}
	return price
}

// roundHalfUp rounds to two decimal places, halves away from zero.
func roundHalfUp(x float64) float64 {
	return math.Floor(x*100+0.5) / 100
}
