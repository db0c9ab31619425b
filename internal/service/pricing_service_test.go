package service

import (
	"context"
	"testing"
	"time"

	"roomstay/internal/models"
	"roomstay/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePrice(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	date := models.Date(2026, time.December, 31)
	weekStart := models.Date(2026, time.December, 28)
	weekEnd := models.Date(2027, time.January, 3)

	t.Run("base price only", func(t *testing.T) {
		roomID, _, _ := seedPricedRoom(t, db, 10, "601", 1500, 0)
		svc := NewPricingService(db, nil, testLogger())

		quote, err := svc.ResolvePrice(ctx, roomID, date)
		require.NoError(t, err)
		assert.Equal(t, 1500.0, quote.BasePrice)
		assert.Equal(t, 1500.0, quote.FinalPrice)
		assert.Empty(t, quote.Applied)
	})

	t.Run("sale percent applies before adjustments", func(t *testing.T) {
		roomID, _, _ := seedPricedRoom(t, db, 11, "602", 2000, 25)
		svc := NewPricingService(db, nil, testLogger())

		quote, err := svc.ResolvePrice(ctx, roomID, date)
		require.NoError(t, err)
		assert.Equal(t, 2000.0, quote.BasePrice)
		assert.Equal(t, 1500.0, quote.SalePrice)
		assert.Equal(t, 1500.0, quote.FinalPrice)
	})

	t.Run("category increase", func(t *testing.T) {
		roomID, _, categoryID := seedPricedRoom(t, db, 12, "603", 1000000, 0)
		event := seedActiveEvent(t, db, "New Year", 12, weekStart, weekEnd)
		addAdjustment(t, db, event.ID, models.AdjustmentPercentage, models.DirectionIncrease, 20, models.TargetCategory, categoryID)

		svc := NewPricingService(db, nil, testLogger())
		quote, err := svc.ResolvePrice(ctx, roomID, date)
		require.NoError(t, err)
		assert.Equal(t, 1200000.0, quote.FinalPrice)
		require.Len(t, quote.Applied, 1)
		assert.Equal(t, models.TargetCategory, quote.Applied[0].TargetType)
	})

	t.Run("specific room beats category", func(t *testing.T) {
		roomID, _, categoryID := seedPricedRoom(t, db, 13, "604", 1000000, 0)
		event := seedActiveEvent(t, db, "New Year", 13, weekStart, weekEnd)
		addAdjustment(t, db, event.ID, models.AdjustmentPercentage, models.DirectionIncrease, 20, models.TargetCategory, categoryID)
		addAdjustment(t, db, event.ID, models.AdjustmentFixedAmount, models.DirectionDecrease, 100000, models.TargetSpecificRoom, roomID)

		svc := NewPricingService(db, nil, testLogger())
		quote, err := svc.ResolvePrice(ctx, roomID, date)
		require.NoError(t, err)
		assert.Equal(t, 900000.0, quote.FinalPrice)
		require.Len(t, quote.Applied, 1)
		assert.Equal(t, models.TargetSpecificRoom, quote.Applied[0].TargetType)
	})

	t.Run("same level chains in event start order", func(t *testing.T) {
		roomID, _, categoryID := seedPricedRoom(t, db, 14, "605", 1000, 0)
		late := seedActiveEvent(t, db, "Late", 14, models.Date(2026, time.December, 30), weekEnd)
		early := seedActiveEvent(t, db, "Early", 14, weekStart, weekEnd)
		addAdjustment(t, db, late.ID, models.AdjustmentFixedAmount, models.DirectionIncrease, 100, models.TargetCategory, categoryID)
		addAdjustment(t, db, early.ID, models.AdjustmentPercentage, models.DirectionIncrease, 10, models.TargetCategory, categoryID)

		svc := NewPricingService(db, nil, testLogger())
		quote, err := svc.ResolvePrice(ctx, roomID, date)
		require.NoError(t, err)

		// Early event first: 1000 * 1.10 = 1100, then +100 = 1200
		require.Len(t, quote.Applied, 2)
		assert.Equal(t, early.ID, quote.Applied[0].EventID)
		assert.Equal(t, 1100.0, quote.Applied[0].PriceAfter)
		assert.Equal(t, 1200.0, quote.FinalPrice)
	})

	t.Run("decrease clamps at zero", func(t *testing.T) {
		roomID, _, categoryID := seedPricedRoom(t, db, 15, "606", 500, 0)
		event := seedActiveEvent(t, db, "Deep Sale", 15, weekStart, weekEnd)
		addAdjustment(t, db, event.ID, models.AdjustmentFixedAmount, models.DirectionDecrease, 9000, models.TargetCategory, categoryID)

		svc := NewPricingService(db, nil, testLogger())
		quote, err := svc.ResolvePrice(ctx, roomID, date)
		require.NoError(t, err)
		assert.Equal(t, 0.0, quote.FinalPrice)
	})

	t.Run("final price rounds half up", func(t *testing.T) {
		roomID, _, categoryID := seedPricedRoom(t, db, 16, "607", 100.33, 0)
		event := seedActiveEvent(t, db, "Odd", 16, weekStart, weekEnd)
		addAdjustment(t, db, event.ID, models.AdjustmentPercentage, models.DirectionIncrease, 10, models.TargetCategory, categoryID)

		svc := NewPricingService(db, nil, testLogger())
		quote, err := svc.ResolvePrice(ctx, roomID, date)
		require.NoError(t, err)

		// 100.33 * 1.10 = 110.363 -> 110.36
		assert.Equal(t, 110.36, quote.FinalPrice)
	})

	t.Run("scheduled event does not apply", func(t *testing.T) {
		roomID, _, categoryID := seedPricedRoom(t, db, 17, "608", 1000, 0)
		event := &models.RoomEvent{
			Name:      "NotYet",
			BranchID:  17,
			StartDate: weekStart,
			EndDate:   weekEnd,
		}
		require.NoError(t, db.CreateRoomEvent(ctx, event))
		addAdjustment(t, db, event.ID, models.AdjustmentPercentage, models.DirectionIncrease, 50, models.TargetCategory, categoryID)

		svc := NewPricingService(db, nil, testLogger())
		quote, err := svc.ResolvePrice(ctx, roomID, date)
		require.NoError(t, err)
		assert.Equal(t, 1000.0, quote.FinalPrice)
	})
}

func TestResolvePriceCache(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	date := models.Date(2026, time.October, 1)
	roomID, _, categoryID := seedPricedRoom(t, db, 20, "701", 1000, 0)

	cache := repository.NewMemoryPriceCache(time.Minute)
	svc := NewPricingService(db, cache, testLogger())

	first, err := svc.ResolvePrice(ctx, roomID, date)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, first.FinalPrice)

	// A new adjustment does not show through the cache until it is cleared
	event := seedActiveEvent(t, db, "Flash", 20, date, date)
	addAdjustment(t, db, event.ID, models.AdjustmentPercentage, models.DirectionIncrease, 20, models.TargetCategory, categoryID)

	cached, err := svc.ResolvePrice(ctx, roomID, date)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, cached.FinalPrice)

	require.NoError(t, cache.Clear(ctx))

	fresh, err := svc.ResolvePrice(ctx, roomID, date)
	require.NoError(t, err)
	assert.Equal(t, 1200.0, fresh.FinalPrice)
}

func TestGetActiveAdjustmentsForRoom(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	date := models.Date(2026, time.November, 5)
	roomID, roomTypeID, categoryID := seedPricedRoom(t, db, 21, "702", 1000, 0)
	event := seedActiveEvent(t, db, "Autumn", 21, models.Date(2026, time.November, 1), models.Date(2026, time.November, 30))

	addAdjustment(t, db, event.ID, models.AdjustmentPercentage, models.DirectionDecrease, 5, models.TargetCategory, categoryID)
	typeAdj := addAdjustment(t, db, event.ID, models.AdjustmentPercentage, models.DirectionDecrease, 10, models.TargetRoomType, roomTypeID)

	svc := NewPricingService(db, nil, testLogger())
	adjustments, err := svc.GetActiveAdjustmentsForRoom(ctx, roomID, date)
	require.NoError(t, err)

	// Room-type level wins over category level
	require.Len(t, adjustments, 1)
	assert.Equal(t, typeAdj.ID, adjustments[0].ID)
}
