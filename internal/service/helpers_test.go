package service

import (
	"context"
	"testing"
	"time"

	"roomstay/internal/database"
	"roomstay/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	logger := zerolog.New(zerolog.NewConsoleWriter())
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

// seedPricedRoom builds a category, type and room with the given prices and
// returns all three ids.
func seedPricedRoom(t *testing.T, db *database.DB, branchID int64, number string, basePrice, salePercent float64) (roomID, roomTypeID, categoryID int64) {
	t.Helper()
	ctx := context.Background()

	category := &models.RoomCategory{Name: "Category " + number}
	require.NoError(t, db.CreateRoomCategory(ctx, category))

	roomType := &models.RoomType{CategoryID: category.ID, Name: "Type " + number}
	require.NoError(t, db.CreateRoomType(ctx, roomType))

	room := &models.Room{
		BranchID:    branchID,
		RoomTypeID:  roomType.ID,
		Number:      number,
		BasePrice:   basePrice,
		SalePercent: salePercent,
		IsActive:    true,
	}
	require.NoError(t, db.CreateRoom(ctx, room))
	return room.ID, roomType.ID, category.ID
}

func seedActiveEvent(t *testing.T, db *database.DB, name string, branchID int64, start, end time.Time) *models.RoomEvent {
	t.Helper()
	event := &models.RoomEvent{
		Name:      name,
		BranchID:  branchID,
		StartDate: start,
		EndDate:   end,
		Status:    models.EventStatusActive,
	}
	require.NoError(t, db.CreateRoomEvent(context.Background(), event))
	return event
}

func addAdjustment(t *testing.T, db *database.DB, eventID int64, adjType, direction string, value float64, targetType string, targetID int64) *models.PriceAdjustment {
	t.Helper()
	adj := &models.PriceAdjustment{
		EventID:        eventID,
		AdjustmentType: adjType,
		Direction:      direction,
		Value:          value,
		TargetType:     targetType,
		TargetID:       targetID,
	}
	require.NoError(t, db.AddPriceAdjustment(context.Background(), adj))
	return adj
}
