package database

import (
	"context"
	"testing"
	"time"

	"roomstay/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	logger := zerolog.New(zerolog.NewConsoleWriter())
	db, err := NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// seedRoom creates a category, a room type inside it and one active room.
func seedRoom(t *testing.T, db *DB, branchID int64, number string, basePrice float64) *models.Room {
	t.Helper()
	ctx := context.Background()

	category := &models.RoomCategory{Name: "Standard " + number}
	require.NoError(t, db.CreateRoomCategory(ctx, category))

	roomType := &models.RoomType{CategoryID: category.ID, Name: "Double " + number}
	require.NoError(t, db.CreateRoomType(ctx, roomType))

	room := &models.Room{
		BranchID:   branchID,
		RoomTypeID: roomType.ID,
		Number:     number,
		BasePrice:  basePrice,
		IsActive:   true,
	}
	require.NoError(t, db.CreateRoom(ctx, room))
	return room
}

// confirmBookingRoom creates a confirmed booking occupying the room for the
// given range.
func confirmBookingRoom(t *testing.T, db *DB, roomID int64, checkin, checkout time.Time) *models.Booking {
	t.Helper()
	ctx := context.Background()

	booking := &models.Booking{GuestName: "Guest", Status: models.BookingStatusConfirmed}
	require.NoError(t, db.CreateBooking(ctx, booking))
	require.NoError(t, db.AddBookingRoom(ctx, &models.BookingRoom{
		BookingID: booking.ID,
		RoomID:    roomID,
		Checkin:   checkin,
		Checkout:  checkout,
	}))
	return booking
}

func TestCreateAndGetRoom(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	room := seedRoom(t, db, 1, "101", 1500)

	got, err := db.GetRoom(ctx, room.ID)
	assert.NoError(t, err)
	assert.Equal(t, "101", got.Number)
	assert.Equal(t, 1500.0, got.BasePrice)
	assert.True(t, got.IsActive)

	_, err = db.GetRoom(ctx, 9999)
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestGetRoomPricing(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	t.Run("full hierarchy", func(t *testing.T) {
		room := seedRoom(t, db, 1, "102", 2000)

		pricing, err := db.GetRoomPricing(ctx, room.ID)
		assert.NoError(t, err)
		assert.Equal(t, room.ID, pricing.RoomID)
		assert.Equal(t, room.RoomTypeID, pricing.RoomTypeID)
		assert.NotZero(t, pricing.CategoryID)
		assert.Equal(t, 2000.0, pricing.BasePrice)
	})

	t.Run("room without type", func(t *testing.T) {
		room := &models.Room{BranchID: 1, Number: "X1", BasePrice: 900, IsActive: true}
		require.NoError(t, db.CreateRoom(ctx, room))

		pricing, err := db.GetRoomPricing(ctx, room.ID)
		assert.NoError(t, err)
		assert.Zero(t, pricing.RoomTypeID)
		assert.Zero(t, pricing.CategoryID)
	})

	t.Run("type without category", func(t *testing.T) {
		roomType := &models.RoomType{Name: "Orphan Type"}
		require.NoError(t, db.CreateRoomType(ctx, roomType))
		room := &models.Room{BranchID: 1, RoomTypeID: roomType.ID, Number: "X2", BasePrice: 800, IsActive: true}
		require.NoError(t, db.CreateRoom(ctx, room))

		pricing, err := db.GetRoomPricing(ctx, room.ID)
		assert.NoError(t, err)
		assert.Equal(t, roomType.ID, pricing.RoomTypeID)
		assert.Zero(t, pricing.CategoryID)
	})
}

func TestGetRoomsByType(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	category := &models.RoomCategory{Name: "Suite"}
	require.NoError(t, db.CreateRoomCategory(ctx, category))
	roomType := &models.RoomType{CategoryID: category.ID, Name: "Junior Suite"}
	require.NoError(t, db.CreateRoomType(ctx, roomType))

	for _, spec := range []struct {
		number string
		branch int64
		active bool
	}{
		{"203", 1, true},
		{"201", 1, true},
		{"202", 2, true},
		{"204", 1, false},
	} {
		require.NoError(t, db.CreateRoom(ctx, &models.Room{
			BranchID:   spec.branch,
			RoomTypeID: roomType.ID,
			Number:     spec.number,
			BasePrice:  3000,
			IsActive:   spec.active,
		}))
	}

	rooms, err := db.GetRoomsByType(ctx, roomType.ID, 1)
	assert.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, "201", rooms[0].Number)
	assert.Equal(t, "203", rooms[1].Number)

	all, err := db.GetRoomsByType(ctx, roomType.ID, 0)
	assert.NoError(t, err)
	assert.Len(t, all, 3)
}
