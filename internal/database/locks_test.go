package database

import (
	"context"
	"testing"
	"time"

	"roomstay/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireLock(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	room := seedRoom(t, db, 1, "101", 1000)

	feb1 := models.Date(2026, time.February, 1)
	feb2 := models.Date(2026, time.February, 2)
	feb3 := models.Date(2026, time.February, 3)
	feb4 := models.Date(2026, time.February, 4)
	feb5 := models.Date(2026, time.February, 5)

	t.Run("success", func(t *testing.T) {
		lock, err := db.AcquireLock(ctx, room.ID, feb1, feb3, 42, 15*time.Minute)
		require.NoError(t, err)
		assert.NotEmpty(t, lock.Token)
		assert.Equal(t, room.ID, lock.RoomID)
		assert.True(t, lock.ActiveAt(time.Now()))

		require.NoError(t, db.ReleaseLock(ctx, lock.Token))
	})

	t.Run("overlapping lock blocks", func(t *testing.T) {
		first, err := db.AcquireLock(ctx, room.ID, feb1, feb3, 1, 15*time.Minute)
		require.NoError(t, err)

		// Feb 2-4 overlaps the night of Feb 2
		_, err = db.AcquireLock(ctx, room.ID, feb2, feb4, 2, 15*time.Minute)
		assert.ErrorIs(t, err, ErrRoomUnavailable)

		// Feb 3-5 starts on the first lock's checkout day
		second, err := db.AcquireLock(ctx, room.ID, feb3, feb5, 2, 15*time.Minute)
		assert.NoError(t, err)

		require.NoError(t, db.ReleaseLock(ctx, first.Token))
		require.NoError(t, db.ReleaseLock(ctx, second.Token))
	})

	t.Run("released range can be relocked", func(t *testing.T) {
		first, err := db.AcquireLock(ctx, room.ID, feb1, feb3, 1, 15*time.Minute)
		require.NoError(t, err)
		require.NoError(t, db.ReleaseLock(ctx, first.Token))

		second, err := db.AcquireLock(ctx, room.ID, feb1, feb3, 2, 15*time.Minute)
		assert.NoError(t, err)
		require.NoError(t, db.ReleaseLock(ctx, second.Token))
	})

	t.Run("confirmed booking blocks", func(t *testing.T) {
		other := seedRoom(t, db, 1, "102", 1000)
		confirmBookingRoom(t, db, other.ID, feb1, feb3)

		_, err := db.AcquireLock(ctx, other.ID, feb2, feb4, 1, 15*time.Minute)
		assert.ErrorIs(t, err, ErrRoomUnavailable)
	})

	t.Run("invalid range", func(t *testing.T) {
		_, err := db.AcquireLock(ctx, room.ID, feb3, feb1, 1, 15*time.Minute)
		assert.ErrorIs(t, err, ErrDataIntegrity)

		_, err = db.AcquireLock(ctx, room.ID, feb1, feb1, 1, 15*time.Minute)
		assert.ErrorIs(t, err, ErrDataIntegrity)
	})
}

func TestReleaseLock(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	room := seedRoom(t, db, 1, "103", 1000)

	lock, err := db.AcquireLock(ctx, room.ID,
		models.Date(2026, time.March, 1), models.Date(2026, time.March, 3), 1, 15*time.Minute)
	require.NoError(t, err)

	assert.NoError(t, db.ReleaseLock(ctx, lock.Token))

	// Releasing again is a no-op
	assert.NoError(t, db.ReleaseLock(ctx, lock.Token))

	assert.ErrorIs(t, db.ReleaseLock(ctx, "no-such-token"), ErrLockNotFound)

	got, err := db.GetLockByToken(ctx, lock.Token)
	require.NoError(t, err)
	assert.True(t, got.Released)
	assert.NotNil(t, got.ReleasedAt)
}

func TestConvertLockToBooking(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	room := seedRoom(t, db, 1, "104", 1000)

	checkin := models.Date(2026, time.April, 1)
	checkout := models.Date(2026, time.April, 4)

	t.Run("success", func(t *testing.T) {
		lock, err := db.AcquireLock(ctx, room.ID, checkin, checkout, 1, 15*time.Minute)
		require.NoError(t, err)

		booking := &models.Booking{GuestName: "Ivanov", Status: models.BookingStatusPending}
		require.NoError(t, db.CreateBooking(ctx, booking))

		require.NoError(t, db.ConvertLockToBooking(ctx, lock.Token, booking.ID))

		converted, err := db.GetLockByToken(ctx, lock.Token)
		require.NoError(t, err)
		assert.True(t, converted.Released)
		assert.Equal(t, booking.ID, converted.BookingID)

		// The range is now held by the booking, not the lock
		available, err := db.IsRoomAvailable(ctx, room.ID, checkin, checkout, "")
		require.NoError(t, err)
		assert.False(t, available)
	})

	t.Run("expired lock cannot convert", func(t *testing.T) {
		other := seedRoom(t, db, 1, "105", 1000)
		lock, err := db.AcquireLock(ctx, other.ID, checkin, checkout, 1, time.Millisecond)
		require.NoError(t, err)

		time.Sleep(5 * time.Millisecond)

		booking := &models.Booking{Status: models.BookingStatusPending}
		require.NoError(t, db.CreateBooking(ctx, booking))

		err = db.ConvertLockToBooking(ctx, lock.Token, booking.ID)
		assert.ErrorIs(t, err, ErrLockExpired)
	})

	t.Run("released lock cannot convert", func(t *testing.T) {
		other := seedRoom(t, db, 1, "106", 1000)
		lock, err := db.AcquireLock(ctx, other.ID, checkin, checkout, 1, 15*time.Minute)
		require.NoError(t, err)
		require.NoError(t, db.ReleaseLock(ctx, lock.Token))

		booking := &models.Booking{Status: models.BookingStatusPending}
		require.NoError(t, db.CreateBooking(ctx, booking))

		err = db.ConvertLockToBooking(ctx, lock.Token, booking.ID)
		assert.ErrorIs(t, err, ErrLockExpired)
	})

	t.Run("unknown token", func(t *testing.T) {
		err := db.ConvertLockToBooking(ctx, "missing", 1)
		assert.ErrorIs(t, err, ErrLockNotFound)
	})
}

func TestSweepExpiredLocks(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	room := seedRoom(t, db, 1, "107", 1000)

	mkLock := func(number string, ttl time.Duration) *models.RoomLock {
		r := seedRoom(t, db, 1, number, 1000)
		lock, err := db.AcquireLock(ctx, r.ID,
			models.Date(2026, time.May, 1), models.Date(2026, time.May, 3), 1, ttl)
		require.NoError(t, err)
		return lock
	}

	expired1 := mkLock("108", time.Millisecond)
	expired2 := mkLock("109", time.Millisecond)
	alive, err := db.AcquireLock(ctx, room.ID,
		models.Date(2026, time.May, 1), models.Date(2026, time.May, 3), 1, time.Hour)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	swept, err := db.SweepExpiredLocks(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(2), swept)

	for _, token := range []string{expired1.Token, expired2.Token} {
		lock, err := db.GetLockByToken(ctx, token)
		require.NoError(t, err)
		assert.True(t, lock.Released)
	}

	got, err := db.GetLockByToken(ctx, alive.Token)
	require.NoError(t, err)
	assert.False(t, got.Released)

	// Second sweep finds nothing
	swept, err = db.SweepExpiredLocks(ctx, time.Now())
	require.NoError(t, err)
	assert.Zero(t, swept)
}
