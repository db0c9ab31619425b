package database

import (
	"context"
	"time"

	"roomstay/internal/models"
)

// IsRoomAvailable reports whether no confirmed booking and no active lock
// other than excludeToken intersects [checkin, checkout).
func (db *DB) IsRoomAvailable(ctx context.Context, roomID int64, checkin, checkout time.Time, excludeToken string) (bool, error) {
	return db.rangeIsFree(ctx, db.DB, roomID, checkin, checkout, excludeToken, 0, time.Now())
}

// FindAvailableRooms returns active rooms of one type, ordered by room
// number, whose full [checkin, checkout) range is free. A zero branchID
// means all branches.
func (db *DB) FindAvailableRooms(ctx context.Context, roomTypeID int64, checkin, checkout time.Time, branchID int64) ([]models.Room, error) {
	rooms, err := db.GetRoomsByType(ctx, roomTypeID, branchID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var available []models.Room
	for _, room := range rooms {
		free, err := db.rangeIsFree(ctx, db.DB, room.ID, checkin, checkout, "", 0, now)
		if err != nil {
			return nil, err
		}
		if free {
			available = append(available, room)
		}
	}
	return available, nil
}

// DetectConflicts lists every blocker for the range: confirmed booking rooms
// (minus excludeBookingID, used when re-validating a modification of that
// booking) and active locks.
func (db *DB) DetectConflicts(ctx context.Context, roomID int64, checkin, checkout time.Time, excludeBookingID int64) ([]models.Conflict, error) {
	bookings, err := db.overlappingBookingRooms(ctx, db.DB, roomID, checkin, checkout, excludeBookingID)
	if err != nil {
		return nil, err
	}

	locks, err := db.activeLocksOverlapping(ctx, db.DB, roomID, checkin, checkout, "", time.Now())
	if err != nil {
		return nil, err
	}

	conflicts := make([]models.Conflict, 0, len(bookings)+len(locks))
	for _, br := range bookings {
		conflicts = append(conflicts, models.Conflict{
			Kind:      "booking",
			BookingID: br.BookingID,
			Checkin:   br.Checkin,
			Checkout:  br.Checkout,
		})
	}
	for _, lock := range locks {
		conflicts = append(conflicts, models.Conflict{
			Kind:      "lock",
			LockToken: lock.Token,
			Checkin:   lock.Checkin,
			Checkout:  lock.Checkout,
		})
	}
	return conflicts, nil
}
