package database

import (
	"context"
	"fmt"
	"time"

	"roomstay/internal/models"
)

func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	now := time.Now()
	if booking.Status == "" {
		booking.Status = models.BookingStatusPending
	}
	result, err := db.ExecContext(ctx,
		`INSERT INTO bookings (guest_name, status, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		booking.GuestName, booking.Status, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	booking.ID, _ = result.LastInsertId()
	booking.CreatedAt = now
	booking.UpdatedAt = now
	return nil
}

func (db *DB) UpdateBookingStatus(ctx context.Context, id int64, status string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE bookings SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	return nil
}

// AddBookingRoom attaches a room-night range to a booking directly, without
// going through the lock protocol. Intended for seeding and for migrating
// reservations created outside this system.
func (db *DB) AddBookingRoom(ctx context.Context, br *models.BookingRoom) error {
	now := time.Now()
	result, err := db.ExecContext(ctx,
		`INSERT INTO booking_rooms (booking_id, room_id, checkin, checkout, created_at) VALUES (?, ?, ?, ?, ?)`,
		br.BookingID, br.RoomID,
		br.Checkin.Format(models.DateLayout), br.Checkout.Format(models.DateLayout), now,
	)
	if err != nil {
		return fmt.Errorf("failed to add booking room: %w", err)
	}
	br.ID, _ = result.LastInsertId()
	br.CreatedAt = now
	return nil
}

// overlappingBookingRooms returns confirmed booking-room rows that intersect
// [checkin, checkout) for the room, optionally ignoring one booking id (used
// when re-validating a modification of that booking).
func (db *DB) overlappingBookingRooms(ctx context.Context, q queryer, roomID int64, checkin, checkout time.Time, excludeBookingID int64) ([]models.BookingRoom, error) {
	query := `SELECT br.id, br.booking_id, br.room_id, br.checkin, br.checkout
              FROM booking_rooms br
              JOIN bookings b ON b.id = br.booking_id AND b.status = ?
              WHERE br.room_id = ? AND br.checkin < ? AND br.checkout > ?`
	args := []any{
		models.BookingStatusConfirmed, roomID,
		checkout.Format(models.DateLayout), checkin.Format(models.DateLayout),
	}
	if excludeBookingID != 0 {
		query += ` AND br.booking_id != ?`
		args = append(args, excludeBookingID)
	}
	query += ` ORDER BY br.checkin ASC`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query overlapping bookings: %w", err)
	}
	defer rows.Close()

	var result []models.BookingRoom
	for rows.Next() {
		var br models.BookingRoom
		var checkinStr, checkoutStr string
		if err := rows.Scan(&br.ID, &br.BookingID, &br.RoomID, &checkinStr, &checkoutStr); err != nil {
			return nil, fmt.Errorf("failed to scan booking room: %w", err)
		}
		if br.Checkin, err = time.Parse(models.DateLayout, checkinStr); err != nil {
			return nil, fmt.Errorf("failed to parse checkin %s: %w", checkinStr, err)
		}
		if br.Checkout, err = time.Parse(models.DateLayout, checkoutStr); err != nil {
			return nil, fmt.Errorf("failed to parse checkout %s: %w", checkoutStr, err)
		}
		result = append(result, br)
	}
	return result, rows.Err()
}
