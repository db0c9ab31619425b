package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"roomstay/internal/models"
)

// AcquireLock issues a temporary hold on [checkin, checkout) for one room.
// The overlap check and the insert run inside one transaction under the
// room's guard mutex, so two concurrent acquires on overlapping ranges can
// never both succeed: the loser re-reads after the winner's commit and gets
// ErrRoomUnavailable.
func (db *DB) AcquireLock(ctx context.Context, roomID int64, checkin, checkout time.Time, actorID int64, ttl time.Duration) (*models.RoomLock, error) {
	if !checkin.Before(checkout) {
		return nil, fmt.Errorf("%w: checkin must precede checkout", ErrDataIntegrity)
	}
	if ttl <= 0 {
		ttl = models.DefaultLockTTL
	}

	guard := db.roomGuard(roomID)
	guard.Lock()
	defer guard.Unlock()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now()
	free, err := db.rangeIsFree(ctx, tx, roomID, checkin, checkout, "", 0, now)
	if err != nil {
		return nil, err
	}
	if !free {
		return nil, ErrRoomUnavailable
	}

	lock := &models.RoomLock{
		Token:     uuid.NewString(),
		RoomID:    roomID,
		Checkin:   checkin,
		Checkout:  checkout,
		ActorID:   actorID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO room_locks (token, room_id, checkin, checkout, actor_id, released, created_at, expires_at)
         VALUES (?, ?, ?, ?, ?, 0, ?, ?)`,
		lock.Token, lock.RoomID,
		lock.Checkin.Format(models.DateLayout), lock.Checkout.Format(models.DateLayout),
		lock.ActorID, lock.CreatedAt, lock.ExpiresAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert lock: %w", err)
	}
	lock.ID, _ = result.LastInsertId()

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit lock: %w", err)
	}
	return lock, nil
}

// ReleaseLock is the caller-driven cancellation path. Releasing an already
// released lock is a no-op; an unknown token is ErrLockNotFound.
func (db *DB) ReleaseLock(ctx context.Context, token string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE room_locks SET released = 1, released_at = ? WHERE token = ? AND released = 0`,
		time.Now(), token,
	)
	if err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows > 0 {
		return nil
	}

	var exists int
	err = db.QueryRowContext(ctx, `SELECT COUNT(*) FROM room_locks WHERE token = ?`, token).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check lock existence: %w", err)
	}
	if exists == 0 {
		return ErrLockNotFound
	}
	return nil
}

// ConvertLockToBooking turns an active lock into a confirmed booking room.
// Expiry is re-validated inside the same transaction that creates the
// booking_rooms row and flips released, so the sweep can never race a
// conversion destructively: whichever commits first wins.
func (db *DB) ConvertLockToBooking(ctx context.Context, token string, bookingID int64) error {
	lock, err := db.GetLockByToken(ctx, token)
	if err != nil {
		return err
	}

	guard := db.roomGuard(lock.RoomID)
	guard.Lock()
	defer guard.Unlock()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now()

	// Re-read under the transaction: the sweep or an explicit release may
	// have terminated the lock since the caller fetched it.
	current, err := scanLock(tx.QueryRowContext(ctx, lockSelect+` WHERE token = ?`, token))
	if errors.Is(err, sql.ErrNoRows) {
		return ErrLockNotFound
	}
	if err != nil {
		return err
	}
	if !current.ActiveAt(now) {
		return ErrLockExpired
	}

	// The lock should have kept the range clear; a confirmed overlap here
	// means an update was lost somewhere upstream.
	overlaps, err := db.overlappingBookingRooms(ctx, tx, current.RoomID, current.Checkin, current.Checkout, bookingID)
	if err != nil {
		return err
	}
	if len(overlaps) > 0 {
		return fmt.Errorf("%w: confirmed booking overlaps locked range for room %d", ErrDataIntegrity, current.RoomID)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO booking_rooms (booking_id, room_id, checkin, checkout, created_at) VALUES (?, ?, ?, ?, ?)`,
		bookingID, current.RoomID,
		current.Checkin.Format(models.DateLayout), current.Checkout.Format(models.DateLayout), now,
	); err != nil {
		return fmt.Errorf("failed to insert booking room: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE room_locks SET released = 1, released_at = ?, booking_id = ? WHERE token = ? AND released = 0`,
		now, bookingID, token,
	)
	if err != nil {
		return fmt.Errorf("failed to convert lock: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrLockExpired
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE bookings SET status = ?, updated_at = ? WHERE id = ?`,
		models.BookingStatusConfirmed, now, bookingID,
	); err != nil {
		return fmt.Errorf("failed to confirm booking: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit conversion: %w", err)
	}
	return nil
}

// SweepExpiredLocks releases every lock whose expiry passed, returning how
// many were reaped. This is the backstop for abandoned checkout sessions.
func (db *DB) SweepExpiredLocks(ctx context.Context, now time.Time) (int64, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE room_locks SET released = 1, released_at = ? WHERE released = 0 AND expires_at < ?`,
		now, now,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep expired locks: %w", err)
	}
	swept, _ := result.RowsAffected()
	return swept, nil
}

const lockSelect = `SELECT id, token, room_id, checkin, checkout, actor_id, booking_id, released, released_at, created_at, expires_at
                    FROM room_locks`

func (db *DB) GetLockByToken(ctx context.Context, token string) (*models.RoomLock, error) {
	lock, err := scanLock(db.QueryRowContext(ctx, lockSelect+` WHERE token = ?`, token))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrLockNotFound
	}
	return lock, err
}

// activeLocksOverlapping returns active locks intersecting the range,
// optionally skipping one token (the caller's own lock).
func (db *DB) activeLocksOverlapping(ctx context.Context, q queryer, roomID int64, checkin, checkout time.Time, excludeToken string, now time.Time) ([]models.RoomLock, error) {
	query := lockSelect + ` WHERE room_id = ? AND released = 0 AND expires_at > ?
              AND checkin < ? AND checkout > ?`
	args := []any{
		roomID, now,
		checkout.Format(models.DateLayout), checkin.Format(models.DateLayout),
	}
	if excludeToken != "" {
		query += ` AND token != ?`
		args = append(args, excludeToken)
	}
	query += ` ORDER BY checkin ASC`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query overlapping locks: %w", err)
	}
	defer rows.Close()

	var locks []models.RoomLock
	for rows.Next() {
		lock, err := scanLockRow(rows)
		if err != nil {
			return nil, err
		}
		locks = append(locks, *lock)
	}
	return locks, rows.Err()
}

// rangeIsFree reports whether no confirmed booking and no active lock (other
// than excludeToken / excludeBookingID) intersects [checkin, checkout).
func (db *DB) rangeIsFree(ctx context.Context, q queryer, roomID int64, checkin, checkout time.Time, excludeToken string, excludeBookingID int64, now time.Time) (bool, error) {
	bookings, err := db.overlappingBookingRooms(ctx, q, roomID, checkin, checkout, excludeBookingID)
	if err != nil {
		return false, err
	}
	if len(bookings) > 0 {
		return false, nil
	}

	locks, err := db.activeLocksOverlapping(ctx, q, roomID, checkin, checkout, excludeToken, now)
	if err != nil {
		return false, err
	}
	return len(locks) == 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLock(row *sql.Row) (*models.RoomLock, error) {
	return scanLockRow(row)
}

func scanLockRow(row rowScanner) (*models.RoomLock, error) {
	var lock models.RoomLock
	var checkinStr, checkoutStr string
	var releasedAt sql.NullTime
	err := row.Scan(&lock.ID, &lock.Token, &lock.RoomID, &checkinStr, &checkoutStr,
		&lock.ActorID, &lock.BookingID, &lock.Released, &releasedAt, &lock.CreatedAt, &lock.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan lock: %w", err)
	}
	if lock.Checkin, err = time.Parse(models.DateLayout, checkinStr); err != nil {
		return nil, fmt.Errorf("failed to parse lock checkin %s: %w", checkinStr, err)
	}
	if lock.Checkout, err = time.Parse(models.DateLayout, checkoutStr); err != nil {
		return nil, fmt.Errorf("failed to parse lock checkout %s: %w", checkoutStr, err)
	}
	if releasedAt.Valid {
		lock.ReleasedAt = &releasedAt.Time
	}
	return &lock, nil
}
