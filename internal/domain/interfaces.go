package domain

import (
	"context"
	"time"

	"roomstay/internal/models"
)

// Repository is the storage surface the services depend on. The sqlite
// implementation lives in internal/database.
type Repository interface {
	GetRoom(ctx context.Context, id int64) (*models.Room, error)
	GetRoomPricing(ctx context.Context, roomID int64) (*models.RoomPricing, error)
	GetRoomsByType(ctx context.Context, roomTypeID, branchID int64) ([]models.Room, error)

	AcquireLock(ctx context.Context, roomID int64, checkin, checkout time.Time, actorID int64, ttl time.Duration) (*models.RoomLock, error)
	ReleaseLock(ctx context.Context, token string) error
	ConvertLockToBooking(ctx context.Context, token string, bookingID int64) error
	SweepExpiredLocks(ctx context.Context, now time.Time) (int64, error)
	GetLockByToken(ctx context.Context, token string) (*models.RoomLock, error)

	IsRoomAvailable(ctx context.Context, roomID int64, checkin, checkout time.Time, excludeToken string) (bool, error)
	FindAvailableRooms(ctx context.Context, roomTypeID int64, checkin, checkout time.Time, branchID int64) ([]models.Room, error)
	DetectConflicts(ctx context.Context, roomID int64, checkin, checkout time.Time, excludeBookingID int64) ([]models.Conflict, error)

	GetRoomEvent(ctx context.Context, id int64) (*models.RoomEvent, error)
	GetEventsByStatus(ctx context.Context, status string) ([]models.RoomEvent, error)
	TransitionEventStatus(ctx context.Context, id int64, from []string, to string) error
	GetActiveAdjustments(ctx context.Context, branchID int64, date time.Time) ([]models.ActiveAdjustment, error)
}

// PriceCache stores resolved price quotes. Get returns nil on a miss.
type PriceCache interface {
	Get(ctx context.Context, roomID int64, date string) (*models.PriceQuote, error)
	Set(ctx context.Context, quote *models.PriceQuote) error
	Clear(ctx context.Context) error
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// LockManager is the temporary booking-lock protocol.
type LockManager interface {
	Acquire(ctx context.Context, roomID int64, checkin, checkout time.Time, actorID int64) (*models.RoomLock, error)
	Release(ctx context.Context, token string) error
	Convert(ctx context.Context, token string, bookingID int64) error
	SweepExpired(ctx context.Context) (int64, error)
}

// AvailabilityChecker computes free and conflicting room-nights from
// confirmed bookings plus active locks.
type AvailabilityChecker interface {
	IsAvailable(ctx context.Context, roomID int64, checkin, checkout time.Time, excludeToken string) (bool, error)
	CheckMultiple(ctx context.Context, roomIDs []int64, checkin, checkout time.Time) (map[int64]bool, error)
	FindAvailableRooms(ctx context.Context, roomTypeID int64, checkin, checkout time.Time, branchID int64) ([]models.Room, error)
	CountAvailable(ctx context.Context, roomTypeID int64, checkin, checkout time.Time, branchID int64) (int, error)
	DetectConflicts(ctx context.Context, roomID int64, checkin, checkout time.Time, excludeBookingID int64) ([]models.Conflict, error)
	Calendar(ctx context.Context, roomID int64, start, end time.Time) (*models.AvailabilityCalendar, error)
}

// PriceResolver resolves a final nightly price from layered adjustments.
type PriceResolver interface {
	ResolvePrice(ctx context.Context, roomID int64, date time.Time) (*models.PriceQuote, error)
	GetActiveAdjustmentsForRoom(ctx context.Context, roomID int64, date time.Time) ([]models.ActiveAdjustment, error)
}

// EventLifecycle drives pricing-event state transitions, both scheduled
// and manual.
type EventLifecycle interface {
	RunDaily(ctx context.Context, today time.Time) error
	ActivateEvent(ctx context.Context, id int64) error
	CompleteEvent(ctx context.Context, id int64) error
	CancelEvent(ctx context.Context, id int64) error
}
