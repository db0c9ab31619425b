package models

import "time"

const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
	BookingStatusCompleted = "completed"
)

const (
	EventStatusScheduled = "scheduled"
	EventStatusActive    = "active"
	EventStatusCompleted = "completed"
	EventStatusCancelled = "cancelled"
)

const (
	AdjustmentPercentage  = "percentage"
	AdjustmentFixedAmount = "fixed_amount"
)

const (
	DirectionIncrease = "increase"
	DirectionDecrease = "decrease"
)

const (
	TargetCategory     = "category"
	TargetRoomType     = "room_type"
	TargetSpecificRoom = "specific_room"
)

const (
	// DefaultLockTTL bounds how long a checkout session may hold a room.
	DefaultLockTTL = 15 * time.Minute

	// DefaultSweepInterval is how often expired locks are reaped.
	DefaultSweepInterval = time.Minute

	// DefaultAcquireAttempts caps retries on transient storage contention.
	DefaultAcquireAttempts = 3

	// DefaultPriceCacheTTL bounds staleness of cached price quotes.
	DefaultPriceCacheTTL = time.Minute
)

// DateLayout is the calendar-date storage format. All checkin/checkout and
// event dates are date-only values in this layout.
const DateLayout = "2006-01-02"

// Day truncates t to its calendar date in UTC.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Date builds a calendar date value.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
