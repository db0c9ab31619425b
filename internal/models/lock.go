package models

import "time"

// RoomLock is a time-boxed soft reservation on a room-night range, issued at
// checkout intent. It dies by explicit release, by conversion into a booking,
// or by the background expiry sweep.
type RoomLock struct {
	ID         int64      `json:"id"`
	Token      string     `json:"token"`
	RoomID     int64      `json:"room_id"`
	Checkin    time.Time  `json:"checkin"`
	Checkout   time.Time  `json:"checkout"`
	ActorID    int64      `json:"actor_id"`
	BookingID  int64      `json:"booking_id,omitempty"` // set on conversion
	Released   bool       `json:"released"`
	ReleasedAt *time.Time `json:"released_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	ExpiresAt  time.Time  `json:"expires_at"`
}

// ActiveAt reports whether the lock still holds inventory at the given
// instant: not released and not past its expiry.
func (l *RoomLock) ActiveAt(now time.Time) bool {
	return !l.Released && now.Before(l.ExpiresAt)
}

func (l *RoomLock) Overlaps(checkin, checkout time.Time) bool {
	return l.Checkin.Before(checkout) && checkin.Before(l.Checkout)
}

// Conflict describes one blocker found for a room-night range: either a
// confirmed booking room or an active lock.
type Conflict struct {
	Kind      string    `json:"kind"` // "booking" or "lock"
	BookingID int64     `json:"booking_id,omitempty"`
	LockToken string    `json:"lock_token,omitempty"`
	Checkin   time.Time `json:"checkin"`
	Checkout  time.Time `json:"checkout"`
}

// AvailabilityCalendar holds the per-day availability of one room over a
// date range, keyed by "2006-01-02".
type AvailabilityCalendar struct {
	RoomID    int64           `json:"room_id"`
	Days      map[string]bool `json:"days"`
	Available int             `json:"available_days"`
	Blocked   int             `json:"blocked_days"`
}
