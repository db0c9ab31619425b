package models

import "time"

type Booking struct {
	ID        int64     `json:"id"`
	GuestName string    `json:"guest_name"`
	Status    string    `json:"status"` // pending, confirmed, cancelled, completed
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BookingRoom is one room-night range inside a booking. Checkin is
// inclusive, checkout exclusive (standard hotel-night semantics).
type BookingRoom struct {
	ID        int64     `json:"id"`
	BookingID int64     `json:"booking_id"`
	RoomID    int64     `json:"room_id"`
	Checkin   time.Time `json:"checkin"`
	Checkout  time.Time `json:"checkout"`
	CreatedAt time.Time `json:"created_at"`
}

// Overlaps reports whether the [checkin, checkout) range of br intersects
// the given range.
func (br *BookingRoom) Overlaps(checkin, checkout time.Time) bool {
	return br.Checkin.Before(checkout) && checkin.Before(br.Checkout)
}
