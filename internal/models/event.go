package models

import "time"

// RoomEvent is a named, dated pricing campaign for one branch. Status follows
// the date window except cancelled, which is terminal and never time-driven.
type RoomEvent struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	BranchID  int64     `json:"branch_id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CoversDate reports whether date falls inside [StartDate, EndDate],
// both inclusive.
func (e *RoomEvent) CoversDate(date time.Time) bool {
	return !date.Before(e.StartDate) && !date.After(e.EndDate)
}

// PriceAdjustment is one pricing rule owned by a RoomEvent.
type PriceAdjustment struct {
	ID             int64     `json:"id"`
	EventID        int64     `json:"event_id"`
	AdjustmentType string    `json:"adjustment_type"` // percentage, fixed_amount
	Direction      string    `json:"direction"`       // increase, decrease
	Value          float64   `json:"value"`
	TargetType     string    `json:"target_type"` // category, room_type, specific_room
	TargetID       int64     `json:"target_id"`
	CreatedAt      time.Time `json:"created_at"`
}

// Target match levels, most specific first. A broader match is discarded once
// a narrower one exists for the same room and date.
const (
	MatchLevelNone     = 0
	MatchLevelCategory = 1
	MatchLevelRoomType = 2
	MatchLevelRoom     = 3
)

// MatchLevel returns how specifically the adjustment targets the given room,
// or MatchLevelNone when it does not apply. A room without a type or category
// simply cannot match at that level.
func (a *PriceAdjustment) MatchLevel(room RoomPricing) int {
	switch a.TargetType {
	case TargetSpecificRoom:
		if a.TargetID == room.RoomID {
			return MatchLevelRoom
		}
	case TargetRoomType:
		if room.RoomTypeID != 0 && a.TargetID == room.RoomTypeID {
			return MatchLevelRoomType
		}
	case TargetCategory:
		if room.CategoryID != 0 && a.TargetID == room.CategoryID {
			return MatchLevelCategory
		}
	}
	return MatchLevelNone
}

// ActiveAdjustment pairs an adjustment with its owning event's start date,
// which drives the stable application order among same-level rules.
type ActiveAdjustment struct {
	PriceAdjustment
	EventStart time.Time `json:"event_start"`
}

// AppliedAdjustment is one step of a resolved price breakdown.
type AppliedAdjustment struct {
	AdjustmentID   int64   `json:"adjustment_id"`
	EventID        int64   `json:"event_id"`
	AdjustmentType string  `json:"adjustment_type"`
	Direction      string  `json:"direction"`
	Value          float64 `json:"value"`
	TargetType     string  `json:"target_type"`
	PriceAfter     float64 `json:"price_after"`
}

// PriceQuote is the result of resolving one room-night price.
type PriceQuote struct {
	RoomID     int64               `json:"room_id"`
	Date       string              `json:"date"`
	BasePrice  float64             `json:"base_price"`
	SalePrice  float64             `json:"sale_price"` // base after the room's own sale percent
	FinalPrice float64             `json:"final_price"`
	Applied    []AppliedAdjustment `json:"applied,omitempty"`
}
