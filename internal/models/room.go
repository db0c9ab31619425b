package models

import "time"

type RoomCategory struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type RoomType struct {
	ID         int64     `json:"id"`
	CategoryID int64     `json:"category_id"` // 0 when the type has no category
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"created_at"`
}

type Room struct {
	ID          int64     `json:"id"`
	BranchID    int64     `json:"branch_id"`
	RoomTypeID  int64     `json:"room_type_id"` // 0 when the room has no type
	Number      string    `json:"number"`
	BasePrice   float64   `json:"base_price"`
	SalePercent float64   `json:"sale_percent"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RoomPricing is the eagerly-joined view the price resolver works on:
// the room plus its full ancestor chain, loaded in a single query so the
// resolver never triggers follow-up lookups.
type RoomPricing struct {
	RoomID      int64   `json:"room_id"`
	BranchID    int64   `json:"branch_id"`
	Number      string  `json:"number"`
	BasePrice   float64 `json:"base_price"`
	SalePercent float64 `json:"sale_percent"`
	RoomTypeID  int64   `json:"room_type_id"` // 0 when absent
	CategoryID  int64   `json:"category_id"`  // 0 when absent
}
