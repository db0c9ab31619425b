package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"roomstay/internal/models"
)

func (db *DB) CreateRoomCategory(ctx context.Context, category *models.RoomCategory) error {
	now := time.Now()
	result, err := db.ExecContext(ctx,
		`INSERT INTO room_categories (name, created_at) VALUES (?, ?)`,
		category.Name, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create room category: %w", err)
	}
	category.ID, _ = result.LastInsertId()
	category.CreatedAt = now
	return nil
}

func (db *DB) CreateRoomType(ctx context.Context, roomType *models.RoomType) error {
	now := time.Now()
	result, err := db.ExecContext(ctx,
		`INSERT INTO room_types (category_id, name, created_at) VALUES (?, ?, ?)`,
		nullableID(roomType.CategoryID), roomType.Name, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create room type: %w", err)
	}
	roomType.ID, _ = result.LastInsertId()
	roomType.CreatedAt = now
	return nil
}

func (db *DB) CreateRoom(ctx context.Context, room *models.Room) error {
	now := time.Now()
	result, err := db.ExecContext(ctx,
		`INSERT INTO rooms (branch_id, room_type_id, number, base_price, sale_percent, is_active, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		room.BranchID, nullableID(room.RoomTypeID), room.Number,
		room.BasePrice, room.SalePercent, room.IsActive, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}
	room.ID, _ = result.LastInsertId()
	room.CreatedAt = now
	room.UpdatedAt = now
	return nil
}

func (db *DB) GetRoom(ctx context.Context, id int64) (*models.Room, error) {
	var room models.Room
	var typeID sql.NullInt64
	err := db.QueryRowContext(ctx,
		`SELECT id, branch_id, room_type_id, number, base_price, sale_percent, is_active, created_at, updated_at
         FROM rooms WHERE id = ?`, id,
	).Scan(&room.ID, &room.BranchID, &typeID, &room.Number,
		&room.BasePrice, &room.SalePercent, &room.IsActive, &room.CreatedAt, &room.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	room.RoomTypeID = typeID.Int64
	return &room, nil
}

// GetRoomPricing loads a room together with its full ancestor chain in one
// query. Missing room type or category linkage comes back as zero ids, which
// the resolver treats as "no match at that level".
func (db *DB) GetRoomPricing(ctx context.Context, roomID int64) (*models.RoomPricing, error) {
	var p models.RoomPricing
	var typeID, categoryID sql.NullInt64
	err := db.QueryRowContext(ctx,
		`SELECT r.id, r.branch_id, r.number, r.base_price, r.sale_percent, rt.id, rt.category_id
         FROM rooms r
         LEFT JOIN room_types rt ON rt.id = r.room_type_id
         WHERE r.id = ?`, roomID,
	).Scan(&p.RoomID, &p.BranchID, &p.Number, &p.BasePrice, &p.SalePercent, &typeID, &categoryID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get room pricing: %w", err)
	}
	p.RoomTypeID = typeID.Int64
	p.CategoryID = categoryID.Int64
	return &p, nil
}

// GetRoomsByType returns active rooms of one type ordered by room number.
// A zero branchID means all branches.
func (db *DB) GetRoomsByType(ctx context.Context, roomTypeID, branchID int64) ([]models.Room, error) {
	query := `SELECT id, branch_id, room_type_id, number, base_price, sale_percent, is_active, created_at, updated_at
              FROM rooms WHERE room_type_id = ? AND is_active = 1`
	args := []any{roomTypeID}
	if branchID != 0 {
		query += ` AND branch_id = ?`
		args = append(args, branchID)
	}
	query += ` ORDER BY number ASC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get rooms by type: %w", err)
	}
	defer rows.Close()

	var rooms []models.Room
	for rows.Next() {
		var room models.Room
		var typeID sql.NullInt64
		if err := rows.Scan(&room.ID, &room.BranchID, &typeID, &room.Number,
			&room.BasePrice, &room.SalePercent, &room.IsActive, &room.CreatedAt, &room.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan room: %w", err)
		}
		room.RoomTypeID = typeID.Int64
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}

func nullableID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}
