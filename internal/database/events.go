package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"roomstay/internal/models"
)

func (db *DB) CreateRoomEvent(ctx context.Context, event *models.RoomEvent) error {
	if !event.StartDate.Before(event.EndDate) && !event.StartDate.Equal(event.EndDate) {
		return fmt.Errorf("%w: event start date after end date", ErrDataIntegrity)
	}
	if event.Status == "" {
		event.Status = models.EventStatusScheduled
	}

	now := time.Now()
	result, err := db.ExecContext(ctx,
		`INSERT INTO room_events (name, branch_id, start_date, end_date, status, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		event.Name, event.BranchID,
		event.StartDate.Format(models.DateLayout), event.EndDate.Format(models.DateLayout),
		event.Status, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create room event: %w", err)
	}
	event.ID, _ = result.LastInsertId()
	event.CreatedAt = now
	event.UpdatedAt = now
	return nil
}

func (db *DB) AddPriceAdjustment(ctx context.Context, adj *models.PriceAdjustment) error {
	if adj.Value <= 0 {
		return fmt.Errorf("%w: adjustment value must be positive", ErrDataIntegrity)
	}

	now := time.Now()
	result, err := db.ExecContext(ctx,
		`INSERT INTO price_adjustments (event_id, adjustment_type, direction, value, target_type, target_id, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		adj.EventID, adj.AdjustmentType, adj.Direction, adj.Value, adj.TargetType, adj.TargetID, now,
	)
	if err != nil {
		return fmt.Errorf("failed to add price adjustment: %w", err)
	}
	adj.ID, _ = result.LastInsertId()
	adj.CreatedAt = now
	return nil
}

const eventSelect = `SELECT id, name, branch_id, start_date, end_date, status, created_at, updated_at FROM room_events`

func (db *DB) GetRoomEvent(ctx context.Context, id int64) (*models.RoomEvent, error) {
	event, err := scanEvent(db.QueryRowContext(ctx, eventSelect+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	return event, err
}

// GetEventsByStatus returns events in one status, oldest start date first.
func (db *DB) GetEventsByStatus(ctx context.Context, status string) ([]models.RoomEvent, error) {
	rows, err := db.QueryContext(ctx, eventSelect+` WHERE status = ? ORDER BY start_date ASC, id ASC`, status)
	if err != nil {
		return nil, fmt.Errorf("failed to get events by status: %w", err)
	}
	defer rows.Close()

	var events []models.RoomEvent
	for rows.Next() {
		event, err := scanEventRow(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *event)
	}
	return events, rows.Err()
}

// TransitionEventStatus moves an event from one status to another. The guard
// on the source status makes every transition idempotent and rejects illegal
// manual commands: zero affected rows on an existing event means it was not
// in any of the allowed source states.
func (db *DB) TransitionEventStatus(ctx context.Context, id int64, from []string, to string) error {
	if len(from) == 0 {
		return fmt.Errorf("%w: no source states given", ErrInvalidStateTransition)
	}

	query := `UPDATE room_events SET status = ?, updated_at = ? WHERE id = ? AND status IN (?` +
		repeatPlaceholder(len(from)-1) + `)`
	args := []any{to, time.Now(), id}
	for _, s := range from {
		args = append(args, s)
	}

	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to transition event status: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows > 0 {
		return nil
	}

	if _, err := db.GetRoomEvent(ctx, id); err != nil {
		return err
	}
	return ErrInvalidStateTransition
}

// GetActiveAdjustments returns every adjustment whose owning event is ACTIVE
// for the branch and covers the date. Order is the resolver's tie-break:
// event start date ascending, then adjustment creation order.
func (db *DB) GetActiveAdjustments(ctx context.Context, branchID int64, date time.Time) ([]models.ActiveAdjustment, error) {
	dateStr := date.Format(models.DateLayout)
	rows, err := db.QueryContext(ctx,
		`SELECT a.id, a.event_id, a.adjustment_type, a.direction, a.value, a.target_type, a.target_id, a.created_at, e.start_date
         FROM price_adjustments a
         JOIN room_events e ON e.id = a.event_id
         WHERE e.status = ? AND e.branch_id = ? AND e.start_date <= ? AND e.end_date >= ?
         ORDER BY e.start_date ASC, a.id ASC`,
		models.EventStatusActive, branchID, dateStr, dateStr,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get active adjustments: %w", err)
	}
	defer rows.Close()

	var adjustments []models.ActiveAdjustment
	for rows.Next() {
		var adj models.ActiveAdjustment
		var startStr string
		if err := rows.Scan(&adj.ID, &adj.EventID, &adj.AdjustmentType, &adj.Direction,
			&adj.Value, &adj.TargetType, &adj.TargetID, &adj.CreatedAt, &startStr); err != nil {
			return nil, fmt.Errorf("failed to scan adjustment: %w", err)
		}
		if adj.EventStart, err = time.Parse(models.DateLayout, startStr); err != nil {
			return nil, fmt.Errorf("failed to parse event start %s: %w", startStr, err)
		}
		adjustments = append(adjustments, adj)
	}
	return adjustments, rows.Err()
}

func scanEvent(row *sql.Row) (*models.RoomEvent, error) {
	return scanEventRow(row)
}

func scanEventRow(row rowScanner) (*models.RoomEvent, error) {
	var event models.RoomEvent
	var startStr, endStr string
	err := row.Scan(&event.ID, &event.Name, &event.BranchID, &startStr, &endStr,
		&event.Status, &event.CreatedAt, &event.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan event: %w", err)
	}
	if event.StartDate, err = time.Parse(models.DateLayout, startStr); err != nil {
		return nil, fmt.Errorf("failed to parse event start %s: %w", startStr, err)
	}
	if event.EndDate, err = time.Parse(models.DateLayout, endStr); err != nil {
		return nil, fmt.Errorf("failed to parse event end %s: %w", endStr, err)
	}
	return &event, nil
}

func repeatPlaceholder(n int) string {
	s := ""
	for i := 0; i < n; i++ {
		s += ", ?"
	}
	return s
}
