package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

type DB struct {
	*sql.DB
	logger *zerolog.Logger

	// guards holds one mutex per room id so that check-and-insert on a
	// room's inventory runs in a short exclusive critical section.
	guardsMu sync.Mutex
	guards   map[int64]*sync.Mutex
}

func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A pooled in-memory sqlite would give every connection its own empty
	// database; pin the pool to one connection.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.Info().Str("path", path).Msg("database initialized")
	return &DB{DB: db, logger: logger, guards: make(map[int64]*sync.Mutex)}, nil
}

// roomGuard returns the mutex dedicated to one room id, creating it on first
// use. The map only ever grows; a hotel's room count is small and stable.
func (db *DB) roomGuard(roomID int64) *sync.Mutex {
	db.guardsMu.Lock()
	defer db.guardsMu.Unlock()
	if m, ok := db.guards[roomID]; ok {
		return m
	}
	m := &sync.Mutex{}
	db.guards[roomID] = m
	return m
}

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS room_categories (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT NOT NULL,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE TABLE IF NOT EXISTS room_types (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            category_id INTEGER,
            name TEXT NOT NULL,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE TABLE IF NOT EXISTS rooms (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            branch_id INTEGER NOT NULL,
            room_type_id INTEGER,
            number TEXT NOT NULL,
            base_price REAL NOT NULL DEFAULT 0,
            sale_percent REAL NOT NULL DEFAULT 0,
            is_active BOOLEAN NOT NULL DEFAULT 1,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE TABLE IF NOT EXISTS bookings (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            guest_name TEXT NOT NULL DEFAULT '',
            status TEXT NOT NULL DEFAULT 'pending',
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE TABLE IF NOT EXISTS booking_rooms (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            booking_id INTEGER NOT NULL,
            room_id INTEGER NOT NULL,
            checkin TEXT NOT NULL,
            checkout TEXT NOT NULL,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE TABLE IF NOT EXISTS room_locks (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            token TEXT UNIQUE NOT NULL,
            room_id INTEGER NOT NULL,
            checkin TEXT NOT NULL,
            checkout TEXT NOT NULL,
            actor_id INTEGER NOT NULL,
            booking_id INTEGER NOT NULL DEFAULT 0,
            released BOOLEAN NOT NULL DEFAULT 0,
            released_at DATETIME,
            created_at DATETIME NOT NULL,
            expires_at DATETIME NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS room_events (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT NOT NULL,
            branch_id INTEGER NOT NULL,
            start_date TEXT NOT NULL,
            end_date TEXT NOT NULL,
            status TEXT NOT NULL DEFAULT 'scheduled',
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE TABLE IF NOT EXISTS price_adjustments (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            event_id INTEGER NOT NULL,
            adjustment_type TEXT NOT NULL,
            direction TEXT NOT NULL,
            value REAL NOT NULL,
            target_type TEXT NOT NULL,
            target_id INTEGER NOT NULL,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,

		`CREATE INDEX IF NOT EXISTS idx_rooms_type ON rooms(room_type_id)`,
		`CREATE INDEX IF NOT EXISTS idx_rooms_branch ON rooms(branch_id)`,
		`CREATE INDEX IF NOT EXISTS idx_booking_rooms_room ON booking_rooms(room_id, checkin, checkout)`,
		`CREATE INDEX IF NOT EXISTS idx_booking_rooms_booking ON booking_rooms(booking_id)`,
		`CREATE INDEX IF NOT EXISTS idx_room_locks_room ON room_locks(room_id, released, expires_at)`,
		`CREATE INDEX IF NOT EXISTS idx_room_locks_expiry ON room_locks(released, expires_at)`,
		`CREATE INDEX IF NOT EXISTS idx_room_events_status ON room_events(status, start_date, end_date)`,
		`CREATE INDEX IF NOT EXISTS idx_price_adjustments_event ON price_adjustments(event_id)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}

// queryer abstracts *sql.DB and *sql.Tx so overlap checks can run both
// standalone and inside the lock transactions.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (db *DB) Close() error {
	return db.DB.Close()
}
