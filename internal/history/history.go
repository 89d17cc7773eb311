// Package history keeps a local cache of the user's orders in sqlite,
// so the orders view can still render when the backend is unreachable.
// It is display-only: nothing here is ever written back to the server.
package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"bmxshop/internal/api"
)

// Store manages the order history database.
type Store struct {
	db     *sql.DB
	dbPath string
}

// Open creates or opens the history database under the state dir.
func Open(dir string) (*Store, error) {
	dbPath := filepath.Join(dir, "orders.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	s := &Store{db: db, dbPath: dbPath}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize history schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS orders (
		id          TEXT PRIMARY KEY,
		status      TEXT NOT NULL,
		created_at  TEXT NOT NULL,
		payload     TEXT NOT NULL,
		recorded_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_orders_created ON orders(created_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record upserts one order snapshot. Later snapshots win (the status
// may have advanced server-side).
func (s *Store) Record(o api.Order) error {
	payload, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("encode order %s: %w", o.ID, err)
	}
	_, err = s.db.Exec(`
		INSERT INTO orders (id, status, created_at, payload, recorded_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			payload = excluded.payload,
			recorded_at = excluded.recorded_at`,
		string(o.ID), o.Status, o.CreatedAt.UTC().Format(time.RFC3339),
		string(payload), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("record order %s: %w", o.ID, err)
	}
	return nil
}

// RecordAll upserts a batch of order snapshots.
func (s *Store) RecordAll(orders []api.Order) error {
	for _, o := range orders {
		if err := s.Record(o); err != nil {
			return err
		}
	}
	return nil
}

// Orders returns the cached orders, newest first.
func (s *Store) Orders() ([]api.Order, error) {
	rows, err := s.db.Query(`SELECT payload FROM orders ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query order history: %w", err)
	}
	defer rows.Close()

	var out []api.Order
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var o api.Order
		if err := json.Unmarshal([]byte(payload), &o); err != nil {
			// A snapshot from an older schema; skip it rather than
			// losing the whole view.
			continue
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// Clear drops all cached orders. Called on logout: the cache belongs
// to the account that created it.
func (s *Store) Clear() error {
	_, err := s.db.Exec(`DELETE FROM orders`)
	return err
}
