// Package history keeps the cross-session record of level attempts in
// SQLite: which levels were beaten, with what flight time and fuel,
// and optionally the controller script that flew them. The engine
// never reads this; callers load it at session start and hand results
// in at run end.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Store persists level attempts in a SQLite database.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS attempts (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	level       TEXT NOT NULL,
	outcome     TEXT NOT NULL,
	reason      TEXT NOT NULL DEFAULT '',
	flight_time REAL NOT NULL,
	fuel_used   REAL NOT NULL,
	script      TEXT NOT NULL DEFAULT '',
	created_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS attempts_level ON attempts(level);
`

// Open opens (creating if needed) the attempt database.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("history: database path is required")
	}
	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("history: open db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history: ping db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history: create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Attempt is one recorded run of a level.
type Attempt struct {
	ID         int64
	Level      string
	Outcome    string
	Reason     string
	FlightTime float64
	FuelUsed   float64
	Script     string
	CreatedAt  time.Time
}

// Record inserts one attempt.
func (s *Store) Record(ctx context.Context, a Attempt) error {
	if a.Level == "" {
		return fmt.Errorf("history: level is required")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO attempts (level, outcome, reason, flight_time, fuel_used, script, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.Level, a.Outcome, a.Reason, a.FlightTime, a.FuelUsed, a.Script,
		time.Now().UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("history: record attempt: %w", err)
	}
	return nil
}

// List returns attempts for one level, newest first. An empty level
// returns everything.
func (s *Store) List(ctx context.Context, level string) ([]Attempt, error) {
	query := `SELECT id, level, outcome, reason, flight_time, fuel_used, script, created_at
		FROM attempts`
	args := []any{}
	if level != "" {
		query += ` WHERE level = ?`
		args = append(args, level)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("history: list attempts: %w", err)
	}
	defer rows.Close()

	var out []Attempt
	for rows.Next() {
		var a Attempt
		var created int64
		if err := rows.Scan(&a.ID, &a.Level, &a.Outcome, &a.Reason,
			&a.FlightTime, &a.FuelUsed, &a.Script, &created); err != nil {
			return nil, fmt.Errorf("history: scan attempt: %w", err)
		}
		a.CreatedAt = time.UnixMilli(created).UTC()
		out = append(out, a)
	}
	return out, rows.Err()
}

// Completed reports whether the level has at least one successful run.
func (s *Store) Completed(ctx context.Context, level string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM attempts WHERE level = ? AND outcome = 'success'`,
		level).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("history: completed check: %w", err)
	}
	return n > 0, nil
}

// BestFuel returns the lowest fuel spent on a successful run of the
// level, or false when the level has never been beaten.
func (s *Store) BestFuel(ctx context.Context, level string) (float64, bool, error) {
	var fuel sql.NullFloat64
	err := s.db.QueryRowContext(ctx,
		`SELECT MIN(fuel_used) FROM attempts WHERE level = ? AND outcome = 'success'`,
		level).Scan(&fuel)
	if err != nil {
		return 0, false, fmt.Errorf("history: best fuel: %w", err)
	}
	return fuel.Float64, fuel.Valid, nil
}
