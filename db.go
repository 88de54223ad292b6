// db.go
//
// SQLite persistence for the finished-match log.
// Responsibilities:
//   - Opening the database with safe defaults (WAL, busy timeout,
//     foreign keys).
//   - Applying the idempotent schema migration.
//   - matchRecorder: the game.Recorder that appends one row per
//     finished game instance.
//
// Live room state is never persisted here; the log is append-only
// history of games that already ended.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/wordduel/server/internal/game"
)

// openDB opens (and creates if missing) the SQLite database file.
func openDB(dsn string) (*sql.DB, error) {
	// Ensure directory exists for ./data/duel.db, etc.
	dir := filepath.Dir(dsn)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", dsn+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON; PRAGMA journal_mode = WAL;`); err != nil {
		return nil, fmt.Errorf("set pragmas: %w", err)
	}
	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS matches (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    room_code    TEXT NOT NULL,
    winner_id    TEXT,
    outcome      TEXT NOT NULL,
    target       TEXT NOT NULL,
    guess_counts TEXT NOT NULL,
    started_at   TEXT NOT NULL,
    finished_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_matches_finished ON matches (finished_at DESC);
`

// migrate applies the schema; safe to run on every start.
func migrate(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// matchRecorder implements game.Recorder on top of the matches table.
type matchRecorder struct {
	db *sql.DB
}

func (r *matchRecorder) RecordMatch(ctx context.Context, m game.MatchResult) error {
	counts := ""
	for id, n := range m.GuessCounts {
		if counts != "" {
			counts += ","
		}
		counts += fmt.Sprintf("%s=%d", id, n)
	}
	var winner any
	if m.WinnerID != "" {
		winner = m.WinnerID
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO matches (room_code, winner_id, outcome, target, guess_counts, started_at, finished_at)
		 VALUES (?,?,?,?,?,?,?)`,
		m.RoomCode, winner, m.Outcome, m.Target, counts,
		m.StartedAt.UTC().Format(time.RFC3339), m.FinishedAt.UTC().Format(time.RFC3339))
	return err
}
