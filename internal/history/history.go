// Package history records finished playbacks in SQLite.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// PlayRecord is one playback attempt.
type PlayRecord struct {
	Path     string
	PlayedAt time.Time
	Failed   bool
}

// Store handles play history persistence to SQLite.
type Store struct {
	db *sql.DB
}

// DefaultPath returns history.db inside stateDir.
func DefaultPath(stateDir string) string {
	return filepath.Join(stateDir, "history.db")
}

// Open opens or creates the history database at dbPath.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}

	store := &Store{db: db}
	if err := store.ensureSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) ensureSchema(ctx context.Context) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS plays (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			path TEXT NOT NULL,
			played_at INTEGER NOT NULL,
			failed INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE INDEX IF NOT EXISTS plays_path ON plays (path);`,
	}
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate history schema: %w", err)
		}
	}
	return nil
}

// Record stores one playback.
func (s *Store) Record(ctx context.Context, rec PlayRecord) error {
	failed := 0
	if rec.Failed {
		failed = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO plays (path, played_at, failed) VALUES (?, ?, ?)`,
		rec.Path, rec.PlayedAt.UnixMilli(), failed)
	if err != nil {
		return fmt.Errorf("record play %s: %w", rec.Path, err)
	}
	return nil
}

// Watched returns the latest successful play time per path.
func (s *Store) Watched(ctx context.Context) (map[string]time.Time, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT path, MAX(played_at) FROM plays WHERE failed = 0 GROUP BY path`)
	if err != nil {
		return nil, fmt.Errorf("load watched: %w", err)
	}
	defer rows.Close()

	out := make(map[string]time.Time)
	for rows.Next() {
		var (
			path string
			ms   int64
		)
		if err := rows.Scan(&path, &ms); err != nil {
			return nil, fmt.Errorf("scan watched: %w", err)
		}
		out[path] = time.UnixMilli(ms)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate watched: %w", err)
	}
	return out, nil
}

// Recent returns up to limit plays, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]PlayRecord, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT path, played_at, failed FROM plays ORDER BY played_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("load recent plays: %w", err)
	}
	defer rows.Close()

	var out []PlayRecord
	for rows.Next() {
		var (
			rec    PlayRecord
			ms     int64
			failed int
		)
		if err := rows.Scan(&rec.Path, &ms, &failed); err != nil {
			return nil, fmt.Errorf("scan play: %w", err)
		}
		rec.PlayedAt = time.UnixMilli(ms)
		rec.Failed = failed == 1
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate plays: %w", err)
	}
	return out, nil
}

// Clear removes all recorded plays.
func (s *Store) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM plays`)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
