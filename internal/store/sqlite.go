package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/i474232898/weather-coordinator/internal/weather"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists preferences in a single key/value table.
type SQLiteStore struct {
	DB *sql.DB
}

var _ weather.Store = (*SQLiteStore)(nil)

// OpenSQLite opens (creating if needed) the database at path and ensures the schema.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("open sqlite store: create dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	// SQLite allows one writer at a time.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{DB: db}
	if err := s.init(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) init(ctx context.Context) error {
	_, err := s.DB.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS preferences (
        key        TEXT PRIMARY KEY,
        value      TEXT NOT NULL,
        updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
    );
	`)
	if err != nil {
		return fmt.Errorf("init sqlite store: create preferences table: %w", err)
	}
	return nil
}

// Get returns the value for key or ErrNotFound.
func (s *SQLiteStore) Get(ctx context.Context, key string) (string, error) {
	if s.DB == nil {
		return "", errors.New("sqlite store: db is nil")
	}

	var value string
	err := s.DB.QueryRowContext(ctx, `SELECT value FROM preferences WHERE key = ?;`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get preference %q: %w", key, err)
	}
	return value, nil
}

// Set upserts the value for key.
func (s *SQLiteStore) Set(ctx context.Context, key, value string) error {
	if s.DB == nil {
		return errors.New("sqlite store: db is nil")
	}

	_, err := s.DB.ExecContext(ctx, `
	INSERT OR REPLACE INTO preferences (
        key,
        value,
        updated_at
    )
    VALUES (?, ?, CURRENT_TIMESTAMP);
	`, key, value)
	if err != nil {
		return fmt.Errorf("set preference %q: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.DB.Close()
}
