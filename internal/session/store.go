// Package session persists the console credential and login timestamp and
// decides, once per launch, whether the session may use the admin UI.
package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Keys of the persisted values.
const (
	KeyAuthToken = "authToken"
	KeyLastLogin = "lastLogin"
)

// Store is a SQLite-backed key-value table for the few values the console
// keeps between runs.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the store at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("session.Open: storage path is required")
	}
	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0o700); err != nil {
		return nil, fmt.Errorf("session.Open: create dir: %w", err)
	}

	dsn := cleanPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("session.Open: open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("session.Open: ping sqlite db: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("session.Open: migrate: %w", err)
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

// Get returns the value for key and whether it was present.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("session.Get %s: %w", key, err)
	}
	return v, true, nil
}

// Set upserts key.
func (s *Store) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("session.Set %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("session.Delete %s: %w", key, err)
	}
	return nil
}

// Token returns the stored bearer token, or "" if none.
func (s *Store) Token(ctx context.Context) (string, error) {
	v, _, err := s.Get(ctx, KeyAuthToken)
	return v, err
}

// SaveToken persists a bearer token.
func (s *Store) SaveToken(ctx context.Context, token string) error {
	return s.Set(ctx, KeyAuthToken, token)
}

// RecordLogin stores at as the last successful login, in unix milliseconds.
func (s *Store) RecordLogin(ctx context.Context, at time.Time) error {
	return s.Set(ctx, KeyLastLogin, strconv.FormatInt(at.UnixMilli(), 10))
}

// LastLogin returns the last recorded login. ok is false when none is stored
// or the stored value is unreadable.
func (s *Store) LastLogin(ctx context.Context) (t time.Time, ok bool, err error) {
	v, found, err := s.Get(ctx, KeyLastLogin)
	if err != nil || !found {
		return time.Time{}, false, err
	}
	ms, perr := strconv.ParseInt(v, 10, 64)
	if perr != nil {
		return time.Time{}, false, nil
	}
	return time.UnixMilli(ms), true, nil
}
