// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists user preferences and fetched template schemas in
// a local SQLite database.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/wikicite/pkg/types"
)

const dbFile = "wikicite.db"

// Store manages the wikicite SQLite database.
type Store struct {
	db  *sql.DB
	dir string

	// Now is replaced in tests.
	Now func() time.Time
}

// NewStore opens or creates the database at cfg.Dir/wikicite.db and
// creates the schema if it does not exist.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = types.DefaultConfig().Store.Dir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(dir, dbFile)+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, dir: dir, Now: time.Now}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Dir returns the store directory.
func (s *Store) Dir() string { return s.dir }

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS preferences (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS schema_cache (
			key TEXT PRIMARY KEY,
			bundle TEXT NOT NULL,
			templates INTEGER NOT NULL,
			fetched_at TEXT NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

func (s *Store) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// --- preferences ---

// Get returns the preference stored under key, or "" when unset.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM preferences WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading preference %s: %w", key, err)
	}
	return value, nil
}

// Set stores a preference. The last write wins.
func (s *Store) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO preferences (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at`,
		key, value, s.now().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("writing preference %s: %w", key, err)
	}
	return nil
}

// Preferences returns every stored preference.
func (s *Store) Preferences(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM preferences ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("listing preferences: %w", err)
	}
	defer rows.Close()

	prefs := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scanning preference: %w", err)
		}
		prefs[key] = value
	}
	return prefs, rows.Err()
}

// --- schema cache ---

// SaveBundle caches a schema bundle under key, stamped with the current
// time.
func (s *Store) SaveBundle(ctx context.Context, key string, b *types.SchemaBundle) error {
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("marshaling schema bundle: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO schema_cache (key, bundle, templates, fetched_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
			bundle=excluded.bundle, templates=excluded.templates, fetched_at=excluded.fetched_at`,
		key, string(data), len(b.Templates), s.now().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("caching schema bundle: %w", err)
	}
	return nil
}

// LoadBundle returns the bundle cached under key and when it was fetched.
// A missing entry returns a nil bundle and no error.
func (s *Store) LoadBundle(ctx context.Context, key string) (*types.SchemaBundle, time.Time, error) {
	var data, fetched string
	err := s.db.QueryRowContext(ctx,
		`SELECT bundle, fetched_at FROM schema_cache WHERE key = ?`, key,
	).Scan(&data, &fetched)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, nil
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("reading schema cache: %w", err)
	}

	fetchedAt, err := time.Parse(time.RFC3339Nano, fetched)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("parsing fetch time %q: %w", fetched, err)
	}
	b := types.NewSchemaBundle()
	if err := json.Unmarshal([]byte(data), b); err != nil {
		return nil, time.Time{}, fmt.Errorf("decoding cached bundle: %w", err)
	}
	return b, fetchedAt, nil
}

// CacheEntry describes one cached bundle.
type CacheEntry struct {
	Key       string    `json:"key" yaml:"key"`
	Templates int       `json:"templates" yaml:"templates"`
	FetchedAt time.Time `json:"fetched_at" yaml:"fetched_at"`
}

// Age returns how long ago the entry was fetched.
func (e CacheEntry) Age(now time.Time) time.Duration {
	return now.Sub(e.FetchedAt)
}

// CacheEntries lists the cached bundles, most recent first.
func (s *Store) CacheEntries(ctx context.Context) ([]CacheEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, templates, fetched_at FROM schema_cache ORDER BY fetched_at DESC, key`)
	if err != nil {
		return nil, fmt.Errorf("listing schema cache: %w", err)
	}
	defer rows.Close()

	var entries []CacheEntry
	for rows.Next() {
		var e CacheEntry
		var fetched string
		if err := rows.Scan(&e.Key, &e.Templates, &fetched); err != nil {
			return nil, fmt.Errorf("scanning cache entry: %w", err)
		}
		if e.FetchedAt, err = time.Parse(time.RFC3339Nano, fetched); err != nil {
			return nil, fmt.Errorf("parsing fetch time %q: %w", fetched, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ClearCache removes every cached bundle and returns how many were removed.
func (s *Store) ClearCache(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM schema_cache`)
	if err != nil {
		return 0, fmt.Errorf("clearing schema cache: %w", err)
	}
	return res.RowsAffected()
}
