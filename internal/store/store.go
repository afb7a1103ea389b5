// Package store is an optional SQLite-backed cache of projected GPS9 fix
// series, keyed by the source file's (path, size, mtime) so a repeated
// gpx/csv/report/nearby run over an unchanged file can skip re-walking the
// MP4 and re-parsing GPMF entirely. It is never required for correctness:
// every caller must work identically with the cache disabled.
package store

import (
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"github.com/James2022-rgb/gpmf-tools/internal/gps9"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrCacheMiss indicates no cached entry exists for a Key, not a failure.
var ErrCacheMiss = errors.New("store: cache miss")

// Key identifies a cached decode by the state of its source file at decode
// time. A later write to the same path invalidates the old entry because
// size and/or mtime will differ, not because anything is evicted.
type Key struct {
	Path  string
	Size  int64
	MTime time.Time
}

// Store wraps a SQLite connection holding the decode cache table.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the SQLite database at path and
// applies any pending schema migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: set journal mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: set busy_timeout: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	subFS, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("store: sub filesystem: %w", err)
	}
	sourceDriver, err := iofs.New(subFS, ".")
	if err != nil {
		return fmt.Errorf("store: iofs source: %w", err)
	}
	dbDriver, err := sqlite.WithInstance(s.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("store: sqlite migrate driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite", dbDriver)
	if err != nil {
		return fmt.Errorf("store: migrate instance: %w", err)
	}
	// m.Close() would close the underlying *sql.DB, which Store manages
	// separately, so it is deliberately never called here.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("store: migrate up: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get looks up a previously cached fix series for key. It returns
// ErrCacheMiss, not a zero slice, when nothing is cached.
func (s *Store) Get(key Key) ([]gps9.Fix, error) {
	var fixesJSON string
	err := s.db.QueryRow(
		`SELECT fixes_json FROM decode_cache WHERE path = ? AND size = ? AND mtime_unix = ?`,
		key.Path, key.Size, key.MTime.Unix(),
	).Scan(&fixesJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("store: get %s: %w", key.Path, err)
	}

	var fixes []gps9.Fix
	if err := json.Unmarshal([]byte(fixesJSON), &fixes); err != nil {
		return nil, fmt.Errorf("store: decode cached fixes for %s: %w", key.Path, err)
	}
	return fixes, nil
}

// Put stores (or replaces) the fix series cached under key.
func (s *Store) Put(key Key, fixes []gps9.Fix) error {
	fixesJSON, err := json.Marshal(fixes)
	if err != nil {
		return fmt.Errorf("store: encode fixes for %s: %w", key.Path, err)
	}
	_, err = s.db.Exec(
		`INSERT INTO decode_cache (path, size, mtime_unix, fixes_json, cached_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (path, size, mtime_unix) DO UPDATE SET fixes_json = excluded.fixes_json, cached_at = excluded.cached_at`,
		key.Path, key.Size, key.MTime.Unix(), string(fixesJSON), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("store: put %s: %w", key.Path, err)
	}
	return nil
}

// GetOrSetRunID returns the correlation id already recorded for this cache
// database, assigning it candidate on first use. Later calls against the
// same cache file return that recorded id instead of candidate, so a
// correlation id persists across invocations that share a cache rather than
// being regenerated every time.
func (s *Store) GetOrSetRunID(candidate string) (string, error) {
	var id string
	err := s.db.QueryRow(`SELECT id FROM run_id LIMIT 1`).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("store: reading run id: %w", err)
	}
	if _, err := s.db.Exec(`INSERT INTO run_id (id) VALUES (?)`, candidate); err != nil {
		return "", fmt.Errorf("store: recording run id: %w", err)
	}
	return candidate, nil
}

// Stat summarizes the cache contents.
type Stat struct {
	Entries int
}

// Stat reports how many entries the cache currently holds.
func (s *Store) Stat() (Stat, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM decode_cache`).Scan(&count); err != nil {
		return Stat{}, fmt.Errorf("store: stat: %w", err)
	}
	return Stat{Entries: count}, nil
}

// Clear deletes every cached entry.
func (s *Store) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM decode_cache`); err != nil {
		return fmt.Errorf("store: clear: %w", err)
	}
	return nil
}
