// Package store provides a string-keyed JSON document store backed by
// SQLite. It is the single persistence layer for desk state: callers
// read whole records, mutate them, and write them back. Each key is
// independent; there is no cross-key transaction and no expiry.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	_ "modernc.org/sqlite"
)

// Store is a SQLite-backed key-value store with JSON serialization.
// Construct one at startup and pass it by reference to every component
// that needs persistence.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens (or creates) the backing database and runs migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS kv (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate kv table: %w", err)
	}

	log.Printf("[INFO] store opened: %s", path)
	return &Store{db: db}, nil
}

// Load decodes the value stored under key into dst. It returns false
// and leaves dst untouched when the key is absent or the stored value
// fails to decode, so callers keep whatever fallback dst already holds.
// It never returns an error.
func (s *Store) Load(key string, dst any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	var raw string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&raw)
	if err != nil {
		if err != sql.ErrNoRows {
			log.Printf("[WARN] store load %q: %v", key, err)
		}
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		log.Printf("[WARN] store decode %q: %v", key, err)
		return false
	}
	return true
}

// Save serializes value and persists it under key, overwriting any
// prior value. The write is a single upsert; no partial state is
// observable.
func (s *Store) Save(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.Exec(
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, string(data),
	)
	if err != nil {
		return fmt.Errorf("persist %q: %w", key, err)
	}
	return nil
}

// Close closes the backing database.
func (s *Store) Close() error {
	return s.db.Close()
}
