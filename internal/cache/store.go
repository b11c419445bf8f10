// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache persists provider results in a TTL- and schema-version-
// stamped SQLite store. The Cache type is a thin policy layer; Store is the
// keyed persistence underneath it.
// Implements: prd005-result-cache (R1-R4);
//
//	docs/ARCHITECTURE § Result Cache.
package cache

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// Row is one stored cache entry.
type Row struct {
	Key           string
	ProviderID    string
	RequestType   string
	Input         string
	Payload       []byte
	CachedAtMs    int64
	ExpiresAtMs   int64
	SchemaVersion int
}

// Store manages the cache SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the cache database at path, creating parent
// directories and the schema as needed.
func NewStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS lookup_cache (
			cache_key TEXT PRIMARY KEY,
			provider_id TEXT NOT NULL,
			request_type TEXT NOT NULL,
			input TEXT NOT NULL,
			payload TEXT NOT NULL,
			cached_at_ms INTEGER NOT NULL,
			expires_at_ms INTEGER NOT NULL,
			schema_version INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_lookup_cache_expires ON lookup_cache(expires_at_ms)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// GetByKey returns the stored row for key, or nil when absent.
func (s *Store) GetByKey(ctx context.Context, key string) (*Row, error) {
	var r Row
	err := s.db.QueryRowContext(ctx,
		`SELECT cache_key, provider_id, request_type, input, payload, cached_at_ms, expires_at_ms, schema_version
		 FROM lookup_cache WHERE cache_key = ?`, key,
	).Scan(&r.Key, &r.ProviderID, &r.RequestType, &r.Input, &r.Payload, &r.CachedAtMs, &r.ExpiresAtMs, &r.SchemaVersion)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading cache entry: %w", err)
	}
	return &r, nil
}

// Upsert stores the row, replacing any existing entry wholesale so readers
// never observe a partially written entry.
func (s *Store) Upsert(ctx context.Context, r Row) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO lookup_cache (cache_key, provider_id, request_type, input, payload, cached_at_ms, expires_at_ms, schema_version)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(cache_key) DO UPDATE SET
			provider_id=excluded.provider_id, request_type=excluded.request_type,
			input=excluded.input, payload=excluded.payload,
			cached_at_ms=excluded.cached_at_ms, expires_at_ms=excluded.expires_at_ms,
			schema_version=excluded.schema_version`,
		r.Key, r.ProviderID, r.RequestType, r.Input, r.Payload, r.CachedAtMs, r.ExpiresAtMs, r.SchemaVersion,
	)
	if err != nil {
		return fmt.Errorf("upserting cache entry: %w", err)
	}
	return nil
}

// DeleteByKey removes one entry.
func (s *Store) DeleteByKey(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM lookup_cache WHERE cache_key = ?`, key); err != nil {
		return fmt.Errorf("deleting cache entry: %w", err)
	}
	return nil
}

// DeleteExpired removes every entry whose expiry is at or before nowMs and
// reports how many were removed.
func (s *Store) DeleteExpired(ctx context.Context, nowMs int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM lookup_cache WHERE expires_at_ms <= ?`, nowMs)
	if err != nil {
		return 0, fmt.Errorf("deleting expired cache entries: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// DeleteByVersionMismatch removes every entry not stamped with the expected
// schema version.
func (s *Store) DeleteByVersionMismatch(ctx context.Context, expectedVersion int) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM lookup_cache WHERE schema_version != ?`, expectedVersion)
	if err != nil {
		return 0, fmt.Errorf("deleting version-mismatched cache entries: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// CountAll returns the number of stored entries, expired or not.
func (s *Store) CountAll(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM lookup_cache`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting cache entries: %w", err)
	}
	return n, nil
}
