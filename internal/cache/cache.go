// Package cache provides durable storage for compiled kernel source.
//
// Compiling a query is cheap, but feeding the resulting source through a
// device toolchain is not. The cache lets a host skip both steps for
// pipelines it has seen before: entries are keyed by queryir.Hash, which
// covers exactly the inputs kernel source depends on (operator structure
// and element types), so a hit is always safe to reuse.
//
// Uses SQLite with WAL mode for concurrent read access.
package cache

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 1 - Initial schema (kernels table)
const currentSchemaVersion = 1

// Entry is one cached kernel.
type Entry struct {
	// Hash is the query content hash (queryir.Hash).
	Hash string
	// Kind is the reported reduction kind of the kernel.
	Kind string
	// Source is the kernel source text, byte-identical to what the
	// compiler produced.
	Source string
}

// Cache is a SQLite-backed kernel cache.
type Cache struct {
	db *sql.DB
}

// Open creates or opens a cache database at the given path.
// Applies required pragmas and the schema automatically; safe to call
// on an existing cache.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to cache database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	// to avoid SQLITE_BUSY errors.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close closes the database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Put inserts a compiled kernel. Writes are idempotent: a duplicate hash
// is silently ignored, which keeps concurrent compilations of the same
// pipeline race-free (they produce byte-identical source anyway).
func (c *Cache) Put(ctx context.Context, e Entry) error {
	if e.Hash == "" {
		return fmt.Errorf("put kernel: empty hash")
	}
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO kernels (query_hash, reduction_kind, source)
		VALUES (?, ?, ?)
		ON CONFLICT(query_hash) DO NOTHING
	`, e.Hash, e.Kind, e.Source)
	if err != nil {
		return fmt.Errorf("put kernel: %w", err)
	}
	return nil
}

// Get returns the cached kernel for a query hash, or nil if the cache
// has no entry for it.
func (c *Cache) Get(ctx context.Context, hash string) (*Entry, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT query_hash, reduction_kind, source
		FROM kernels
		WHERE query_hash = ?
	`, hash)

	var e Entry
	if err := row.Scan(&e.Hash, &e.Kind, &e.Source); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get kernel: %w", err)
	}
	return &e, nil
}

// Len returns the number of cached kernels.
func (c *Cache) Len(ctx context.Context) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM kernels`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count kernels: %w", err)
	}
	return n, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

func applySchema(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version >= currentSchemaVersion {
		return nil
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("write schema version: %w", err)
	}
	return nil
}
