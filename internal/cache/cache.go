// Package cache keeps search responses in SQLite for a fixed time-to-live.
package cache

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/nepochemu/ytm/internal/store"
)

const schema = `
	CREATE TABLE IF NOT EXISTS entries (
		key TEXT PRIMARY KEY,
		stored_at INTEGER NOT NULL,
		data BLOB NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_stored_at ON entries(stored_at);
`

// Cache is a key-value store whose entries expire after ttl.
type Cache struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// New opens the cache database at dbPath.
func New(dbPath string, ttl time.Duration) (*Cache, error) {
	db, err := store.Open(dbPath, schema)
	if err != nil {
		return nil, err
	}
	return &Cache{db: db, ttl: ttl, now: time.Now}, nil
}

// Close closes the database connection
func (c *Cache) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// encodeKey turns an arbitrary request key into a reversible, filename-safe form.
func encodeKey(key string) string {
	return base64.URLEncoding.EncodeToString([]byte(key))
}

func decodeKey(encoded string) (string, error) {
	raw, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// Get returns the payload stored for key. Entries older than the TTL are
// reported as absent.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var storedAt int64
	var data []byte

	err := c.db.QueryRowContext(ctx,
		"SELECT stored_at, data FROM entries WHERE key = ?",
		encodeKey(key),
	).Scan(&storedAt, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache entry: %w", err)
	}

	if c.expired(storedAt) {
		return nil, false, nil
	}
	return data, true, nil
}

// Put stores data under key, replacing any previous entry.
func (c *Cache) Put(ctx context.Context, key string, data []byte) error {
	query := `
		INSERT INTO entries (key, stored_at, data)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET stored_at = excluded.stored_at, data = excluded.data
	`

	if _, err := c.db.ExecContext(ctx, query, encodeKey(key), c.now().UnixMilli(), data); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// Keys lists the decoded keys of entries that have not expired.
func (c *Cache) Keys(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryContext(ctx,
		"SELECT key FROM entries WHERE stored_at >= ? ORDER BY stored_at DESC",
		c.cutoff(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query cache keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var encoded string
		if err := rows.Scan(&encoded); err != nil {
			return nil, fmt.Errorf("failed to scan cache key: %w", err)
		}
		key, err := decodeKey(encoded)
		if err != nil {
			continue
		}
		keys = append(keys, key)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cache keys: %w", err)
	}
	return keys, nil
}

// Cleanup removes expired entries and returns how many were deleted.
func (c *Cache) Cleanup(ctx context.Context) (int64, error) {
	result, err := c.db.ExecContext(ctx, "DELETE FROM entries WHERE stored_at < ?", c.cutoff())
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup cache: %w", err)
	}
	return result.RowsAffected()
}

// Clear removes every entry.
func (c *Cache) Clear(ctx context.Context) (int64, error) {
	result, err := c.db.ExecContext(ctx, "DELETE FROM entries")
	if err != nil {
		return 0, fmt.Errorf("failed to clear cache: %w", err)
	}
	return result.RowsAffected()
}

func (c *Cache) cutoff() int64 {
	return c.now().Add(-c.ttl).UnixMilli()
}

func (c *Cache) expired(storedAt int64) bool {
	return storedAt < c.cutoff()
}
