// Package history records what was played so it can be replayed later.
package history

import (
	"context"
	"database/sql"
	"fmt"
	mathrand "math/rand"
	"strings"
	"sync"
	"time"

	"github.com/nepochemu/ytm/internal/store"
	"github.com/oklog/ulid/v2"
)

const schema = `
	CREATE TABLE IF NOT EXISTS plays (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		kind TEXT NOT NULL,
		urls TEXT NOT NULL,
		audio_only BOOLEAN NOT NULL DEFAULT 0,
		played_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_played_at ON plays(played_at);
`

// Entry is one recorded play.
type Entry struct {
	ID        string
	Title     string
	Kind      string
	URLs      []string
	AudioOnly bool
	PlayedAt  time.Time
}

// Label is the line shown for the entry in the picker.
func (e Entry) Label() string {
	suffix := ""
	if e.Kind == "playlist" {
		suffix = " [playlist]"
	}
	return fmt.Sprintf("%s  %s%s", e.PlayedAt.Local().Format("2006-01-02 15:04"), e.Title, suffix)
}

// History is the SQLite-backed play log.
type History struct {
	db  *sql.DB
	now func() time.Time

	entropyMu sync.Mutex
	entropy   *ulid.MonotonicEntropy
}

// Open opens the history database at dbPath.
func Open(dbPath string) (*History, error) {
	db, err := store.Open(dbPath, schema)
	if err != nil {
		return nil, err
	}
	return &History{
		db:      db,
		now:     time.Now,
		entropy: ulid.Monotonic(mathrand.New(mathrand.NewSource(time.Now().UnixNano())), 0),
	}, nil
}

// Close closes the database connection
func (h *History) Close() error {
	if h.db != nil {
		return h.db.Close()
	}
	return nil
}

func (h *History) newID(at time.Time) string {
	h.entropyMu.Lock()
	defer h.entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(at), h.entropy).String()
}

// Add records a play and returns its id.
func (h *History) Add(ctx context.Context, e Entry) (string, error) {
	if len(e.URLs) == 0 {
		return "", fmt.Errorf("history entry %q has no urls", e.Title)
	}
	if e.PlayedAt.IsZero() {
		e.PlayedAt = h.now()
	}
	e.ID = h.newID(e.PlayedAt)

	query := `
		INSERT INTO plays (id, title, kind, urls, audio_only, played_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := h.db.ExecContext(ctx, query,
		e.ID,
		e.Title,
		e.Kind,
		strings.Join(e.URLs, "\n"),
		e.AudioOnly,
		e.PlayedAt.UnixMilli(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert play: %w", err)
	}

	return e.ID, nil
}

// Recent returns the latest plays, newest first.
func (h *History) Recent(ctx context.Context, limit int) ([]Entry, error) {
	query := `
		SELECT id, title, kind, urls, audio_only, played_at
		FROM plays
		ORDER BY played_at DESC, id DESC
	`

	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := h.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query plays: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var urls string
		var playedAt int64

		if err := rows.Scan(&e.ID, &e.Title, &e.Kind, &urls, &e.AudioOnly, &playedAt); err != nil {
			return nil, fmt.Errorf("failed to scan play: %w", err)
		}

		e.URLs = strings.Split(urls, "\n")
		e.PlayedAt = time.UnixMilli(playedAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating plays: %w", err)
	}

	return entries, nil
}

// Count returns the number of recorded plays
func (h *History) Count(ctx context.Context) (int, error) {
	var count int
	if err := h.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM plays").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count plays: %w", err)
	}
	return count, nil
}

// Cleanup removes plays older than maxAge
func (h *History) Cleanup(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := h.now().Add(-maxAge).UnixMilli()

	result, err := h.db.ExecContext(ctx, "DELETE FROM plays WHERE played_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup plays: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return deleted, nil
}
