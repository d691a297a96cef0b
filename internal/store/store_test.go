package store

import (
	"path/filepath"
	"testing"
)

const testSchema = `CREATE TABLE IF NOT EXISTS kv (k TEXT PRIMARY KEY, v TEXT NOT NULL);`

func TestOpen(t *testing.T) {
	t.Run("in-memory database", func(t *testing.T) {
		db, err := Open(InMemory, testSchema)
		if err != nil {
			t.Fatalf("failed to open in-memory database: %v", err)
		}
		defer func() { _ = db.Close() }()

		if _, err := db.Exec("INSERT INTO kv (k, v) VALUES ('a', 'b')"); err != nil {
			t.Errorf("schema not applied: %v", err)
		}
	})

	t.Run("file database in missing directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "dir", "test.db")
		db, err := Open(path, testSchema)
		if err != nil {
			t.Fatalf("failed to open file database: %v", err)
		}
		defer func() { _ = db.Close() }()

		var mode string
		if err := db.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
			t.Fatalf("failed to read journal mode: %v", err)
		}
		if mode != "wal" {
			t.Errorf("journal_mode = %q, want wal", mode)
		}
	})

	t.Run("invalid schema", func(t *testing.T) {
		if _, err := Open(InMemory, "CREATE NONSENSE"); err == nil {
			t.Error("expected error for invalid schema")
		}
	})
}
