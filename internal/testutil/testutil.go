// Package testutil provides shared test helpers for setting up storage and stores.
package testutil

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/starford/crmai/internal/crm"
	"github.com/starford/crmai/internal/persist"
	"github.com/starford/crmai/internal/storage"
)

// Now is the fixed clock used by seeded test stores: Sunday 10 March 2024.
var Now = time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)

// Clock returns Now.
func Clock() time.Time { return Now }

// Logger discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// TestFS creates a temporary directory with a storage.FS over it.
func TestFS(t *testing.T) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	fs, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, fs
}

// TestSQLite opens a temporary SQLite key-value store, closed on cleanup.
func TestSQLite(t *testing.T) *storage.SQLite {
	t.Helper()
	db, err := storage.OpenSQLite(t.TempDir() + "/crm.db")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// SeededStore opens a store with the demo dataset over provider, running
// on the fixed clock.
func SeededStore(t *testing.T, provider storage.Provider, opts ...crm.Option) (*persist.Adapter, *crm.Store) {
	t.Helper()
	adapter := persist.New(provider, persist.WithDemoSeed(true), persist.WithLogger(Logger()))
	opts = append([]crm.Option{crm.WithClock(Clock), crm.WithLogger(Logger())}, opts...)
	return adapter, crm.Open(adapter, opts...)
}
