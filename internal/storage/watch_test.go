package storage

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func TestWatchReportsPrefixedKeys(t *testing.T) {
	s := tempStore(t)
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	events := map[string]string{}
	go s.Watch(ctx, "portal_", logger, func(kind, key string) {
		mu.Lock()
		events[key] = kind
		mu.Unlock()
	})

	time.Sleep(100 * time.Millisecond)

	_ = s.Put("portal_abc", []byte(`{}`))
	_ = s.Put("crm_ai_data", []byte(`{}`))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return events["portal_abc"] == "updated"
	}, "portal key update not reported")

	_ = os.Remove(filepath.Join(s.Root(), "portal_abc.json"))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return events["portal_abc"] == "deleted"
	}, "portal key delete not reported")

	mu.Lock()
	defer mu.Unlock()
	if _, ok := events["crm_ai_data"]; ok {
		t.Error("non-matching prefix reported")
	}
}
