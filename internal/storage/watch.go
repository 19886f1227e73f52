package storage

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchCallback is called once per debounced key change.
// kind is one of "updated", "deleted".
type WatchCallback func(kind string, key string)

const watchDebounce = 150 * time.Millisecond

// Watch starts an fsnotify watcher on the FS root and reports changes to
// keys starting with prefix until ctx is cancelled. Bursts of events on the
// same key (the temp-file rename of Put, editors writing twice) collapse into
// one callback.
func (f *FS) Watch(ctx context.Context, prefix string, logger *slog.Logger, cb WatchCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(f.root); err != nil {
		return err
	}
	logger.Info("watcher: started", slog.String("root", f.root), slog.String("prefix", prefix))

	pending := make(map[string]string)
	var timer *time.Timer
	var timerCh <-chan time.Time

	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(watchDebounce)
			timerCh = timer.C
		} else {
			timer.Reset(watchDebounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-timerCh:
			for key, kind := range pending {
				logger.Debug("watcher: changed", slog.String("key", key), slog.String("op", kind))
				if cb != nil {
					cb(kind, key)
				}
			}
			clear(pending)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			key, ok := keyOf(filepath.Base(ev.Name))
			if !ok || !strings.HasPrefix(key, prefix) {
				continue
			}
			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				pending[key] = "updated"
			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				pending[key] = "deleted"
			default:
				continue
			}
			schedule()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
