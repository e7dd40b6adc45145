package storage

import (
	"context"
	"sync"
	"time"
)

// Watcher detects keys changed by other views of the same store.
// Writes made by the owning view are recorded with Mark so they do not
// come back as notifications.
type Watcher struct {
	store Store

	mu   sync.Mutex
	seen map[string]time.Time
}

// NewWatcher returns a Watcher over s.
func NewWatcher(s Store) *Watcher {
	return &Watcher{store: s, seen: map[string]time.Time{}}
}

// Mark records the current stamps of keys as already seen.
func (w *Watcher) Mark(keys ...string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, k := range keys {
		st, _ := w.store.Stamp(k)
		w.seen[k] = st
	}
}

// Changed returns the keys whose stamp moved since they were last seen,
// and records the new stamps.
func (w *Watcher) Changed(keys ...string) []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []string
	for _, k := range keys {
		st, _ := w.store.Stamp(k)
		prev, known := w.seen[k]
		w.seen[k] = st
		if known && !prev.Equal(st) {
			out = append(out, k)
		}
	}
	return out
}

// Run polls keys() every interval and calls fn with changed keys until
// ctx is cancelled.
func (w *Watcher) Run(ctx context.Context, interval time.Duration, keys func() []string, fn func(changed []string)) {
	w.Changed(keys()...)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if changed := w.Changed(keys()...); len(changed) > 0 {
				fn(changed)
			}
		}
	}
}
