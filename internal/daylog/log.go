// Package daylog keeps the record of closed days and runs the end-of-day
// flow that produces it.
package daylog

import (
	"fmt"
	"log/slog"

	"github.com/Tiliavir/field-day-tracker/internal/model"
	"github.com/Tiliavir/field-day-tracker/internal/storage"
)

// DefaultCap is the number of closed days kept when no cap is configured.
const DefaultCap = 60

// Log is the capped, most-recent-first list of closed days of a user.
type Log struct {
	store storage.Store
	ns    storage.Namespace
	cap   int
	log   *slog.Logger
}

// NewLog returns the day log of ns. A cap <= 0 uses DefaultCap.
func NewLog(s storage.Store, ns storage.Namespace, cap int, log *slog.Logger) *Log {
	if cap <= 0 {
		cap = DefaultCap
	}
	if log == nil {
		log = slog.Default()
	}
	return &Log{store: s, ns: ns, cap: cap, log: log}
}

// Key returns the storage key of the log.
func (l *Log) Key() string { return l.ns.Key(storage.DayLog) }

// Entries returns the closed days, most recent first.
func (l *Log) Entries() []model.DayLogEntry {
	return storage.Load(l.store, l.Key(), []model.DayLogEntry{}, l.log)
}

// Between returns the entries whose date lies in [from, to], both
// YYYY-MM-DD, most recent first.
func (l *Log) Between(from, to string) []model.DayLogEntry {
	var out []model.DayLogEntry
	for _, e := range l.Entries() {
		if e.Date >= from && e.Date <= to {
			out = append(out, e)
		}
	}
	return out
}

// Prepend adds e as the most recent entry, dropping the oldest entries
// beyond the cap. Existing entries are never rewritten.
func (l *Log) Prepend(e model.DayLogEntry) error {
	entries := append([]model.DayLogEntry{e}, l.Entries()...)
	if len(entries) > l.cap {
		entries = entries[:l.cap]
	}
	if err := storage.Save(l.store, l.Key(), entries); err != nil {
		return fmt.Errorf("saving day log: %w", err)
	}
	return nil
}
