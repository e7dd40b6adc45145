package storage

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

// Store is a synchronous key/value store of JSON blobs.
type Store interface {
	// Get returns the raw blob of key and whether it exists.
	Get(key string) ([]byte, bool, error)
	// Set writes the blob of key unconditionally.
	Set(key string, data []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error
	// Stamp returns the last modification time of key.
	Stamp(key string) (time.Time, bool)
	Close() error
}

// quarantiner is implemented by stores that can set aside unreadable blobs.
type quarantiner interface {
	Quarantine(key string) error
}

// Load decodes key into a value of type T. A missing, unreadable or
// corrupt blob yields def; corruption is logged to log, never returned.
// A nil log uses slog.Default.
func Load[T any](s Store, key string, def T, log *slog.Logger) T {
	if log == nil {
		log = slog.Default()
	}
	data, ok, err := s.Get(key)
	if err != nil {
		log.Warn("storage read failed, using default", slog.String("key", key), slog.String("error", err.Error()))
		return def
	}
	if !ok || len(data) == 0 {
		return def
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		log.Warn("corrupt blob treated as absent", slog.String("key", key), slog.String("error", err.Error()))
		if q, ok := s.(quarantiner); ok {
			if qerr := q.Quarantine(key); qerr != nil {
				log.Warn("could not quarantine blob", slog.String("key", key), slog.String("error", qerr.Error()))
			}
		}
		return def
	}
	return v
}

// Save encodes v as JSON and writes it to key.
func Save(s Store, key string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("storage error marshalling %s: %w", key, err)
	}
	return s.Set(key, data)
}
