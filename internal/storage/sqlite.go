package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps every key in one SQLite table.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (and migrates) the database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("storage error creating directories: %w", err)
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL allows the watch and serve views to read while another process writes.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	const ddl = `CREATE TABLE IF NOT EXISTS kv (
		k TEXT PRIMARY KEY,
		v BLOB NOT NULL,
		updated_at_unixnano INTEGER NOT NULL
	);`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storage error migrating %s: %w", path, err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Get(key string) ([]byte, bool, error) {
	var v []byte
	err := s.db.QueryRow("SELECT v FROM kv WHERE k = ?", key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("storage error reading %s: %w", key, err)
	}
	return v, true, nil
}

func (s *SQLiteStore) Set(key string, data []byte) error {
	const q = `INSERT INTO kv (k, v, updated_at_unixnano) VALUES (?, ?, ?)
ON CONFLICT(k) DO UPDATE SET v = excluded.v, updated_at_unixnano = excluded.updated_at_unixnano;`
	if _, err := s.db.Exec(q, key, data, time.Now().UnixNano()); err != nil {
		return fmt.Errorf("storage error writing %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Delete(key string) error {
	if _, err := s.db.Exec("DELETE FROM kv WHERE k = ?", key); err != nil {
		return fmt.Errorf("storage error deleting %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Stamp(key string) (time.Time, bool) {
	var ns int64
	if err := s.db.QueryRow("SELECT updated_at_unixnano FROM kv WHERE k = ?", key).Scan(&ns); err != nil {
		return time.Time{}, false
	}
	return time.Unix(0, ns), true
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
