package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// BaseDir returns the root data directory: $FDT_HOME or ~/.fdt.
func BaseDir() (string, error) {
	if dir := os.Getenv("FDT_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".fdt"), nil
}

// FileStore keeps one JSON file per key in a directory.
type FileStore struct {
	dir string
}

// NewFileStore returns a FileStore rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("storage error creating %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the directory backing the store.
func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) path(key string) string {
	safe := strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(key)
	return filepath.Join(s.dir, safe+".json")
}

func (s *FileStore) Get(key string) ([]byte, bool, error) {
	path := s.path(key)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("storage error reading %s: %w", path, err)
	}
	return data, true, nil
}

// Set atomically replaces the file of key.
func (s *FileStore) Set(key string, data []byte) error {
	path := s.path(key)

	// Atomic write: write to temp file then rename.
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("storage error writing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("storage error renaming temp file: %w", err)
	}
	return nil
}

func (s *FileStore) Delete(key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage error deleting %s: %w", key, err)
	}
	return nil
}

func (s *FileStore) Stamp(key string) (time.Time, bool) {
	st, err := os.Stat(s.path(key))
	if err != nil {
		return time.Time{}, false
	}
	return st.ModTime(), true
}

// Quarantine moves an unreadable file aside as <file>.corrupt.
func (s *FileStore) Quarantine(key string) error {
	path := s.path(key)
	return os.Rename(path, path+".corrupt")
}

func (s *FileStore) Close() error { return nil }
