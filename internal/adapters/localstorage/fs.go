package localstorage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalStorage implements ports.Storage for the local filesystem.
type LocalStorage struct{}

// NewLocalStorage creates a new LocalStorage instance.
func NewLocalStorage() *LocalStorage {
	return &LocalStorage{}
}

// EnsureDir creates dir and any missing parents.
func (s *LocalStorage) EnsureDir(ctx context.Context, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// Create opens dir/name for writing, overwriting an existing file.
func (s *LocalStorage) Create(ctx context.Context, dir, name string) (io.WriteCloser, string, error) {
	path := filepath.Join(dir, name)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, path, fmt.Errorf("failed to create file %s: %w", path, err)
	}
	return file, path, nil
}
