package modelstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
)

// LocalBlobStore stores blobs as files under DataDir. An empty DataDir
// resolves keys against the working directory.
type LocalBlobStore struct {
	DataDir string
}

// NewLocalBlobStore creates a local BlobStore given a data directory.
func NewLocalBlobStore(dataDir string) *LocalBlobStore {
	return &LocalBlobStore{DataDir: dataDir}
}

func (s *LocalBlobStore) path(key string) string {
	return filepath.Join(s.DataDir, filepath.FromSlash(key))
}

// Put writes a file, creating parent directories as needed.
func (s *LocalBlobStore) Put(_ context.Context, key string, data io.Reader, _ int64) error {
	p := s.path(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}

	f, err := os.Create(p)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Get opens the file stored under key.
func (s *LocalBlobStore) Get(_ context.Context, key string) (io.ReadCloser, error) {
	f, err := os.Open(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &NotFoundError{Path: key}
	}
	return f, err
}

// Exists reports whether a file is stored under key.
func (s *LocalBlobStore) Exists(_ context.Context, key string) (bool, error) {
	_, err := os.Stat(s.path(key))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

// List returns the files directly under dir. A missing dir lists nothing.
func (s *LocalBlobStore) List(_ context.Context, dir string) ([]string, error) {
	entries, err := os.ReadDir(s.path(dir))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}

	var keys []string
	for _, e := range entries {
		if !e.IsDir() {
			keys = append(keys, path.Join(dir, e.Name()))
		}
	}
	return keys, nil
}

// MkdirAll creates dir and its parents. It is a no-op when dir exists.
func (s *LocalBlobStore) MkdirAll(_ context.Context, dir string) error {
	return os.MkdirAll(s.path(dir), 0o755)
}
