package modelstore

import (
	"bytes"
	"context"
	"io"
	"path"
	"sort"
	"sync"
)

// MemoryBlobStore is an ephemeral, thread-safe BlobStore backed by sync.Map.
// It is suitable for tests and for single-process runs that never need the
// models again.
type MemoryBlobStore struct {
	blobs sync.Map // key -> []byte
}

// NewMemoryBlobStore creates an empty in-memory store.
func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{}
}

// Put stores a copy of data.
func (s *MemoryBlobStore) Put(_ context.Context, key string, data io.Reader, _ int64) error {
	b, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	s.blobs.Store(path.Clean(key), b)
	return nil
}

// Get returns a reader over the stored bytes.
func (s *MemoryBlobStore) Get(_ context.Context, key string) (io.ReadCloser, error) {
	v, ok := s.blobs.Load(path.Clean(key))
	if !ok {
		return nil, &NotFoundError{Path: key}
	}
	return io.NopCloser(bytes.NewReader(v.([]byte))), nil
}

// Exists reports whether key is stored.
func (s *MemoryBlobStore) Exists(_ context.Context, key string) (bool, error) {
	_, ok := s.blobs.Load(path.Clean(key))
	return ok, nil
}

// List returns the keys directly under dir, sorted.
func (s *MemoryBlobStore) List(_ context.Context, dir string) ([]string, error) {
	dir = path.Clean(dir)
	var keys []string
	s.blobs.Range(func(k, _ any) bool {
		key := k.(string)
		if path.Dir(key) == dir {
			keys = append(keys, key)
		}
		return true
	})
	sort.Strings(keys)
	return keys, nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *MemoryBlobStore) Delete(key string) {
	s.blobs.Delete(path.Clean(key))
}
