package modelstore

import (
	"context"
	"io"
)

// BlobStore stores opaque blobs under slash-separated keys. It abstracts
// local disk as well as S3-like object storage.
type BlobStore interface {
	Put(ctx context.Context, key string, data io.Reader, size int64) error
	// Get returns a *NotFoundError when key does not exist. The caller must
	// close the returned reader.
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Exists(ctx context.Context, key string) (bool, error)
	// List returns the keys directly under dir.
	List(ctx context.Context, dir string) ([]string, error)
}

// dirMaker is implemented by stores that have real directories.
type dirMaker interface {
	MkdirAll(ctx context.Context, dir string) error
}
