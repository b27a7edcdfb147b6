package modelstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
)

// Backend persists single values by path.
type Backend interface {
	Dump(ctx context.Context, v any, path string) error
	Load(ctx context.Context, path string) (any, error)
	Exists(ctx context.Context, path string) (bool, error)
	// List returns the base names of the entries directly under dir.
	List(ctx context.Context, dir string) ([]string, error)
	// MkdirAll is idempotent.
	MkdirAll(ctx context.Context, dir string) error
}

// BlobBackend is a Backend that encodes values with a Codec and stores
// the bytes in a BlobStore.
type BlobBackend struct {
	Blobs BlobStore
	Codec *Codec
}

// NewBlobBackend creates a backend over blobs.
func NewBlobBackend(blobs BlobStore, factory Factory) *BlobBackend {
	return &BlobBackend{Blobs: blobs, Codec: &Codec{Factory: factory}}
}

func (b *BlobBackend) Dump(ctx context.Context, v any, p string) error {
	data, err := b.Codec.Encode(v)
	if err != nil {
		return err
	}
	return b.Blobs.Put(ctx, p, bytes.NewReader(data), int64(len(data)))
}

func (b *BlobBackend) Load(ctx context.Context, p string) (any, error) {
	rc, err := b.Blobs.Get(ctx, p)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", p, err)
	}
	v, err := b.Codec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	return v, nil
}

func (b *BlobBackend) Exists(ctx context.Context, p string) (bool, error) {
	return b.Blobs.Exists(ctx, p)
}

func (b *BlobBackend) List(ctx context.Context, dir string) ([]string, error) {
	keys, err := b.Blobs.List(ctx, dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = path.Base(k)
	}
	return names, nil
}

func (b *BlobBackend) MkdirAll(ctx context.Context, dir string) error {
	if dm, ok := b.Blobs.(dirMaker); ok {
		return dm.MkdirAll(ctx, dir)
	}
	return nil
}
