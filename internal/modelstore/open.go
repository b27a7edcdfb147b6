package modelstore

import (
	"context"
	"sync"
)

// OpenBlobStore returns the BlobStore that serves root and root rewritten
// as a key inside it. "s3://bucket/prefix" selects an S3BlobStore; any
// other root is a local path.
func OpenBlobStore(root, region string) (BlobStore, string, error) {
	if bucket, prefix, ok := ParseS3URL(root); ok {
		s, err := NewS3BlobStore(bucket, region)
		if err != nil {
			return nil, "", err
		}
		return s, prefix, nil
	}
	return NewLocalBlobStore(""), root, nil
}

// RootLoader is a Loader that accepts local and s3:// roots alike. It keeps
// one Store per bucket.
type RootLoader struct {
	Factory Factory
	Region  string

	// open is replaced in tests.
	open func(root, region string) (BlobStore, string, error)

	mu     sync.Mutex
	stores map[string]*Store
}

// NewRootLoader creates a RootLoader decoding models with factory.
func NewRootLoader(factory Factory, region string) *RootLoader {
	return &RootLoader{Factory: factory, Region: region, open: OpenBlobStore}
}

// Load loads tag from whichever store serves root.
func (l *RootLoader) Load(ctx context.Context, root, tag string) ([]any, Metadata, error) {
	store, key, err := l.store(root)
	if err != nil {
		return nil, nil, err
	}
	return store.Load(ctx, key, tag)
}

// Save saves a model set under root.
func (l *RootLoader) Save(ctx context.Context, root, tag string, models []any, meta Metadata) ([]string, string, error) {
	store, key, err := l.store(root)
	if err != nil {
		return nil, "", err
	}
	return store.Save(ctx, key, tag, models, meta)
}

func (l *RootLoader) store(root string) (*Store, string, error) {
	bucket, prefix, isS3 := ParseS3URL(root)
	key := root
	if isS3 {
		key = prefix
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if s, ok := l.stores[bucket]; ok {
		return s, key, nil
	}

	open := l.open
	if open == nil {
		open = OpenBlobStore
	}
	blobs, key, err := open(root, l.Region)
	if err != nil {
		return nil, "", err
	}
	if l.stores == nil {
		l.stores = make(map[string]*Store)
	}
	s := New(NewBlobBackend(blobs, l.Factory))
	l.stores[bucket] = s
	return s, key, nil
}
