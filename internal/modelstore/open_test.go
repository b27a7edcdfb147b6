package modelstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenBlobStore_Local(t *testing.T) {
	blobs, key, err := OpenBlobStore("models/v1", "")
	require.NoError(t, err)
	assert.IsType(t, &LocalBlobStore{}, blobs)
	assert.Equal(t, "models/v1", key)
}

func TestRootLoader_RoutesByRoot(t *testing.T) {
	ctx := context.Background()
	fake := newFakeS3()
	opened := map[string]int{}

	l := NewRootLoader(fakeFactory, "eu-west-1")
	l.open = func(root, region string) (BlobStore, string, error) {
		assert.Equal(t, "eu-west-1", region)
		opened[root]++
		if bucket, prefix, ok := ParseS3URL(root); ok {
			return NewS3BlobStoreWithClient(fake, bucket), prefix, nil
		}
		return NewLocalBlobStore(""), root, nil
	}

	_, _, err := l.Save(ctx, "s3://models/prod", "kmeans", models(2), Metadata{"k": int8(2)})
	require.NoError(t, err)
	assert.Contains(t, fake.objects, "prod/kmeans_0.msgpack")
	assert.Contains(t, fake.objects, "prod/kmeans_meta.msgpack")

	got, meta, err := l.Load(ctx, "s3://models/prod", "kmeans")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[1].(*fakeModel).ID)
	assert.EqualValues(t, 2, meta["k"])
	assert.Equal(t, 1, opened["s3://models/prod"], "the bucket store is reused")

	local := t.TempDir() + "/models"
	_, _, err = l.Save(ctx, local, "kmeans", models(1), nil)
	require.NoError(t, err)
	got, _, err = l.Load(ctx, local, "kmeans")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestRootLoader_MissingTag(t *testing.T) {
	l := NewRootLoader(fakeFactory, "")
	_, _, err := l.Load(context.Background(), t.TempDir(), "absent")
	assert.ErrorIs(t, err, ErrNotFound)
}
