package modelstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// S3Scheme is the URL scheme that selects S3BlobStore.
const S3Scheme = "s3"

// S3BlobStore is a BlobStore that stores data in an S3 bucket.
type S3BlobStore struct {
	client s3iface.S3API
	bucket string
}

// NewS3BlobStore creates a store for bucket in region using the default
// AWS credential chain. An empty region defers to the environment.
func NewS3BlobStore(bucket, region string) (*S3BlobStore, error) {
	cfg := aws.NewConfig()
	if region != "" {
		cfg = cfg.WithRegion(region)
	}
	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, fmt.Errorf("[s3-storage] creating session: %w", err)
	}
	return NewS3BlobStoreWithClient(s3.New(sess), bucket), nil
}

// NewS3BlobStoreWithClient creates a store on an existing client.
func NewS3BlobStoreWithClient(client s3iface.S3API, bucket string) *S3BlobStore {
	return &S3BlobStore{client: client, bucket: bucket}
}

// ParseS3URL splits "s3://bucket/prefix" into bucket and prefix.
func ParseS3URL(raw string) (bucket, prefix string, ok bool) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != S3Scheme || u.Host == "" {
		return "", "", false
	}
	return u.Host, strings.Trim(u.Path, "/"), true
}

func objectKey(key string) string {
	return strings.TrimPrefix(path.Clean("/"+key), "/")
}

// Put uploads data under key.
func (s *S3BlobStore) Put(ctx context.Context, key string, data io.Reader, size int64) error {
	body, err := io.ReadAll(data)
	if err != nil {
		return fmt.Errorf("[s3-storage] reading upload body: %w", err)
	}
	_, err = s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(objectKey(key)),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
	})
	if err != nil {
		return fmt.Errorf("[s3-storage] uploading %s: %w", key, err)
	}
	return nil
}

// Get downloads the object stored under key.
func (s *S3BlobStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := s.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey(key)),
	})
	if isS3NotFound(err) {
		return nil, &NotFoundError{Path: key}
	}
	if err != nil {
		return nil, fmt.Errorf("[s3-storage] downloading %s: %w", key, err)
	}
	return out.Body, nil
}

// Exists reports whether an object is stored under key.
func (s *S3BlobStore) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey(key)),
	})
	if isS3NotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("[s3-storage] checking %s: %w", key, err)
	}
	return true, nil
}

// List returns the object keys directly under dir.
func (s *S3BlobStore) List(ctx context.Context, dir string) ([]string, error) {
	prefix := objectKey(dir)
	if prefix != "" {
		prefix += "/"
	}

	var keys []string
	err := s.client.ListObjectsV2PagesWithContext(ctx, &s3.ListObjectsV2Input{
		Bucket:    aws.String(s.bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	}, func(page *s3.ListObjectsV2Output, _ bool) bool {
		for _, obj := range page.Contents {
			keys = append(keys, aws.StringValue(obj.Key))
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("[s3-storage] listing %s: %w", dir, err)
	}
	return keys, nil
}

func isS3NotFound(err error) bool {
	var aerr awserr.Error
	if !errors.As(err, &aerr) {
		return false
	}
	switch aerr.Code() {
	case s3.ErrCodeNoSuchKey, "NotFound":
		return true
	}
	return false
}
