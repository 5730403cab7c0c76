package storage

import (
	"context"
	"io"
)

// ObjectStorage defines the blob operations the photo endpoints need,
// implemented by the MinIO and GCS backends.
type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}
