package storage

import (
	"context"
	"io"
	"time"
)

// Service stores uploaded avatar images in remote object storage.
type Service interface {
	Upload(ctx context.Context, bucket, key, contentType string, body io.Reader) error
	Delete(ctx context.Context, bucket, key string) error
	ObjectURL(ctx context.Context, bucket, key string, expires time.Duration) (string, error)
}
