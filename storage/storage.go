// Package storage persists media blobs. The database only keeps references;
// the blob itself lives either on local disk or in an S3-compatible bucket,
// addressed by an opaque key.
package storage

import (
	"context"
	"io"
)

// Client stores and removes media blobs addressed by an opaque key.
type Client interface {
	Put(ctx context.Context, key, contentType string, r io.Reader, size int64) error
	Remove(ctx context.Context, key string) error
	// Path returns the storage-relative location of a blob.
	Path(key string) string
	// URL returns the client-facing location of a blob.
	URL(key string) string
}
