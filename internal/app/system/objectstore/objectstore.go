// Package objectstore is the object-storage seam used for uploaded assets.
// Production uses S3 (or an S3-compatible endpoint); development and tests
// use the in-memory store.
package objectstore

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned by Get for a missing key.
var ErrNotFound = errors.New("object not found")

// PutOptions carries per-object metadata.
type PutOptions struct {
	ContentType string
	Size        int64
}

// Store writes and removes objects by key.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, opts *PutOptions) error
	Delete(ctx context.Context, key string) error
	// EnsurePrefix provisions a "folder" marker so later uploads under
	// prefix are visible to tooling that lists by prefix.
	EnsurePrefix(ctx context.Context, prefix string) error
	// URL returns the public URI for key.
	URL(key string) string
}
