// Package storage abstracts durable byte storage for uploaded files. Blobs
// are addressed by opaque keys; the metadata registry only ever sees the key.
package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

// BlobStore stores and retrieves file bytes by opaque key.
type BlobStore interface {
	// Put writes the blob under key. size is the expected content length.
	Put(ctx context.Context, key string, r io.Reader, size int64) error
	// Get returns a reader for the blob or common.ErrNotFound.
	// The caller must close the returned ReadCloser.
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes the blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, key string) error
}

// NewStorageKey returns a fresh opaque locator, date-bucketed for easier
// bucket inspection.
func NewStorageKey(ownerID int64) string {
	d := time.Now()
	return fmt.Sprintf("users/%d/%d/%d/%d/%v", ownerID, d.Year(), d.Month(), d.Day(), uuid.New())
}
