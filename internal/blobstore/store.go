// ABOUTME: Durable object storage abstraction for raw files and vector records
// ABOUTME: Implementations: in-memory (tests), local filesystem, SQLite, MinIO/S3-compatible
package blobstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned when an object does not exist.
// Implementations must return an error satisfying errors.Is(err, ErrNotFound).
var ErrNotFound = errors.New("object not found")

// Store is path-addressed durable object storage
type Store interface {
	// Put writes an object atomically, replacing any existing object.
	Put(ctx context.Context, path string, data []byte) error

	// Get reads an object in full.
	Get(ctx context.Context, path string) ([]byte, error)

	// Delete removes an object. Deleting a missing object is not an error.
	Delete(ctx context.Context, path string) error

	// List returns the paths of all objects with the given prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}
