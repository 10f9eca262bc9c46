package storage

import (
	"context"
	"errors"
	"io"
	"strings"
)

// ErrNotExist is returned when the requested object is absent.
var ErrNotExist = errors.New("object does not exist")

// Storage abstracts the blob store holding uploaded file bytes.
// Keys are '/'-separated and always start with the owner's user ID;
// that prefix is the isolation boundary between tenants' byte data.
type Storage interface {
	// Save stores an object, replacing any existing one at the key.
	// The write is streamed; implementations must not buffer the whole
	// object in memory.
	Save(ctx context.Context, key string, r io.Reader) error

	// Open returns the object's bytes for streaming reads.
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes an object. Returns ErrNotExist if it is absent.
	Delete(ctx context.Context, key string) error

	// Exists reports whether an object is present at the key.
	Exists(ctx context.Context, key string) (bool, error)
}

// Key builds the blob key for a file, rooting it under the owner's
// namespace. relPath must already have passed path validation.
func Key(ownerID, relPath string) string {
	rel := strings.Trim(relPath, "/")
	if rel == "" {
		return ownerID
	}
	return ownerID + "/" + rel
}
