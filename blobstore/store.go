package blobstore

import (
	"context"
	"io"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies
// `errors.Is(err, ErrNotFound)`. The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// BlobStore is an abstraction for accessing result files.
type BlobStore interface {
	// Open opens a blob for reading.
	Open(ctx context.Context, name string) (Blob, error)

	// Create creates a blob for writing, replacing any existing blob
	// with the same name once the returned handle is closed.
	Create(ctx context.Context, name string) (WritableBlob, error)
}

// Blob is a read-only handle to a result file.
type Blob interface {
	// ReadAt reads len(p) bytes starting at offset off.
	// It returns io.EOF when fewer than len(p) bytes remain.
	ReadAt(ctx context.Context, p []byte, off int64) (int, error)

	io.Closer

	// Size returns the size of the blob in bytes.
	Size() int64
}

// WritableBlob is a write-once handle. The written bytes become
// visible under the blob's name when Close returns nil.
type WritableBlob interface {
	io.Writer
	io.Closer
}

// Aborter is an optional interface for WritableBlobs that can discard
// a partially written blob instead of publishing it.
type Aborter interface {
	Abort() error
}

// Discard abandons a writable blob: it aborts when the blob supports
// it and falls back to Close otherwise. Errors are dropped; Discard
// runs on failure paths where the original error matters more.
func Discard(w WritableBlob) {
	if a, ok := w.(Aborter); ok {
		_ = a.Abort()
		return
	}
	_ = w.Close()
}
