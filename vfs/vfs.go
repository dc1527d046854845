// Package vfs abstracts the storage that arrays live on: the local
// filesystem for embedded use, memory for tests, and object stores (see the
// minio and s3 subpackages) for shared deployments.
//
// Blobs are immutable once written. Put must be atomic: readers either see
// the whole blob or none of it. Fragment visibility relies on this — the
// fragment metadata file is written last and acts as the commit point.
package vfs

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations must return an error satisfying errors.Is(err, ErrNotFound).
var ErrNotFound = errors.New("blob not found")

// VFS is the storage abstraction for array data. Implementations must be
// safe for concurrent use.
type VFS interface {
	// Open opens an existing blob for reading.
	Open(ctx context.Context, name string) (Blob, error)

	// Create opens a new blob for streaming writes. The blob becomes
	// visible atomically when Close returns.
	Create(ctx context.Context, name string) (WritableBlob, error)

	// Put writes a blob atomically.
	Put(ctx context.Context, name string, data []byte) error

	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error

	// List returns all blob names with the given prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Blob is a read-only handle to an immutable blob.
type Blob interface {
	// ReadAt reads len(p) bytes starting at off.
	ReadAt(ctx context.Context, p []byte, off int64) (int, error)

	// Size returns the blob size in bytes.
	Size() int64

	Close() error
}

// WritableBlob is a streaming write handle.
type WritableBlob interface {
	io.Writer

	// Sync flushes buffered data to stable storage where supported.
	Sync() error

	// Close finishes the write and publishes the blob.
	Close() error

	// Abort discards the write. Calling Abort after Close is a no-op.
	Abort() error
}

// ReadAll reads the entire blob.
func ReadAll(ctx context.Context, b Blob) ([]byte, error) {
	size := b.Size()
	if size == 0 {
		return nil, nil
	}
	data := make([]byte, size)
	n, err := b.ReadAt(ctx, data, 0)
	if err != nil && err != io.EOF {
		return nil, err
	}
	if int64(n) != size {
		return nil, io.ErrUnexpectedEOF
	}
	return data, nil
}
