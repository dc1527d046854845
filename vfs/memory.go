package vfs

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
)

// MemFS is an in-memory VFS for tests. Safe for concurrent use.
type MemFS struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemFS creates an empty in-memory VFS.
func NewMemFS() *MemFS {
	return &MemFS{blobs: make(map[string][]byte)}
}

// Open opens a blob for reading.
func (m *MemFS) Open(_ context.Context, name string) (Blob, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.blobs[name]
	if !ok {
		return nil, ErrNotFound
	}
	// Copy to keep readers isolated from later overwrites.
	copied := make([]byte, len(data))
	copy(copied, data)
	return &memBlob{data: copied}, nil
}

// Put writes a blob atomically.
func (m *MemFS) Put(_ context.Context, name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := make([]byte, len(data))
	copy(copied, data)
	m.blobs[name] = copied
	return nil
}

// Create opens a blob for streaming writes, published on Close.
func (m *MemFS) Create(_ context.Context, name string) (WritableBlob, error) {
	return &memWritableBlob{fs: m, name: name}, nil
}

// Delete removes a blob.
func (m *MemFS) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, name)
	return nil
}

// List returns all blob names with the given prefix, sorted.
func (m *MemFS) List(_ context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var names []string
	for name := range m.blobs {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

type memBlob struct {
	data []byte
}

func (b *memBlob) ReadAt(_ context.Context, p []byte, off int64) (int, error) {
	if off < 0 || off >= int64(len(b.data)) {
		return 0, io.EOF
	}
	n := copy(p, b.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (b *memBlob) Size() int64 { return int64(len(b.data)) }

func (b *memBlob) Close() error { return nil }

type memWritableBlob struct {
	fs      *MemFS
	name    string
	buf     bytes.Buffer
	done    bool
	aborted bool
}

func (b *memWritableBlob) Write(p []byte) (int, error) {
	return b.buf.Write(p)
}

func (b *memWritableBlob) Sync() error { return nil }

func (b *memWritableBlob) Close() error {
	if b.done || b.aborted {
		return nil
	}
	b.done = true
	return b.fs.Put(context.Background(), b.name, b.buf.Bytes())
}

func (b *memWritableBlob) Abort() error {
	b.aborted = true
	return nil
}
