package vfs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// backends under test. LocalFS gets a fresh temp root per test run.
func backends(t *testing.T) map[string]VFS {
	t.Helper()

	return map[string]VFS{
		"memory": NewMemFS(),
		"local":  NewLocalFS(t.TempDir()),
	}
}

func TestPutOpenRoundTrip(t *testing.T) {
	ctx := context.Background()

	for name, fs := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, fs.Put(ctx, "a/b/blob", []byte("hello world")))

			blob, err := fs.Open(ctx, "a/b/blob")
			require.NoError(t, err)
			defer blob.Close()

			assert.Equal(t, int64(11), blob.Size())

			data, err := ReadAll(ctx, blob)
			require.NoError(t, err)
			assert.Equal(t, "hello world", string(data))

			// Ranged read.
			p := make([]byte, 5)
			n, err := blob.ReadAt(ctx, p, 6)
			require.NoError(t, err)
			assert.Equal(t, 5, n)
			assert.Equal(t, "world", string(p))
		})
	}
}

func TestOpenMissing(t *testing.T) {
	ctx := context.Background()

	for name, fs := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := fs.Open(ctx, "no/such/blob")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestCreatePublishesOnClose(t *testing.T) {
	ctx := context.Background()

	for name, fs := range backends(t) {
		t.Run(name, func(t *testing.T) {
			wb, err := fs.Create(ctx, "dir/stream")
			require.NoError(t, err)

			_, err = wb.Write([]byte("part1-"))
			require.NoError(t, err)
			_, err = wb.Write([]byte("part2"))
			require.NoError(t, err)

			// Not visible until Close.
			_, err = fs.Open(ctx, "dir/stream")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, wb.Sync())
			require.NoError(t, wb.Close())

			blob, err := fs.Open(ctx, "dir/stream")
			require.NoError(t, err)
			defer blob.Close()

			data, err := ReadAll(ctx, blob)
			require.NoError(t, err)
			assert.Equal(t, "part1-part2", string(data))
		})
	}
}

func TestCreateAbortDiscards(t *testing.T) {
	ctx := context.Background()

	for name, fs := range backends(t) {
		t.Run(name, func(t *testing.T) {
			wb, err := fs.Create(ctx, "dir/aborted")
			require.NoError(t, err)
			_, err = wb.Write([]byte("junk"))
			require.NoError(t, err)
			require.NoError(t, wb.Abort())

			_, err = fs.Open(ctx, "dir/aborted")
			assert.ErrorIs(t, err, ErrNotFound)

			names, err := fs.List(ctx, "dir/")
			require.NoError(t, err)
			assert.Empty(t, names, "aborted writes must leave no temp files behind")
		})
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()

	for name, fs := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, fs.Put(ctx, "x", []byte("1")))
			require.NoError(t, fs.Delete(ctx, "x"))

			_, err := fs.Open(ctx, "x")
			assert.ErrorIs(t, err, ErrNotFound)

			// Deleting a missing blob is not an error.
			assert.NoError(t, fs.Delete(ctx, "x"))
		})
	}
}

func TestListPrefix(t *testing.T) {
	ctx := context.Background()

	for name, fs := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, fs.Put(ctx, "arr/f1/meta", []byte("1")))
			require.NoError(t, fs.Put(ctx, "arr/f2/meta", []byte("2")))
			require.NoError(t, fs.Put(ctx, "arr/f2/data", []byte("3")))
			require.NoError(t, fs.Put(ctx, "other/blob", []byte("4")))

			names, err := fs.List(ctx, "arr/")
			require.NoError(t, err)
			assert.Equal(t, []string{"arr/f1/meta", "arr/f2/data", "arr/f2/meta"}, names)

			names, err = fs.List(ctx, "arr/f2/")
			require.NoError(t, err)
			assert.Len(t, names, 2)

			names, err = fs.List(ctx, "nope/")
			require.NoError(t, err)
			assert.Empty(t, names)
		})
	}
}

func TestPutOverwrites(t *testing.T) {
	ctx := context.Background()

	for name, fs := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, fs.Put(ctx, "x", []byte("old")))
			require.NoError(t, fs.Put(ctx, "x", []byte("new value")))

			blob, err := fs.Open(ctx, "x")
			require.NoError(t, err)
			defer blob.Close()

			data, err := ReadAll(ctx, blob)
			require.NoError(t, err)
			assert.Equal(t, "new value", string(data))
		})
	}
}

func TestMemFSIsolation(t *testing.T) {
	ctx := context.Background()
	fs := NewMemFS()

	src := []byte("immutable")
	require.NoError(t, fs.Put(ctx, "x", src))

	// Mutating the caller slice after Put must not affect the stored blob.
	src[0] = 'X'

	blob, err := fs.Open(ctx, "x")
	require.NoError(t, err)
	defer blob.Close()

	data, err := ReadAll(ctx, blob)
	require.NoError(t, err)
	assert.Equal(t, "immutable", string(data))
}
