package s3

import (
	"context"
	"crypto/rand"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/gridgo/vfs"
)

func TestIntegration_S3Store(t *testing.T) {
	bucket := os.Getenv("S3_BUCKET")
	if bucket == "" {
		t.Skip("Skipping S3 integration test: S3_BUCKET not set")
	}

	ctx := context.Background()
	cfg, err := config.LoadDefaultConfig(ctx)
	require.NoError(t, err)

	client := s3.NewFromConfig(cfg)

	// Unique prefix per test run.
	prefix := fmt.Sprintf("test-gridgo-%d/", time.Now().UnixNano())
	store := NewStore(client, bucket, prefix)

	t.Run("create and read", func(t *testing.T) {
		data := make([]byte, 1<<20)
		_, err := rand.Read(data)
		require.NoError(t, err)

		w, err := store.Create(ctx, "frag/a_x.data")
		require.NoError(t, err)
		n, err := w.Write(data)
		require.NoError(t, err)
		assert.Equal(t, len(data), n)
		require.NoError(t, w.Close())

		names, err := store.List(ctx, "frag/")
		require.NoError(t, err)
		assert.Contains(t, names, "frag/a_x.data")

		blob, err := store.Open(ctx, "frag/a_x.data")
		require.NoError(t, err)
		defer blob.Close()
		assert.Equal(t, int64(len(data)), blob.Size())

		p := make([]byte, 100)
		_, err = blob.ReadAt(ctx, p, 512)
		require.NoError(t, err)
		assert.Equal(t, data[512:612], p)
	})

	t.Run("put and delete", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "frag/meta.json", []byte(`{"ok":true}`)))

		blob, err := store.Open(ctx, "frag/meta.json")
		require.NoError(t, err)
		data, err := vfs.ReadAll(ctx, blob)
		require.NoError(t, err)
		require.NoError(t, blob.Close())
		assert.Equal(t, `{"ok":true}`, string(data))

		require.NoError(t, store.Delete(ctx, "frag/meta.json"))
		_, err = store.Open(ctx, "frag/meta.json")
		assert.ErrorIs(t, err, vfs.ErrNotFound)
	})

	// Cleanup.
	names, err := store.List(ctx, "")
	require.NoError(t, err)
	for _, name := range names {
		assert.NoError(t, store.Delete(ctx, name))
	}
}
