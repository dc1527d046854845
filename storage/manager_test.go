package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/gridgo/schema"
	"github.com/hupe1980/gridgo/vfs"
)

func testSchema(t *testing.T) *schema.ArraySchema {
	t.Helper()

	sch, err := schema.NewBuilder(schema.Int64).
		Dimension("rows", int64(0), int64(9)).
		Dimension("cols", int64(0), int64(9)).
		Attribute("a", schema.Int32).
		Build()
	require.NoError(t, err)

	return sch
}

func TestCreateAndLoadArray(t *testing.T) {
	ctx := context.Background()
	m := NewManager(vfs.NewMemFS())

	require.NoError(t, m.CreateArray(ctx, "arrays/grid", testSchema(t)))

	got, err := m.LoadSchema(ctx, "arrays/grid")
	require.NoError(t, err)
	require.NotNil(t, got.Attribute("a"))
	assert.Equal(t, schema.Int64, got.Domain().Type())
	assert.Len(t, got.Domain().Dimensions(), 2)
}

func TestCreateArrayTwice(t *testing.T) {
	ctx := context.Background()
	m := NewManager(vfs.NewMemFS())

	require.NoError(t, m.CreateArray(ctx, "a", testSchema(t)))

	err := m.CreateArray(ctx, "a", testSchema(t))
	assert.ErrorIs(t, err, ErrArrayExists)
}

func TestLoadSchemaMissing(t *testing.T) {
	m := NewManager(vfs.NewMemFS())

	_, err := m.LoadSchema(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrArrayNotFound)
}

func TestArrayExists(t *testing.T) {
	ctx := context.Background()
	m := NewManager(vfs.NewMemFS())

	ok, err := m.ArrayExists(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.CreateArray(ctx, "a", testSchema(t)))

	ok, err = m.ArrayExists(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDeleteArray(t *testing.T) {
	ctx := context.Background()
	fs := vfs.NewMemFS()
	m := NewManager(fs)

	require.NoError(t, m.CreateArray(ctx, "a", testSchema(t)))
	require.NoError(t, fs.Put(ctx, "a/__frag/a_x.data", []byte("x")))

	require.NoError(t, m.DeleteArray(ctx, "a"))

	names, err := fs.List(ctx, "a/")
	require.NoError(t, err)
	assert.Empty(t, names)

	ok, err := m.ArrayExists(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)
}
