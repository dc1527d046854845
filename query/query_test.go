package query

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/gridgo/fragment"
	"github.com/hupe1980/gridgo/schema"
	"github.com/hupe1980/gridgo/storage"
)

// mockEngine implements the shared Engine surface with injectable failures.
type mockEngine struct {
	sch    *schema.ArraySchema
	layout schema.Layout

	initErr     error
	subarrayErr error

	inits    int
	subarray any
	bufs     map[string]*Buffer
	varBufs  map[string]*VarBuffer
}

func (m *mockEngine) Init() error {
	m.inits++
	return m.initErr
}

func (m *mockEngine) Layout() schema.Layout { return m.layout }

func (m *mockEngine) SetLayout(l schema.Layout) error {
	m.layout = l
	return nil
}

func (m *mockEngine) SetBuffer(attr string, b *Buffer) error {
	if m.bufs == nil {
		m.bufs = make(map[string]*Buffer)
	}
	m.bufs[attr] = b
	return nil
}

func (m *mockEngine) SetBufferVar(attr string, b *VarBuffer) error {
	if m.varBufs == nil {
		m.varBufs = make(map[string]*VarBuffer)
	}
	m.varBufs[attr] = b
	return nil
}

func (m *mockEngine) SetSubarray(subarray any) error {
	if m.subarrayErr != nil {
		return m.subarrayErr
	}
	m.subarray = subarray
	return nil
}

func (m *mockEngine) SetArraySchema(s *schema.ArraySchema) { m.sch = s }
func (m *mockEngine) ArraySchema() *schema.ArraySchema     { return m.sch }
func (m *mockEngine) SetStorageManager(*storage.Manager)   {}

type mockReader struct {
	mockEngine

	readErr    error
	incomplete bool
	noResults  bool
	reads      int
	frags      []*fragment.Meta
}

func (m *mockReader) Read(context.Context) error {
	m.reads++
	return m.readErr
}

func (m *mockReader) Incomplete() bool { return m.incomplete }
func (m *mockReader) NoResults() bool  { return m.noResults }

func (m *mockReader) SetFragmentMetadata(frags []*fragment.Meta) { m.frags = frags }
func (m *mockReader) FragmentNum() int                           { return len(m.frags) }

func (m *mockReader) FragmentURIs() []string {
	uris := make([]string, len(m.frags))
	for i, f := range m.frags {
		uris[i] = f.URI
	}
	return uris
}

func (m *mockReader) LastFragmentURI() string {
	if len(m.frags) == 0 {
		return ""
	}
	return m.frags[len(m.frags)-1].URI
}

type mockWriter struct {
	mockEngine

	writeErr    error
	finalizeErr error
	writes      int
	finalizes   int
	fragURI     string
}

func (m *mockWriter) Write(context.Context) error {
	m.writes++
	return m.writeErr
}

func (m *mockWriter) Finalize(context.Context) error {
	m.finalizes++
	return m.finalizeErr
}

func (m *mockWriter) SetFragmentURI(uri string) { m.fragURI = uri }

var (
	_ Reader = (*mockReader)(nil)
	_ Writer = (*mockWriter)(nil)
)

func testSchema(t *testing.T) *schema.ArraySchema {
	t.Helper()

	sch, err := schema.NewBuilder(schema.Int64).
		Dimension("rows", int64(0), int64(9)).
		Dimension("cols", int64(0), int64(9)).
		Attribute("a", schema.Int32).
		VarAttribute("s", schema.Char, schema.NoCompression).
		Build()
	require.NoError(t, err)

	return sch
}

func newReadQuery(t *testing.T, m *mockReader) *Query {
	t.Helper()

	q, err := New(nil, Read, testSchema(t), nil, m)
	require.NoError(t, err)
	return q
}

func newWriteQuery(t *testing.T, m *mockWriter) *Query {
	t.Helper()

	q, err := New(nil, Write, testSchema(t), nil, m)
	require.NoError(t, err)
	return q
}

func TestNewRejectsWrongVariant(t *testing.T) {
	sch := testSchema(t)

	_, err := New(nil, Write, sch, nil, &mockReader{})
	assert.ErrorIs(t, err, ErrInternal)

	_, err = New(nil, Read, sch, nil, &mockWriter{})
	assert.ErrorIs(t, err, ErrInternal)
}

func TestInitTransitions(t *testing.T) {
	m := &mockReader{}
	q := newReadQuery(t, m)
	require.Equal(t, Uninitialized, q.Status())

	require.NoError(t, q.Init())
	assert.Equal(t, InProgress, q.Status())
	assert.Equal(t, 1, m.inits)

	// Init after Init does not touch the engine again.
	require.NoError(t, q.Init())
	assert.Equal(t, 1, m.inits)
}

func TestInitFailureKeepsStatus(t *testing.T) {
	m := &mockReader{}
	m.initErr = errors.New("boom")
	q := newReadQuery(t, m)

	err := q.Init()
	assert.ErrorIs(t, err, ErrEngine)
	assert.Equal(t, Uninitialized, q.Status())
}

func TestProcessUninitialized(t *testing.T) {
	q := newReadQuery(t, &mockReader{})

	err := q.Process(context.Background())
	assert.ErrorIs(t, err, ErrUsage)
	assert.Equal(t, Uninitialized, q.Status())
}

func TestReadIncompleteThenComplete(t *testing.T) {
	ctx := context.Background()
	m := &mockReader{incomplete: true}
	q := newReadQuery(t, m)

	fired := 0
	q.SetCallback(func() { fired++ })

	require.NoError(t, q.Init())

	require.NoError(t, q.Process(ctx))
	assert.Equal(t, Incomplete, q.Status())
	assert.Zero(t, fired, "callback must not fire on incomplete")

	m.incomplete = false
	require.NoError(t, q.Process(ctx))
	assert.Equal(t, Completed, q.Status())
	assert.Equal(t, 1, fired)
	assert.Equal(t, 2, m.reads)
}

func TestWriteNeverIncomplete(t *testing.T) {
	m := &mockWriter{}
	q := newWriteQuery(t, m)

	require.NoError(t, q.Init())
	require.NoError(t, q.Process(context.Background()))

	assert.Equal(t, Completed, q.Status())
	assert.Equal(t, 1, m.writes)
}

func TestProcessEngineFailure(t *testing.T) {
	ctx := context.Background()
	m := &mockReader{}
	m.readErr = errors.New("disk gone")
	q := newReadQuery(t, m)

	require.NoError(t, q.Init())

	err := q.Process(ctx)
	assert.ErrorIs(t, err, ErrEngine)
	assert.Equal(t, Failed, q.Status())

	// Failed is terminal for Process.
	assert.ErrorIs(t, q.Process(ctx), ErrUsage)
	assert.Equal(t, 1, m.reads)
}

func TestProcessAfterCompletedIsUsageError(t *testing.T) {
	ctx := context.Background()
	q := newWriteQuery(t, &mockWriter{})

	require.NoError(t, q.Init())
	require.NoError(t, q.Process(ctx))

	assert.ErrorIs(t, q.Process(ctx), ErrUsage)
}

func TestCancel(t *testing.T) {
	q := newReadQuery(t, &mockReader{})
	require.NoError(t, q.Init())

	require.NoError(t, q.Cancel())
	assert.Equal(t, Failed, q.Status())
}

func TestSetSubarrayResetsStatus(t *testing.T) {
	m := &mockReader{}
	q := newReadQuery(t, m)

	require.NoError(t, q.Init())
	require.NoError(t, q.Cancel())
	require.Equal(t, Failed, q.Status())

	require.NoError(t, q.SetSubarray([]int64{0, 4, 0, 4}))
	assert.Equal(t, Uninitialized, q.Status())
	assert.Equal(t, []int64{0, 4, 0, 4}, m.subarray)

	// Re-init drives the engine again.
	require.NoError(t, q.Init())
	assert.Equal(t, 2, m.inits)
}

func TestSetSubarrayRejectionKeepsStatus(t *testing.T) {
	q := newReadQuery(t, &mockReader{})
	require.NoError(t, q.Init())

	err := q.SetSubarray([]int64{0, 100, 0, 4})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, InProgress, q.Status())
}

func TestSetSubarrayEngineFailureKeepsStatus(t *testing.T) {
	m := &mockReader{}
	m.subarrayErr = errors.New("nope")
	q := newReadQuery(t, m)
	require.NoError(t, q.Init())

	err := q.SetSubarray([]int64{0, 4, 0, 4})
	assert.ErrorIs(t, err, ErrEngine)
	assert.Equal(t, InProgress, q.Status())
}

func TestSetBufferNil(t *testing.T) {
	q := newReadQuery(t, &mockReader{})

	assert.ErrorIs(t, q.SetBuffer("a", nil), ErrValidation)
	assert.ErrorIs(t, q.SetBuffer("a", &Buffer{}), ErrValidation)
	assert.ErrorIs(t, q.SetBufferVar("s", nil), ErrValidation)
	assert.ErrorIs(t, q.SetBufferVar("s", &VarBuffer{Offsets: []uint64{0}}), ErrValidation)
}

func TestSetBufferVarValidatesWritesOnly(t *testing.T) {
	bad := &VarBuffer{Offsets: []uint64{4, 2}, Data: make([]byte, 8)}

	w := newWriteQuery(t, &mockWriter{})
	assert.ErrorIs(t, w.SetBufferVar("s", bad), ErrValidation)

	// Read buffers are output capacity; their initial contents are not
	// inspected.
	r := newReadQuery(t, &mockReader{})
	assert.NoError(t, r.SetBufferVar("s", bad))
}

func TestSetLayout(t *testing.T) {
	m := &mockReader{}
	q := newReadQuery(t, m)

	require.NoError(t, q.SetLayout(schema.LayoutColMajor))
	assert.Equal(t, schema.LayoutColMajor, q.Layout())

	assert.ErrorIs(t, q.SetLayout(schema.Layout(99)), ErrValidation)
}

func TestHasResults(t *testing.T) {
	m := &mockReader{noResults: true}
	q := newReadQuery(t, m)

	assert.False(t, q.HasResults(), "uninitialized queries have no results")

	require.NoError(t, q.Init())
	assert.False(t, q.HasResults())

	m.noResults = false
	assert.True(t, q.HasResults())

	w := newWriteQuery(t, &mockWriter{})
	require.NoError(t, w.Init())
	assert.False(t, w.HasResults(), "write queries never have results")
}

func TestFinalize(t *testing.T) {
	ctx := context.Background()

	// No-op for reads.
	r := newReadQuery(t, &mockReader{})
	require.NoError(t, r.Init())
	require.NoError(t, r.Finalize(ctx))
	assert.Equal(t, InProgress, r.Status())

	// No-op before Init.
	mw := &mockWriter{}
	w := newWriteQuery(t, mw)
	require.NoError(t, w.Finalize(ctx))
	assert.Zero(t, mw.finalizes)

	// Commits for writes.
	require.NoError(t, w.Init())
	require.NoError(t, w.Finalize(ctx))
	assert.Equal(t, 1, mw.finalizes)
	assert.Equal(t, Completed, w.Status())
}

func TestFinalizeFailure(t *testing.T) {
	mw := &mockWriter{}
	mw.finalizeErr = errors.New("commit failed")
	w := newWriteQuery(t, mw)
	require.NoError(t, w.Init())

	err := w.Finalize(context.Background())
	assert.ErrorIs(t, err, ErrEngine)
	assert.Equal(t, Failed, w.Status())
}

func TestFragmentAccessors(t *testing.T) {
	frags := []*fragment.Meta{{URI: "__1_a"}, {URI: "__2_b"}}

	m := &mockReader{}
	q, err := New(nil, Read, testSchema(t), frags, m)
	require.NoError(t, err)

	assert.Equal(t, 2, q.FragmentNum())
	assert.Equal(t, []string{"__1_a", "__2_b"}, q.FragmentURIs())
	assert.Equal(t, "__2_b", q.LastFragmentURI())

	// Writes report zero values.
	w := newWriteQuery(t, &mockWriter{})
	assert.Zero(t, w.FragmentNum())
	assert.Nil(t, w.FragmentURIs())
	assert.Empty(t, w.LastFragmentURI())
}

func TestSetFragmentURIRouting(t *testing.T) {
	mw := &mockWriter{}
	w := newWriteQuery(t, mw)
	w.SetFragmentURI("__frag")
	assert.Equal(t, "__frag", mw.fragURI)

	// No-op on reads.
	r := newReadQuery(t, &mockReader{})
	r.SetFragmentURI("__frag")
}

func TestTypeAccessors(t *testing.T) {
	r := newReadQuery(t, &mockReader{})
	assert.Equal(t, Read, r.Type())
	assert.Equal(t, "read", r.Type().String())

	w := newWriteQuery(t, &mockWriter{})
	assert.Equal(t, Write, w.Type())
	assert.NotNil(t, w.ArraySchema())
}
