package query

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/hupe1980/gridgo/fragment"
	"github.com/hupe1980/gridgo/schema"
	"github.com/hupe1980/gridgo/storage"
)

// Option configures a Query at construction.
type Option func(*Query)

// WithLogger sets the structured logger. The default discards all output.
func WithLogger(l *slog.Logger) Option {
	return func(q *Query) {
		if l != nil {
			q.logger = l
		}
	}
}

// Query is one read or write request against an array. It owns the request
// lifecycle and routes configuration to exactly one engine variant, chosen
// irrevocably at construction from the query type.
//
// A Query is not safe for concurrent use: the owner must serialize Process
// and Set* calls. Engines may parallelize internally; that concurrency is
// invisible at this boundary.
type Query struct {
	typ    Type
	status Status

	reader Reader
	writer Writer

	callback func()
	logger   *slog.Logger
}

// New creates a query. The engine must implement Reader for read queries and
// Writer for write queries; the variant is fixed for the query's lifetime.
// The schema is externally owned and must outlive the query. Fragment
// metadata applies to reads and is ignored for writes.
func New(sm *storage.Manager, typ Type, sch *schema.ArraySchema, frags []*fragment.Meta, eng Engine, opts ...Option) (*Query, error) {
	q := &Query{
		typ:    typ,
		status: Uninitialized,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	switch typ {
	case Read:
		r, ok := eng.(Reader)
		if !ok {
			return nil, fmt.Errorf("%w: read query requires a Reader engine, got %T", ErrInternal, eng)
		}
		q.reader = r
	case Write:
		w, ok := eng.(Writer)
		if !ok {
			return nil, fmt.Errorf("%w: write query requires a Writer engine, got %T", ErrInternal, eng)
		}
		q.writer = w
	default:
		return nil, fmt.Errorf("%w: unknown query type %d", ErrInternal, uint8(typ))
	}

	for _, opt := range opts {
		opt(q)
	}

	q.SetStorageManager(sm)
	q.SetArraySchema(sch)
	q.SetFragmentMetadata(frags)

	return q, nil
}

// engine returns the active engine variant.
func (q *Query) engine() Engine {
	if q.typ == Write {
		return q.writer
	}
	return q.reader
}

// Type returns the query kind. It never changes after construction.
func (q *Query) Type() Type { return q.typ }

// Status returns the current lifecycle state.
func (q *Query) Status() Status { return q.status }

// ArraySchema returns the schema the active engine operates on.
func (q *Query) ArraySchema() *schema.ArraySchema {
	return q.engine().ArraySchema()
}

// Layout returns the cell order contract of the active engine.
func (q *Query) Layout() schema.Layout {
	return q.engine().Layout()
}

// Init initializes the active engine and moves the query to InProgress.
// Repeated calls after a successful Init are no-ops on the engine. An engine
// init failure leaves the status unchanged.
func (q *Query) Init() error {
	if q.status == Uninitialized {
		if err := q.engine().Init(); err != nil {
			q.logger.Error("engine init failed", "type", q.typ, "error", err)
			return engineErr(err)
		}
	}
	q.status = InProgress
	return nil
}

// Process runs one synchronous step of the request.
//
// Reads may end Incomplete when the caller buffers fill before the full
// result is produced; drain the buffers and call Process again. Writes are
// single-shot and end Completed or Failed. A registered callback fires
// synchronously, at most once per call, on the transition to Completed.
//
// Buffer contents are unspecified after a Process call that ends Failed.
func (q *Query) Process(ctx context.Context) error {
	switch {
	case q.status == Uninitialized:
		return fmt.Errorf("%w: cannot process query; query is not initialized", ErrUsage)
	case q.status.Terminal():
		return fmt.Errorf("%w: cannot process query; query status is %s", ErrUsage, q.status)
	}

	q.status = InProgress

	var err error
	if q.typ == Read {
		err = q.reader.Read(ctx)
	} else {
		err = q.writer.Write(ctx)
	}
	if err != nil {
		q.status = Failed
		q.logger.Error("process failed", "type", q.typ, "error", err)
		return engineErr(err)
	}

	completed := q.typ == Write || !q.reader.Incomplete()
	if !completed {
		q.status = Incomplete
		return nil
	}

	q.status = Completed
	if q.callback != nil {
		q.callback()
	}
	return nil
}

// Cancel unconditionally forces the query to Failed. In-flight engine work is
// not interrupted by the query itself; prompt interruption is an engine
// responsibility observed through the forced status.
func (q *Query) Cancel() error {
	q.status = Failed
	return nil
}

// Finalize commits deferred write state and completes the query. It is a
// no-op for uninitialized and read queries.
func (q *Query) Finalize(ctx context.Context) error {
	if q.status == Uninitialized || q.typ == Read {
		return nil
	}
	if err := q.writer.Finalize(ctx); err != nil {
		q.status = Failed
		q.logger.Error("finalize failed", "error", err)
		return engineErr(err)
	}
	q.status = Completed
	return nil
}

// HasResults reports whether the reader has produced or pending results. It
// is always false for uninitialized and write queries.
func (q *Query) HasResults() bool {
	if q.status == Uninitialized || q.typ == Write {
		return false
	}
	return !q.reader.NoResults()
}

// FragmentNum returns the number of fragments a read spans, and 0 for writes.
func (q *Query) FragmentNum() int {
	if q.typ == Write {
		return 0
	}
	return q.reader.FragmentNum()
}

// FragmentURIs returns the URIs of the fragments a read spans.
func (q *Query) FragmentURIs() []string {
	if q.typ == Write {
		return nil
	}
	return q.reader.FragmentURIs()
}

// LastFragmentURI returns the URI of the newest fragment a read spans.
func (q *Query) LastFragmentURI() string {
	if q.typ == Write {
		return ""
	}
	return q.reader.LastFragmentURI()
}

// SetLayout sets the cell order contract on the active engine.
func (q *Query) SetLayout(layout schema.Layout) error {
	if !layout.Valid() {
		return fmt.Errorf("%w: unknown layout %d", ErrValidation, uint8(layout))
	}
	return q.engine().SetLayout(layout)
}

// SetBuffer binds caller memory to a fixed-size attribute and forwards the
// non-owning reference to the active engine. The status is never changed.
func (q *Query) SetBuffer(attr string, b *Buffer) error {
	if b == nil || b.Data == nil {
		return fmt.Errorf("%w: cannot set nil buffer for attribute %q", ErrValidation, attr)
	}
	return q.engine().SetBuffer(attr, b)
}

// SetBufferVar binds caller memory to a variable-length attribute. For write
// queries, the offsets describe caller data and are validated against the
// value buffer before registration; a rejected buffer never touches the
// status. For read queries the buffers are output capacity and their initial
// contents are not inspected.
func (q *Query) SetBufferVar(attr string, b *VarBuffer) error {
	if b == nil || b.Offsets == nil || b.Data == nil {
		return fmt.Errorf("%w: cannot set nil offset buffers for attribute %q", ErrValidation, attr)
	}
	if q.typ == Write {
		if err := ValidateOffsets(b.Offsets, uint64(len(b.Data))); err != nil {
			return err
		}
	}
	return q.engine().SetBufferVar(attr, b)
}

// SetSubarray restricts the request to a bounding box within the domain. The
// value must be a flat []T of 2 values per dimension, where T is the Go type
// of the domain datatype; nil means the whole domain. The bounds validator
// runs first: a rejected subarray leaves the status untouched. On success the
// status resets to Uninitialized, including out of a terminal state.
func (q *Query) SetSubarray(subarray any) error {
	sch := q.ArraySchema()
	if sch == nil {
		return fmt.Errorf("%w: cannot set subarray; array schema not set", ErrValidation)
	}
	if err := CheckSubarrayBounds(subarray, sch.Domain()); err != nil {
		return err
	}
	if err := q.engine().SetSubarray(subarray); err != nil {
		return engineErr(err)
	}
	q.status = Uninitialized
	return nil
}

// SetCallback registers fn to fire synchronously inside the Process call that
// transitions the query to Completed. It never fires on Incomplete or Failed.
// A nil fn unregisters.
func (q *Query) SetCallback(fn func()) {
	q.callback = fn
}

// SetArraySchema routes the externally owned schema to the active engine.
func (q *Query) SetArraySchema(s *schema.ArraySchema) {
	q.engine().SetArraySchema(s)
}

// SetStorageManager routes the storage manager to the active engine.
func (q *Query) SetStorageManager(sm *storage.Manager) {
	q.engine().SetStorageManager(sm)
}

// SetFragmentMetadata supplies the fragments a read spans. It is a no-op for
// write queries.
func (q *Query) SetFragmentMetadata(frags []*fragment.Meta) {
	if q.typ == Read {
		q.reader.SetFragmentMetadata(frags)
	}
}

// SetFragmentURI overrides the target fragment identifier of a write query.
// It is a no-op for read queries.
func (q *Query) SetFragmentURI(uri string) {
	if q.typ == Write {
		q.writer.SetFragmentURI(uri)
	}
}
