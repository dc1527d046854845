package query

import (
	"context"

	"github.com/hupe1980/gridgo/fragment"
	"github.com/hupe1980/gridgo/schema"
	"github.com/hupe1980/gridgo/storage"
)

// Engine is the capability set shared by both engine variants. The query
// routes configuration calls here without interpreting them: layout handling,
// on-disk representation, and per-attribute bookkeeping live entirely inside
// the engine.
type Engine interface {
	// Init prepares the engine for processing. It is invoked at most once
	// per Uninitialized period of the owning query.
	Init() error

	// Layout returns the cell order the engine will produce or consume.
	Layout() schema.Layout

	// SetLayout sets the cell order contract.
	SetLayout(layout schema.Layout) error

	// SetBuffer binds caller memory to a fixed-size attribute.
	SetBuffer(attr string, b *Buffer) error

	// SetBufferVar binds caller memory to a variable-length attribute.
	SetBufferVar(attr string, b *VarBuffer) error

	// SetSubarray restricts the request to a bounding box within the domain.
	// The value has already passed the generic bounds validator.
	SetSubarray(subarray any) error

	// SetArraySchema points the engine at the externally owned schema.
	SetArraySchema(s *schema.ArraySchema)

	// ArraySchema returns the schema the engine operates on.
	ArraySchema() *schema.ArraySchema

	// SetStorageManager points the engine at the storage manager used for
	// all fragment IO.
	SetStorageManager(sm *storage.Manager)
}

// Reader is the engine variant driven by read queries. Implementations own
// the resume cursor: after an incomplete read, the next Read call must
// continue from where the previous one stopped, without replay or gaps.
type Reader interface {
	Engine

	// Read fills the bound buffers with the next slice of the result.
	Read(ctx context.Context) error

	// Incomplete reports whether the last Read exhausted the caller buffers
	// before producing the full result.
	Incomplete() bool

	// NoResults reports whether the last Read produced no cells.
	NoResults() bool

	// SetFragmentMetadata supplies the fragments the read spans.
	SetFragmentMetadata(frags []*fragment.Meta)

	// FragmentNum returns the number of fragments the read spans.
	FragmentNum() int

	// FragmentURIs returns the URIs of the fragments the read spans.
	FragmentURIs() []string

	// LastFragmentURI returns the URI of the newest fragment.
	LastFragmentURI() string
}

// Writer is the engine variant driven by write queries. Writers are
// single-shot: a Write call either persists the whole request or fails.
type Writer interface {
	Engine

	// Write persists the bound buffers as a new fragment.
	Write(ctx context.Context) error

	// Finalize commits any state deferred past the last Write, such as
	// global-order write bookkeeping.
	Finalize(ctx context.Context) error

	// SetFragmentURI overrides the target fragment identifier.
	SetFragmentURI(uri string)
}
