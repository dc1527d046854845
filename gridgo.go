package gridgo

import (
	"context"
	"fmt"

	"github.com/hupe1980/gridgo/engine"
	"github.com/hupe1980/gridgo/query"
	"github.com/hupe1980/gridgo/schema"
	"github.com/hupe1980/gridgo/storage"
)

// Array is an open handle to a dense array: its schema plus the storage it
// lives on. Handles are cheap and safe to share; queries created from one
// handle are independent.
type Array struct {
	uri    string
	sm     *storage.Manager
	sch    *schema.ArraySchema
	logger *Logger
}

// CreateArray writes the schema for a new array at uri and returns an open
// handle. It fails if the URI already holds an array.
func CreateArray(ctx context.Context, uri string, sch *schema.ArraySchema, optFns ...func(*Options)) (*Array, error) {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(opts)
	}

	sm := opts.manager()
	if err := sm.CreateArray(ctx, uri, sch); err != nil {
		return nil, err
	}

	return &Array{uri: uri, sm: sm, sch: sch, logger: opts.Logger}, nil
}

// OpenArray opens an existing array at uri.
func OpenArray(ctx context.Context, uri string, optFns ...func(*Options)) (*Array, error) {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(opts)
	}

	sm := opts.manager()
	sch, err := sm.LoadSchema(ctx, uri)
	if err != nil {
		return nil, err
	}

	return &Array{uri: uri, sm: sm, sch: sch, logger: opts.Logger}, nil
}

// URI returns the array location.
func (a *Array) URI() string { return a.uri }

// Schema returns the array schema. The schema is shared: callers must treat
// it as read-only.
func (a *Array) Schema() *schema.ArraySchema { return a.sch }

// Storage returns the storage manager the array was opened with.
func (a *Array) Storage() *storage.Manager { return a.sm }

// NewQuery creates a read or write query against the array. Read queries see
// the fragments committed at creation time; later writes require a new query.
func (a *Array) NewQuery(ctx context.Context, typ query.Type, opts ...query.Option) (*query.Query, error) {
	opts = append([]query.Option{query.WithLogger(a.logger.Logger)}, opts...)

	switch typ {
	case query.Read:
		frags, err := a.sm.Fragments().List(ctx, a.uri)
		if err != nil {
			return nil, err
		}
		eng := engine.NewDenseReader(a.uri, engine.WithLogger(a.logger.Logger))
		return query.New(a.sm, typ, a.sch, frags, eng, opts...)
	case query.Write:
		eng := engine.NewDenseWriter(a.uri, engine.WithLogger(a.logger.Logger))
		return query.New(a.sm, typ, a.sch, nil, eng, opts...)
	default:
		return nil, fmt.Errorf("unknown query type %d", uint8(typ))
	}
}

// Delete removes the array and all its fragments.
func (a *Array) Delete(ctx context.Context) error {
	return a.sm.DeleteArray(ctx, a.uri)
}
