// Package engine provides the dense array engines behind queries: DenseWriter
// persists one rectangular write as an immutable fragment, DenseReader
// overlays committed fragments newest-first into caller buffers, resuming
// across incomplete calls.
//
// Both engines store cells in the row-major order of the written region.
// Column-major requests are transposed at the engine boundary, so the on-disk
// layout never depends on the query layout.
package engine

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/hupe1980/gridgo/internal/cellorder"
	"github.com/hupe1980/gridgo/query"
	"github.com/hupe1980/gridgo/schema"
	"github.com/hupe1980/gridgo/storage"
)

// ErrNotConfigured is returned by Init when the engine is missing its schema
// or storage manager.
var ErrNotConfigured = errors.New("engine not configured")

// defaultTileSize is the raw byte size of one compression block.
const defaultTileSize = 64 << 10

// Option configures an engine.
type Option func(*base)

// WithLogger sets the structured logger. The default discards all output.
func WithLogger(l *slog.Logger) Option {
	return func(b *base) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithTileSize overrides the raw size of one compression block. Intended for
// tests; the default suits production blobs.
func WithTileSize(n int) Option {
	return func(b *base) {
		if n > 0 {
			b.tileSize = n
		}
	}
}

// base carries the state shared by both engine variants.
type base struct {
	arrayURI string
	sch      *schema.ArraySchema
	sm       *storage.Manager
	layout   schema.Layout
	logger   *slog.Logger
	tileSize int

	// subarray is the requested region, nil until set. domain is derived
	// from the schema at Init.
	subarray cellorder.Box
	domain   cellorder.Box

	bufs    map[string]*query.Buffer
	varBufs map[string]*query.VarBuffer
}

func newBase(arrayURI string, opts ...Option) base {
	b := base{
		arrayURI: arrayURI,
		layout:   schema.LayoutRowMajor,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		tileSize: defaultTileSize,
		bufs:     make(map[string]*query.Buffer),
		varBufs:  make(map[string]*query.VarBuffer),
	}

	for _, opt := range opts {
		opt(&b)
	}

	return b
}

func (b *base) Layout() schema.Layout { return b.layout }

func (b *base) SetLayout(layout schema.Layout) error {
	if layout != schema.LayoutRowMajor && layout != schema.LayoutColMajor {
		return fmt.Errorf("dense engine supports row-major and column-major layouts, got %s", layout)
	}
	b.layout = layout
	return nil
}

func (b *base) SetArraySchema(s *schema.ArraySchema) { b.sch = s }

func (b *base) ArraySchema() *schema.ArraySchema { return b.sch }

func (b *base) SetStorageManager(sm *storage.Manager) { b.sm = sm }

func (b *base) SetBuffer(attr string, buf *query.Buffer) error {
	a, err := b.attribute(attr)
	if err != nil {
		return err
	}
	if a.Var {
		return fmt.Errorf("attribute %q is variable-length; use a var buffer", attr)
	}
	b.bufs[attr] = buf
	return nil
}

func (b *base) SetBufferVar(attr string, buf *query.VarBuffer) error {
	a, err := b.attribute(attr)
	if err != nil {
		return err
	}
	if !a.Var {
		return fmt.Errorf("attribute %q is fixed-size; use a plain buffer", attr)
	}
	b.varBufs[attr] = buf
	return nil
}

func (b *base) SetSubarray(subarray any) error {
	if subarray == nil {
		b.subarray = nil
		return nil
	}
	if b.sch == nil {
		return fmt.Errorf("%w: array schema not set", ErrNotConfigured)
	}

	box, err := toBox(subarray, b.sch.Domain().NDim())
	if err != nil {
		return err
	}
	b.subarray = box

	return nil
}

func (b *base) attribute(name string) (*schema.Attribute, error) {
	if b.sch == nil {
		return nil, fmt.Errorf("%w: array schema not set", ErrNotConfigured)
	}
	a := b.sch.Attribute(name)
	if a == nil {
		return nil, fmt.Errorf("unknown attribute %q", name)
	}
	return a, nil
}

// initCommon validates configuration and resolves the domain and effective
// request region. Called by both variants at the top of Init.
func (b *base) initCommon() error {
	switch {
	case b.sch == nil:
		return fmt.Errorf("%w: array schema not set", ErrNotConfigured)
	case b.sm == nil:
		return fmt.Errorf("%w: storage manager not set", ErrNotConfigured)
	case b.arrayURI == "":
		return fmt.Errorf("%w: array URI not set", ErrNotConfigured)
	}

	dom := b.sch.Domain()
	if !dom.Type().Integral() {
		return fmt.Errorf("dense engine requires an integer domain, got %s", dom.Type())
	}

	b.domain = make(cellorder.Box, 0, 2*dom.NDim())
	for _, dim := range dom.Dimensions() {
		lo, hi := dim.Bounds()
		l, err := toInt64(lo)
		if err != nil {
			return err
		}
		h, err := toInt64(hi)
		if err != nil {
			return err
		}
		b.domain = append(b.domain, l, h)
	}

	if b.subarray == nil {
		b.subarray = b.domain.Clone()
	}

	if len(b.bufs)+len(b.varBufs) == 0 {
		return errors.New("no attribute buffers set")
	}

	return nil
}

// toBox widens a validated flat bounds slice to int64 pairs.
func toBox(subarray any, ndim int) (cellorder.Box, error) {
	box := make(cellorder.Box, 0, 2*ndim)

	appendAll := func(n int, at func(i int) (int64, error)) error {
		for i := 0; i < n; i++ {
			v, err := at(i)
			if err != nil {
				return err
			}
			box = append(box, v)
		}
		return nil
	}

	var err error
	switch s := subarray.(type) {
	case []int8:
		err = appendAll(len(s), func(i int) (int64, error) { return int64(s[i]), nil })
	case []int16:
		err = appendAll(len(s), func(i int) (int64, error) { return int64(s[i]), nil })
	case []int32:
		err = appendAll(len(s), func(i int) (int64, error) { return int64(s[i]), nil })
	case []int64:
		err = appendAll(len(s), func(i int) (int64, error) { return s[i], nil })
	case []uint8:
		err = appendAll(len(s), func(i int) (int64, error) { return int64(s[i]), nil })
	case []uint16:
		err = appendAll(len(s), func(i int) (int64, error) { return int64(s[i]), nil })
	case []uint32:
		err = appendAll(len(s), func(i int) (int64, error) { return int64(s[i]), nil })
	case []uint64:
		err = appendAll(len(s), func(i int) (int64, error) {
			if s[i] > math.MaxInt64 {
				return 0, fmt.Errorf("coordinate %d exceeds the supported domain range", s[i])
			}
			return int64(s[i]), nil
		})
	default:
		return nil, fmt.Errorf("unsupported subarray type %T for dense engine", subarray)
	}
	if err != nil {
		return nil, err
	}

	if len(box) != 2*ndim {
		return nil, fmt.Errorf("subarray has %d values, want %d", len(box), 2*ndim)
	}

	return box, nil
}

func toInt64(v any) (int64, error) {
	switch x := v.(type) {
	case int8:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case int64:
		return x, nil
	case uint8:
		return int64(x), nil
	case uint16:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return 0, fmt.Errorf("domain bound %d exceeds the supported range", x)
		}
		return int64(x), nil
	default:
		return 0, fmt.Errorf("unsupported domain bound type %T", v)
	}
}
