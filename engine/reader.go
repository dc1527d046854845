package engine

import (
	"context"
	"encoding/binary"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/gridgo/fragment"
	"github.com/hupe1980/gridgo/internal/cellorder"
	"github.com/hupe1980/gridgo/query"
	"github.com/hupe1980/gridgo/schema"
)

// DenseReader materializes a region of an array into caller buffers by
// overlaying committed fragments newest-first. Cells no fragment has written
// come back as fill values: zero bytes for fixed-size attributes, empty
// values for variable-length ones.
//
// The reader owns the resume cursor. When the caller buffers fill before the
// region is exhausted the read ends incomplete; the next Read continues from
// the first unproduced cell, without replay or gaps.
type DenseReader struct {
	base

	frags   []*fragment.Meta
	overlap []*fragView

	cursor     *cellorder.Cursor
	incomplete bool
	produced   uint64
}

// fragView is one overlapping fragment with its decoded attribute data.
// Cells inside data are in the row-major order of the fragment's own region.
type fragView struct {
	meta *fragment.Meta
	box  cellorder.Box

	data map[string][]byte   // attr -> raw cell values
	offs map[string][]uint64 // attr -> decoded offsets, var-length only
}

var _ query.Reader = (*DenseReader)(nil)

// NewDenseReader creates a reader over the array at arrayURI.
func NewDenseReader(arrayURI string, opts ...Option) *DenseReader {
	return &DenseReader{base: newBase(arrayURI, opts...)}
}

// SetFragmentMetadata supplies the committed fragments the read may span,
// oldest first.
func (r *DenseReader) SetFragmentMetadata(frags []*fragment.Meta) { r.frags = frags }

// FragmentNum returns the number of fragments supplied to the read.
func (r *DenseReader) FragmentNum() int { return len(r.frags) }

// FragmentURIs returns the URIs of the supplied fragments, oldest first.
func (r *DenseReader) FragmentURIs() []string {
	uris := make([]string, len(r.frags))
	for i, m := range r.frags {
		uris[i] = m.URI
	}
	return uris
}

// LastFragmentURI returns the URI of the newest supplied fragment.
func (r *DenseReader) LastFragmentURI() string {
	if len(r.frags) == 0 {
		return ""
	}
	return r.frags[len(r.frags)-1].URI
}

// Incomplete reports whether the last Read ran out of buffer capacity before
// exhausting the region.
func (r *DenseReader) Incomplete() bool { return r.incomplete }

// NoResults reports whether the read has produced no cells so far.
func (r *DenseReader) NoResults() bool { return r.produced == 0 }

// Init resolves the request region, selects the overlapping fragments and
// resets the resume cursor. Fragment data is fetched lazily on first Read.
func (r *DenseReader) Init() error {
	if err := r.initCommon(); err != nil {
		return err
	}

	r.overlap = r.overlap[:0]
	for _, m := range r.frags {
		box := cellorder.Box(m.Subarray)
		if _, ok := box.Intersect(r.subarray); ok {
			r.overlap = append(r.overlap, &fragView{meta: m, box: box})
		}
	}

	r.cursor = cellorder.NewCursor(r.subarray, r.layout == schema.LayoutColMajor)
	r.incomplete = false
	r.produced = 0

	return nil
}

// Read fills the bound buffers with the next slice of the result, in layout
// order. If even a single cell does not fit, Read returns with zero cells
// produced and the query stays incomplete; the caller must grow or drain its
// buffers before retrying.
func (r *DenseReader) Read(ctx context.Context) error {
	if err := r.fetch(ctx); err != nil {
		return err
	}

	type varState struct {
		buf  *query.VarBuffer
		offN uint64
		data uint64
	}

	fixedN := make(map[string]uint64, len(r.bufs))
	varN := make(map[string]*varState, len(r.varBufs))
	for name := range r.varBufs {
		varN[name] = &varState{buf: r.varBufs[name]}
	}

	coords := make([]int64, r.subarray.NDim())
	var cells uint64

cellLoop:
	for r.cursor.Peek(coords) {
		domainPos := cellorder.LinearIndex(r.domain, coords, false)
		src := r.resolve(coords, domainPos)

		// Fit check before any copy, so a cell is produced whole or not
		// at all.
		for name, buf := range r.bufs {
			if fixedN[name]+uint64(r.sch.Attribute(name).CellSize()) > uint64(len(buf.Data)) {
				break cellLoop
			}
		}
		for name, vs := range varN {
			val := r.varValue(src, name, coords)
			if vs.offN+1 > uint64(len(vs.buf.Offsets)) ||
				vs.data+uint64(len(val)) > uint64(len(vs.buf.Data)) {
				break cellLoop
			}
		}

		for name, buf := range r.bufs {
			size := uint64(r.sch.Attribute(name).CellSize())
			dst := buf.Data[fixedN[name] : fixedN[name]+size]

			if val := r.fixedValue(src, name, size, coords); val != nil {
				copy(dst, val)
			} else {
				clear(dst)
			}
			fixedN[name] += size
		}
		for name, vs := range varN {
			val := r.varValue(src, name, coords)
			vs.buf.Offsets[vs.offN] = vs.data
			copy(vs.buf.Data[vs.data:], val)
			vs.offN++
			vs.data += uint64(len(val))
		}

		r.cursor.Advance()
		cells++
	}

	for name, buf := range r.bufs {
		buf.SetResultSize(fixedN[name])
	}
	for _, vs := range varN {
		vs.buf.SetResultSizes(vs.offN, vs.data)
	}

	r.produced += cells
	r.incomplete = !r.cursor.Done()

	return nil
}

// resolve returns the newest overlapping fragment that wrote the cell, or
// nil when no fragment covers it.
func (r *DenseReader) resolve(coords []int64, domainPos uint64) *fragView {
	for i := len(r.overlap) - 1; i >= 0; i-- {
		fv := r.overlap[i]
		if fv.box.Contains(coords) && fv.meta.Written.Contains(domainPos) {
			return fv
		}
	}
	return nil
}

// fixedValue returns the stored bytes of a fixed-size cell, or nil for fill.
func (r *DenseReader) fixedValue(fv *fragView, name string, size uint64, coords []int64) []byte {
	if fv == nil {
		return nil
	}

	idx := cellorder.LinearIndex(fv.box, coords, false)

	return fv.data[name][idx*size : (idx+1)*size]
}

// varValue returns the stored bytes of a var-length cell, or nil for fill.
func (r *DenseReader) varValue(fv *fragView, name string, coords []int64) []byte {
	if fv == nil {
		return nil
	}

	idx := cellorder.LinearIndex(fv.box, coords, false)

	offs := fv.offs[name]
	data := fv.data[name]

	start := offs[idx]
	end := uint64(len(data))
	if idx+1 < uint64(len(offs)) {
		end = offs[idx+1]
	}

	return data[start:end]
}

// fetch loads and decodes the bound attributes of every overlapping fragment,
// once per Init, fragments in parallel. Decompression memory is bounded by
// the resource controller for the duration of each load.
func (r *DenseReader) fetch(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	for _, fv := range r.overlap {
		if fv.data != nil {
			continue
		}
		fv := fv

		g.Go(func() error {
			data := make(map[string][]byte)
			offs := make(map[string][]uint64)

			load := func(a *schema.Attribute) error {
				rec, ok := fv.meta.Attr(a.Name)
				if !ok {
					return fmt.Errorf("fragment %s has no attribute %q", fv.meta.URI, a.Name)
				}

				est := int64(rec.DataSize + rec.OffsetsSize)
				if err := r.sm.Resources().AcquireMemory(gctx, est); err != nil {
					return err
				}
				defer r.sm.Resources().ReleaseMemory(est)

				raw, err := r.readBlocks(gctx, fv.meta.URI, fragment.DataBlobName(a.Name), a.Compressor)
				if err != nil {
					return err
				}
				data[a.Name] = raw

				if a.Var {
					encoded, err := r.readBlocks(gctx, fv.meta.URI, fragment.OffsetsBlobName(a.Name), a.Compressor)
					if err != nil {
						return err
					}
					offs[a.Name] = decodeOffsets(encoded)
				} else if want := fv.box.NumCells() * uint64(a.CellSize()); uint64(len(raw)) != want {
					return fmt.Errorf("fragment %s attribute %q holds %d bytes, want %d",
						fv.meta.URI, a.Name, len(raw), want)
				}

				return nil
			}

			for name := range r.bufs {
				if err := load(r.sch.Attribute(name)); err != nil {
					return err
				}
			}
			for name := range r.varBufs {
				if err := load(r.sch.Attribute(name)); err != nil {
					return err
				}
			}

			fv.data, fv.offs = data, offs
			return nil
		})
	}

	return g.Wait()
}

func decodeOffsets(encoded []byte) []uint64 {
	out := make([]uint64, len(encoded)/8)
	for i := range out {
		out[i] = binary.LittleEndian.Uint64(encoded[8*i:])
	}
	return out
}
