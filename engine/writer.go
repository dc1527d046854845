package engine

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/gridgo/fragment"
	"github.com/hupe1980/gridgo/internal/cellorder"
	"github.com/hupe1980/gridgo/query"
	"github.com/hupe1980/gridgo/schema"
)

// DenseWriter persists one rectangular region as a new immutable fragment.
// Writes are single-shot: a Write call stages every attribute blob and then
// commits the fragment by writing its metadata document last.
type DenseWriter struct {
	base

	fragURI string
	cells   uint64
}

var _ query.Writer = (*DenseWriter)(nil)

// NewDenseWriter creates a writer targeting the array at arrayURI.
func NewDenseWriter(arrayURI string, opts ...Option) *DenseWriter {
	return &DenseWriter{base: newBase(arrayURI, opts...)}
}

// SetFragmentURI overrides the generated fragment directory name.
func (w *DenseWriter) SetFragmentURI(uri string) { w.fragURI = uri }

// FragmentURI returns the fragment directory name the write targets.
func (w *DenseWriter) FragmentURI() string { return w.fragURI }

// Init validates the configuration and checks that every bound buffer covers
// the full write region.
func (w *DenseWriter) Init() error {
	if err := w.initCommon(); err != nil {
		return err
	}

	if w.fragURI == "" {
		w.fragURI = fragment.NewURI()
	}

	w.cells = w.subarray.NumCells()

	for name, buf := range w.bufs {
		need := w.cells * uint64(w.sch.Attribute(name).CellSize())
		if uint64(len(buf.Data)) < need {
			return fmt.Errorf("attribute %q buffer holds %d bytes, write region needs %d",
				name, len(buf.Data), need)
		}
	}
	for name, vb := range w.varBufs {
		if uint64(len(vb.Offsets)) != w.cells {
			return fmt.Errorf("attribute %q has %d offsets, write region has %d cells",
				name, len(vb.Offsets), w.cells)
		}
	}

	return nil
}

// Write persists the bound buffers. Attribute blobs are written in parallel;
// the fragment metadata document goes last and commits the fragment.
func (w *DenseWriter) Write(ctx context.Context) error {
	start := time.Now()
	colMajor := w.layout == schema.LayoutColMajor

	// One blob record slot per bound attribute, in schema order so the
	// metadata is deterministic.
	var names []string
	for _, a := range w.sch.Attributes() {
		if _, ok := w.bufs[a.Name]; ok {
			names = append(names, a.Name)
		} else if _, ok := w.varBufs[a.Name]; ok {
			names = append(names, a.Name)
		}
	}

	blobs := make([]fragment.AttrBlob, len(names))

	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		i, name := i, name
		a := w.sch.Attribute(name)

		g.Go(func() error {
			var rec fragment.AttrBlob
			rec.Name = name

			if a.Var {
				offsets, packed := w.canonicalVar(w.varBufs[name], colMajor)

				n, err := w.writeBlocks(gctx, w.fragURI, fragment.OffsetsBlobName(name), offsets, a.Compressor)
				if err != nil {
					return err
				}
				rec.OffsetsSize = n

				if rec.DataSize, err = w.writeBlocks(gctx, w.fragURI, fragment.DataBlobName(name), packed, a.Compressor); err != nil {
					return err
				}
			} else {
				raw := w.bufs[name].Data[:w.cells*uint64(a.CellSize())]
				if colMajor {
					raw = transposeFixed(w.subarray, raw, a.CellSize())
				}

				var err error
				if rec.DataSize, err = w.writeBlocks(gctx, w.fragURI, fragment.DataBlobName(name), raw, a.Compressor); err != nil {
					return err
				}
			}

			blobs[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	written := fragment.NewCellSet()
	cellorder.Runs(w.domain, w.subarray, written.AddRange)

	meta := &fragment.Meta{
		URI:       w.fragURI,
		Timestamp: time.Now().UnixNano(),
		Subarray:  w.subarray,
		CellNum:   w.cells,
		Attrs:     blobs,
		Written:   written,
	}

	if err := w.sm.Fragments().Save(ctx, w.arrayURI, meta); err != nil {
		return err
	}

	for name, buf := range w.bufs {
		buf.SetResultSize(w.cells * uint64(w.sch.Attribute(name).CellSize()))
	}
	for _, vb := range w.varBufs {
		vb.SetResultSizes(w.cells, uint64(len(vb.Data))-vb.Offsets[0])
	}

	w.logger.Info("fragment written", slog.String("array", w.arrayURI),
		slog.String("fragment", w.fragURI), slog.Uint64("cells", w.cells),
		slog.Duration("took", time.Since(start)))

	return nil
}

// Finalize is a no-op: Write commits the fragment itself.
func (w *DenseWriter) Finalize(context.Context) error { return nil }

// canonicalVar reorders a var-length buffer into row-major order and rebases
// its offsets to start at zero. Offsets are encoded little-endian for the
// offsets blob.
func (w *DenseWriter) canonicalVar(vb *query.VarBuffer, colMajor bool) ([]byte, []byte) {
	offs := vb.Offsets[:w.cells]

	cellVal := func(i uint64) []byte {
		start := offs[i]
		end := uint64(len(vb.Data))
		if i+1 < w.cells {
			end = offs[i+1]
		}
		return vb.Data[start:end]
	}

	packed := make([]byte, 0, len(vb.Data))
	encoded := make([]byte, 8*w.cells)
	coords := make([]int64, w.subarray.NDim())

	for p := uint64(0); p < w.cells; p++ {
		src := p
		if colMajor {
			cellorder.Coords(w.subarray, p, false, coords)
			src = cellorder.LinearIndex(w.subarray, coords, true)
		}

		binary.LittleEndian.PutUint64(encoded[8*p:], uint64(len(packed)))
		packed = append(packed, cellVal(src)...)
	}

	return encoded, packed
}

// transposeFixed reorders column-major cell data into row-major order.
func transposeFixed(region cellorder.Box, data []byte, cellSize int) []byte {
	out := make([]byte, len(data))
	coords := make([]int64, region.NDim())
	cur := cellorder.NewCursor(region, true)

	for i := 0; cur.Next(coords); i++ {
		dst := cellorder.LinearIndex(region, coords, false)
		copy(out[dst*uint64(cellSize):], data[i*cellSize:(i+1)*cellSize])
	}

	return out
}
