// Package cellorder implements dense cell linearization: mapping between
// n-dimensional coordinates and positions in row-major or column-major order,
// and resumable iteration over bounding boxes.
//
// All math runs on int64 coordinates; the engine widens narrower integer
// domains once at initialization.
package cellorder

// Box is an n-dimensional bounding box: two values per dimension as
// consecutive inclusive [lo, hi] pairs.
type Box []int64

// NDim returns the number of dimensions.
func (b Box) NDim() int { return len(b) / 2 }

// Lo returns the lower bound of dimension i.
func (b Box) Lo(i int) int64 { return b[2*i] }

// Hi returns the upper bound of dimension i.
func (b Box) Hi(i int) int64 { return b[2*i+1] }

// Extent returns the number of coordinates along dimension i.
func (b Box) Extent(i int) int64 { return b.Hi(i) - b.Lo(i) + 1 }

// NumCells returns the total number of cells in the box.
func (b Box) NumCells() uint64 {
	n := uint64(1)
	for i := 0; i < b.NDim(); i++ {
		n *= uint64(b.Extent(i))
	}
	return n
}

// Contains reports whether the coordinates fall inside the box.
func (b Box) Contains(coords []int64) bool {
	for i := 0; i < b.NDim(); i++ {
		if coords[i] < b.Lo(i) || coords[i] > b.Hi(i) {
			return false
		}
	}
	return true
}

// Intersect returns the overlap of the two boxes, or false when they are
// disjoint in any dimension.
func (b Box) Intersect(other Box) (Box, bool) {
	out := make(Box, len(b))
	for i := 0; i < b.NDim(); i++ {
		lo, hi := max(b.Lo(i), other.Lo(i)), min(b.Hi(i), other.Hi(i))
		if lo > hi {
			return nil, false
		}
		out[2*i], out[2*i+1] = lo, hi
	}
	return out, true
}

// Clone returns a copy of the box.
func (b Box) Clone() Box {
	out := make(Box, len(b))
	copy(out, b)
	return out
}

// LinearIndex returns the position of coords within box, in row-major order
// (last dimension fastest) or column-major order (first dimension fastest).
// The coordinates must lie inside the box.
func LinearIndex(box Box, coords []int64, colMajor bool) uint64 {
	nd := box.NDim()
	idx := uint64(0)
	if colMajor {
		for i := nd - 1; i >= 0; i-- {
			idx = idx*uint64(box.Extent(i)) + uint64(coords[i]-box.Lo(i))
		}
	} else {
		for i := 0; i < nd; i++ {
			idx = idx*uint64(box.Extent(i)) + uint64(coords[i]-box.Lo(i))
		}
	}
	return idx
}

// Coords fills coords with the coordinates at position idx within box, in
// the given order. It is the inverse of LinearIndex.
func Coords(box Box, idx uint64, colMajor bool, coords []int64) {
	nd := box.NDim()
	if colMajor {
		for i := 0; i < nd; i++ {
			ext := uint64(box.Extent(i))
			coords[i] = box.Lo(i) + int64(idx%ext)
			idx /= ext
		}
	} else {
		for i := nd - 1; i >= 0; i-- {
			ext := uint64(box.Extent(i))
			coords[i] = box.Lo(i) + int64(idx%ext)
			idx /= ext
		}
	}
}

// Runs calls fn once per maximal run of cells of box that are contiguous in
// the row-major order of domain. start and end are domain-row-major positions
// with end exclusive. box must lie inside domain.
func Runs(domain, box Box, fn func(start, end uint64)) {
	nd := box.NDim()
	rowLen := uint64(box.Extent(nd - 1))
	coords := make([]int64, nd)
	for i := range coords {
		coords[i] = box.Lo(i)
	}
	coords[nd-1] = box.Lo(nd - 1)

	for {
		start := LinearIndex(domain, coords, false)
		fn(start, start+rowLen)

		// Advance the prefix (all but the last dimension), row-major.
		i := nd - 2
		for ; i >= 0; i-- {
			coords[i]++
			if coords[i] <= box.Hi(i) {
				break
			}
			coords[i] = box.Lo(i)
		}
		if i < 0 {
			return
		}
	}
}

// Cursor iterates the cells of a box in row-major or column-major order and
// supports resuming: its position survives across calls, which is how a
// reader continues an incomplete request without replay or gaps.
type Cursor struct {
	box      Box
	colMajor bool
	pos      uint64
	total    uint64
}

// NewCursor creates a cursor at position 0.
func NewCursor(box Box, colMajor bool) *Cursor {
	return &Cursor{box: box, colMajor: colMajor, total: box.NumCells()}
}

// Pos returns the current position in layout order.
func (c *Cursor) Pos() uint64 { return c.pos }

// Remaining returns the number of cells not yet produced.
func (c *Cursor) Remaining() uint64 { return c.total - c.pos }

// Done reports whether all cells have been produced.
func (c *Cursor) Done() bool { return c.pos >= c.total }

// Peek fills coords with the next cell's coordinates without advancing. It
// returns false when the cursor is exhausted.
func (c *Cursor) Peek(coords []int64) bool {
	if c.pos >= c.total {
		return false
	}
	Coords(c.box, c.pos, c.colMajor, coords)
	return true
}

// Advance moves the cursor past the cell last returned by Peek.
func (c *Cursor) Advance() { c.pos++ }

// Next fills coords with the next cell's coordinates and advances. It
// returns false when the cursor is exhausted.
func (c *Cursor) Next(coords []int64) bool {
	if c.pos >= c.total {
		return false
	}
	Coords(c.box, c.pos, c.colMajor, coords)
	c.pos++
	return true
}

// Reset moves the cursor back to position 0.
func (c *Cursor) Reset() { c.pos = 0 }
