package cellorder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBox(t *testing.T) {
	b := Box{1, 4, 10, 11}

	assert.Equal(t, 2, b.NDim())
	assert.Equal(t, int64(4), b.Extent(0))
	assert.Equal(t, int64(2), b.Extent(1))
	assert.Equal(t, uint64(8), b.NumCells())

	assert.True(t, b.Contains([]int64{1, 10}))
	assert.True(t, b.Contains([]int64{4, 11}))
	assert.False(t, b.Contains([]int64{5, 10}))
	assert.False(t, b.Contains([]int64{2, 9}))
}

func TestBoxIntersect(t *testing.T) {
	a := Box{1, 4, 1, 4}

	got, ok := a.Intersect(Box{3, 6, 0, 2})
	require.True(t, ok)
	assert.Equal(t, Box{3, 4, 1, 2}, got)

	_, ok = a.Intersect(Box{5, 6, 1, 4})
	assert.False(t, ok)
}

func TestLinearIndexRoundTrip(t *testing.T) {
	box := Box{2, 4, -1, 1, 0, 1}

	for _, colMajor := range []bool{false, true} {
		seen := make(map[uint64]bool)
		coords := make([]int64, 3)

		for idx := uint64(0); idx < box.NumCells(); idx++ {
			Coords(box, idx, colMajor, coords)
			require.True(t, box.Contains(coords))

			back := LinearIndex(box, coords, colMajor)
			require.Equal(t, idx, back)
			seen[back] = true
		}

		assert.Len(t, seen, int(box.NumCells()))
	}
}

func TestLinearIndexOrder(t *testing.T) {
	box := Box{0, 1, 0, 2}

	// Row major: last dimension varies fastest.
	assert.Equal(t, uint64(0), LinearIndex(box, []int64{0, 0}, false))
	assert.Equal(t, uint64(1), LinearIndex(box, []int64{0, 1}, false))
	assert.Equal(t, uint64(3), LinearIndex(box, []int64{1, 0}, false))

	// Column major: first dimension varies fastest.
	assert.Equal(t, uint64(0), LinearIndex(box, []int64{0, 0}, true))
	assert.Equal(t, uint64(1), LinearIndex(box, []int64{1, 0}, true))
	assert.Equal(t, uint64(2), LinearIndex(box, []int64{0, 1}, true))
}

func TestRuns(t *testing.T) {
	domain := Box{0, 3, 0, 3}
	box := Box{1, 2, 1, 2}

	var runs [][2]uint64
	Runs(domain, box, func(start, end uint64) {
		runs = append(runs, [2]uint64{start, end})
	})

	// Rows 1 and 2, columns 1-2 of a 4x4 grid.
	assert.Equal(t, [][2]uint64{{5, 7}, {9, 11}}, runs)
}

func TestCursorResume(t *testing.T) {
	box := Box{0, 1, 0, 2}
	cur := NewCursor(box, false)

	coords := make([]int64, 2)
	var first [][]int64
	for i := 0; i < 4; i++ {
		require.True(t, cur.Next(coords))
		first = append(first, append([]int64(nil), coords...))
	}

	assert.Equal(t, uint64(4), cur.Pos())
	assert.Equal(t, uint64(2), cur.Remaining())
	assert.False(t, cur.Done())

	// Resuming picks up exactly where the previous pass stopped.
	require.True(t, cur.Next(coords))
	assert.Equal(t, []int64{1, 1}, coords)
	require.True(t, cur.Next(coords))
	assert.Equal(t, []int64{1, 2}, coords)

	assert.False(t, cur.Next(coords))
	assert.True(t, cur.Done())

	cur.Reset()
	require.True(t, cur.Next(coords))
	assert.Equal(t, first[0], coords)
}
