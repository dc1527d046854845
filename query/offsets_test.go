package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateOffsetsEmpty(t *testing.T) {
	assert.NoError(t, ValidateOffsets(nil, 0))
	assert.NoError(t, ValidateOffsets([]uint64{}, 100))
}

func TestValidateOffsetsValid(t *testing.T) {
	assert.NoError(t, ValidateOffsets([]uint64{0}, 1))
	assert.NoError(t, ValidateOffsets([]uint64{0, 4, 9}, 10))
	assert.NoError(t, ValidateOffsets([]uint64{3, 4, 5}, 6))
}

func TestValidateOffsetsOutOfRange(t *testing.T) {
	err := ValidateOffsets([]uint64{0, 10}, 10)
	require.ErrorIs(t, err, ErrValidation)

	var re *OffsetRangeError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, uint64(10), re.Offset)
	assert.Equal(t, uint64(10), re.BufferSize)
	assert.Equal(t, "invalid offsets: offset 10 specified for buffer of size 10", err.Error())
}

func TestValidateOffsetsFirstOutOfRange(t *testing.T) {
	var re *OffsetRangeError
	require.ErrorAs(t, ValidateOffsets([]uint64{5}, 5), &re)
	assert.Equal(t, uint64(5), re.Offset)
}

func TestValidateOffsetsNotAscending(t *testing.T) {
	var oe *OffsetOrderError

	require.ErrorAs(t, ValidateOffsets([]uint64{4, 2}, 10), &oe)
	assert.Equal(t, 1, oe.Index)
	assert.Equal(t, uint64(2), oe.Offset)
	assert.Equal(t, uint64(4), oe.Prev)

	// Equal offsets are rejected too: ordering is strict.
	require.ErrorAs(t, ValidateOffsets([]uint64{0, 3, 3}, 10), &oe)
	assert.Equal(t, 2, oe.Index)
}

func TestValidateOffsetsFailsAtFirstViolation(t *testing.T) {
	// Index 1 breaks ordering before index 2 breaks the range.
	var oe *OffsetOrderError
	require.ErrorAs(t, ValidateOffsets([]uint64{4, 2, 99}, 10), &oe)
	assert.Equal(t, 1, oe.Index)
}
