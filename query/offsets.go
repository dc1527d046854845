package query

// ValidateOffsets checks the internal invariants of a variable-length offset
// buffer against the size of its value buffer: offsets must be strictly
// ascending and every offset must fall inside the value buffer. An empty
// offset buffer is trivially valid.
//
// The check is a single pass that fails at the first violation. No trailing
// sentinel offset is expected: the final element implicitly extends to the
// end of the value buffer.
//
// Note that strict ordering forbids zero-length elements anywhere but the
// final position. This matches the write-side encoding, where element length
// is the distance to the next offset.
func ValidateOffsets(offsets []uint64, valueSize uint64) error {
	if len(offsets) == 0 {
		return nil
	}
	prev := offsets[0]
	if prev >= valueSize {
		return &OffsetRangeError{Offset: prev, BufferSize: valueSize}
	}
	for i := 1; i < len(offsets); i++ {
		off := offsets[i]
		if off <= prev {
			return &OffsetOrderError{Index: i, Offset: off, Prev: prev}
		}
		if off >= valueSize {
			return &OffsetRangeError{Offset: off, BufferSize: valueSize}
		}
		prev = off
	}
	return nil
}
