package query

// Buffer binds caller-owned memory to a fixed-size attribute. The query and
// engine hold a non-owning reference: the caller must not mutate, resize, or
// free the slice while a Process call that touches it is outstanding.
type Buffer struct {
	// Data is the caller-owned memory. Its length bounds how much the engine
	// may read (writes) or produce (reads) per Process call.
	Data []byte

	n uint64
}

// ResultSize returns the number of bytes the engine produced into (reads) or
// consumed from (writes) Data during the last Process call.
func (b *Buffer) ResultSize() uint64 { return b.n }

// SetResultSize records the byte count of the last Process call. It is called
// by engine implementations, not by users.
func (b *Buffer) SetResultSize(n uint64) { b.n = n }

// VarBuffer binds caller-owned memory to a variable-length attribute: a
// buffer of start offsets into a packed value buffer. The element length is
// implicit: next offset minus offset, and value-buffer size minus the last
// offset for the final element.
type VarBuffer struct {
	// Offsets are byte positions into Data, strictly ascending.
	Offsets []uint64

	// Data is the packed value buffer.
	Data []byte

	offN  uint64
	dataN uint64
}

// ResultSizes returns the number of offsets and the number of value bytes the
// engine produced (reads) or consumed (writes) during the last Process call.
func (b *VarBuffer) ResultSizes() (offsets, dataBytes uint64) { return b.offN, b.dataN }

// SetResultSizes records the counts for the last Process call. It is called
// by engine implementations, not by users.
func (b *VarBuffer) SetResultSizes(offsets, dataBytes uint64) {
	b.offN, b.dataN = offsets, dataBytes
}
