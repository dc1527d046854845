package fragment

import (
	"encoding/base64"
	"encoding/json"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
)

// CellSet records which cells of an array a fragment has written, keyed by
// the cell's row-major position within the full domain. Readers consult it
// to overlay fragments newest first.
type CellSet struct {
	bm *roaring64.Bitmap
}

// NewCellSet returns an empty cell set.
func NewCellSet() *CellSet {
	return &CellSet{bm: roaring64.New()}
}

// AddRange marks the half-open position range [start, end) as written.
func (s *CellSet) AddRange(start, end uint64) {
	s.bm.AddRange(start, end)
}

// Contains reports whether the cell at pos has been written.
func (s *CellSet) Contains(pos uint64) bool {
	return s.bm.Contains(pos)
}

// Cardinality returns the number of written cells.
func (s *CellSet) Cardinality() uint64 {
	return s.bm.GetCardinality()
}

// MarshalJSON encodes the set as a base64 string of the portable roaring
// serialization.
func (s *CellSet) MarshalJSON() ([]byte, error) {
	raw, err := s.bm.ToBytes()
	if err != nil {
		return nil, err
	}

	return json.Marshal(base64.StdEncoding.EncodeToString(raw))
}

// UnmarshalJSON decodes a set produced by MarshalJSON.
func (s *CellSet) UnmarshalJSON(data []byte) error {
	var enc string
	if err := json.Unmarshal(data, &enc); err != nil {
		return err
	}

	raw, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return err
	}

	bm := roaring64.New()
	if err := bm.UnmarshalBinary(raw); err != nil {
		return err
	}

	s.bm = bm

	return nil
}
