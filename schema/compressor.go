package schema

import (
	"encoding/json"
	"fmt"
)

// Compressor selects the block compression applied to attribute tiles.
type Compressor uint8

const (
	// NoCompression stores tiles verbatim.
	NoCompression Compressor = iota
	// LZ4 favors speed over ratio.
	LZ4
	// Zstd favors ratio over speed.
	Zstd
)

var compressorNames = map[Compressor]string{
	NoCompression: "none",
	LZ4:           "lz4",
	Zstd:          "zstd",
}

func (c Compressor) String() string {
	if s, ok := compressorNames[c]; ok {
		return s
	}
	return fmt.Sprintf("compressor(%d)", uint8(c))
}

// MarshalJSON encodes the compressor as its stable name.
func (c Compressor) MarshalJSON() ([]byte, error) {
	if _, ok := compressorNames[c]; !ok {
		return nil, fmt.Errorf("schema: cannot marshal unknown compressor %d", uint8(c))
	}
	return json.Marshal(c.String())
}

// UnmarshalJSON decodes the compressor from its stable name.
func (c *Compressor) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for k, v := range compressorNames {
		if v == s {
			*c = k
			return nil
		}
	}
	return fmt.Errorf("schema: unknown compressor %q", s)
}
