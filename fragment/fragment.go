// Package fragment describes the immutable units an array is written in. A
// fragment is a directory of attribute blobs plus a metadata document; the
// metadata blob is written last and its presence is the commit point that
// makes the fragment visible to readers.
package fragment

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// MetaFileName is the name of the metadata blob inside a fragment directory.
const MetaFileName = "__fragment_meta.json"

// AttrBlob records the blobs a single attribute was written to, with their
// on-disk (compressed) sizes for validation on load.
type AttrBlob struct {
	Name        string `json:"name"`
	DataSize    uint64 `json:"dataSize"`
	OffsetsSize uint64 `json:"offsetsSize,omitempty"`
}

// Meta is the metadata document of a single fragment.
type Meta struct {
	URI       string     `json:"uri"`
	Timestamp int64      `json:"timestamp"` // unix nanoseconds of creation
	Subarray  []int64    `json:"subarray"`  // written region, [lo, hi] pairs
	CellNum   uint64     `json:"cellNum"`
	Attrs     []AttrBlob `json:"attrs"`
	Written   *CellSet   `json:"written"`
}

// Attr returns the blob record for the named attribute.
func (m *Meta) Attr(name string) (AttrBlob, bool) {
	for _, a := range m.Attrs {
		if a.Name == name {
			return a, true
		}
	}

	return AttrBlob{}, false
}

// DataBlobName returns the name of an attribute's value blob within the
// fragment directory.
func DataBlobName(attr string) string { return fmt.Sprintf("a_%s.data", attr) }

// OffsetsBlobName returns the name of a var-length attribute's offsets blob.
func OffsetsBlobName(attr string) string { return fmt.Sprintf("a_%s.offsets", attr) }

// NewURI returns a fresh fragment directory name. Names sort by creation
// time, with a random suffix to keep concurrent writers apart.
func NewURI() string {
	var buf [4]byte
	_, _ = rand.Read(buf[:])

	return fmt.Sprintf("__%d_%s", time.Now().UnixNano(), hex.EncodeToString(buf[:]))
}
