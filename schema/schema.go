// Package schema defines array schemas: the coordinate domain, the attribute
// set, and the enumerations (datatype, layout, compressor) shared across the
// engine. Schemas are immutable once built and serialize to JSON through the
// codec package.
package schema

import (
	"encoding/json"
	"fmt"
)

// Attribute describes one named value stored per cell.
type Attribute struct {
	// Name is the attribute name, unique within a schema.
	Name string `json:"name"`

	// Type is the cell datatype. For variable-length attributes it is the
	// element type of the packed value buffer.
	Type Datatype `json:"type"`

	// Var marks the attribute as variable-length: cells are encoded as an
	// offset buffer into a packed value buffer.
	Var bool `json:"var,omitempty"`

	// Compressor is applied to the attribute's tiles on write.
	Compressor Compressor `json:"compressor"`
}

// CellSize returns the fixed size of one cell in bytes, or 0 for
// variable-length attributes.
func (a *Attribute) CellSize() int {
	if a.Var {
		return 0
	}
	return a.Type.Size()
}

// ArraySchema describes the shape and contents of an array. It is owned by
// the caller and must outlive any Query that references it.
type ArraySchema struct {
	domain *Domain
	attrs  []*Attribute
	byName map[string]*Attribute
}

// Domain returns the array's coordinate domain.
func (s *ArraySchema) Domain() *Domain { return s.domain }

// Attributes returns the attributes in declaration order.
func (s *ArraySchema) Attributes() []*Attribute { return s.attrs }

// Attribute returns the attribute with the given name, or nil.
func (s *ArraySchema) Attribute(name string) *Attribute { return s.byName[name] }

type schemaJSON struct {
	Version    int          `json:"version"`
	Domain     *Domain      `json:"domain"`
	Attributes []*Attribute `json:"attributes"`
}

// Version is the schema serialization format version.
const Version = 1

// MarshalJSON encodes the schema.
func (s *ArraySchema) MarshalJSON() ([]byte, error) {
	return json.Marshal(schemaJSON{Version: Version, Domain: s.domain, Attributes: s.attrs})
}

// UnmarshalJSON decodes and revalidates the schema.
func (s *ArraySchema) UnmarshalJSON(data []byte) error {
	var in schemaJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	if in.Version != Version {
		return fmt.Errorf("schema: unsupported schema version %d", in.Version)
	}
	b := NewBuilder(in.Domain.Type())
	for _, dim := range in.Domain.Dimensions() {
		lo, hi := dim.Bounds()
		b.Dimension(dim.Name(), lo, hi)
	}
	for _, a := range in.Attributes {
		b.add(a)
	}
	ns, err := b.Build()
	if err != nil {
		return err
	}
	*s = *ns
	return nil
}
