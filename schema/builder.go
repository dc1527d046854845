package schema

import (
	"errors"
	"fmt"
)

// Builder assembles an ArraySchema step by step. Errors are collected and
// reported on Build, so calls can be chained.
//
// Example:
//
//	sch, err := schema.NewBuilder(schema.Int64).
//	    Dimension("rows", int64(1), int64(100)).
//	    Dimension("cols", int64(1), int64(100)).
//	    Attribute("a", schema.Int32).
//	    CompressedAttribute("b", schema.Float64, schema.Zstd).
//	    VarAttribute("labels", schema.Char, schema.LZ4).
//	    Build()
type Builder struct {
	domain *Domain
	attrs  []*Attribute
	errs   []error
}

// NewBuilder starts a schema with the given domain coordinate datatype.
func NewBuilder(dtype Datatype) *Builder {
	b := &Builder{}
	dom, err := NewDomain(dtype)
	if err != nil {
		b.errs = append(b.errs, err)
		return b
	}
	b.domain = dom
	return b
}

// Dimension adds a domain dimension with inclusive bounds [lo, hi].
func (b *Builder) Dimension(name string, lo, hi any) *Builder {
	if b.domain == nil {
		return b
	}
	if err := b.domain.AddDimension(name, lo, hi); err != nil {
		b.errs = append(b.errs, err)
	}
	return b
}

// Attribute adds a fixed-size, uncompressed attribute.
func (b *Builder) Attribute(name string, dtype Datatype) *Builder {
	return b.add(&Attribute{Name: name, Type: dtype})
}

// CompressedAttribute adds a fixed-size attribute with the given compressor.
func (b *Builder) CompressedAttribute(name string, dtype Datatype, c Compressor) *Builder {
	return b.add(&Attribute{Name: name, Type: dtype, Compressor: c})
}

// VarAttribute adds a variable-length attribute with the given compressor.
func (b *Builder) VarAttribute(name string, dtype Datatype, c Compressor) *Builder {
	return b.add(&Attribute{Name: name, Type: dtype, Var: true, Compressor: c})
}

func (b *Builder) add(a *Attribute) *Builder {
	if a.Name == "" {
		b.errs = append(b.errs, errors.New("schema: attribute name must not be empty"))
		return b
	}
	if a.Type.Size() == 0 {
		b.errs = append(b.errs, fmt.Errorf("schema: attribute %q has invalid datatype", a.Name))
		return b
	}
	for _, prev := range b.attrs {
		if prev.Name == a.Name {
			b.errs = append(b.errs, fmt.Errorf("schema: duplicate attribute %q", a.Name))
			return b
		}
	}
	b.attrs = append(b.attrs, a)
	return b
}

// Build validates and returns the schema.
func (b *Builder) Build() (*ArraySchema, error) {
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}
	if b.domain == nil || b.domain.NDim() == 0 {
		return nil, errors.New("schema: at least one dimension is required")
	}
	if len(b.attrs) == 0 {
		return nil, errors.New("schema: at least one attribute is required")
	}
	s := &ArraySchema{
		domain: b.domain,
		attrs:  b.attrs,
		byName: make(map[string]*Attribute, len(b.attrs)),
	}
	for _, a := range b.attrs {
		s.byName[a.Name] = a
	}
	return s, nil
}
