package schema

import (
	"encoding/json"
	"fmt"
)

// Dimension is one axis of the array domain.
// Its bounds carry the exact Go value of the domain datatype.
type Dimension struct {
	name   string
	lo, hi any
}

// Name returns the dimension name.
func (d *Dimension) Name() string { return d.name }

// Bounds returns the inclusive [lo, hi] range of the dimension.
// The dynamic type of both values matches the domain datatype.
func (d *Dimension) Bounds() (lo, hi any) { return d.lo, d.hi }

// Domain is the coordinate space of an array: an ordered list of dimensions
// sharing a single coordinate datatype.
type Domain struct {
	dtype Datatype
	dims  []*Dimension
}

// NewDomain creates a domain with the given coordinate datatype.
// Dimensions are added via AddDimension.
func NewDomain(dtype Datatype) (*Domain, error) {
	if !dtype.ValidDomainType() {
		return nil, fmt.Errorf("schema: datatype %s is not a valid domain type", dtype)
	}
	return &Domain{dtype: dtype}, nil
}

// AddDimension appends a dimension. lo and hi must hold the exact Go type of
// the domain datatype and satisfy lo <= hi.
func (d *Domain) AddDimension(name string, lo, hi any) error {
	if name == "" {
		return fmt.Errorf("schema: dimension name must not be empty")
	}
	for _, dim := range d.dims {
		if dim.name == name {
			return fmt.Errorf("schema: duplicate dimension %q", name)
		}
	}
	if !scalarType(d.dtype, lo) || !scalarType(d.dtype, hi) {
		return fmt.Errorf("schema: dimension %q bounds must be %s values, got %T and %T",
			name, d.dtype, lo, hi)
	}
	if scalarGreater(d.dtype, lo, hi) {
		return fmt.Errorf("schema: dimension %q lower bound exceeds upper bound", name)
	}
	d.dims = append(d.dims, &Dimension{name: name, lo: lo, hi: hi})
	return nil
}

// Type returns the coordinate datatype shared by all dimensions.
func (d *Domain) Type() Datatype { return d.dtype }

// NDim returns the number of dimensions.
func (d *Domain) NDim() int { return len(d.dims) }

// Dimension returns the i-th dimension.
func (d *Domain) Dimension(i int) *Dimension { return d.dims[i] }

// Dimensions returns the dimensions in declaration order.
func (d *Domain) Dimensions() []*Dimension { return d.dims }

// scalarGreater reports lo > hi for two values of the domain datatype.
func scalarGreater(dt Datatype, lo, hi any) bool {
	switch dt {
	case Int8:
		return lo.(int8) > hi.(int8)
	case Uint8:
		return lo.(uint8) > hi.(uint8)
	case Int16:
		return lo.(int16) > hi.(int16)
	case Uint16:
		return lo.(uint16) > hi.(uint16)
	case Int32:
		return lo.(int32) > hi.(int32)
	case Uint32:
		return lo.(uint32) > hi.(uint32)
	case Int64:
		return lo.(int64) > hi.(int64)
	case Uint64:
		return lo.(uint64) > hi.(uint64)
	case Float32:
		return lo.(float32) > hi.(float32)
	case Float64:
		return lo.(float64) > hi.(float64)
	default:
		return false
	}
}

type dimensionJSON struct {
	Name   string        `json:"name"`
	Domain []json.Number `json:"domain"`
}

type domainJSON struct {
	Type       Datatype        `json:"type"`
	Dimensions []dimensionJSON `json:"dimensions"`
}

// MarshalJSON encodes the domain, writing dimension bounds as JSON numbers.
func (d *Domain) MarshalJSON() ([]byte, error) {
	out := domainJSON{Type: d.dtype}
	for _, dim := range d.dims {
		out.Dimensions = append(out.Dimensions, dimensionJSON{
			Name:   dim.name,
			Domain: []json.Number{json.Number(fmt.Sprint(dim.lo)), json.Number(fmt.Sprint(dim.hi))},
		})
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the domain, converting bounds to the exact Go type
// of the coordinate datatype.
func (d *Domain) UnmarshalJSON(data []byte) error {
	var in domainJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	nd, err := NewDomain(in.Type)
	if err != nil {
		return err
	}
	for _, dim := range in.Dimensions {
		if len(dim.Domain) != 2 {
			return fmt.Errorf("schema: dimension %q must have a [lo, hi] domain", dim.Name)
		}
		lo, err := parseScalar(in.Type, dim.Domain[0])
		if err != nil {
			return err
		}
		hi, err := parseScalar(in.Type, dim.Domain[1])
		if err != nil {
			return err
		}
		if err := nd.AddDimension(dim.Name, lo, hi); err != nil {
			return err
		}
	}
	*d = *nd
	return nil
}
