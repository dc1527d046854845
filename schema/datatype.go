package schema

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Datatype identifies the physical type of a dimension or attribute cell.
type Datatype uint8

const (
	// Int8 is a signed 8-bit integer.
	Int8 Datatype = iota
	// Uint8 is an unsigned 8-bit integer.
	Uint8
	// Int16 is a signed 16-bit integer.
	Int16
	// Uint16 is an unsigned 16-bit integer.
	Uint16
	// Int32 is a signed 32-bit integer.
	Int32
	// Uint32 is an unsigned 32-bit integer.
	Uint32
	// Int64 is a signed 64-bit integer.
	Int64
	// Uint64 is an unsigned 64-bit integer.
	Uint64
	// Float32 is an IEEE-754 single-precision float.
	Float32
	// Float64 is an IEEE-754 double-precision float.
	Float64
	// Char is a single byte, typically used for variable-length text attributes.
	Char
)

var datatypeNames = map[Datatype]string{
	Int8:    "int8",
	Uint8:   "uint8",
	Int16:   "int16",
	Uint16:  "uint16",
	Int32:   "int32",
	Uint32:  "uint32",
	Int64:   "int64",
	Uint64:  "uint64",
	Float32: "float32",
	Float64: "float64",
	Char:    "char",
}

// String returns the stable name of the datatype, as persisted in schema files.
func (d Datatype) String() string {
	if s, ok := datatypeNames[d]; ok {
		return s
	}
	return fmt.Sprintf("datatype(%d)", uint8(d))
}

// DatatypeByName returns the datatype with the given stable name.
func DatatypeByName(name string) (Datatype, bool) {
	for d, s := range datatypeNames {
		if s == name {
			return d, true
		}
	}
	return 0, false
}

// Size returns the size of one cell value in bytes.
func (d Datatype) Size() int {
	switch d {
	case Int8, Uint8, Char:
		return 1
	case Int16, Uint16:
		return 2
	case Int32, Uint32, Float32:
		return 4
	case Int64, Uint64, Float64:
		return 8
	default:
		return 0
	}
}

// ValidDomainType reports whether the datatype may be used as an array
// domain coordinate type. Textual types cannot.
func (d Datatype) ValidDomainType() bool {
	switch d {
	case Int8, Uint8, Int16, Uint16, Int32, Uint32, Int64, Uint64, Float32, Float64:
		return true
	default:
		return false
	}
}

// Integral reports whether the datatype is an integer kind.
func (d Datatype) Integral() bool {
	switch d {
	case Int8, Uint8, Int16, Uint16, Int32, Uint32, Int64, Uint64:
		return true
	default:
		return false
	}
}

// MarshalJSON encodes the datatype as its stable name.
func (d Datatype) MarshalJSON() ([]byte, error) {
	if _, ok := datatypeNames[d]; !ok {
		return nil, fmt.Errorf("schema: cannot marshal unknown datatype %d", uint8(d))
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes the datatype from its stable name.
func (d *Datatype) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	dt, ok := DatatypeByName(s)
	if !ok {
		return fmt.Errorf("schema: unknown datatype %q", s)
	}
	*d = dt
	return nil
}

// parseScalar converts a JSON number into the exact Go value for the datatype.
func parseScalar(dt Datatype, n json.Number) (any, error) {
	switch dt {
	case Int8, Int16, Int32, Int64:
		v, err := strconv.ParseInt(n.String(), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("schema: invalid %s value %q: %w", dt, n, err)
		}
		switch dt {
		case Int8:
			if v < -128 || v > 127 {
				return nil, fmt.Errorf("schema: value %d overflows int8", v)
			}
			return int8(v), nil
		case Int16:
			if v < -32768 || v > 32767 {
				return nil, fmt.Errorf("schema: value %d overflows int16", v)
			}
			return int16(v), nil
		case Int32:
			if v < -2147483648 || v > 2147483647 {
				return nil, fmt.Errorf("schema: value %d overflows int32", v)
			}
			return int32(v), nil
		default:
			return v, nil
		}
	case Uint8, Uint16, Uint32, Uint64:
		v, err := strconv.ParseUint(n.String(), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("schema: invalid %s value %q: %w", dt, n, err)
		}
		switch dt {
		case Uint8:
			if v > 255 {
				return nil, fmt.Errorf("schema: value %d overflows uint8", v)
			}
			return uint8(v), nil
		case Uint16:
			if v > 65535 {
				return nil, fmt.Errorf("schema: value %d overflows uint16", v)
			}
			return uint16(v), nil
		case Uint32:
			if v > 4294967295 {
				return nil, fmt.Errorf("schema: value %d overflows uint32", v)
			}
			return uint32(v), nil
		default:
			return v, nil
		}
	case Float32, Float64:
		v, err := strconv.ParseFloat(n.String(), 64)
		if err != nil {
			return nil, fmt.Errorf("schema: invalid %s value %q: %w", dt, n, err)
		}
		if dt == Float32 {
			return float32(v), nil
		}
		return v, nil
	default:
		return nil, fmt.Errorf("schema: datatype %s is not a valid domain type", dt)
	}
}

// scalarType reports whether v holds a value of the exact Go type for dt.
func scalarType(dt Datatype, v any) bool {
	switch dt {
	case Int8:
		_, ok := v.(int8)
		return ok
	case Uint8:
		_, ok := v.(uint8)
		return ok
	case Int16:
		_, ok := v.(int16)
		return ok
	case Uint16:
		_, ok := v.(uint16)
		return ok
	case Int32:
		_, ok := v.(int32)
		return ok
	case Uint32:
		_, ok := v.(uint32)
		return ok
	case Int64:
		_, ok := v.(int64)
		return ok
	case Uint64:
		_, ok := v.(uint64)
		return ok
	case Float32:
		_, ok := v.(float32)
		return ok
	case Float64:
		_, ok := v.(float64)
		return ok
	default:
		return false
	}
}
