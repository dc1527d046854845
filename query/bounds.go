package query

import (
	"cmp"
	"fmt"

	"github.com/hupe1980/gridgo/schema"
)

// CheckSubarrayBounds validates a flat coordinate-range slice against a
// domain. The slice must hold 2×NDim values of the domain's coordinate type,
// as consecutive [lo, hi] pairs. A nil subarray is trivially valid and means
// "whole domain".
//
// Dispatch on the coordinate kind happens once per call. A domain datatype
// outside the supported numeric set wraps ErrInternal: it indicates engine
// misconfiguration, not caller error.
func CheckSubarrayBounds(subarray any, dom *schema.Domain) error {
	if subarray == nil {
		return nil
	}
	switch dom.Type() {
	case schema.Int8:
		return checkBounds[int8](subarray, dom)
	case schema.Uint8:
		return checkBounds[uint8](subarray, dom)
	case schema.Int16:
		return checkBounds[int16](subarray, dom)
	case schema.Uint16:
		return checkBounds[uint16](subarray, dom)
	case schema.Int32:
		return checkBounds[int32](subarray, dom)
	case schema.Uint32:
		return checkBounds[uint32](subarray, dom)
	case schema.Int64:
		return checkBounds[int64](subarray, dom)
	case schema.Uint64:
		return checkBounds[uint64](subarray, dom)
	case schema.Float32:
		return checkBounds[float32](subarray, dom)
	case schema.Float64:
		return checkBounds[float64](subarray, dom)
	default:
		return fmt.Errorf("%w: domain datatype %s is not supported by the subarray validator", ErrInternal, dom.Type())
	}
}

func checkBounds[T cmp.Ordered](subarray any, dom *schema.Domain) error {
	s, ok := subarray.([]T)
	if !ok {
		return fmt.Errorf("%w: subarray must be a []%s matching the domain datatype, got %T",
			ErrValidation, dom.Type(), subarray)
	}
	if len(s) != 2*dom.NDim() {
		return fmt.Errorf("%w: subarray must hold 2 values per dimension: got %d, want %d",
			ErrValidation, len(s), 2*dom.NDim())
	}
	for i := 0; i < dom.NDim(); i++ {
		dim := dom.Dimension(i)
		lo, hi := s[2*i], s[2*i+1]
		if lo > hi {
			return &BoundsError{Dim: dim.Name(), Lo: lo, Hi: hi, Inverted: true}
		}
		dloAny, dhiAny := dim.Bounds()
		dlo, ok1 := dloAny.(T)
		dhi, ok2 := dhiAny.(T)
		if !ok1 || !ok2 {
			return fmt.Errorf("%w: domain bounds of dimension %q do not match datatype %s",
				ErrInternal, dim.Name(), dom.Type())
		}
		if lo < dlo || hi > dhi {
			return &BoundsError{Dim: dim.Name(), Lo: lo, Hi: hi}
		}
	}
	return nil
}
