package schema

import (
	"encoding/json"
	"fmt"
)

// Layout is the cell order contract for query results and writes.
type Layout uint8

const (
	// LayoutRowMajor iterates the last dimension fastest.
	LayoutRowMajor Layout = iota
	// LayoutColMajor iterates the first dimension fastest.
	LayoutColMajor
	// LayoutGlobalOrder follows the engine-native on-disk cell order.
	LayoutGlobalOrder
	// LayoutUnordered imposes no cell order.
	LayoutUnordered
)

var layoutNames = map[Layout]string{
	LayoutRowMajor:    "row-major",
	LayoutColMajor:    "col-major",
	LayoutGlobalOrder: "global-order",
	LayoutUnordered:   "unordered",
}

func (l Layout) String() string {
	if s, ok := layoutNames[l]; ok {
		return s
	}
	return fmt.Sprintf("layout(%d)", uint8(l))
}

// Valid reports whether l is one of the defined layouts.
func (l Layout) Valid() bool {
	_, ok := layoutNames[l]
	return ok
}

// MarshalJSON encodes the layout as its stable name.
func (l Layout) MarshalJSON() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("schema: cannot marshal unknown layout %d", uint8(l))
	}
	return json.Marshal(l.String())
}

// UnmarshalJSON decodes the layout from its stable name.
func (l *Layout) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for k, v := range layoutNames {
		if v == s {
			*l = k
			return nil
		}
	}
	return fmt.Errorf("schema: unknown layout %q", s)
}
