package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder(t *testing.T) {
	sch, err := NewBuilder(Int64).
		Dimension("rows", int64(0), int64(99)).
		Dimension("cols", int64(-10), int64(10)).
		CompressedAttribute("temp", Float32, Zstd).
		VarAttribute("label", Char, LZ4).
		Build()
	require.NoError(t, err)

	dom := sch.Domain()
	assert.Equal(t, Int64, dom.Type())
	assert.Equal(t, 2, dom.NDim())
	assert.Equal(t, "rows", dom.Dimension(0).Name())

	lo, hi := dom.Dimension(1).Bounds()
	assert.Equal(t, int64(-10), lo)
	assert.Equal(t, int64(10), hi)

	require.Len(t, sch.Attributes(), 2)
	temp := sch.Attribute("temp")
	require.NotNil(t, temp)
	assert.Equal(t, Zstd, temp.Compressor)
	assert.Equal(t, 4, temp.CellSize())

	label := sch.Attribute("label")
	require.NotNil(t, label)
	assert.True(t, label.Var)
	assert.Zero(t, label.CellSize(), "var-length attributes have no fixed cell size")

	assert.Nil(t, sch.Attribute("missing"))
}

func TestBuilderErrors(t *testing.T) {
	tests := []struct {
		name  string
		build func() (*ArraySchema, error)
	}{
		{"no dimensions", func() (*ArraySchema, error) {
			return NewBuilder(Int64).Attribute("a", Int32).Build()
		}},
		{"no attributes", func() (*ArraySchema, error) {
			return NewBuilder(Int64).Dimension("x", int64(0), int64(9)).Build()
		}},
		{"duplicate attribute", func() (*ArraySchema, error) {
			return NewBuilder(Int64).
				Dimension("x", int64(0), int64(9)).
				Attribute("a", Int32).
				Attribute("a", Int64).
				Build()
		}},
		{"inverted dimension bounds", func() (*ArraySchema, error) {
			return NewBuilder(Int64).
				Dimension("x", int64(9), int64(0)).
				Attribute("a", Int32).
				Build()
		}},
		{"bound type mismatch", func() (*ArraySchema, error) {
			return NewBuilder(Int64).
				Dimension("x", int32(0), int32(9)).
				Attribute("a", Int32).
				Build()
		}},
		{"char domain", func() (*ArraySchema, error) {
			return NewBuilder(Char).
				Dimension("x", int64(0), int64(9)).
				Attribute("a", Int32).
				Build()
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.build()
			assert.Error(t, err)
		})
	}
}

func TestSchemaJSONRoundTrip(t *testing.T) {
	sch, err := NewBuilder(Int32).
		Dimension("x", int32(-100), int32(100)).
		Dimension("y", int32(0), int32(50)).
		CompressedAttribute("a", Int64, Zstd).
		VarAttribute("s", Char, NoCompression).
		Build()
	require.NoError(t, err)

	data, err := json.Marshal(sch)
	require.NoError(t, err)

	got := new(ArraySchema)
	require.NoError(t, json.Unmarshal(data, got))

	assert.Equal(t, Int32, got.Domain().Type())
	require.Equal(t, 2, got.Domain().NDim())

	lo, hi := got.Domain().Dimension(0).Bounds()
	assert.Equal(t, int32(-100), lo)
	assert.Equal(t, int32(100), hi)

	require.NotNil(t, got.Attribute("a"))
	assert.Equal(t, Int64, got.Attribute("a").Type)
	assert.Equal(t, Zstd, got.Attribute("a").Compressor)
	assert.True(t, got.Attribute("s").Var)
}

func TestDatatype(t *testing.T) {
	assert.Equal(t, 1, Int8.Size())
	assert.Equal(t, 8, Float64.Size())
	assert.Equal(t, 1, Char.Size())

	assert.True(t, Int64.Integral())
	assert.True(t, Uint8.Integral())
	assert.False(t, Float32.Integral())
	assert.False(t, Char.Integral())

	assert.True(t, Float64.ValidDomainType())
	assert.False(t, Char.ValidDomainType())

	dt, ok := DatatypeByName("int64")
	require.True(t, ok)
	assert.Equal(t, Int64, dt)

	_, ok = DatatypeByName("bogus")
	assert.False(t, ok)
}

func TestEnumJSON(t *testing.T) {
	for _, l := range []Layout{LayoutRowMajor, LayoutColMajor, LayoutGlobalOrder, LayoutUnordered} {
		data, err := json.Marshal(l)
		require.NoError(t, err)

		var got Layout
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, l, got)
	}

	for _, c := range []Compressor{NoCompression, LZ4, Zstd} {
		data, err := json.Marshal(c)
		require.NoError(t, err)

		var got Compressor
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, c, got)
	}

	var l Layout
	assert.Error(t, json.Unmarshal([]byte(`"diagonal"`), &l))
}

func TestLayoutValid(t *testing.T) {
	assert.True(t, LayoutRowMajor.Valid())
	assert.True(t, LayoutUnordered.Valid())
	assert.False(t, Layout(42).Valid())
}
