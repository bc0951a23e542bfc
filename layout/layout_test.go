package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/pcdgo/header"
)

func TestNew(t *testing.T) {
	lay, err := New([]header.FieldSpec{
		{Name: "x", Type: header.F32, Count: 1},
		{Name: "y", Type: header.F32, Count: 1},
		{Name: "normal", Type: header.F64, Count: 3},
		{Name: "label", Type: header.U16, Count: 1},
	})
	require.NoError(t, err)

	assert.Equal(t, []int{0, 4, 8, 32}, offsets(lay))
	assert.Equal(t, 34, lay.Stride)
	assert.Equal(t, 6, lay.TokensPerPoint())
	assert.False(t, lay.Contiguous())

	assert.Equal(t, 24*10, lay.Fields[2].ByteLen(10))
}

func TestNew_Contiguous(t *testing.T) {
	lay, err := New([]header.FieldSpec{{Name: "x", Type: header.F32, Count: 1}})
	require.NoError(t, err)
	assert.True(t, lay.Contiguous())
	assert.Equal(t, 4, lay.Stride)
}

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name  string
		specs []header.FieldSpec
	}{
		{"Empty", nil},
		{"EmptyName", []header.FieldSpec{{Name: "", Type: header.F32, Count: 1}}},
		{"ZeroCount", []header.FieldSpec{{Name: "x", Type: header.F32, Count: 0}}},
		{"Duplicate", []header.FieldSpec{
			{Name: "x", Type: header.F32, Count: 1},
			{Name: "x", Type: header.F32, Count: 1},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.specs)
			var serr *SchemaError
			require.ErrorAs(t, err, &serr)
		})
	}
}

func TestNew_PaddingMayRepeat(t *testing.T) {
	lay, err := New([]header.FieldSpec{
		{Name: "x", Type: header.F32, Count: 1},
		{Name: "_", Type: header.U8, Count: 4},
		{Name: "y", Type: header.F32, Count: 1},
		{Name: "_", Type: header.U8, Count: 4},
	})
	require.NoError(t, err)
	assert.Equal(t, 16, lay.Stride)
	assert.Equal(t, []int{0, 4, 8, 12}, offsets(lay))
}

func offsets(l *Layout) []int {
	out := make([]int, len(l.Fields))
	for i, f := range l.Fields {
		out[i] = f.Offset
	}
	return out
}
