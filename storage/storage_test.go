package storage

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/pcdgo/header"
)

func TestColumnBytes(t *testing.T) {
	tests := []struct {
		name     string
		col      Column
		wantType header.ValueType
		wantLen  int
	}{
		{"F32", F32Column{1, 2, 3}, header.F32, 12},
		{"F64", F64Column{1, 2}, header.F64, 16},
		{"I8", I8Column{-1, 1}, header.I8, 2},
		{"I16", I16Column{-1}, header.I16, 2},
		{"I32", I32Column{-1, 0, 1}, header.I32, 12},
		{"U8", U8Column{1, 2}, header.U8, 2},
		{"U16", U16Column{1}, header.U16, 2},
		{"U32", U32Column{1, 2}, header.U32, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.col.Type())
			assert.Len(t, tt.col.Bytes(), tt.wantLen)
			assert.Equal(t, tt.wantLen/tt.wantType.Size(), tt.col.Len())
		})
	}
}

func TestViewLEBytes_Aliases(t *testing.T) {
	raw := make([]byte, 12)
	binary.LittleEndian.PutUint32(raw[0:], math.Float32bits(1.5))
	binary.LittleEndian.PutUint32(raw[4:], math.Float32bits(-2))
	binary.LittleEndian.PutUint32(raw[8:], math.Float32bits(3.25))

	col, aliased := ViewLEBytes(header.F32, raw)
	require.True(t, aliased, "aligned little-endian input must produce a view")
	require.Equal(t, F32Column{1.5, -2, 3.25}, col)

	// Mutating the backing bytes must show through the view.
	binary.LittleEndian.PutUint32(raw[0:], math.Float32bits(9))
	assert.Equal(t, float32(9), col.(F32Column)[0])
}

func TestViewLEBytes_MisalignedCopies(t *testing.T) {
	backing := make([]byte, 13)
	raw := backing[1:] // force misalignment for 4-byte elements
	binary.LittleEndian.PutUint32(raw[0:], 7)

	col, aliased := ViewLEBytes(header.U32, raw)
	assert.False(t, aliased)
	assert.Equal(t, uint32(7), col.(U32Column)[0])
}

func TestAppendLEBytes_RoundTrip(t *testing.T) {
	cols := []Column{
		F32Column{1.5, -2},
		F64Column{math.Pi},
		I8Column{-128, 127},
		I16Column{-32768},
		I32Column{1 << 30},
		U8Column{255},
		U16Column{65535},
		U32Column{1 << 31},
	}

	for _, col := range cols {
		raw := AppendLEBytes(nil, col)
		require.Len(t, raw, col.Len()*col.Type().Size())

		decoded := decodeLEBytes(col.Type(), raw, col.Len())
		assert.Equal(t, col, decoded)
	}
}

func TestPointBlock(t *testing.T) {
	b := NewPointBlock(3)
	require.NoError(t, b.Set("x", F32Column{1, 2, 3}))
	require.NoError(t, b.Set("id", U32Column{7, 8, 9}))

	assert.Equal(t, 3, b.Points())
	assert.Equal(t, []string{"x", "id"}, b.Names())
	assert.True(t, b.Owned())

	col, ok := b.Column("x")
	require.True(t, ok)
	assert.Equal(t, F32Column{1, 2, 3}, col)

	_, ok = b.Column("missing")
	assert.False(t, ok)

	err := b.Set("x", F32Column{0, 0, 0})
	assert.ErrorIs(t, err, ErrDuplicateField)
}

func TestPointBlock_Detach(t *testing.T) {
	backing := F32Column{1, 2, 3}

	b := NewPointBlock(3)
	require.NoError(t, b.SetView("x", backing))
	assert.False(t, b.Owned())
	assert.True(t, b.IsView("x"))

	b.Detach()
	assert.True(t, b.Owned())
	assert.False(t, b.IsView("x"))

	// The detached column no longer shares memory with the view source.
	backing[0] = 42
	col, _ := b.Column("x")
	assert.Equal(t, float32(1), col.(F32Column)[0])
}
