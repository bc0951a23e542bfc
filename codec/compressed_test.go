package codec

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lzf "github.com/zhuyie/golzf"

	"github.com/hupe1980/pcdgo/header"
	"github.com/hupe1980/pcdgo/storage"
)

func lzfDecompressAll(t *testing.T, compressed []byte, size int) []byte {
	t.Helper()
	out := make([]byte, size)
	n, err := lzf.Decompress(compressed, out)
	require.NoError(t, err)
	require.Equal(t, size, n)
	return out
}

func TestCompressedRoundTrip(t *testing.T) {
	lay, src := xyzidBlock(t)

	var buf bytes.Buffer
	require.NoError(t, EncodeCompressed(&buf, lay, src))

	data := buf.Bytes()
	require.GreaterOrEqual(t, len(data), compressedPrefixLen)

	compressedSize := binary.LittleEndian.Uint32(data[0:4])
	uncompressedSize := binary.LittleEndian.Uint32(data[4:8])
	assert.Equal(t, uint32(3*lay.Stride), uncompressedSize,
		"uncompressed size prefix must equal points*stride")
	assert.Equal(t, compressedPrefixLen+int(compressedSize), len(data))

	dst := storage.NewPointBlock(3)
	require.NoError(t, DecodeCompressed(data, lay, 3, dst))

	assert.True(t, dst.Owned(), "decompressed columns are always owned")
	for _, name := range src.Names() {
		want, _ := src.Column(name)
		got, ok := dst.Column(name)
		require.True(t, ok, name)
		assert.Equal(t, want, got, name)
	}
}

func TestCompressed_ColumnMajorLayout(t *testing.T) {
	// The decompressed buffer holds whole columns back to back, not
	// interleaved records. Verify against a hand-built buffer.
	lay := mustLayout(t,
		header.FieldSpec{Name: "a", Type: header.U8, Count: 1},
		header.FieldSpec{Name: "b", Type: header.U16, Count: 1},
	)

	src := storage.NewPointBlock(3)
	require.NoError(t, src.Set("a", storage.U8Column{1, 2, 3}))
	require.NoError(t, src.Set("b", storage.U16Column{0x1122, 0x3344, 0x5566}))

	var buf bytes.Buffer
	require.NoError(t, EncodeCompressed(&buf, lay, src))

	data := buf.Bytes()
	compressedSize := binary.LittleEndian.Uint32(data[0:4])

	decompressed := lzfDecompressAll(t, data[compressedPrefixLen:compressedPrefixLen+int(compressedSize)], 3*lay.Stride)
	want := []byte{
		1, 2, 3, // a column
		0x22, 0x11, 0x44, 0x33, 0x66, 0x55, // b column, little endian
	}
	assert.Equal(t, want, decompressed)
}

func TestDecodeCompressed_SizeMismatch(t *testing.T) {
	lay, src := xyzidBlock(t)

	var buf bytes.Buffer
	require.NoError(t, EncodeCompressed(&buf, lay, src))

	data := bytes.Clone(buf.Bytes())
	// Corrupt the declared uncompressed size.
	binary.LittleEndian.PutUint32(data[4:8], uint32(3*lay.Stride)+1)

	err := DecodeCompressed(data, lay, 3, storage.NewPointBlock(3))
	var serr *DecompressSizeError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, 3*lay.Stride+1, serr.Declared)
	assert.Equal(t, 3*lay.Stride, serr.Actual)
}

func TestDecodeCompressed_Truncated(t *testing.T) {
	lay, src := xyzidBlock(t)

	var buf bytes.Buffer
	require.NoError(t, EncodeCompressed(&buf, lay, src))

	t.Run("Prefix", func(t *testing.T) {
		err := DecodeCompressed(buf.Bytes()[:4], lay, 3, storage.NewPointBlock(3))
		var terr *TruncatedError
		require.ErrorAs(t, err, &terr)
		assert.Equal(t, compressedPrefixLen, terr.Want)
	})

	t.Run("Body", func(t *testing.T) {
		err := DecodeCompressed(buf.Bytes()[:buf.Len()-1], lay, 3, storage.NewPointBlock(3))
		var terr *TruncatedError
		require.ErrorAs(t, err, &terr)
		assert.Equal(t, buf.Len(), terr.Want)
	})
}

func TestCompressed_Empty(t *testing.T) {
	lay := mustLayout(t, header.FieldSpec{Name: "x", Type: header.F32, Count: 1})

	var buf bytes.Buffer
	require.NoError(t, EncodeCompressed(&buf, lay, storage.NewPointBlock(0)))

	// Zero points still emit both prefixes.
	require.Equal(t, compressedPrefixLen, buf.Len())
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(buf.Bytes()[0:4]))
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(buf.Bytes()[4:8]))

	dst := storage.NewPointBlock(0)
	require.NoError(t, DecodeCompressed(buf.Bytes(), lay, 0, dst))
	col, ok := dst.Column("x")
	require.True(t, ok)
	assert.Equal(t, 0, col.Len())
}

func TestCompressed_Padding(t *testing.T) {
	lay := mustLayout(t,
		header.FieldSpec{Name: "x", Type: header.F32, Count: 1},
		header.FieldSpec{Name: "_", Type: header.U8, Count: 4},
	)

	src := storage.NewPointBlock(2)
	require.NoError(t, src.Set("x", storage.F32Column{7, 8}))

	var buf bytes.Buffer
	require.NoError(t, EncodeCompressed(&buf, lay, src))

	dst := storage.NewPointBlock(2)
	require.NoError(t, DecodeCompressed(buf.Bytes(), lay, 2, dst))

	assert.Equal(t, []string{"x"}, dst.Names())
	got, _ := dst.Column("x")
	assert.Equal(t, storage.F32Column{7, 8}, got)
}
