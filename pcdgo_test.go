package pcdgo

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/pcdgo/header"
	"github.com/hupe1980/pcdgo/storage"
)

func testBlock(t *testing.T) *storage.PointBlock {
	t.Helper()
	block := storage.NewPointBlock(3)
	require.NoError(t, block.Set("x", storage.F32Column{1, 2, 3}))
	require.NoError(t, block.Set("y", storage.F32Column{0, 0, 0}))
	require.NoError(t, block.Set("z", storage.F32Column{5, 5, 5}))
	require.NoError(t, block.Set("id", storage.U32Column{1, 2, 3}))
	return block
}

func assertBlocksEqual(t *testing.T, want, got *storage.PointBlock) {
	t.Helper()
	require.Equal(t, want.Names(), got.Names())
	require.Equal(t, want.Points(), got.Points())
	for _, name := range want.Names() {
		wc, _ := want.Column(name)
		gc, ok := got.Column(name)
		require.True(t, ok, name)
		assert.Equal(t, wc, gc, name)
	}
}

func TestWriteFileOpenRoundTrip(t *testing.T) {
	formats := []header.DataFormat{header.Ascii, header.Binary, header.BinaryCompressed}

	for _, format := range formats {
		t.Run(format.String(), func(t *testing.T) {
			src := testBlock(t)
			path := filepath.Join(t.TempDir(), "cloud.pcd")

			require.NoError(t, WriteFile(path, src, format))

			cloud, err := Open(path)
			require.NoError(t, err)
			defer cloud.Close()

			assert.Equal(t, "0.7", cloud.Header.Version)
			assert.Equal(t, format, cloud.Header.Data)
			assert.Equal(t, uint32(3), cloud.Header.Width)
			assert.Equal(t, uint32(1), cloud.Header.Height)
			assert.Equal(t, header.Identity, cloud.Header.Viewpoint)
			assert.Equal(t, 3, cloud.Header.Points)

			assertBlocksEqual(t, src, cloud.Block)
		})
	}
}

func TestOpen_ZeroCopyView(t *testing.T) {
	if !storage.IsLittleEndian() {
		t.Skip("zero-copy views require a little-endian host")
	}

	dir := t.TempDir()

	t.Run("SingleFieldBinary", func(t *testing.T) {
		block := storage.NewPointBlock(4)
		require.NoError(t, block.Set("x", storage.F32Column{1, 2, 3, 4}))

		path := filepath.Join(dir, "single.pcd")
		require.NoError(t, WriteFile(path, block, header.Binary))

		cloud, err := Open(path)
		require.NoError(t, err)
		defer cloud.Close()

		if !cloud.Block.IsView("x") {
			// Payload alignment depends on the header length; a copy is a
			// legal outcome, just not the one this file is built to hit.
			t.Skip("payload not aligned for a view")
		}
		assert.False(t, cloud.Block.Owned())

		// The column must point into the mapping, not at heap memory.
		col, _ := cloud.Block.Column("x")
		base := uintptr(unsafe.Pointer(unsafe.SliceData(cloud.mapping.Bytes())))
		addr := uintptr(unsafe.Pointer(&col.(storage.F32Column)[0]))
		assert.GreaterOrEqual(t, addr, base)
		assert.Less(t, addr, base+uintptr(cloud.mapping.Size()))
	})

	t.Run("MultiFieldOwned", func(t *testing.T) {
		path := filepath.Join(dir, "multi.pcd")
		require.NoError(t, WriteFile(path, testBlock(t), header.Binary))

		cloud, err := Open(path)
		require.NoError(t, err)
		defer cloud.Close()

		assert.True(t, cloud.Block.Owned())
		assert.Nil(t, cloud.mapping, "mapping must be released for fully owned blocks")
	})

	t.Run("WithoutZeroCopy", func(t *testing.T) {
		block := storage.NewPointBlock(4)
		require.NoError(t, block.Set("x", storage.F32Column{1, 2, 3, 4}))

		path := filepath.Join(dir, "copied.pcd")
		require.NoError(t, WriteFile(path, block, header.Binary))

		cloud, err := Open(path, WithoutZeroCopy())
		require.NoError(t, err)
		defer cloud.Close()

		assert.True(t, cloud.Block.Owned())
	})
}

func TestDetach(t *testing.T) {
	block := storage.NewPointBlock(4)
	require.NoError(t, block.Set("x", storage.F32Column{1, 2, 3, 4}))

	path := filepath.Join(t.TempDir(), "cloud.pcd")
	require.NoError(t, WriteFile(path, block, header.Binary))

	cloud, err := Open(path)
	require.NoError(t, err)

	require.NoError(t, cloud.Detach())
	assert.True(t, cloud.Block.Owned())

	// Columns stay readable after the mapping is gone.
	col, _ := cloud.Block.Column("x")
	assert.Equal(t, storage.F32Column{1, 2, 3, 4}, col)

	assert.NoError(t, cloud.Close())
}

func TestReadBuffer(t *testing.T) {
	src := testBlock(t)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, src, header.Binary))

	h, block, err := ReadBuffer(buf.Bytes())
	require.NoError(t, err)

	assert.Equal(t, 3, h.Points)
	assert.True(t, block.Owned(), "buffer decode must never alias the input")
	assertBlocksEqual(t, src, block)
}

func TestWrite_Validation(t *testing.T) {
	t.Run("EmptyBlock", func(t *testing.T) {
		err := Write(&bytes.Buffer{}, storage.NewPointBlock(0), header.Binary)
		assert.ErrorIs(t, err, ErrEmptyBlock)
	})

	t.Run("LengthMismatch", func(t *testing.T) {
		block := storage.NewPointBlock(2)
		require.NoError(t, block.Set("x", storage.F32Column{1, 2}))
		require.NoError(t, block.Set("y", storage.F32Column{1, 2, 3}))

		err := Write(&bytes.Buffer{}, block, header.Binary)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "y", verr.Field)
	})

	t.Run("PointCountMismatch", func(t *testing.T) {
		block := storage.NewPointBlock(5)
		require.NoError(t, block.Set("x", storage.F32Column{1, 2}))

		err := Write(&bytes.Buffer{}, block, header.Binary)
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("BadDimensions", func(t *testing.T) {
		block := storage.NewPointBlock(3)
		require.NoError(t, block.Set("x", storage.F32Column{1, 2, 3}))

		err := Write(&bytes.Buffer{}, block, header.Binary, WithDimensions(2, 2))
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)
	})
}

func TestWrite_Options(t *testing.T) {
	block := storage.NewPointBlock(4)
	require.NoError(t, block.Set("x", storage.F32Column{1, 2, 3, 4}))

	vp := [7]float64{1, 2, 3, 1, 0, 0, 0}
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, block, header.Ascii,
		WithViewpoint(vp), WithDimensions(2, 2), WithVersion(".7")))

	h, decoded, err := ReadBuffer(buf.Bytes())
	require.NoError(t, err)

	assert.Equal(t, ".7", h.Version)
	assert.Equal(t, vp, h.Viewpoint)
	assert.Equal(t, uint32(2), h.Width)
	assert.Equal(t, uint32(2), h.Height)
	assert.Equal(t, 4, h.Points)
	assertBlocksEqual(t, block, decoded)
}

func TestWriteFile_NoPartialFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cloud.pcd")

	block := storage.NewPointBlock(2)
	require.NoError(t, block.Set("x", storage.F32Column{1, 2}))
	require.NoError(t, block.Set("y", storage.F32Column{1, 2, 3}))

	err := WriteFile(path, block, header.Binary)
	require.Error(t, err)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "failed write must not leave a file")
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "failed write must not leave a temp file")
}

func TestOpen_Missing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "absent.pcd"))
	assert.True(t, os.IsNotExist(err))
}
