package codec

import (
	"encoding/binary"
	"fmt"
	"io"

	lzf "github.com/zhuyie/golzf"

	"github.com/hupe1980/pcdgo/internal/conv"
	"github.com/hupe1980/pcdgo/layout"
	"github.com/hupe1980/pcdgo/storage"
)

// compressedPrefixLen is the two little-endian uint32 values (compressed
// size, uncompressed size) preceding the compressed bytes.
const compressedPrefixLen = 8

// DecodeCompressed decodes a binary_compressed payload.
//
// The decompressed buffer is column-major: field 0's entire column first,
// then field 1's, and so on. Decoding slices it into contiguous per-field
// chunks; the chunks alias the decompressed buffer (which the block then
// owns), so no further copies occur after decompression.
func DecodeCompressed(data []byte, lay *layout.Layout, points int, block *storage.PointBlock) error {
	if len(data) < compressedPrefixLen {
		return &TruncatedError{Want: compressedPrefixLen, Got: len(data), Unit: "bytes"}
	}
	compressedSize, err := conv.Uint32ToInt(binary.LittleEndian.Uint32(data[0:4]))
	if err != nil {
		return fmt.Errorf("pcd payload: compressed size prefix: %w", err)
	}
	uncompressedSize, err := conv.Uint32ToInt(binary.LittleEndian.Uint32(data[4:8]))
	if err != nil {
		return fmt.Errorf("pcd payload: uncompressed size prefix: %w", err)
	}

	if len(data) < compressedPrefixLen+compressedSize {
		return &TruncatedError{Want: compressedPrefixLen + compressedSize, Got: len(data), Unit: "bytes"}
	}

	want := points * lay.Stride
	if uncompressedSize != want {
		return &DecompressSizeError{Declared: uncompressedSize, Actual: want}
	}

	buf := make([]byte, uncompressedSize)
	if uncompressedSize > 0 {
		n, err := lzf.Decompress(data[compressedPrefixLen:compressedPrefixLen+compressedSize], buf)
		if err != nil {
			return fmt.Errorf("pcd payload: lzf decompress: %w", err)
		}
		if n != uncompressedSize {
			return &DecompressSizeError{Declared: uncompressedSize, Actual: n}
		}
	}

	cur := 0
	for _, f := range lay.Fields {
		blen := f.ByteLen(points)
		chunk := buf[cur : cur+blen]
		cur += blen
		if f.Spec.IsPadding() {
			continue
		}
		// The chunk is heap memory owned by this decode, so the column is
		// owned even when it aliases.
		col, _ := storage.ViewLEBytes(f.Spec.Type, chunk)
		if err := block.Set(f.Spec.Name, col); err != nil {
			return err
		}
	}
	return nil
}

// EncodeCompressed builds the column-major buffer in field order,
// LZF-compresses it and emits the two uint32 length prefixes followed by the
// compressed bytes.
func EncodeCompressed(w io.Writer, lay *layout.Layout, block *storage.PointBlock) error {
	points := block.Points()

	buf := make([]byte, 0, points*lay.Stride)
	for _, f := range lay.Fields {
		col, ok := block.Column(f.Spec.Name)
		if !ok {
			buf = append(buf, make([]byte, f.ByteLen(points))...)
			continue
		}
		buf = storage.AppendLEBytes(buf, col)
	}

	uncompressedSize, err := conv.IntToUint32(len(buf))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCompressOverflow, err)
	}

	var out []byte
	var n int
	if len(buf) > 0 {
		// LZF worst case expands incompressible input; leave slack so the
		// compressor never runs out of room.
		out = make([]byte, len(buf)+len(buf)/16+64+3)
		n, err = lzf.Compress(buf, out)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrCompressOverflow, err)
		}
	}
	compressedSize, err := conv.IntToUint32(n)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCompressOverflow, err)
	}

	var prefix [compressedPrefixLen]byte
	binary.LittleEndian.PutUint32(prefix[0:4], compressedSize)
	binary.LittleEndian.PutUint32(prefix[4:8], uncompressedSize)
	if _, err := w.Write(prefix[:]); err != nil {
		return err
	}
	if n > 0 {
		if _, err := w.Write(out[:n]); err != nil {
			return err
		}
	}
	return nil
}
