package pcdgo

import (
	"fmt"
	"io"
	"os"

	"github.com/hupe1980/pcdgo/codec"
	"github.com/hupe1980/pcdgo/header"
	"github.com/hupe1980/pcdgo/internal/conv"
	"github.com/hupe1980/pcdgo/layout"
	"github.com/hupe1980/pcdgo/storage"
)

// Write serializes the block as a PCD file to w.
//
// The header is derived from the block: fields in insertion order with
// count 1, width = point count and height = 1 unless WithDimensions is
// given, identity viewpoint unless WithViewpoint is given. Validation runs
// before any byte is written.
func Write(w io.Writer, block *storage.PointBlock, format header.DataFormat, opts ...WriteOption) error {
	h, lay, err := deriveHeader(block, format, opts)
	if err != nil {
		return err
	}

	if _, err := w.Write(h.Marshal()); err != nil {
		return err
	}

	switch format {
	case header.Ascii:
		return codec.EncodeASCII(w, lay, block)
	case header.Binary:
		return codec.EncodeBinary(w, lay, block)
	case header.BinaryCompressed:
		return codec.EncodeCompressed(w, lay, block)
	default:
		return &ValidationError{Reason: fmt.Sprintf("unsupported data format %d", format)}
	}
}

// WriteFile writes the block as a PCD file at path. The file is written to
// a temporary sibling and renamed into place, so a failing write never
// leaves a truncated file masquerading as valid.
func WriteFile(path string, block *storage.PointBlock, format header.DataFormat, opts ...WriteOption) error {
	// Validate before touching the filesystem.
	if _, _, err := deriveHeader(block, format, opts); err != nil {
		return err
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}

	if err := Write(f, block, format, opts...); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// deriveHeader validates the block and derives the header and layout for
// writing.
func deriveHeader(block *storage.PointBlock, format header.DataFormat, opts []WriteOption) (*header.Header, *layout.Layout, error) {
	o := defaultWriteOptions()
	for _, opt := range opts {
		opt(&o)
	}

	switch format {
	case header.Ascii, header.Binary, header.BinaryCompressed:
	default:
		return nil, nil, &ValidationError{Reason: fmt.Sprintf("unsupported data format %d", format)}
	}

	names := block.Names()
	if len(names) == 0 {
		return nil, nil, ErrEmptyBlock
	}

	rows := -1
	specs := make([]header.FieldSpec, len(names))
	for i, name := range names {
		col, _ := block.Column(name)
		if col == nil {
			return nil, nil, &ValidationError{Field: name, Reason: "nil column"}
		}
		if col.Type().Size() == 0 {
			return nil, nil, &ValidationError{Field: name, Reason: "unsupported element type"}
		}
		if rows == -1 {
			rows = col.Len()
		} else if col.Len() != rows {
			return nil, nil, &ValidationError{
				Field:  name,
				Reason: fmt.Sprintf("column length %d does not match %d", col.Len(), rows),
			}
		}
		specs[i] = header.FieldSpec{Name: name, Type: col.Type(), Count: 1}
	}
	if block.Points() != rows {
		return nil, nil, &ValidationError{
			Reason: fmt.Sprintf("block declares %d points but columns hold %d", block.Points(), rows),
		}
	}

	width, err := conv.IntToUint32(rows)
	if err != nil {
		return nil, nil, &ValidationError{Reason: err.Error()}
	}
	height := uint32(1)
	if o.dims {
		if int(o.width)*int(o.height) != rows {
			return nil, nil, &ValidationError{
				Reason: fmt.Sprintf("dimensions %dx%d do not cover %d points", o.width, o.height, rows),
			}
		}
		width, height = o.width, o.height
	}

	lay, err := layout.New(specs)
	if err != nil {
		return nil, nil, err
	}

	h := &header.Header{
		Version:   o.version,
		Fields:    specs,
		Width:     width,
		Height:    height,
		Viewpoint: o.viewpoint,
		Points:    rows,
		Data:      format,
	}
	return h, lay, nil
}
