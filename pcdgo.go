package pcdgo

import (
	"time"

	"github.com/hupe1980/pcdgo/codec"
	"github.com/hupe1980/pcdgo/header"
	"github.com/hupe1980/pcdgo/internal/mmap"
	"github.com/hupe1980/pcdgo/layout"
	"github.com/hupe1980/pcdgo/storage"
)

// MappedCloud is a PCD file decoded over a read-only memory mapping.
//
// The mapping exclusively owns the backing bytes. Columns in Block may be
// zero-copy views borrowing from it (see codec.DecodeBinary for the exact
// policy); such views must not be used after Close. Call Detach first if
// the columns need to outlive the mapping.
type MappedCloud struct {
	Header *header.Header
	Block  *storage.PointBlock

	mapping *mmap.Mapping
}

// Open memory-maps the PCD file at path and decodes it.
//
// Open failures (missing file, permission denial, mapping failure) surface
// the underlying I/O error unchanged. When the decoded block ends up fully
// owned (ascii, compressed, or multi-field binary payloads), the mapping is
// released before Open returns and Close becomes a no-op.
func Open(path string, opts ...Option) (*MappedCloud, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	m, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	// Decode walks the payload front to back.
	_ = m.Advise(mmap.AccessSequential)

	h, block, err := decode(m.Bytes(), o)
	if err != nil {
		_ = m.Close()
		return nil, err
	}

	cloud := &MappedCloud{Header: h, Block: block}
	if block.Owned() {
		_ = m.Close()
	} else {
		cloud.mapping = m
	}
	return cloud, nil
}

// Close releases the file mapping. Any column views borrowed from it become
// invalid. Close is idempotent.
func (c *MappedCloud) Close() error {
	if c.mapping == nil {
		return nil
	}
	return c.mapping.Close()
}

// Detach deep-copies any borrowed column and releases the mapping, so the
// block owns all of its memory afterwards.
func (c *MappedCloud) Detach() error {
	c.Block.Detach()
	return c.Close()
}

// ReadBuffer decodes a PCD file from an in-memory buffer (for example a
// network-received payload). The returned columns never alias data; this
// path always copies.
func ReadBuffer(data []byte, opts ...Option) (*header.Header, *storage.PointBlock, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	o.zeroCopy = false
	return decode(data, o)
}

func decode(data []byte, o options) (*header.Header, *storage.PointBlock, error) {
	start := time.Now()

	h, headerLen, err := header.Parse(data)
	if err != nil {
		return nil, nil, err
	}
	lay, err := layout.New(h.Fields)
	if err != nil {
		return nil, nil, err
	}

	block := storage.NewPointBlock(h.Points)
	payload := data[headerLen:]

	switch h.Data {
	case header.Ascii:
		err = codec.DecodeASCII(payload, lay, h.Points, block)
	case header.Binary:
		err = codec.DecodeBinary(payload, lay, h.Points, block, codec.BinaryOptions{
			ZeroCopy:    o.zeroCopy,
			Parallelism: o.parallelism,
		})
	case header.BinaryCompressed:
		err = codec.DecodeCompressed(payload, lay, h.Points, block)
	}
	if err != nil {
		return nil, nil, err
	}

	o.logger.Debug("decoded pcd",
		"format", h.Data.String(),
		"points", h.Points,
		"fields", len(h.Fields),
		"zero_copy", !block.Owned(),
		"duration", time.Since(start),
	)

	return h, block, nil
}
