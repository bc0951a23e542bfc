package codec

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/pcdgo/layout"
	"github.com/hupe1980/pcdgo/storage"
)

// parallelThreshold is the minimum amount of payload bytes before the
// per-field gather fans out to worker goroutines. Below this the goroutine
// overhead dominates.
const parallelThreshold = 1 << 20

// BinaryOptions control the binary decoder.
type BinaryOptions struct {
	// ZeroCopy permits columns that alias the source buffer.
	ZeroCopy bool
	// Parallelism bounds the per-field gather fan-out; values below 1
	// select runtime.GOMAXPROCS(0).
	Parallelism int
}

// DecodeBinary decodes a row-major binary payload.
//
// The zero-copy policy is deliberate and testable, not an implementation
// accident: a column aliases data if and only if
//
//   - opts.ZeroCopy is set,
//   - the host is little-endian (PCD is little-endian on the wire),
//   - the record reduces to a single field with count 1, so the field's
//     bytes are already contiguous, and
//   - the payload start satisfies the element type's alignment.
//
// Every other case gather-copies each field into a freshly allocated owned
// column. Fields are gathered in parallel for large payloads; destinations
// are disjoint so the only synchronization is the final join.
func DecodeBinary(data []byte, lay *layout.Layout, points int, block *storage.PointBlock, opts BinaryOptions) error {
	need := points * lay.Stride
	if len(data) < need {
		return &TruncatedError{Want: need, Got: len(data), Unit: "bytes"}
	}
	data = data[:need]

	if lay.Contiguous() {
		f := lay.Fields[0]
		if f.Spec.IsPadding() {
			return nil
		}
		if f.Spec.Count == 1 && opts.ZeroCopy {
			col, aliased := storage.ViewLEBytes(f.Spec.Type, data)
			if aliased {
				return block.SetView(f.Spec.Name, col)
			}
			return block.Set(f.Spec.Name, col)
		}
		// Single field, no views wanted (or count > 1): still a straight
		// contiguous conversion rather than a strided gather.
		col, _ := storage.ViewLEBytes(f.Spec.Type, append([]byte(nil), data...))
		return block.Set(f.Spec.Name, col)
	}

	cols := make([]storage.Column, len(lay.Fields))
	for i, f := range lay.Fields {
		if f.Spec.IsPadding() {
			continue
		}
		cols[i] = storage.NewColumn(f.Spec.Type, points*f.Spec.Count)
	}

	parallelism := opts.Parallelism
	if parallelism < 1 {
		parallelism = runtime.GOMAXPROCS(0)
	}
	if parallelism > 1 && need >= parallelThreshold {
		var g errgroup.Group
		g.SetLimit(parallelism)
		for i, f := range lay.Fields {
			if cols[i] == nil {
				continue
			}
			i, f := i, f
			g.Go(func() error {
				gatherColumn(data, f, lay.Stride, points, cols[i])
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	} else {
		for i, f := range lay.Fields {
			if cols[i] == nil {
				continue
			}
			gatherColumn(data, f, lay.Stride, points, cols[i])
		}
	}

	for i, f := range lay.Fields {
		if cols[i] == nil {
			continue
		}
		if err := block.Set(f.Spec.Name, cols[i]); err != nil {
			return err
		}
	}
	return nil
}

// gatherColumn extracts one field's strided column out of row-major records:
// byte offset f.Offset, step stride, points rows of count elements each.
func gatherColumn(data []byte, f layout.Field, stride, points int, col storage.Column) {
	count := f.Spec.Count
	size := f.Spec.Size()

	switch c := col.(type) {
	case storage.F32Column:
		i := 0
		for p := 0; p < points; p++ {
			base := p*stride + f.Offset
			for k := 0; k < count; k++ {
				c[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[base+k*size:]))
				i++
			}
		}
	case storage.F64Column:
		i := 0
		for p := 0; p < points; p++ {
			base := p*stride + f.Offset
			for k := 0; k < count; k++ {
				c[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[base+k*size:]))
				i++
			}
		}
	case storage.I8Column:
		i := 0
		for p := 0; p < points; p++ {
			base := p*stride + f.Offset
			for k := 0; k < count; k++ {
				c[i] = int8(data[base+k])
				i++
			}
		}
	case storage.I16Column:
		i := 0
		for p := 0; p < points; p++ {
			base := p*stride + f.Offset
			for k := 0; k < count; k++ {
				c[i] = int16(binary.LittleEndian.Uint16(data[base+k*size:]))
				i++
			}
		}
	case storage.I32Column:
		i := 0
		for p := 0; p < points; p++ {
			base := p*stride + f.Offset
			for k := 0; k < count; k++ {
				c[i] = int32(binary.LittleEndian.Uint32(data[base+k*size:]))
				i++
			}
		}
	case storage.U8Column:
		i := 0
		for p := 0; p < points; p++ {
			base := p*stride + f.Offset
			for k := 0; k < count; k++ {
				c[i] = data[base+k]
				i++
			}
		}
	case storage.U16Column:
		i := 0
		for p := 0; p < points; p++ {
			base := p*stride + f.Offset
			for k := 0; k < count; k++ {
				c[i] = binary.LittleEndian.Uint16(data[base+k*size:])
				i++
			}
		}
	case storage.U32Column:
		i := 0
		for p := 0; p < points; p++ {
			base := p*stride + f.Offset
			for k := 0; k < count; k++ {
				c[i] = binary.LittleEndian.Uint32(data[base+k*size:])
				i++
			}
		}
	}
}

// EncodeBinary writes row-major little-endian records. The contiguous
// single-field case copies whole column bytes; otherwise records are
// assembled per row from the columns.
func EncodeBinary(w io.Writer, lay *layout.Layout, block *storage.PointBlock) error {
	points := block.Points()

	if lay.Contiguous() {
		f := lay.Fields[0]
		if col, ok := block.Column(f.Spec.Name); ok {
			buf := storage.AppendLEBytes(make([]byte, 0, points*lay.Stride), col)
			_, err := w.Write(buf)
			return err
		}
	}

	appenders := make([]func(dst []byte, row int) []byte, len(lay.Fields))
	for i, f := range lay.Fields {
		col, ok := block.Column(f.Spec.Name)
		if !ok {
			// Padding bytes are written as zeros.
			pad := make([]byte, f.Spec.ByteLen())
			appenders[i] = func(dst []byte, _ int) []byte { return append(dst, pad...) }
			continue
		}
		appenders[i] = rowAppender(col, f.Spec.Count)
	}

	bw := bufio.NewWriterSize(w, 1<<16)
	record := make([]byte, 0, lay.Stride)
	for row := 0; row < points; row++ {
		record = record[:0]
		for _, app := range appenders {
			record = app(record, row)
		}
		if _, err := bw.Write(record); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func rowAppender(col storage.Column, count int) func(dst []byte, row int) []byte {
	switch c := col.(type) {
	case storage.F32Column:
		return func(dst []byte, row int) []byte {
			for k := 0; k < count; k++ {
				dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(c[row*count+k]))
			}
			return dst
		}
	case storage.F64Column:
		return func(dst []byte, row int) []byte {
			for k := 0; k < count; k++ {
				dst = binary.LittleEndian.AppendUint64(dst, math.Float64bits(c[row*count+k]))
			}
			return dst
		}
	case storage.I8Column:
		return func(dst []byte, row int) []byte {
			for k := 0; k < count; k++ {
				dst = append(dst, byte(c[row*count+k]))
			}
			return dst
		}
	case storage.I16Column:
		return func(dst []byte, row int) []byte {
			for k := 0; k < count; k++ {
				dst = binary.LittleEndian.AppendUint16(dst, uint16(c[row*count+k]))
			}
			return dst
		}
	case storage.I32Column:
		return func(dst []byte, row int) []byte {
			for k := 0; k < count; k++ {
				dst = binary.LittleEndian.AppendUint32(dst, uint32(c[row*count+k]))
			}
			return dst
		}
	case storage.U8Column:
		return func(dst []byte, row int) []byte {
			for k := 0; k < count; k++ {
				dst = append(dst, c[row*count+k])
			}
			return dst
		}
	case storage.U16Column:
		return func(dst []byte, row int) []byte {
			for k := 0; k < count; k++ {
				dst = binary.LittleEndian.AppendUint16(dst, c[row*count+k])
			}
			return dst
		}
	case storage.U32Column:
		return func(dst []byte, row int) []byte {
			for k := 0; k < count; k++ {
				dst = binary.LittleEndian.AppendUint32(dst, c[row*count+k])
			}
			return dst
		}
	default:
		return func(dst []byte, _ int) []byte { return dst }
	}
}
