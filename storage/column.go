package storage

import (
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/hupe1980/pcdgo/header"
)

// hostLittleEndian is computed once; the zero-copy fast paths are only taken
// on little-endian hosts because PCD stores multi-byte values little-endian.
var hostLittleEndian = func() bool {
	var x uint16 = 1
	return *(*byte)(unsafe.Pointer(&x)) == 1
}()

// IsLittleEndian reports whether the host stores integers little-endian.
func IsLittleEndian() bool { return hostLittleEndian }

// Column is a homogeneous typed array holding one field's values for every
// point. Bytes exposes the backing memory in host byte order; it is only a
// valid wire representation on little-endian hosts (see IsLittleEndian).
type Column interface {
	Type() header.ValueType
	Len() int
	Bytes() []byte
}

// F32Column is a column of 32-bit floats.
type F32Column []float32

// F64Column is a column of 64-bit floats.
type F64Column []float64

// I8Column is a column of signed 8-bit integers.
type I8Column []int8

// I16Column is a column of signed 16-bit integers.
type I16Column []int16

// I32Column is a column of signed 32-bit integers.
type I32Column []int32

// U8Column is a column of unsigned 8-bit integers.
type U8Column []uint8

// U16Column is a column of unsigned 16-bit integers.
type U16Column []uint16

// U32Column is a column of unsigned 32-bit integers.
type U32Column []uint32

func (c F32Column) Type() header.ValueType { return header.F32 }
func (c F64Column) Type() header.ValueType { return header.F64 }
func (c I8Column) Type() header.ValueType  { return header.I8 }
func (c I16Column) Type() header.ValueType { return header.I16 }
func (c I32Column) Type() header.ValueType { return header.I32 }
func (c U8Column) Type() header.ValueType  { return header.U8 }
func (c U16Column) Type() header.ValueType { return header.U16 }
func (c U32Column) Type() header.ValueType { return header.U32 }

func (c F32Column) Len() int { return len(c) }
func (c F64Column) Len() int { return len(c) }
func (c I8Column) Len() int  { return len(c) }
func (c I16Column) Len() int { return len(c) }
func (c I32Column) Len() int { return len(c) }
func (c U8Column) Len() int  { return len(c) }
func (c U16Column) Len() int { return len(c) }
func (c U32Column) Len() int { return len(c) }

func (c F32Column) Bytes() []byte {
	if len(c) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&c[0])), len(c)*4)
}

func (c F64Column) Bytes() []byte {
	if len(c) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&c[0])), len(c)*8)
}

func (c I8Column) Bytes() []byte {
	if len(c) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&c[0])), len(c))
}

func (c I16Column) Bytes() []byte {
	if len(c) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&c[0])), len(c)*2)
}

func (c I32Column) Bytes() []byte {
	if len(c) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&c[0])), len(c)*4)
}

func (c U8Column) Bytes() []byte { return c }

func (c U16Column) Bytes() []byte {
	if len(c) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&c[0])), len(c)*2)
}

func (c U32Column) Bytes() []byte {
	if len(c) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&c[0])), len(c)*4)
}

// NewColumn allocates an owned zero-filled column of n elements.
func NewColumn(t header.ValueType, n int) Column {
	switch t {
	case header.F32:
		return make(F32Column, n)
	case header.F64:
		return make(F64Column, n)
	case header.I8:
		return make(I8Column, n)
	case header.I16:
		return make(I16Column, n)
	case header.I32:
		return make(I32Column, n)
	case header.U8:
		return make(U8Column, n)
	case header.U16:
		return make(U16Column, n)
	case header.U32:
		return make(U32Column, n)
	default:
		return nil
	}
}

// ViewLEBytes interprets little-endian wire bytes as a column. On
// little-endian hosts with suitably aligned input the returned column
// aliases data (zero copy) and the second result is true; otherwise the
// bytes are decoded into a fresh owned column and the second result is
// false. len(data) must be a multiple of the element size.
func ViewLEBytes(t header.ValueType, data []byte) (Column, bool) {
	size := t.Size()
	n := len(data) / size
	if n == 0 {
		return NewColumn(t, 0), false
	}

	if hostLittleEndian && uintptr(unsafe.Pointer(&data[0]))%uintptr(size) == 0 {
		p := unsafe.Pointer(&data[0])
		switch t {
		case header.F32:
			return F32Column(unsafe.Slice((*float32)(p), n)), true
		case header.F64:
			return F64Column(unsafe.Slice((*float64)(p), n)), true
		case header.I8:
			return I8Column(unsafe.Slice((*int8)(p), n)), true
		case header.I16:
			return I16Column(unsafe.Slice((*int16)(p), n)), true
		case header.I32:
			return I32Column(unsafe.Slice((*int32)(p), n)), true
		case header.U8:
			return U8Column(data), true
		case header.U16:
			return U16Column(unsafe.Slice((*uint16)(p), n)), true
		case header.U32:
			return U32Column(unsafe.Slice((*uint32)(p), n)), true
		}
	}

	return decodeLEBytes(t, data, n), false
}

// decodeLEBytes gather-copies little-endian wire bytes into an owned column.
func decodeLEBytes(t header.ValueType, data []byte, n int) Column {
	switch t {
	case header.F32:
		col := make(F32Column, n)
		for i := range col {
			col[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
		}
		return col
	case header.F64:
		col := make(F64Column, n)
		for i := range col {
			col[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[i*8:]))
		}
		return col
	case header.I8:
		col := make(I8Column, n)
		for i := range col {
			col[i] = int8(data[i])
		}
		return col
	case header.I16:
		col := make(I16Column, n)
		for i := range col {
			col[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
		}
		return col
	case header.I32:
		col := make(I32Column, n)
		for i := range col {
			col[i] = int32(binary.LittleEndian.Uint32(data[i*4:]))
		}
		return col
	case header.U8:
		col := make(U8Column, n)
		copy(col, data)
		return col
	case header.U16:
		col := make(U16Column, n)
		for i := range col {
			col[i] = binary.LittleEndian.Uint16(data[i*2:])
		}
		return col
	case header.U32:
		col := make(U32Column, n)
		for i := range col {
			col[i] = binary.LittleEndian.Uint32(data[i*4:])
		}
		return col
	default:
		return nil
	}
}

// AppendLEBytes appends the column's little-endian wire representation to
// dst. On little-endian hosts this is a straight memory copy.
func AppendLEBytes(dst []byte, c Column) []byte {
	if hostLittleEndian {
		return append(dst, c.Bytes()...)
	}
	switch col := c.(type) {
	case F32Column:
		for _, v := range col {
			dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v))
		}
	case F64Column:
		for _, v := range col {
			dst = binary.LittleEndian.AppendUint64(dst, math.Float64bits(v))
		}
	case I8Column:
		for _, v := range col {
			dst = append(dst, byte(v))
		}
	case I16Column:
		for _, v := range col {
			dst = binary.LittleEndian.AppendUint16(dst, uint16(v))
		}
	case I32Column:
		for _, v := range col {
			dst = binary.LittleEndian.AppendUint32(dst, uint32(v))
		}
	case U8Column:
		dst = append(dst, col...)
	case U16Column:
		for _, v := range col {
			dst = binary.LittleEndian.AppendUint16(dst, v)
		}
	case U32Column:
		for _, v := range col {
			dst = binary.LittleEndian.AppendUint32(dst, v)
		}
	}
	return dst
}

// CloneColumn returns an owned deep copy of c.
func CloneColumn(c Column) Column {
	switch col := c.(type) {
	case F32Column:
		out := make(F32Column, len(col))
		copy(out, col)
		return out
	case F64Column:
		out := make(F64Column, len(col))
		copy(out, col)
		return out
	case I8Column:
		out := make(I8Column, len(col))
		copy(out, col)
		return out
	case I16Column:
		out := make(I16Column, len(col))
		copy(out, col)
		return out
	case I32Column:
		out := make(I32Column, len(col))
		copy(out, col)
		return out
	case U8Column:
		out := make(U8Column, len(col))
		copy(out, col)
		return out
	case U16Column:
		out := make(U16Column, len(col))
		copy(out, col)
		return out
	case U32Column:
		out := make(U32Column, len(col))
		copy(out, col)
		return out
	default:
		return c
	}
}
