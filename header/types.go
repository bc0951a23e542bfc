package header

import "fmt"

// ValueType identifies the element type of a PCD field.
type ValueType uint8

const (
	// I8 is a signed 8-bit integer (TYPE I, SIZE 1).
	I8 ValueType = iota
	// I16 is a signed 16-bit integer (TYPE I, SIZE 2).
	I16
	// I32 is a signed 32-bit integer (TYPE I, SIZE 4).
	I32
	// U8 is an unsigned 8-bit integer (TYPE U, SIZE 1).
	U8
	// U16 is an unsigned 16-bit integer (TYPE U, SIZE 2).
	U16
	// U32 is an unsigned 32-bit integer (TYPE U, SIZE 4).
	U32
	// F32 is an IEEE 754 single-precision float (TYPE F, SIZE 4).
	F32
	// F64 is an IEEE 754 double-precision float (TYPE F, SIZE 8).
	F64
)

// Size returns the byte size of a single element of this type.
func (t ValueType) Size() int {
	switch t {
	case I8, U8:
		return 1
	case I16, U16:
		return 2
	case I32, U32, F32:
		return 4
	case F64:
		return 8
	default:
		return 0
	}
}

// TypeChar returns the PCD TYPE token for this type ('I', 'U' or 'F').
func (t ValueType) TypeChar() byte {
	switch t {
	case I8, I16, I32:
		return 'I'
	case U8, U16, U32:
		return 'U'
	case F32, F64:
		return 'F'
	default:
		return '?'
	}
}

// String implements fmt.Stringer.
func (t ValueType) String() string {
	switch t {
	case I8:
		return "I8"
	case I16:
		return "I16"
	case I32:
		return "I32"
	case U8:
		return "U8"
	case U16:
		return "U16"
	case U32:
		return "U32"
	case F32:
		return "F32"
	case F64:
		return "F64"
	default:
		return "Unknown"
	}
}

// ParseValueType maps a PCD TYPE token and SIZE to a ValueType.
func ParseValueType(typeChar byte, size int) (ValueType, error) {
	switch typeChar {
	case 'I':
		switch size {
		case 1:
			return I8, nil
		case 2:
			return I16, nil
		case 4:
			return I32, nil
		}
	case 'U':
		switch size {
		case 1:
			return U8, nil
		case 2:
			return U16, nil
		case 4:
			return U32, nil
		}
	case 'F':
		switch size {
		case 4:
			return F32, nil
		case 8:
			return F64, nil
		}
	}
	return 0, fmt.Errorf("unsupported field type %c with size %d", typeChar, size)
}

// DataFormat identifies the payload encoding of a PCD file.
type DataFormat uint8

const (
	// Ascii encodes one point per line with space-separated tokens.
	Ascii DataFormat = iota
	// Binary encodes points as row-major little-endian records.
	Binary
	// BinaryCompressed encodes an LZF-compressed column-major buffer.
	BinaryCompressed
)

// String returns the wire token used on the DATA line.
func (f DataFormat) String() string {
	switch f {
	case Ascii:
		return "ascii"
	case Binary:
		return "binary"
	case BinaryCompressed:
		return "binary_compressed"
	default:
		return "unknown"
	}
}

// ParseDataFormat parses a DATA line token.
func ParseDataFormat(s string) (DataFormat, error) {
	switch s {
	case "ascii":
		return Ascii, nil
	case "binary":
		return Binary, nil
	case "binary_compressed":
		return BinaryCompressed, nil
	default:
		return 0, fmt.Errorf("unknown data format %q", s)
	}
}

// FieldSpec describes a single field of a point record.
//
// The name "_" marks padding bytes that carry no data. Count is the number
// of elements per point (>= 1), allowing small fixed-size vector fields.
type FieldSpec struct {
	Name  string
	Type  ValueType
	Count int
}

// Size returns the byte size of one element, derived from the type.
func (f FieldSpec) Size() int { return f.Type.Size() }

// ByteLen returns the bytes this field occupies in one point record.
func (f FieldSpec) ByteLen() int { return f.Type.Size() * f.Count }

// IsPadding reports whether the field is an ignored padding field.
func (f FieldSpec) IsPadding() bool { return f.Name == "_" }
