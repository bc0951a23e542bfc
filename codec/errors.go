package codec

import (
	"errors"
	"fmt"
)

// ErrCompressOverflow is returned when an LZF-compressed payload cannot be
// produced, either because the input exceeds the algorithm's limits or the
// compressed output would not fit a uint32 length prefix.
var ErrCompressOverflow = errors.New("pcd payload: compressed size overflow")

// TruncatedError reports a payload shorter than the header promises.
type TruncatedError struct {
	Want int
	Got  int
	Unit string // "bytes" or "rows"
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("pcd payload: truncated: want %d %s, got %d", e.Want, e.Unit, e.Got)
}

// RowLengthError reports an ascii row whose token count does not match the
// schema's tokens per point.
type RowLengthError struct {
	Row  int
	Want int
	Got  int
}

func (e *RowLengthError) Error() string {
	return fmt.Sprintf("pcd payload: row %d: expected %d tokens, got %d", e.Row, e.Want, e.Got)
}

// ParseNumberError reports a malformed numeric token in an ascii payload.
//
// The strconv cause can be accessed via errors.Unwrap.
type ParseNumberError struct {
	Row   int
	Field string
	cause error
}

func (e *ParseNumberError) Error() string {
	return fmt.Sprintf("pcd payload: row %d: field %q: %v", e.Row, e.Field, e.cause)
}

func (e *ParseNumberError) Unwrap() error { return e.cause }

// DecompressSizeError reports a mismatch between the declared uncompressed
// size of a binary_compressed payload and the size the schema requires or
// the decompressor produced.
type DecompressSizeError struct {
	Declared int
	Actual   int
}

func (e *DecompressSizeError) Error() string {
	return fmt.Sprintf("pcd payload: decompressed size mismatch: declared %d, actual %d", e.Declared, e.Actual)
}
