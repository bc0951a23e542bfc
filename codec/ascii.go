package codec

import (
	"bufio"
	"bytes"
	"io"
	"strconv"
	"strings"

	"github.com/hupe1980/pcdgo/layout"
	"github.com/hupe1980/pcdgo/storage"
)

// DecodeASCII parses points lines from data into freshly allocated owned
// columns. Rows with a token count not matching the schema fail with
// *RowLengthError; malformed numeric tokens fail with *ParseNumberError.
// Padding fields consume their tokens but produce no column.
func DecodeASCII(data []byte, lay *layout.Layout, points int, block *storage.PointBlock) error {
	tokensPerPoint := lay.TokensPerPoint()

	cols := make([]storage.Column, len(lay.Fields))
	for i, f := range lay.Fields {
		if f.Spec.IsPadding() {
			continue
		}
		cols[i] = storage.NewColumn(f.Spec.Type, points*f.Spec.Count)
	}

	row := 0
	for pos := 0; row < points; {
		if pos >= len(data) {
			return &TruncatedError{Want: points, Got: row, Unit: "rows"}
		}
		var line string
		if nl := bytes.IndexByte(data[pos:], '\n'); nl >= 0 {
			line = string(data[pos : pos+nl])
			pos += nl + 1
		} else {
			line = string(data[pos:])
			pos = len(data)
		}
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}

		tokens := strings.Fields(line)
		if len(tokens) != tokensPerPoint {
			return &RowLengthError{Row: row, Want: tokensPerPoint, Got: len(tokens)}
		}

		ti := 0
		for i, f := range lay.Fields {
			count := f.Spec.Count
			if f.Spec.IsPadding() {
				ti += count
				continue
			}
			for k := 0; k < count; k++ {
				if err := parseToken(cols[i], row*count+k, tokens[ti]); err != nil {
					return &ParseNumberError{Row: row, Field: f.Spec.Name, cause: err}
				}
				ti++
			}
		}
		row++
	}

	for i, f := range lay.Fields {
		if f.Spec.IsPadding() {
			continue
		}
		if err := block.Set(f.Spec.Name, cols[i]); err != nil {
			return err
		}
	}
	return nil
}

func parseToken(col storage.Column, idx int, tok string) error {
	switch c := col.(type) {
	case storage.F32Column:
		v, err := strconv.ParseFloat(tok, 32)
		if err != nil {
			return err
		}
		c[idx] = float32(v)
	case storage.F64Column:
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return err
		}
		c[idx] = v
	case storage.I8Column:
		v, err := strconv.ParseInt(tok, 10, 8)
		if err != nil {
			return err
		}
		c[idx] = int8(v)
	case storage.I16Column:
		v, err := strconv.ParseInt(tok, 10, 16)
		if err != nil {
			return err
		}
		c[idx] = int16(v)
	case storage.I32Column:
		v, err := strconv.ParseInt(tok, 10, 32)
		if err != nil {
			return err
		}
		c[idx] = int32(v)
	case storage.U8Column:
		v, err := strconv.ParseUint(tok, 10, 8)
		if err != nil {
			return err
		}
		c[idx] = uint8(v)
	case storage.U16Column:
		v, err := strconv.ParseUint(tok, 10, 16)
		if err != nil {
			return err
		}
		c[idx] = uint16(v)
	case storage.U32Column:
		v, err := strconv.ParseUint(tok, 10, 32)
		if err != nil {
			return err
		}
		c[idx] = uint32(v)
	}
	return nil
}

// EncodeASCII writes one line per point. Integers are formatted decimal;
// floats use the shortest representation that round-trips exactly
// (strconv 'g' with precision -1). Padding fields emit zero tokens.
func EncodeASCII(w io.Writer, lay *layout.Layout, block *storage.PointBlock) error {
	bw := bufio.NewWriterSize(w, 1<<16)
	points := block.Points()

	cols := make([]storage.Column, len(lay.Fields))
	for i, f := range lay.Fields {
		if c, ok := block.Column(f.Spec.Name); ok {
			cols[i] = c
		}
	}

	scratch := make([]byte, 0, 32)
	for row := 0; row < points; row++ {
		for i, f := range lay.Fields {
			count := f.Spec.Count
			for k := 0; k < count; k++ {
				if i > 0 || k > 0 {
					if err := bw.WriteByte(' '); err != nil {
						return err
					}
				}
				scratch = appendToken(scratch[:0], cols[i], row*count+k)
				if _, err := bw.Write(scratch); err != nil {
					return err
				}
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func appendToken(dst []byte, col storage.Column, idx int) []byte {
	switch c := col.(type) {
	case storage.F32Column:
		return strconv.AppendFloat(dst, float64(c[idx]), 'g', -1, 32)
	case storage.F64Column:
		return strconv.AppendFloat(dst, c[idx], 'g', -1, 64)
	case storage.I8Column:
		return strconv.AppendInt(dst, int64(c[idx]), 10)
	case storage.I16Column:
		return strconv.AppendInt(dst, int64(c[idx]), 10)
	case storage.I32Column:
		return strconv.AppendInt(dst, int64(c[idx]), 10)
	case storage.U8Column:
		return strconv.AppendUint(dst, uint64(c[idx]), 10)
	case storage.U16Column:
		return strconv.AppendUint(dst, uint64(c[idx]), 10)
	case storage.U32Column:
		return strconv.AppendUint(dst, uint64(c[idx]), 10)
	default:
		// Padding field without a column.
		return append(dst, '0')
	}
}
