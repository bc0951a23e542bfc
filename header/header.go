// Package header parses and serializes the textual PCD header.
//
// A PCD header is a sequence of "KEY token..." lines terminated by the DATA
// line; the payload starts at the byte immediately after the DATA line's
// newline. Parse therefore returns the exact header byte length alongside
// the decoded Header so callers can locate the payload without re-scanning.
package header

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// Identity is the default VIEWPOINT (tx ty tz qw qx qy qz).
var Identity = [7]float64{0, 0, 0, 1, 0, 0, 0}

// Header is the decoded PCD header. It is immutable after construction.
type Header struct {
	Version   string
	Fields    []FieldSpec
	Width     uint32
	Height    uint32
	Viewpoint [7]float64
	Points    int
	Data      DataFormat
}

// Error reports a malformed or incomplete header.
//
// Key names the offending header key when known. The underlying cause (if
// any) can be accessed via errors.Unwrap.
type Error struct {
	Key    string
	Reason string
	cause  error
}

func (e *Error) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("pcd header: %s: %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("pcd header: %s", e.Reason)
}

func (e *Error) Unwrap() error { return e.cause }

// Stride returns the byte size of one point record: sum of size*count over
// all fields, padding included.
func (h *Header) Stride() int {
	var n int
	for _, f := range h.Fields {
		n += f.ByteLen()
	}
	return n
}

// FieldNames returns the field names in declaration order.
func (h *Header) FieldNames() []string {
	names := make([]string, len(h.Fields))
	for i, f := range h.Fields {
		names[i] = f.Name
	}
	return names
}

// Parse decodes a PCD header from the start of data and returns the header
// together with its exact byte length (the payload offset).
//
// Lines starting with '#' are comments and skipped. COUNT defaults to 1 per
// field when absent (PCD 0.7 files may omit it); POINTS defaults to
// WIDTH*HEIGHT; VIEWPOINT defaults to the identity pose. All other keys are
// required.
func Parse(data []byte) (*Header, int, error) {
	keys := make(map[string][]string, 11)
	pos := 0

	for {
		nl := bytes.IndexByte(data[pos:], '\n')
		if nl < 0 {
			return nil, 0, &Error{Reason: "missing DATA line"}
		}
		line := string(data[pos : pos+nl])
		pos += nl + 1

		line = strings.TrimRight(line, "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		tokens := strings.Fields(line)
		if len(tokens) == 0 {
			continue
		}
		key := tokens[0]
		if _, ok := keys[key]; ok {
			return nil, 0, &Error{Key: key, Reason: "duplicate key"}
		}
		keys[key] = tokens[1:]

		if key == "DATA" {
			break
		}
	}

	h := &Header{Viewpoint: Identity}

	version, ok := keys["VERSION"]
	if !ok || len(version) != 1 {
		return nil, 0, &Error{Key: "VERSION", Reason: "missing or malformed"}
	}
	h.Version = version[0]

	names, ok := keys["FIELDS"]
	if !ok || len(names) == 0 {
		return nil, 0, &Error{Key: "FIELDS", Reason: "missing or empty"}
	}

	sizes, err := intList(keys, "SIZE", len(names))
	if err != nil {
		return nil, 0, err
	}
	types, ok := keys["TYPE"]
	if !ok {
		return nil, 0, &Error{Key: "TYPE", Reason: "missing"}
	}
	if len(types) != len(names) {
		return nil, 0, &Error{Key: "TYPE", Reason: fmt.Sprintf("expected %d entries, got %d", len(names), len(types))}
	}

	var counts []int
	if _, ok := keys["COUNT"]; ok {
		counts, err = intList(keys, "COUNT", len(names))
		if err != nil {
			return nil, 0, err
		}
	} else {
		// PCD 0.7 compatibility: COUNT may be omitted entirely.
		counts = make([]int, len(names))
		for i := range counts {
			counts[i] = 1
		}
	}

	h.Fields = make([]FieldSpec, len(names))
	for i, name := range names {
		if len(types[i]) != 1 {
			return nil, 0, &Error{Key: "TYPE", Reason: fmt.Sprintf("malformed type token %q", types[i])}
		}
		vt, err := ParseValueType(types[i][0], sizes[i])
		if err != nil {
			return nil, 0, &Error{Key: "TYPE", Reason: err.Error(), cause: err}
		}
		if counts[i] < 1 {
			return nil, 0, &Error{Key: "COUNT", Reason: fmt.Sprintf("field %q has count %d", name, counts[i])}
		}
		h.Fields[i] = FieldSpec{Name: name, Type: vt, Count: counts[i]}
	}

	h.Width, err = uintValue(keys, "WIDTH")
	if err != nil {
		return nil, 0, err
	}
	h.Height, err = uintValue(keys, "HEIGHT")
	if err != nil {
		return nil, 0, err
	}

	if vp, ok := keys["VIEWPOINT"]; ok {
		if len(vp) != 7 {
			return nil, 0, &Error{Key: "VIEWPOINT", Reason: fmt.Sprintf("expected 7 values, got %d", len(vp))}
		}
		for i, tok := range vp {
			v, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				return nil, 0, &Error{Key: "VIEWPOINT", Reason: fmt.Sprintf("malformed value %q", tok), cause: err}
			}
			h.Viewpoint[i] = v
		}
	}

	if pts, ok := keys["POINTS"]; ok {
		if len(pts) != 1 {
			return nil, 0, &Error{Key: "POINTS", Reason: "malformed"}
		}
		n, err := strconv.ParseUint(pts[0], 10, 32)
		if err != nil {
			return nil, 0, &Error{Key: "POINTS", Reason: fmt.Sprintf("malformed value %q", pts[0]), cause: err}
		}
		h.Points = int(n)
	} else {
		h.Points = int(h.Width) * int(h.Height)
	}

	df, ok := keys["DATA"]
	if !ok || len(df) != 1 {
		return nil, 0, &Error{Key: "DATA", Reason: "missing or malformed"}
	}
	h.Data, err = ParseDataFormat(strings.ToLower(df[0]))
	if err != nil {
		return nil, 0, &Error{Key: "DATA", Reason: err.Error(), cause: err}
	}

	return h, pos, nil
}

// Marshal serializes the header in canonical key order, terminated by the
// newline after the DATA line. The byte length of the result is the exact
// payload offset of the file being written.
func (h *Header) Marshal() []byte {
	var b bytes.Buffer
	b.WriteString("# .PCD v0.7 - Point Cloud Data file format\n")
	fmt.Fprintf(&b, "VERSION %s\n", h.Version)

	b.WriteString("FIELDS")
	for _, f := range h.Fields {
		b.WriteByte(' ')
		b.WriteString(f.Name)
	}
	b.WriteByte('\n')

	b.WriteString("SIZE")
	for _, f := range h.Fields {
		fmt.Fprintf(&b, " %d", f.Size())
	}
	b.WriteByte('\n')

	b.WriteString("TYPE")
	for _, f := range h.Fields {
		b.WriteByte(' ')
		b.WriteByte(f.Type.TypeChar())
	}
	b.WriteByte('\n')

	b.WriteString("COUNT")
	for _, f := range h.Fields {
		fmt.Fprintf(&b, " %d", f.Count)
	}
	b.WriteByte('\n')

	fmt.Fprintf(&b, "WIDTH %d\n", h.Width)
	fmt.Fprintf(&b, "HEIGHT %d\n", h.Height)

	b.WriteString("VIEWPOINT")
	for _, v := range h.Viewpoint {
		b.WriteByte(' ')
		b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	}
	b.WriteByte('\n')

	fmt.Fprintf(&b, "POINTS %d\n", h.Points)
	fmt.Fprintf(&b, "DATA %s\n", h.Data)

	return b.Bytes()
}

func intList(keys map[string][]string, key string, want int) ([]int, error) {
	tokens, ok := keys[key]
	if !ok {
		return nil, &Error{Key: key, Reason: "missing"}
	}
	if len(tokens) != want {
		return nil, &Error{Key: key, Reason: fmt.Sprintf("expected %d entries, got %d", want, len(tokens))}
	}
	vals := make([]int, len(tokens))
	for i, tok := range tokens {
		v, err := strconv.Atoi(tok)
		if err != nil {
			return nil, &Error{Key: key, Reason: fmt.Sprintf("malformed value %q", tok), cause: err}
		}
		vals[i] = v
	}
	return vals, nil
}

func uintValue(keys map[string][]string, key string) (uint32, error) {
	tokens, ok := keys[key]
	if !ok || len(tokens) != 1 {
		return 0, &Error{Key: key, Reason: "missing or malformed"}
	}
	v, err := strconv.ParseUint(tokens[0], 10, 32)
	if err != nil {
		return 0, &Error{Key: key, Reason: fmt.Sprintf("malformed value %q", tokens[0]), cause: err}
	}
	return uint32(v), nil
}
