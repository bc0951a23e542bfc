// Package layout derives the byte layout of a point record from a field
// schema: per-field byte offsets (prefix sums of size*count) and the total
// stride. It is format agnostic; the ascii, binary and compressed codecs all
// consult it for column-to-buffer mapping, and the binary codec additionally
// uses it for pointer arithmetic into mapped memory.
package layout

import (
	"fmt"

	"github.com/hupe1980/pcdgo/header"
)

// SchemaError reports an invalid field schema.
type SchemaError struct {
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("pcd schema: field %q: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("pcd schema: %s", e.Reason)
}

// Field is a FieldSpec placed at a byte offset within the point record.
type Field struct {
	Spec   header.FieldSpec
	Offset int
}

// ByteLen returns the total byte length of this field's column for the
// given number of points.
func (f Field) ByteLen(points int) int {
	return f.Spec.ByteLen() * points
}

// Layout is the byte layout of one point record.
type Layout struct {
	Fields []Field
	Stride int
}

// New computes the layout for the given field schema.
func New(specs []header.FieldSpec) (*Layout, error) {
	if len(specs) == 0 {
		return nil, &SchemaError{Reason: "no fields"}
	}

	seen := make(map[string]struct{}, len(specs))
	lay := &Layout{Fields: make([]Field, len(specs))}

	for i, spec := range specs {
		if spec.Name == "" {
			return nil, &SchemaError{Reason: fmt.Sprintf("field %d has an empty name", i)}
		}
		if spec.Size() == 0 {
			return nil, &SchemaError{Field: spec.Name, Reason: "unknown type or zero size"}
		}
		if spec.Count < 1 {
			return nil, &SchemaError{Field: spec.Name, Reason: fmt.Sprintf("count %d is below 1", spec.Count)}
		}
		if !spec.IsPadding() {
			if _, dup := seen[spec.Name]; dup {
				return nil, &SchemaError{Field: spec.Name, Reason: "duplicate field name"}
			}
			seen[spec.Name] = struct{}{}
		}
		lay.Fields[i] = Field{Spec: spec, Offset: lay.Stride}
		lay.Stride += spec.ByteLen()
	}

	return lay, nil
}

// Contiguous reports whether the record reduces to a single field, i.e.
// that field's bytes are laid out back to back across the whole payload.
func (l *Layout) Contiguous() bool {
	return len(l.Fields) == 1
}

// TokensPerPoint returns the number of ascii tokens one point emits:
// the sum of counts over all fields, padding included.
func (l *Layout) TokensPerPoint() int {
	var n int
	for _, f := range l.Fields {
		n += f.Spec.Count
	}
	return n
}
