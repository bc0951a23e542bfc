package storage

import (
	"errors"
	"fmt"
)

// ErrDuplicateField is returned when a field name is added twice.
var ErrDuplicateField = errors.New("storage: duplicate field name")

// PointBlock is an ordered mapping from field name to column. Insertion
// order mirrors the FieldSpec order of the PCD the block was decoded from
// (or will be written to). Padding fields ("_") carry no column.
type PointBlock struct {
	points  int
	names   []string
	columns map[string]Column
	views   map[string]struct{}
}

// NewPointBlock creates an empty block for the given number of points.
func NewPointBlock(points int) *PointBlock {
	return &PointBlock{
		points:  points,
		columns: make(map[string]Column),
		views:   make(map[string]struct{}),
	}
}

// Points returns the number of points in the block. Columns of multi-count
// fields hold points*count elements.
func (b *PointBlock) Points() int { return b.points }

// Names returns the field names in insertion order.
func (b *PointBlock) Names() []string {
	out := make([]string, len(b.names))
	copy(out, b.names)
	return out
}

// Column returns the column for a field name.
func (b *PointBlock) Column(name string) (Column, bool) {
	c, ok := b.columns[name]
	return c, ok
}

// Set adds an owned column under name.
func (b *PointBlock) Set(name string, col Column) error {
	return b.add(name, col, false)
}

// SetView adds a column that borrows memory owned elsewhere (typically a
// file mapping). The view becomes invalid when its owner is released.
func (b *PointBlock) SetView(name string, col Column) error {
	return b.add(name, col, true)
}

func (b *PointBlock) add(name string, col Column, view bool) error {
	if name == "" {
		return fmt.Errorf("storage: empty field name")
	}
	if _, dup := b.columns[name]; dup {
		return fmt.Errorf("%w: %q", ErrDuplicateField, name)
	}
	b.names = append(b.names, name)
	b.columns[name] = col
	if view {
		b.views[name] = struct{}{}
	}
	return nil
}

// Owned reports whether every column is an owned buffer (no borrowed views).
func (b *PointBlock) Owned() bool { return len(b.views) == 0 }

// IsView reports whether the named column borrows external memory.
func (b *PointBlock) IsView(name string) bool {
	_, ok := b.views[name]
	return ok
}

// Detach deep-copies every borrowed column so the block no longer references
// external memory and may outlive the mapping it was decoded from.
func (b *PointBlock) Detach() {
	for name := range b.views {
		b.columns[name] = CloneColumn(b.columns[name])
		delete(b.views, name)
	}
}
