package pcdgo

import (
	"errors"
	"fmt"
)

// ErrEmptyBlock is returned when writing a block with no columns.
var ErrEmptyBlock = errors.New("pcd: point block has no columns")

// ValidationError reports inconsistent writer input. It is raised before
// any byte is written, so a failing write never produces a partial file.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("pcd: invalid input: field %q: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("pcd: invalid input: %s", e.Reason)
}
