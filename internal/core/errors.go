package core

// errors.go defines the typed failures raised by the engine.
//
// All of them are fatal to the operation that raised them. Inference and
// merging are all-or-nothing: no partially typed table is ever returned.

import (
	"errors"
	"fmt"
)

// ErrNoRows is returned when a pivot or matrix conversion has no rows to take
// a field set from.
var ErrNoRows = errors.New("no rows to pivot")

// TypeConflictError reports a field whose values resolve to incompatible
// scalar types.
type TypeConflictError struct {
	Table string // Table name (empty when raised by InferType directly)
	Field string

	Want      ScalarType // Type fixed by the earliest conflicting value
	WantValue string
	WantRow   int // 0-based data row index

	Got      ScalarType
	GotValue string
	GotRow   int
}

func (e *TypeConflictError) Error() string {
	where := fmt.Sprintf("field %q", e.Field)
	if e.Table != "" {
		where = fmt.Sprintf("table %q %s", e.Table, where)
	}
	return fmt.Sprintf("type conflict: %s: row %d value %q is %s but row %d value %q is %s",
		where, e.WantRow, e.WantValue, e.Want, e.GotRow, e.GotValue, e.Got)
}

// ShapeMismatchError reports a row whose cells or fields do not line up with
// the expected shape.
type ShapeMismatchError struct {
	Table string // Optional
	Row   int    // 0-based row index
	Field string // Set when a specific field is missing
	Want  int    // Expected cell or field count
	Got   int
}

func (e *ShapeMismatchError) Error() string {
	prefix := "shape mismatch"
	if e.Table != "" {
		prefix = fmt.Sprintf("shape mismatch in table %q", e.Table)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: row %d is missing field %q", prefix, e.Row, e.Field)
	}
	return fmt.Sprintf("%s: row %d has %d fields, expected %d", prefix, e.Row, e.Got, e.Want)
}

// DuplicateFieldError reports a field list that names the same field twice.
type DuplicateFieldError struct {
	Table string
	Field string
	First int // Column positions of both occurrences
	Again int
}

func (e *DuplicateFieldError) Error() string {
	return fmt.Sprintf("duplicate field in table %q: %q at columns %d and %d",
		e.Table, e.Field, e.First, e.Again)
}
