package sqlbind

import (
	"errors"
	"fmt"
)

var (
	// ErrConflict is returned when a named parameter is bound twice with different values.
	ErrConflict = errors.New("sqlbind: named parameter conflict")

	// ErrInvalidName is returned for pinned names that are not identifiers
	// or look like generated parameter names.
	ErrInvalidName = errors.New("sqlbind: invalid parameter name")

	// ErrInvalidQuery is returned when SQL text and parameters do not match.
	ErrInvalidQuery = errors.New("sqlbind: invalid query")

	// ErrMissingValue is returned when a template slot has no value.
	ErrMissingValue = errors.New("sqlbind: missing slot value")

	// ErrUnknownSlot is returned when a value is supplied for a slot a template does not declare.
	ErrUnknownSlot = errors.New("sqlbind: unknown slot")

	// ErrKindMismatch is returned when a slot value has a kind other than declared.
	ErrKindMismatch = errors.New("sqlbind: slot kind mismatch")

	// ErrNoColumn is returned by Row accessors for a column the result set does not have.
	ErrNoColumn = errors.New("sqlbind: no such column")

	// ErrNullValue is returned by Row accessors without a default value for NULL columns.
	ErrNullValue = errors.New("sqlbind: unexpected NULL value")
)

// ConflictError describes a named parameter used with different values
// within one query.
type ConflictError struct {
	Name     string
	Expected any
	Actual   any
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf(
		"sqlbind: named parameter unexpectedly used with different values "+
			"(parameter_name=%s, expected_value=%v, actual_value=%v)",
		e.Name, e.Expected, e.Actual)
}

// Is matches ErrConflict.
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}
