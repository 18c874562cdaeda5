package lint

import (
	"errors"
	"fmt"
)

var (
	// ErrUnexpectedOpener is returned when a SQL-building context opener is
	// found within an open context. The linter does not support nested contexts.
	ErrUnexpectedOpener = errors.New("lint: unexpected SQL context opener")

	// ErrFolderNotFound is returned by ValidateFolder for a path that is
	// not an existing directory.
	ErrFolderNotFound = errors.New("lint: folder not found")

	// ErrInvalidSyntax is returned for Syntax values the scanner can not use.
	ErrInvalidSyntax = errors.New("lint: invalid syntax")
)

// ScanError is an error found at a specific position of the input.
type ScanError struct {
	Line     int
	Position int
	Err      error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("%d:%d: %v", e.Line, e.Position, e.Err)
}

func (e *ScanError) Unwrap() error {
	return e.Err
}
