package lint

import (
	"io"
	"strconv"
	"strings"
)

// Finding points at an interpolation hole that is not a binding call.
// Line and Position are 1-based.
type Finding struct {
	Line     int `json:"line" yaml:"line"`
	Position int `json:"position" yaml:"position"`
}

func (f Finding) String() string {
	return strconv.Itoa(f.Line) + ":" + strconv.Itoa(f.Position)
}

// FileFinding is a Finding in a file.
type FileFinding struct {
	Path    string `json:"path" yaml:"path"`
	Finding `yaml:",inline"`
}

func (f FileFinding) String() string {
	return f.Path + ":" + f.Finding.String()
}

// Validate checks source code with the default syntax.
// It returns true if there are no findings.
func Validate(code string) (bool, []Finding, error) {
	return DefaultSyntax.Validate(code)
}

// ValidateReader checks source code read from r with the default syntax.
func ValidateReader(r io.Reader) (bool, []Finding, error) {
	return DefaultSyntax.ValidateReader(r)
}

// Validate checks source code. It returns true if there are no findings.
func (s Syntax) Validate(code string) (bool, []Finding, error) {
	return s.ValidateReader(strings.NewReader(code))
}

/*
ValidateReader checks source code read from r.

Findings are returned in the order they appear in the input.
An error is returned if r fails or the scanner meets a construct
it does not support, such as a nested SQL-building context.
*/
func (s Syntax) ValidateReader(r io.Reader) (bool, []Finding, error) {
	s = s.withDefaults()
	if err := s.validate(); err != nil {
		return false, nil, err
	}

	sc := newScanner(r, s)
	if err := sc.run(); err != nil {
		return false, nil, err
	}
	return len(sc.findings) == 0, sc.findings, nil
}
