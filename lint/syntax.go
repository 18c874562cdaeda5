package lint

import (
	"fmt"
	"strings"
	"unicode"
)

// Syntax describes the calls the linter looks for.
type Syntax struct {
	// Opener is the token sequence that starts a SQL-building context,
	// written without whitespace.
	Opener string
	// Binders lists the initials of the binding functions
	// allowed in interpolation holes.
	Binders string
	// Sticky keeps a SQL-building context open till the end of input
	// instead of closing it with the parenthesis of the build call.
	// A second opener is an error in sticky mode.
	Sticky bool
}

// DefaultSyntax matches sql(() => ...) build calls with p(...) and s(...) binders.
var DefaultSyntax = Syntax{
	Opener:  "sql(()=>",
	Binders: "ps",
}

func (s Syntax) withDefaults() Syntax {
	if s.Opener == "" {
		s.Opener = DefaultSyntax.Opener
	}
	if s.Binders == "" {
		s.Binders = DefaultSyntax.Binders
	}
	return s
}

// Check reports whether the scanner can use the syntax.
// Empty fields are replaced with the defaults.
func (s Syntax) Check() error {
	return s.withDefaults().validate()
}

func (s Syntax) validate() error {
	if strings.IndexFunc(s.Opener, unicode.IsSpace) >= 0 {
		return fmt.Errorf("%w: opener %q contains whitespace", ErrInvalidSyntax, s.Opener)
	}
	if strings.ContainsAny(s.Opener, `"`) {
		return fmt.Errorf("%w: opener %q contains a quote", ErrInvalidSyntax, s.Opener)
	}
	if strings.ContainsAny(s.Binders, "{( \t\r\n") {
		return fmt.Errorf("%w: binders %q", ErrInvalidSyntax, s.Binders)
	}
	return nil
}
