package lint

import (
	"bufio"
	"io"
	"strings"
	"unicode"
)

// fence is pushed to the lookback window after a string literal
// so that literal detection never looks across a literal.
const fence = 0

// scanner is a single-pass state machine over source text.
//
// In the normal state it keeps a window of the last non-whitespace runes
// to detect the context opener and the prefix of a string literal.
// String literals are consumed by plain and verbatim, which check
// interpolation holes when the literal is interpolated and a
// SQL-building context is open.
type scanner struct {
	r      *bufio.Reader
	syntax Syntax
	opener []rune

	window []rune
	pushed int

	line int
	pos  int

	inContext    bool
	depth        int
	contextDepth int

	findings []Finding
	err      error
}

func newScanner(r io.Reader, syntax Syntax) *scanner {
	opener := []rune(syntax.Opener)
	size := len(opener)
	if size < 3 {
		size = 3
	}
	return &scanner{
		r:      bufio.NewReader(r),
		syntax: syntax,
		opener: opener,
		window: make([]rune, size),
		line:   1,
	}
}

func (s *scanner) run() error {
	for {
		ch, ok := s.read()
		if !ok {
			return s.err
		}
		if unicode.IsSpace(ch) {
			continue
		}
		switch ch {
		case '\'':
			s.char()
			s.push(fence)
			continue
		case '/':
			if s.comment() {
				continue
			}
		}
		s.push(ch)

		switch ch {
		case '(':
			s.depth++
		case ')':
			s.depth--
			if s.inContext && !s.syntax.Sticky && s.depth < s.contextDepth {
				s.inContext = false
			}
		}

		if s.openerSeen() {
			if s.inContext {
				return &ScanError{Line: s.line, Position: s.pos, Err: ErrUnexpectedOpener}
			}
			s.inContext = true
			s.contextDepth = s.depth
			continue
		}

		if ch == '"' {
			verbatim, interpolated := s.literal()
			check := s.inContext && interpolated
			if verbatim {
				s.verbatim(check)
			} else {
				s.plain(check)
			}
			s.push(fence)
		}
	}
}

// literal tells the kind of a string literal that starts
// with the quote just pushed to the window.
func (s *scanner) literal() (verbatim, interpolated bool) {
	prev1, prev2 := s.at(1), s.at(2)
	switch {
	case prev2 == '$' && prev1 == '@', prev2 == '@' && prev1 == '$':
		return true, true
	case prev1 == '@':
		return true, false
	case prev1 == '$':
		return false, true
	}
	return false, false
}

// plain consumes a regular string literal up to an unescaped quote.
func (s *scanner) plain(check bool) {
	for {
		ch, ok := s.read()
		if !ok {
			return
		}
		switch ch {
		case '\\':
			s.read()
			continue
		case '"':
			return
		}
		if check {
			s.hole(ch)
		}
	}
}

// verbatim consumes a verbatim string literal up to a quote
// that is not doubled.
func (s *scanner) verbatim(check bool) {
	for {
		ch, ok := s.read()
		if !ok {
			return
		}
		if ch == '"' {
			if next, ok := s.peek(); ok && next == '"' {
				s.read()
				continue
			}
			return
		}
		if check {
			s.hole(ch)
		}
	}
}

// char consumes a character literal.
func (s *scanner) char() {
	for {
		ch, ok := s.read()
		if !ok {
			return
		}
		switch ch {
		case '\\':
			s.read()
		case '\'', '\n':
			return
		}
	}
}

// comment consumes a comment if the slash just read starts one.
func (s *scanner) comment() bool {
	next, ok := s.peek()
	if !ok {
		return false
	}
	switch next {
	case '/':
		for {
			ch, ok := s.read()
			if !ok || ch == '\n' {
				return true
			}
		}
	case '*':
		s.read()
		star := false
		for {
			ch, ok := s.read()
			if !ok || star && ch == '/' {
				return true
			}
			star = ch == '*'
		}
	}
	return false
}

// hole checks an interpolation hole starting at ch.
func (s *scanner) hole(ch rune) {
	if ch != '{' {
		return
	}
	next, ok := s.peek()
	if !ok {
		return
	}
	if next == '{' {
		s.read()
		return
	}
	if !strings.ContainsRune(s.syntax.Binders, next) {
		s.report()
		return
	}

	s.read()
	if next, ok = s.peek(); ok && next != '(' {
		s.report()
	}
}

func (s *scanner) report() {
	s.findings = append(s.findings, Finding{Line: s.line, Position: s.pos})
}

func (s *scanner) push(ch rune) {
	s.window[s.pushed%len(s.window)] = ch
	s.pushed++
}

// at returns the rune pushed n steps before the last one.
func (s *scanner) at(n int) rune {
	if n >= s.pushed || n >= len(s.window) {
		return fence
	}
	return s.window[(s.pushed-1-n)%len(s.window)]
}

func (s *scanner) openerSeen() bool {
	l := len(s.opener)
	if l == 0 || s.pushed < l {
		return false
	}
	for i := 0; i < l; i++ {
		if s.at(i) != s.opener[l-1-i] {
			return false
		}
	}
	return true
}

func (s *scanner) read() (rune, bool) {
	if s.err != nil {
		return 0, false
	}
	ch, _, err := s.r.ReadRune()
	if err != nil {
		if err != io.EOF {
			s.err = err
		}
		return 0, false
	}
	if ch == '\n' {
		s.line++
		s.pos = 0
	} else {
		s.pos++
	}
	return ch, true
}

func (s *scanner) peek() (rune, bool) {
	if s.err != nil {
		return 0, false
	}
	ch, _, err := s.r.ReadRune()
	if err != nil {
		if err != io.EOF {
			s.err = err
		}
		return 0, false
	}
	_ = s.r.UnreadRune()
	return ch, true
}
