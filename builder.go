package sqlbind

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/valyala/bytebufferpool"
)

const (
	// DefaultMargin is the margin character stripped by the default builder.
	DefaultMargin = '|'
	// NoMargin disables margin stripping.
	NoMargin = 0
)

var defaultBuilder = &Builder{Margin: DefaultMargin, Dialect: NoDialect}

/*
SetDialect selects a Dialect to be used by default Builder

	sqlbind.SetDialect(sqlbind.PostgreSQL)
*/
func SetDialect(dialect *Dialect) {
	defaultBuilder.Dialect = dialect
}

// NewBuilder creates a new query builder instance.
func NewBuilder(margin rune, dialect *Dialect) *Builder {
	return &Builder{Margin: margin, Dialect: dialect}
}

/*
Builder defines a way queries are built.

In most cases a default builder can be used:

	q, err := sqlbind.SQL(func(b *sqlbind.Binder) string {
		return `
			|SELECT name
			|  FROM users
			| WHERE id = ` + b.P(42)
	})
	// Produces
	// SELECT name
	//   FROM users
	//  WHERE id = @p_0_

Margin is a character that marks the start of every template line.
Leading whitespace and the margin character are stripped from each line,
so multi-line templates may be indented in source code.

Create a Builder instance if an application needs to access multiple
database engines or does not want margins to be stripped.
*/
type Builder struct {
	Margin  rune
	Dialect *Dialect
}

/*
SQL evaluates a query template and returns the resulting Query.

The Binder passed to fn collects all the parameters bound while fn
runs. It is cleared and reused once SQL returns, whether the build
succeeded or not, so fn must not keep a reference to it.
*/
func (b *Builder) SQL(fn func(b *Binder) string) (*Query, error) {
	q, err := b.build(fn)
	if err != nil {
		return nil, err
	}
	for _, p := range q.params {
		if _, ok := slotKind(p); ok {
			return nil, fmt.Errorf("%w: slot @%s is only allowed in a template", ErrInvalidQuery, p.name)
		}
	}
	return q, nil
}

// Template builds a reusable query template. See Template.
func (b *Builder) Template(fn func(b *Binder) string) (*Template, error) {
	q, err := b.build(fn)
	if err != nil {
		return nil, err
	}
	return newTemplate(q), nil
}

func (b *Builder) build(fn func(b *Binder) string) (*Query, error) {
	binder := getBinder()
	defer putBinder(binder)

	text := fn(binder)
	if binder.err != nil {
		return nil, binder.err
	}
	if b.Margin != NoMargin {
		text = stripMargin(text, b.Margin)
	}

	q := &Query{
		sql:     text,
		params:  make([]Parameter, len(binder.params)),
		dialect: b.dialect(),
	}
	copy(q.params, binder.params)
	if err := q.validate(); err != nil {
		return nil, err
	}
	return q, nil
}

func (b *Builder) dialect() *Dialect {
	if b.Dialect == nil {
		return NoDialect
	}
	return b.Dialect
}

// SQL builds a query with the default builder.
func SQL(fn func(b *Binder) string) (*Query, error) {
	return defaultBuilder.SQL(fn)
}

// NewTemplate builds a query template with the default builder.
func NewTemplate(fn func(b *Binder) string) (*Template, error) {
	return defaultBuilder.Template(fn)
}

// Must panics if err is not nil. It is intended for queries
// and templates initialized at package level.
func Must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

/*
stripMargin removes leading whitespace from every line of text and,
if the first non-whitespace character of a line is the margin, the
margin itself. Lines containing only whitespace are dropped.
*/
func stripMargin(text string, margin rune) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	skip := true
	for len(text) > 0 {
		r, size := utf8.DecodeRuneInString(text)
		chunk := text[:size]
		text = text[size:]

		if skip && unicode.IsSpace(r) {
			continue
		}
		if skip && r == margin {
			skip = false
			continue
		}
		buf.WriteString(chunk)
		skip = r == '\n'
	}
	return buf.String()
}
