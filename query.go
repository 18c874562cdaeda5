package sqlbind

import (
	"fmt"

	"github.com/valyala/bytebufferpool"
)

/*
Query is an SQL text with its parameters.

A Query is immutable: concatenation and dialect changes produce
a new Query and leave the original intact. Every generated placeholder
in the SQL text has a matching parameter and vice versa.
*/
type Query struct {
	sql     string
	params  []Parameter
	dialect *Dialect
}

/*
NewQuery creates a Query from an SQL text and its parameters.

It checks that generated parameters are named after their index,
are numbered 0..n-1 and match the placeholders found in sql,
and that parameter names are unique.
*/
func NewQuery(sql string, params ...Parameter) (*Query, error) {
	q := &Query{
		sql:     sql,
		params:  append([]Parameter(nil), params...),
		dialect: NoDialect,
	}
	if err := q.validate(); err != nil {
		return nil, err
	}
	return q, nil
}

// SQL returns the query text.
func (q *Query) SQL() string {
	return q.sql
}

func (q *Query) String() string {
	return q.sql
}

// Parameters returns a copy of the query parameter list.
func (q *Query) Parameters() []Parameter {
	return append([]Parameter(nil), q.params...)
}

// Len returns the number of query parameters.
func (q *Query) Len() int {
	return len(q.params)
}

// Args evaluates parameter values and returns them as sql.NamedArg
// values accepted by database/sql drivers that support @name placeholders.
func (q *Query) Args() []any {
	args := make([]any, len(q.params))
	for i, p := range q.params {
		args[i] = p.Named()
	}
	return args
}

// Dialect returns the dialect the query is rendered with.
func (q *Query) Dialect() *Dialect {
	return q.dialect
}

// WithDialect returns a copy of the query rendered with the given dialect.
func (q *Query) WithDialect(d *Dialect) *Query {
	if d == nil {
		d = NoDialect
	}
	return &Query{sql: q.sql, params: q.params, dialect: d}
}

/*
Append joins two queries with a line break:

	q1: SELECT id FROM A
	     WHERE 1 = 1
	q2:    AND id >= @p_0_

	q1.Append(q2):
	    SELECT id FROM A
	     WHERE 1 = 1
	       AND id >= @p_0_

Generated parameters of q2 are renumbered to follow the ones of q.
*/
func (q *Query) Append(other *Query) (*Query, error) {
	return concat(q, other, "\n")
}

// AppendInline joins two queries without a separator, see Append.
func (q *Query) AppendInline(other *Query) (*Query, error) {
	return concat(q, other, "")
}

// Concat joins queries with a separator, left to right.
func Concat(sep string, queries ...*Query) (*Query, error) {
	if len(queries) == 0 {
		return &Query{dialect: NoDialect}, nil
	}
	res := queries[0]
	for _, q := range queries[1:] {
		var err error
		res, err = concat(res, q, sep)
		if err != nil {
			return nil, err
		}
	}
	if res == nil {
		return &Query{dialect: NoDialect}, nil
	}
	return res, nil
}

func concat(left, right *Query, sep string) (*Query, error) {
	if right == nil {
		return left, nil
	}
	if left == nil {
		return right, nil
	}
	offset := left.generatedCount()

	params := make([]Parameter, len(left.params), len(left.params)+len(right.params))
	copy(params, left.params)
	for _, p := range right.params {
		if !p.Pinned() {
			params = append(params, p.withIndex(p.index+offset))
			continue
		}
		if i := indexOfName(left.params, p.name); i >= 0 {
			expected, actual := left.params[i].value.Get(), p.value.Get()
			if !valuesEqual(expected, actual) {
				return nil, &ConflictError{Name: p.name, Expected: expected, Actual: actual}
			}
			continue
		}
		params = append(params, p)
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	buf.WriteString(left.sql)
	buf.WriteString(sep)
	renumber(right.sql, offset, buf)

	return &Query{
		sql:     buf.String(),
		params:  params,
		dialect: left.dialect,
	}, nil
}

func (q *Query) generatedCount() int {
	n := 0
	for _, p := range q.params {
		if !p.Pinned() {
			n++
		}
	}
	return n
}

func indexOfName(params []Parameter, name string) int {
	for i, p := range params {
		if p.name == name {
			return i
		}
	}
	return -1
}

func (q *Query) validate() error {
	names := make(map[string]struct{}, len(q.params))
	generated := make(map[int]struct{})
	for _, p := range q.params {
		if _, dup := names[p.name]; dup {
			return fmt.Errorf("%w: duplicate parameter @%s", ErrInvalidQuery, p.name)
		}
		names[p.name] = struct{}{}

		if p.Pinned() {
			if err := checkName(p.name); err != nil {
				return fmt.Errorf("%w: %w", ErrInvalidQuery, err)
			}
			continue
		}
		if p.index < 0 || p.name != ParamName(p.index) {
			return fmt.Errorf("%w: parameter @%s has index %d", ErrInvalidQuery, p.name, p.index)
		}
		generated[p.index] = struct{}{}
	}

	for i := 0; i < len(generated); i++ {
		if _, ok := generated[i]; !ok {
			return fmt.Errorf("%w: generated parameters are not numbered from 0 to %d",
				ErrInvalidQuery, len(generated)-1)
		}
	}

	tokens := tokenIndexes(q.sql)
	for i := range tokens {
		if _, ok := generated[i]; !ok {
			return fmt.Errorf("%w: placeholder @%s has no parameter", ErrInvalidQuery, ParamName(i))
		}
	}
	for i := range generated {
		if _, ok := tokens[i]; !ok {
			return fmt.Errorf("%w: parameter @%s is not used", ErrInvalidQuery, ParamName(i))
		}
	}
	return nil
}
