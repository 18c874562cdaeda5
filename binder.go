package sqlbind

import (
	"fmt"
	"strings"

	"github.com/valyala/bytebufferpool"
)

/*
Binder collects parameters while a query template is being evaluated.

A Binder is handed to a template function by Builder.SQL and is only valid
until that function returns:

	q, err := sqlbind.SQL(func(b *sqlbind.Binder) string {
		return `
			|SELECT id, name
			|  FROM users
			| WHERE id = ` + b.P(42) + `
			|   AND status IN (` + b.List("active", "blocked") + `)`
	})
	// SELECT id, name
	//   FROM users
	//  WHERE id = @p_0_
	//    AND status IN (@p_1_, @p_2_)

Binding errors are sticky: binding methods always return a placeholder,
the first error is kept and returned by the build call.
*/
type Binder struct {
	params    []Parameter
	bound     []any
	byName    map[string]int
	generated int
	err       error
}

func newBinder() *Binder {
	return &Binder{
		params: make([]Parameter, 0, 8),
		bound:  make([]any, 0, 8),
		byName: make(map[string]int),
	}
}

/*
P binds a value and returns its placeholder.

Host values and Values are bound as generated parameters named p_<N>_,
where N counts generated parameters of the current query, starting at 0.
A Parameter created with Pin is bound by its name, see Named.
*/
func (b *Binder) P(v any) string {
	if p, ok := v.(Parameter); ok {
		return b.Param(p)
	}
	return b.bindGenerated(ValueOf(v))
}

/*
Named binds a value under an explicit name.

The same name may be bound several times within one query as long as
the value is the same each time: all uses share one parameter.
Binding a name with a different value is a *ConflictError.
*/
func (b *Binder) Named(name string, v any) string {
	return b.Param(Pin(name, v))
}

// Param binds a parameter. Pinned parameters keep their name,
// generated ones get the next index of the current query.
func (b *Binder) Param(p Parameter) string {
	if !p.Pinned() {
		return b.bindGenerated(p.value)
	}
	if err := checkName(p.name); err != nil {
		b.fail(err)
		return p.Placeholder()
	}
	return b.bindPinned(p, p.value.Get())
}

// List binds every value in order and returns comma separated placeholders.
// Use it to build IN lists.
func (b *Binder) List(vs ...any) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	for i, v := range vs {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(b.P(v))
	}
	return buf.String()
}

// ListOf binds every element of a slice, see Binder.List.
func ListOf[T any](b *Binder, vs []T) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	for i, v := range vs {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(b.P(v))
	}
	return buf.String()
}

/*
Sub embeds a query into the one being built.

Generated parameters of q are numbered after the ones already bound,
pinned parameters are merged by name.
*/
func (b *Binder) Sub(q *Query) string {
	if q == nil {
		return ""
	}
	offset := b.generated
	for _, p := range q.params {
		if p.Pinned() {
			b.bindPinned(p, p.value.Get())
			continue
		}
		b.add(p.withIndex(p.index+offset), nil)
		b.generated++
	}
	return renumbered(q.sql, offset)
}

// Slot declares a template parameter that gets its value later,
// see Template.Materialize.
func (b *Binder) Slot(name string, kind Kind) string {
	return b.Param(Parameter{
		index: PinnedIndex,
		name:  strings.TrimPrefix(name, "@"),
		value: slotValue(kind),
	})
}

// Len returns the number of parameters bound so far.
func (b *Binder) Len() int {
	return len(b.params)
}

// Err returns the first binding error.
func (b *Binder) Err() error {
	return b.err
}

func (b *Binder) bindGenerated(v Value) string {
	p := generated(b.generated, v)
	b.generated++
	b.add(p, nil)
	return p.Placeholder()
}

func (b *Binder) bindPinned(p Parameter, v any) string {
	if i, ok := b.byName[p.name]; ok {
		if !valuesEqual(b.bound[i], v) {
			b.fail(&ConflictError{Name: p.name, Expected: b.bound[i], Actual: v})
		}
		return p.Placeholder()
	}
	b.byName[p.name] = len(b.params)
	b.add(p, v)
	return p.Placeholder()
}

func (b *Binder) add(p Parameter, v any) {
	b.params = append(b.params, p)
	b.bound = append(b.bound, v)
}

func (b *Binder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

func (b *Binder) reset() {
	clear(b.params)
	clear(b.bound)
	clear(b.byName)
	b.params = b.params[:0]
	b.bound = b.bound[:0]
	b.generated = 0
	b.err = nil
}

func checkName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidName)
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if !isIdentByte(c) || (i == 0 && c >= '0' && c <= '9') {
			return fmt.Errorf("%w: %q", ErrInvalidName, name)
		}
	}
	if from, to, _ := nextToken("@"+name, 0); from == 0 && to == len(name)+1 {
		return fmt.Errorf("%w: %q is reserved for generated parameters", ErrInvalidName, name)
	}
	return nil
}
