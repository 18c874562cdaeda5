package sqlbind

import (
	"fmt"
	"maps"
	"slices"
)

/*
Template is a query built once and materialized with different values.

Slots are declared with Binder.Slot while the template is built
and get their values on every Materialize call:

	findUser := sqlbind.Must(sqlbind.NewTemplate(func(b *sqlbind.Binder) string {
		return "SELECT name FROM users WHERE id = " + b.Slot("id", sqlbind.KindInt64)
	}))

	q, err := findUser.Materialize(map[string]any{"id": 42})

Regular bindings made while building a template are shared by
all the queries it produces.
*/
type Template struct {
	query *Query
	slots []string
	kinds map[string]Kind
}

type slot struct {
	kind Kind
}

func slotValue(kind Kind) Value {
	s := slot{kind: kind}
	return Value{kind: kind, produce: func() any { return s }}
}

func slotKind(p Parameter) (Kind, bool) {
	if !p.Pinned() {
		return 0, false
	}
	s, ok := p.value.Get().(slot)
	return s.kind, ok
}

func newTemplate(q *Query) *Template {
	t := &Template{query: q, kinds: make(map[string]Kind)}
	for _, p := range q.params {
		if kind, ok := slotKind(p); ok {
			t.slots = append(t.slots, p.name)
			t.kinds[p.name] = kind
		}
	}
	return t
}

// SQL returns the template text.
func (t *Template) SQL() string {
	return t.query.sql
}

// Slots returns slot names in the order they were declared.
func (t *Template) Slots() []string {
	return append([]string(nil), t.slots...)
}

/*
Materialize creates a Query with slots bound to values.

Every slot must get a value of the declared kind. KindAny slots accept
any value, nullable slots accept nil.
*/
func (t *Template) Materialize(values map[string]any) (*Query, error) {
	for _, name := range slices.Sorted(maps.Keys(values)) {
		if _, ok := t.kinds[name]; !ok {
			return nil, fmt.Errorf("%w: @%s", ErrUnknownSlot, name)
		}
	}

	params := make([]Parameter, len(t.query.params))
	for i, p := range t.query.params {
		kind, ok := t.kinds[p.name]
		if !ok || !p.Pinned() {
			params[i] = p
			continue
		}
		v, ok := values[p.name]
		if !ok {
			return nil, fmt.Errorf("%w: @%s", ErrMissingValue, p.name)
		}
		value := ValueOf(v)
		if err := checkSlotValue(p.name, kind, value); err != nil {
			return nil, err
		}
		params[i] = Parameter{index: PinnedIndex, name: p.name, value: value}
	}

	return &Query{
		sql:     t.query.sql,
		params:  params,
		dialect: t.query.dialect,
	}, nil
}

func checkSlotValue(name string, kind Kind, v Value) error {
	if kind.Base() == KindAny {
		return nil
	}
	if v.Kind().Base() == KindAny && v.Kind().IsNullable() {
		// untyped nil
		if kind.IsNullable() {
			return nil
		}
		return fmt.Errorf("%w: @%s is %s, got nil", ErrKindMismatch, name, kind)
	}
	if v.Kind().Base() != kind.Base() {
		return fmt.Errorf("%w: @%s is %s, got %s", ErrKindMismatch, name, kind, v.Kind())
	}
	if !kind.IsNullable() && v.Kind().IsNullable() && v.Get() == nil {
		return fmt.Errorf("%w: @%s is %s, got nil", ErrKindMismatch, name, kind)
	}
	return nil
}
