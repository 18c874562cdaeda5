package sqlbind

import (
	"database/sql"
	"strconv"
	"strings"
)

// PinnedIndex is the index of a parameter with a caller-chosen name.
const PinnedIndex = -1

const maxCachedNames = 1000

var generatedNames = func() []string {
	names := make([]string, maxCachedNames)
	for i := range names {
		names[i] = "p_" + strconv.Itoa(i) + "_"
	}
	return names
}()

// ParamName returns the name of a generated parameter with the given index.
func ParamName(index int) string {
	if index >= 0 && index < len(generatedNames) {
		return generatedNames[index]
	}
	return "p_" + strconv.Itoa(index) + "_"
}

/*
Parameter is a named binding of a Value.

Generated parameters are numbered sequentially within a query and named
p_<index>_. Pinned parameters keep the name chosen by the caller and are
never renumbered.
*/
type Parameter struct {
	index int
	name  string
	value Value
}

// Pin creates a parameter with an explicit name.
// A leading @ is not a part of the name and is trimmed.
func Pin(name string, v any) Parameter {
	return Parameter{
		index: PinnedIndex,
		name:  strings.TrimPrefix(name, "@"),
		value: ValueOf(v),
	}
}

func generated(index int, v Value) Parameter {
	return Parameter{
		index: index,
		name:  ParamName(index),
		value: v,
	}
}

// Index returns the parameter index or PinnedIndex.
func (p Parameter) Index() int {
	return p.index
}

// Name returns the parameter name without the @ prefix.
func (p Parameter) Name() string {
	return p.name
}

// Value returns the bound value.
func (p Parameter) Value() Value {
	return p.value
}

// Kind returns the type tag of the bound value.
func (p Parameter) Kind() Kind {
	return p.value.kind
}

// Pinned reports whether the parameter has a caller-chosen name.
func (p Parameter) Pinned() bool {
	return p.index == PinnedIndex
}

// Placeholder returns the token a parameter is referenced with in SQL text.
func (p Parameter) Placeholder() string {
	return placeholder(p.name)
}

// Named evaluates the parameter value and wraps it into sql.NamedArg.
func (p Parameter) Named() sql.NamedArg {
	return sql.Named(p.name, p.value.Get())
}

func (p Parameter) withIndex(index int) Parameter {
	return generated(index, p.value)
}

func (p Parameter) String() string {
	return p.Placeholder() + "=" + p.value.kind.String()
}

func placeholder(name string) string {
	if strings.HasPrefix(name, "@") {
		return name
	}
	return "@" + name
}
