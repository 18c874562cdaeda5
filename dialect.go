package sqlbind

import (
	"strconv"
	"sync"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/valyala/bytebufferpool"
)

const renderCacheSize = 4096

type placeholderStyle int

const (
	namedStyle placeholderStyle = iota
	numberedStyle
	positionalStyle
)

/*
Dialect defines the way query placeholders are passed to a database driver.

NoDialect is a default mode. SQL text is sent as is, with @name placeholders,
and parameters are passed as sql.NamedArg. It suits drivers that support
named parameters such as SQLite and SQL Server.

PostgreSQL mode replaces placeholders with numbered positional
arguments like $1, $2... A parameter used several times gets one number.

MySQL mode replaces every placeholder with ? and repeats the argument
for every use.

Only placeholders of parameters bound to a query are rewritten, so
@@ROWCOUNT or @> are left intact.
*/
type Dialect struct {
	name  string
	style placeholderStyle

	cacheOnce sync.Once
	cache     *lru.Cache[uint64, rendered]
}

var (
	// NoDialect keeps @name placeholders and passes named arguments.
	NoDialect = &Dialect{name: "named", style: namedStyle}
	// PostgreSQL mode replaces @name placeholders with $1, $2...
	PostgreSQL = &Dialect{name: "postgresql", style: numberedStyle}
	// MySQL mode replaces @name placeholders with ?
	MySQL = &Dialect{name: "mysql", style: positionalStyle}

	dialects = []*Dialect{NoDialect, PostgreSQL, MySQL}
)

type rendered struct {
	key   string
	sql   string
	order []int
}

func (d *Dialect) String() string {
	return d.name
}

/*
Render returns the query text and arguments in the form expected by
a database driver of the dialect.

Parameter values are evaluated on every call. Rewritten SQL text is
cached.
*/
func (d *Dialect) Render(q *Query) (string, []any) {
	if d.style == namedStyle {
		return q.sql, q.Args()
	}

	hash, key := renderKey(q)
	c := d.getCache()
	r, ok := c.Get(hash)
	if !ok || r.key != key {
		r = d.rewrite(q)
		r.key = key
		c.Add(hash, r)
	}

	args := make([]any, len(r.order))
	for i, idx := range r.order {
		args[i] = q.params[idx].value.Get()
	}
	return r.sql, args
}

// ClearCache clears the cache of rewritten SQL text.
func (d *Dialect) ClearCache() {
	d.getCache().Purge()
}

func (d *Dialect) getCache() *lru.Cache[uint64, rendered] {
	d.cacheOnce.Do(func() {
		d.cache, _ = lru.New[uint64, rendered](renderCacheSize)
	})
	return d.cache
}

// renderKey returns the text the rewrite depends on and its hash.
func renderKey(q *Query) (uint64, string) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	_, _ = buf.WriteString(q.sql)
	for _, p := range q.params {
		_ = buf.WriteByte(0)
		_, _ = buf.WriteString(p.name)
	}
	return xxhash.Sum64(buf.B), buf.String()
}

// rewrite replaces placeholders of bound parameters according to
// the dialect placeholder style.
func (d *Dialect) rewrite(q *Query) rendered {
	index := make(map[string]int, len(q.params))
	for i, p := range q.params {
		index[p.name] = i
	}
	numbers := make(map[string]int)

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	var order []int
	s := q.sql
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] != '@' || (i > 0 && (isIdentByte(s[i-1]) || s[i-1] == '@')) {
			continue
		}
		j := i + 1
		for j < len(s) && isIdentByte(s[j]) {
			j++
		}
		idx, ok := index[s[i+1:j]]
		if !ok {
			continue
		}

		buf.WriteString(s[start:i])
		start = j
		name := q.params[idx].name
		switch d.style {
		case numberedStyle:
			n, seen := numbers[name]
			if !seen {
				order = append(order, idx)
				n = len(order)
				numbers[name] = n
			}
			buf.WriteByte('$')
			buf.WriteString(strconv.Itoa(n))
		case positionalStyle:
			order = append(order, idx)
			buf.WriteByte('?')
		}
		i = j - 1
	}
	buf.WriteString(s[start:])

	return rendered{sql: buf.String(), order: order}
}
