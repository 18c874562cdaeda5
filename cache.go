package sqlbind

import (
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	defaultTemplateCacheSize = 1024
	defaultTemplateCacheTTL  = time.Hour
)

var defaultTemplateCache = NewTemplateCache(defaultTemplateCacheSize, defaultTemplateCacheTTL)

// TemplateCache keeps templates built by key.
type TemplateCache struct {
	builder *Builder
	lru     *expirable.LRU[uint64, cachedTemplate]
}

type cachedTemplate struct {
	key      string
	template *Template
}

// NewTemplateCache creates a cache of at most size templates, each kept
// for ttl since it was built. Zero ttl disables expiration.
func NewTemplateCache(size int, ttl time.Duration) *TemplateCache {
	return &TemplateCache{
		builder: defaultBuilder,
		lru:     expirable.NewLRU[uint64, cachedTemplate](size, nil, ttl),
	}
}

// WithBuilder sets the builder templates are built with.
func (c *TemplateCache) WithBuilder(b *Builder) *TemplateCache {
	c.builder = b
	return c
}

/*
Template returns a template cached under key or builds it with fn.

fn is only called on a cache miss, so the text it produces must
depend on the key alone. Values that change between uses go to slots.
*/
func (c *TemplateCache) Template(key string, fn func(b *Binder) string) (*Template, error) {
	hash := xxhash.Sum64String(key)
	if e, ok := c.lru.Get(hash); ok && e.key == key {
		return e.template, nil
	}
	t, err := c.builder.Template(fn)
	if err != nil {
		return nil, err
	}
	c.lru.Add(hash, cachedTemplate{key: key, template: t})
	return t, nil
}

// Len returns the number of cached templates.
func (c *TemplateCache) Len() int {
	return c.lru.Len()
}

// Purge removes all the cached templates.
func (c *TemplateCache) Purge() {
	c.lru.Purge()
}

// Reusable returns a template from the default cache or builds it with fn.
//
//	t, err := sqlbind.Reusable("find-account", func(b *sqlbind.Binder) string {
//		return "SELECT * FROM accounts WHERE id = " + b.Slot("id", sqlbind.KindString)
//	})
//	...
//	q, err := t.Materialize(map[string]any{"id": "account_1"})
func Reusable(key string, fn func(b *Binder) string) (*Template, error) {
	return defaultTemplateCache.Template(key, fn)
}

/*
ClearCache clears the template cache and the cache of SQL text
rewritten by dialects.

In most cases you don't need to care about it. It's there to
let caller free memory when a caller executes zillions of unique
SQL statements.
*/
func ClearCache() {
	defaultTemplateCache.Purge()
	for _, d := range dialects {
		d.ClearCache()
	}
}
