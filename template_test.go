package sqlbind_test

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leporo/sqlbind"
)

func newFindAccount(t *testing.T) *sqlbind.Template {
	t.Helper()
	tpl, err := sqlbind.NewTemplate(func(b *sqlbind.Binder) string {
		return `
			|SELECT id, balance
			|  FROM accounts
			| WHERE id = ` + b.Slot("id", sqlbind.KindString) + `
			|   AND closed_at IS NOT DISTINCT FROM ` + b.Slot("closed_at", sqlbind.KindTime|sqlbind.Nullable) + `
			|   AND kind = ` + b.P("savings") + `
			| LIMIT ` + b.Slot("limit", sqlbind.KindAny)
	})
	require.NoError(t, err)
	return tpl
}

func TestTemplateMaterialize(t *testing.T) {
	tpl := newFindAccount(t)
	assert.Equal(t, []string{"id", "closed_at", "limit"}, tpl.Slots())
	assert.Contains(t, tpl.SQL(), "WHERE id = @id")

	q1, err := tpl.Materialize(map[string]any{"id": "acc_1", "closed_at": nil, "limit": 10})
	require.NoError(t, err)
	q2, err := tpl.Materialize(map[string]any{"id": "acc_2", "closed_at": time.Unix(0, 0), "limit": 20})
	require.NoError(t, err)

	assert.Equal(t, tpl.SQL(), q1.SQL())
	assert.Equal(t, q1.SQL(), q2.SQL())
	assert.Equal(t, []any{
		sql.Named("id", "acc_1"),
		sql.Named("closed_at", nil),
		sql.Named("p_0_", "savings"),
		sql.Named("limit", int64(10)),
	}, q1.Args())
	assert.Equal(t, "acc_2", namedArg(t, q2.Args()[0]).Value)

	// Materialized queries are regular queries
	q3, err := q1.Append(mustSQL(t, func(b *sqlbind.Binder) string {
		return "OFFSET " + b.P(5)
	}))
	require.NoError(t, err)
	assert.Contains(t, q3.SQL(), "OFFSET @p_1_")
}

func TestTemplateMaterializeErrors(t *testing.T) {
	tpl := newFindAccount(t)
	for _, tc := range []struct {
		name   string
		values map[string]any
		err    error
	}{
		{"missing", map[string]any{"id": "a", "limit": 1}, sqlbind.ErrMissingValue},
		{"unknown", map[string]any{"id": "a", "closed_at": nil, "limit": 1, "kind": "x"}, sqlbind.ErrUnknownSlot},
		{"generated is not a slot", map[string]any{"id": "a", "closed_at": nil, "limit": 1, "p_0_": "x"}, sqlbind.ErrUnknownSlot},
		{"kind", map[string]any{"id": 1, "closed_at": nil, "limit": 1}, sqlbind.ErrKindMismatch},
		{"nil", map[string]any{"id": nil, "closed_at": nil, "limit": 1}, sqlbind.ErrKindMismatch},
		{"null string", map[string]any{"id": sql.NullString{}, "closed_at": nil, "limit": 1}, sqlbind.ErrKindMismatch},
	} {
		t.Run(tc.name, func(t *testing.T) {
			q, err := tpl.Materialize(tc.values)
			assert.Nil(t, q)
			assert.ErrorIs(t, err, tc.err)
		})
	}

	// A valid sql.NullString and a typed pointer match the slot kinds
	at := time.Now()
	_, err := tpl.Materialize(map[string]any{
		"id":        sql.NullString{String: "a", Valid: true},
		"closed_at": &at,
		"limit":     uuid.New(),
	})
	assert.NoError(t, err)
}

func TestTemplateCache(t *testing.T) {
	cache := sqlbind.NewTemplateCache(2, time.Minute).
		WithBuilder(sqlbind.NewBuilder(sqlbind.DefaultMargin, sqlbind.PostgreSQL))

	builds := 0
	get := func(key string) *sqlbind.Template {
		tpl, err := cache.Template(key, func(b *sqlbind.Binder) string {
			builds++
			return fmt.Sprintf("SELECT %s FROM %s", b.Slot("id", sqlbind.KindInt64), key)
		})
		require.NoError(t, err)
		return tpl
	}

	a := get("a")
	assert.Same(t, a, get("a"))
	assert.Equal(t, 1, builds)

	get("b")
	get("c")
	assert.Equal(t, 2, cache.Len())
	assert.NotSame(t, a, get("a"))
	assert.Equal(t, 4, builds)

	q, err := a.Materialize(map[string]any{"id": 1})
	require.NoError(t, err)
	assert.Same(t, sqlbind.PostgreSQL, q.Dialect())

	cache.Purge()
	assert.Equal(t, 0, cache.Len())

	_, err = cache.Template("bad", func(b *sqlbind.Binder) string {
		return b.Named("x", 1) + b.Named("x", 2)
	})
	assert.ErrorIs(t, err, sqlbind.ErrConflict)
	assert.Equal(t, 0, cache.Len())
}

func TestReusable(t *testing.T) {
	defer sqlbind.ClearCache()

	find := func(id string) *sqlbind.Query {
		tpl, err := sqlbind.Reusable("reusable-find-account", func(b *sqlbind.Binder) string {
			return "SELECT * FROM accounts WHERE id = " + b.Slot("id", sqlbind.KindString)
		})
		require.NoError(t, err)
		q, err := tpl.Materialize(map[string]any{"id": id})
		require.NoError(t, err)
		return q
	}

	q1 := find("account_1")
	q2 := find("account_2")
	assert.Equal(t, q1.SQL(), q2.SQL())
	assert.Equal(t, "account_1", namedArg(t, q1.Args()[0]).Value)
	assert.Equal(t, "account_2", namedArg(t, q2.Args()[0]).Value)
}
