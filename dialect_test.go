package sqlbind_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leporo/sqlbind"
)

func dialectQuery(t *testing.T) *sqlbind.Query {
	return mustSQL(t, func(b *sqlbind.Binder) string {
		return `
			|SELECT @@ROWCOUNT, tags @> ` + b.P("{a}") + `
			|  FROM charges
			| WHERE account_id = ` + b.Named("account_id", 777) + `
			|   AND amount > ` + b.P(10) + `
			| UNION ALL
			|SELECT 0, false
			|  FROM withdraws
			| WHERE account_id = ` + b.Named("account_id", 777) + ` AND email <> 'x@y'`
	})
}

func TestRenderNamed(t *testing.T) {
	q := dialectQuery(t)
	text, args := sqlbind.NoDialect.Render(q)
	assert.Equal(t, q.SQL(), text)
	assert.Equal(t, q.Args(), args)
}

func TestRenderPostgreSQL(t *testing.T) {
	sqlbind.PostgreSQL.ClearCache()
	q := dialectQuery(t)
	for i := 0; i < 2; i++ {
		text, args := sqlbind.PostgreSQL.Render(q)
		assert.Equal(t, "SELECT @@ROWCOUNT, tags @> $1\n"+
			"  FROM charges\n"+
			" WHERE account_id = $2\n"+
			"   AND amount > $3\n"+
			" UNION ALL\n"+
			"SELECT 0, false\n"+
			"  FROM withdraws\n"+
			" WHERE account_id = $2 AND email <> 'x@y'", text)
		assert.Equal(t, []any{"{a}", int64(777), int64(10)}, args)
	}
}

func TestRenderMySQL(t *testing.T) {
	sqlbind.MySQL.ClearCache()
	q := dialectQuery(t)
	text, args := sqlbind.MySQL.Render(q)
	assert.Equal(t, "SELECT @@ROWCOUNT, tags @> ?\n"+
		"  FROM charges\n"+
		" WHERE account_id = ?\n"+
		"   AND amount > ?\n"+
		" UNION ALL\n"+
		"SELECT 0, false\n"+
		"  FROM withdraws\n"+
		" WHERE account_id = ? AND email <> 'x@y'", text)
	assert.Equal(t, []any{"{a}", int64(777), int64(10), int64(777)}, args)
}

func TestRenderEvaluatesValues(t *testing.T) {
	limit := 10
	q := mustSQL(t, func(b *sqlbind.Binder) string {
		return "SELECT * FROM t LIMIT " + b.P(func() int { return limit })
	})
	_, args := sqlbind.PostgreSQL.Render(q)
	assert.Equal(t, []any{int64(10)}, args)

	limit = 20
	_, args = sqlbind.PostgreSQL.Render(q)
	assert.Equal(t, []any{int64(20)}, args)
}

func TestRenderCacheKey(t *testing.T) {
	// Same text, different parameter sets
	q1, err := sqlbind.NewQuery("SELECT @a, @b", sqlbind.Pin("a", 1))
	assert.NoError(t, err)
	q2, err := sqlbind.NewQuery("SELECT @a, @b", sqlbind.Pin("a", 1), sqlbind.Pin("b", 2))
	assert.NoError(t, err)

	text, _ := sqlbind.PostgreSQL.Render(q1)
	assert.Equal(t, "SELECT $1, @b", text)
	text, _ = sqlbind.PostgreSQL.Render(q2)
	assert.Equal(t, "SELECT $1, $2", text)
}

func TestDialectString(t *testing.T) {
	assert.Equal(t, "named", sqlbind.NoDialect.String())
	assert.Equal(t, "postgresql", sqlbind.PostgreSQL.String())
	assert.Equal(t, "mysql", sqlbind.MySQL.String())
}
