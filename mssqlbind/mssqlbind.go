// Package mssqlbind executes sqlbind queries with the SQL Server driver.
//
// SQL Server supports @name parameters natively. The package only maps
// parameter kinds to driver types where the default mapping is not the
// desired one.
package mssqlbind

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	mssql "github.com/microsoft/go-mssqldb"

	"github.com/leporo/sqlbind"
)

// Options control the mapping of parameter values to SQL Server types.
type Options struct {
	// VarChar sends strings as varchar instead of nvarchar.
	// Use it to let the server use indexes on varchar columns.
	VarChar bool
	// DateTime1 sends time values as datetime instead of datetime2.
	DateTime1 bool
}

// Args evaluates query parameters and returns them as named arguments.
func Args(q *sqlbind.Query, opts Options) []any {
	params := q.Parameters()
	args := make([]any, len(params))
	for i, p := range params {
		args[i] = sql.Named(p.Name(), value(p.Value().Get(), opts))
	}
	return args
}

func value(v any, opts Options) any {
	switch x := v.(type) {
	case string:
		if opts.VarChar {
			return mssql.VarChar(x)
		}
	case time.Time:
		if opts.DateTime1 {
			return mssql.DateTime1(x)
		}
	case uuid.UUID:
		return mssql.UniqueIdentifier(x)
	}
	return v
}

// Exec executes a query that doesn't return rows.
func Exec(ctx context.Context, db sqlbind.ContextExecutor, q *sqlbind.Query, opts Options) (sql.Result, error) {
	return db.ExecContext(ctx, q.SQL(), Args(q, opts)...)
}

// Query executes a query that returns rows.
func Query(ctx context.Context, db sqlbind.ContextExecutor, q *sqlbind.Query, opts Options) (*sql.Rows, error) {
	return db.QueryContext(ctx, q.SQL(), Args(q, opts)...)
}

// QueryRow executes a query that is expected to return at most one row.
func QueryRow(ctx context.Context, db sqlbind.ContextExecutor, q *sqlbind.Query, opts Options) *sql.Row {
	return db.QueryRowContext(ctx, q.SQL(), Args(q, opts)...)
}
