package sqlbind

import (
	"context"
	"database/sql"
)

// Executor performs SQL queries.
// It's an interface accepted by Query, QueryRow and Exec methods.
// sql.DB, sql.Tx and Session can be passed as executor.
type Executor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// ContextExecutor performs SQL queries with context.
// It's an interface accepted by Query, QueryRow and Exec methods.
// sql.DB, sql.Tx and Session can be passed as context executor.
type ContextExecutor interface {
	Executor

	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// render returns SQL text and arguments of the query
// in the form expected by the query dialect.
func (q *Query) render() (string, []any) {
	d := q.dialect
	if d == nil {
		d = NoDialect
	}
	text, args := d.Render(q)
	logQuery(q, text, len(args))
	return text, args
}

// Query executes the query.
// For every row of a returned dataset it calls a handler function.
func (q *Query) Query(ctx context.Context, db Executor, handler func(rows *sql.Rows)) error {
	return q.query(ctx, db, func(rows *sql.Rows) error {
		handler(rows)
		return nil
	})
}

func (q *Query) query(ctx context.Context, db Executor, handler func(rows *sql.Rows) error) error {
	var (
		rows *sql.Rows
		err  error
	)
	text, args := q.render()
	// Fetch rows
	if ctxExecutor, ok := db.(ContextExecutor); ok && ctx != nil {
		rows, err = ctxExecutor.QueryContext(ctx, text, args...)
	} else {
		rows, err = db.Query(text, args...)
	}
	if err != nil {
		return err
	}

	// Iterate through rows of returned dataset
	for rows.Next() {
		err = handler(rows)
		if err != nil {
			break
		}
	}
	// Check for errors during rows "Close".
	// This may be more important if multiple statements are executed
	// in a single batch and rows were written as well as read.
	if closeErr := rows.Close(); closeErr != nil {
		return closeErr
	}

	// Check for handler error.
	if err != nil {
		return err
	}

	// Check for errors during row iteration.
	return rows.Err()
}

// QueryRow executes the query and scans the first returned row into dest.
// It returns sql.ErrNoRows if the query selects no rows.
func (q *Query) QueryRow(ctx context.Context, db Executor, dest ...any) error {
	var row *sql.Row
	text, args := q.render()
	if ctxExecutor, ok := db.(ContextExecutor); ok && ctx != nil {
		row = ctxExecutor.QueryRowContext(ctx, text, args...)
	} else {
		row = db.QueryRow(text, args...)
	}

	return row.Scan(dest...)
}

// Exec executes the query.
func (q *Query) Exec(ctx context.Context, db Executor) (sql.Result, error) {
	text, args := q.render()
	if ctxExecutor, ok := db.(ContextExecutor); ok && ctx != nil {
		return ctxExecutor.ExecContext(ctx, text, args...)
	}

	return db.Exec(text, args...)
}
