package sqlbind

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"
)

/*
Session is a database connection with an optional open transaction.

Queries executed via a Session run within its transaction if there is one.
Sessions are created by Tx and AutoCommit and are valid until the
callback function returns.
*/
type Session struct {
	conn *sql.Conn
	tx   *sql.Tx
}

// Conn returns the session connection.
func (s *Session) Conn() *sql.Conn {
	return s.conn
}

// Transaction returns the open transaction or nil for an auto-commit session.
func (s *Session) Transaction() *sql.Tx {
	return s.tx
}

// Commit commits the session transaction.
func (s *Session) Commit() error {
	if s.tx == nil {
		return sql.ErrTxDone
	}
	return s.tx.Commit()
}

// Rollback aborts the session transaction.
func (s *Session) Rollback() error {
	if s.tx == nil {
		return sql.ErrTxDone
	}
	return s.tx.Rollback()
}

// ExecContext executes a query that doesn't return rows.
func (s *Session) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	if s.tx != nil {
		return s.tx.ExecContext(ctx, query, args...)
	}
	return s.conn.ExecContext(ctx, query, args...)
}

// QueryContext executes a query that returns rows.
func (s *Session) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	if s.tx != nil {
		return s.tx.QueryContext(ctx, query, args...)
	}
	return s.conn.QueryContext(ctx, query, args...)
}

// QueryRowContext executes a query that is expected to return at most one row.
func (s *Session) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	if s.tx != nil {
		return s.tx.QueryRowContext(ctx, query, args...)
	}
	return s.conn.QueryRowContext(ctx, query, args...)
}

// Exec executes a query that doesn't return rows.
func (s *Session) Exec(query string, args ...interface{}) (sql.Result, error) {
	return s.ExecContext(context.Background(), query, args...)
}

// Query executes a query that returns rows.
func (s *Session) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return s.QueryContext(context.Background(), query, args...)
}

// QueryRow executes a query that is expected to return at most one row.
func (s *Session) QueryRow(query string, args ...interface{}) *sql.Row {
	return s.QueryRowContext(context.Background(), query, args...)
}

/*
Tx runs fn within a transaction.

The transaction is committed if fn returns nil and rolled back
otherwise. A rollback failure is logged, the error returned by fn
is returned to the caller.
*/
func Tx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(s *Session) error) (err error) {
	conn, err := db.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	tx, err := conn.BeginTx(ctx, opts)
	if err != nil {
		return err
	}
	s := &Session{conn: conn, tx: tx}

	defer func() {
		if p := recover(); p != nil {
			rollback(s)
			panic(p)
		}
	}()

	if err = fn(s); err != nil {
		rollback(s)
		return err
	}
	err = tx.Commit()
	if errors.Is(err, sql.ErrTxDone) {
		// fn has committed or rolled back the transaction itself
		return nil
	}
	return err
}

// AutoCommit runs fn on a dedicated connection without a transaction.
func AutoCommit(ctx context.Context, db *sql.DB, fn func(s *Session) error) error {
	conn, err := db.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	return fn(&Session{conn: conn})
}

func rollback(s *Session) {
	if err := s.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		logger().Warn("Transaction rollback failed", zap.Error(err))
	}
}
