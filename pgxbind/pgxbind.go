// Package pgxbind executes sqlbind queries with pgx.
//
// pgx rewrites @name placeholders into positional ones on its own,
// so queries are passed with their text intact along with pgx.NamedArgs.
package pgxbind

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/leporo/sqlbind"
)

// Querier is implemented by *pgx.Conn, *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxBeginner is implemented by *pgx.Conn and *pgxpool.Pool.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// NamedArgs evaluates query parameters and returns them as pgx named arguments.
func NamedArgs(q *sqlbind.Query) pgx.NamedArgs {
	params := q.Parameters()
	args := make(pgx.NamedArgs, len(params))
	for _, p := range params {
		args[p.Name()] = value(p.Kind(), p.Value().Get())
	}
	return args
}

func value(kind sqlbind.Kind, v any) any {
	switch x := v.(type) {
	case uuid.UUID:
		return pgtype.UUID{Bytes: x, Valid: true}
	case uint8:
		if kind.Base() == sqlbind.KindByte {
			return int16(x)
		}
	}
	return v
}

// OID returns the PostgreSQL type a value of the given kind is sent as.
// Zero means the type is left for the server to infer.
func OID(kind sqlbind.Kind) uint32 {
	switch kind.Base() {
	case sqlbind.KindByte:
		return pgtype.Int2OID
	case sqlbind.KindInt32:
		return pgtype.Int4OID
	case sqlbind.KindInt64:
		return pgtype.Int8OID
	case sqlbind.KindFloat32:
		return pgtype.Float4OID
	case sqlbind.KindFloat64:
		return pgtype.Float8OID
	case sqlbind.KindString:
		return pgtype.TextOID
	case sqlbind.KindBool:
		return pgtype.BoolOID
	case sqlbind.KindTime:
		return pgtype.TimestamptzOID
	case sqlbind.KindUUID:
		return pgtype.UUIDOID
	case sqlbind.KindBytes:
		return pgtype.ByteaOID
	}
	return 0
}

// Exec executes a query that doesn't return rows.
func Exec(ctx context.Context, db Querier, q *sqlbind.Query) (pgconn.CommandTag, error) {
	return db.Exec(ctx, q.SQL(), NamedArgs(q))
}

// Query executes a query that returns rows.
func Query(ctx context.Context, db Querier, q *sqlbind.Query) (pgx.Rows, error) {
	return db.Query(ctx, q.SQL(), NamedArgs(q))
}

// QueryRow executes a query that is expected to return at most one row.
func QueryRow(ctx context.Context, db Querier, q *sqlbind.Query) pgx.Row {
	return db.QueryRow(ctx, q.SQL(), NamedArgs(q))
}

/*
Collect executes a query and converts every returned row with fn.

	names, err := pgxbind.Collect(ctx, pool, q, pgx.RowTo[string])
*/
func Collect[T any](ctx context.Context, db Querier, q *sqlbind.Query, fn pgx.RowToFunc[T]) ([]T, error) {
	rows, err := Query(ctx, db, q)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, fn)
}

// Tx runs fn within a transaction. The transaction is committed
// if fn returns nil and rolled back otherwise.
func Tx(ctx context.Context, db TxBeginner, fn func(tx pgx.Tx) error) error {
	return pgx.BeginFunc(ctx, db, fn)
}
