package sqlbind_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leporo/sqlbind"
)

func countUsers(t *testing.T, env *dbEnv, db sqlbind.Executor) int {
	t.Helper()
	var n int
	q := sqlbind.Must(env.builder.SQL(func(b *sqlbind.Binder) string {
		return "SELECT count(*) FROM users"
	}))
	require.NoError(t, q.QueryRow(context.Background(), db, &n))
	return n
}

func insertUser(env *dbEnv, id int, name string) *sqlbind.Query {
	return sqlbind.Must(env.builder.SQL(func(b *sqlbind.Binder) string {
		return "INSERT INTO users (id, name) VALUES (" + b.List(id, name) + ")"
	}))
}

func TestTx(t *testing.T) {
	forEveryDB(t, func(_ context.Context, env *dbEnv) {
		ctx := context.Background()

		err := sqlbind.Tx(ctx, env.db, nil, func(s *sqlbind.Session) error {
			assert.NotNil(t, s.Transaction())
			assert.NotNil(t, s.Conn())
			_, err := insertUser(env, 10, "User 10").Exec(ctx, s)
			if err != nil {
				return err
			}
			assert.Equal(t, 5, countUsers(t, env, s))
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 5, countUsers(t, env, env.db))

		failure := errors.New("failure")
		err = sqlbind.Tx(ctx, env.db, nil, func(s *sqlbind.Session) error {
			if _, err := insertUser(env, 11, "User 11").Exec(ctx, s); err != nil {
				return err
			}
			return failure
		})
		assert.ErrorIs(t, err, failure)
		assert.Equal(t, 5, countUsers(t, env, env.db))

		// A transaction committed by the callback itself
		err = sqlbind.Tx(ctx, env.db, nil, func(s *sqlbind.Session) error {
			if _, err := insertUser(env, 12, "User 12").Exec(ctx, s); err != nil {
				return err
			}
			return s.Commit()
		})
		require.NoError(t, err)
		assert.Equal(t, 6, countUsers(t, env, env.db))
	})
}

func TestTxPanic(t *testing.T) {
	forEveryDB(t, func(_ context.Context, env *dbEnv) {
		ctx := context.Background()
		assert.PanicsWithValue(t, "boom", func() {
			_ = sqlbind.Tx(ctx, env.db, nil, func(s *sqlbind.Session) error {
				if _, err := insertUser(env, 20, "User 20").Exec(ctx, s); err != nil {
					return err
				}
				panic("boom")
			})
		})
		assert.Equal(t, 4, countUsers(t, env, env.db))
	})
}

func TestAutoCommit(t *testing.T) {
	forEveryDB(t, func(_ context.Context, env *dbEnv) {
		ctx := context.Background()
		err := sqlbind.AutoCommit(ctx, env.db, func(s *sqlbind.Session) error {
			assert.Nil(t, s.Transaction())
			assert.ErrorIs(t, s.Commit(), sql.ErrTxDone)
			assert.ErrorIs(t, s.Rollback(), sql.ErrTxDone)
			_, err := insertUser(env, 30, "User 30").Exec(ctx, s)
			return err
		})
		require.NoError(t, err)
		assert.Equal(t, 5, countUsers(t, env, env.db))
	})
}

func TestTxMock(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM users WHERE id = @p_0_").
		WithArgs(sql.Named("p_0_", int64(1))).
		WillReturnError(errors.New("locked"))
	mock.ExpectRollback()

	err := sqlbind.Tx(context.Background(), db, nil, func(s *sqlbind.Session) error {
		_, err := sqlbind.Must(sqlbind.SQL(func(b *sqlbind.Binder) string {
			return "DELETE FROM users WHERE id = " + b.P(1)
		})).Exec(context.Background(), s)
		return err
	})
	assert.EqualError(t, err, "locked")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxBeginError(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin().WillReturnError(sqlmock.ErrCancelled)

	called := false
	err := sqlbind.Tx(context.Background(), db, nil, func(s *sqlbind.Session) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, sqlmock.ErrCancelled)
	assert.False(t, called)
}
