package sqlbind

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

/*
Row gives typed access to the columns of the current result set row.

Accessors never fail: the first conversion error is kept and returned
by Map once the row callback completes. Accessors without a default
value treat NULL as an error, the ...Or variants return the default.
*/
type Row struct {
	columns map[string]int
	values  []any
	dest    []any
	err     error
}

func newRow(columns []string) *Row {
	r := &Row{
		columns: make(map[string]int, len(columns)),
		values:  make([]any, len(columns)),
		dest:    make([]any, len(columns)),
	}
	for i, name := range columns {
		r.columns[name] = i
		r.dest[i] = &r.values[i]
	}
	return r
}

/*
Map executes the query and converts every returned row with fn.

	users, err := sqlbind.Map(ctx, db, q, func(r *sqlbind.Row) (User, error) {
		return User{
			ID:    r.Int64("id"),
			Name:  r.String("name"),
			Email: r.StringOr("email", ""),
		}, nil
	})
*/
func Map[T any](ctx context.Context, db Executor, q *Query, fn func(r *Row) (T, error)) ([]T, error) {
	var (
		res []T
		row *Row
	)
	err := q.query(ctx, db, func(rows *sql.Rows) error {
		if row == nil {
			columns, err := rows.Columns()
			if err != nil {
				return err
			}
			row = newRow(columns)
		}
		if err := rows.Scan(row.dest...); err != nil {
			return err
		}
		row.err = nil
		v, err := fn(row)
		if err == nil {
			err = row.err
		}
		if err != nil {
			return err
		}
		res = append(res, v)
		return nil
	})
	return res, err
}

// Err returns the first error of the current row.
func (r *Row) Err() error {
	return r.err
}

// Value returns the raw column value as returned by a driver.
func (r *Row) Value(name string) any {
	i, ok := r.columns[name]
	if !ok {
		r.fail(fmt.Errorf("%w: %s", ErrNoColumn, name))
		return nil
	}
	return r.values[i]
}

// IsNull reports whether the column value is NULL.
func (r *Row) IsNull(name string) bool {
	return r.Value(name) == nil
}

// Int returns an integer column value.
func (r *Row) Int(name string) int {
	return int(getColumn(r, name, toInt64, nil))
}

// IntOr returns an integer column value or def if the value is NULL.
func (r *Row) IntOr(name string, def int) int {
	d := int64(def)
	return int(getColumn(r, name, toInt64, &d))
}

// Int64 returns an integer column value.
func (r *Row) Int64(name string) int64 {
	return getColumn(r, name, toInt64, nil)
}

// Int64Or returns an integer column value or def if the value is NULL.
func (r *Row) Int64Or(name string, def int64) int64 {
	return getColumn(r, name, toInt64, &def)
}

// Float64 returns a floating point column value.
func (r *Row) Float64(name string) float64 {
	return getColumn(r, name, toFloat64, nil)
}

// Float64Or returns a floating point column value or def if the value is NULL.
func (r *Row) Float64Or(name string, def float64) float64 {
	return getColumn(r, name, toFloat64, &def)
}

// String returns a text column value.
func (r *Row) String(name string) string {
	return getColumn(r, name, toString, nil)
}

// StringOr returns a text column value or def if the value is NULL.
func (r *Row) StringOr(name string, def string) string {
	return getColumn(r, name, toString, &def)
}

// Bool returns a boolean column value.
func (r *Row) Bool(name string) bool {
	return getColumn(r, name, toBool, nil)
}

// BoolOr returns a boolean column value or def if the value is NULL.
func (r *Row) BoolOr(name string, def bool) bool {
	return getColumn(r, name, toBool, &def)
}

// Time returns a timestamp column value.
func (r *Row) Time(name string) time.Time {
	return getColumn(r, name, toTime, nil)
}

// UUID returns a UUID column value. Text and 16-byte binary forms are accepted.
func (r *Row) UUID(name string) uuid.UUID {
	return getColumn(r, name, toUUID, nil)
}

// Bytes returns a binary column value. NULL is returned as nil.
func (r *Row) Bytes(name string) []byte {
	var def []byte
	return getColumn(r, name, toBytes, &def)
}

func (r *Row) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func getColumn[T any](r *Row, name string, conv func(v any) (T, error), def *T) T {
	var zero T
	i, ok := r.columns[name]
	if !ok {
		r.fail(fmt.Errorf("%w: %s", ErrNoColumn, name))
		return zero
	}
	v := r.values[i]
	if v == nil {
		if def != nil {
			return *def
		}
		r.fail(fmt.Errorf("%w: %s", ErrNullValue, name))
		return zero
	}
	res, err := conv(v)
	if err != nil {
		r.fail(fmt.Errorf("sqlbind: column %s: %w", name, err))
		return zero
	}
	return res
}

func toInt64(v any) (int64, error) {
	switch x := v.(type) {
	case int64:
		return x, nil
	case int32:
		return int64(x), nil
	case int:
		return int64(x), nil
	case float64:
		if x == float64(int64(x)) {
			return int64(x), nil
		}
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	case []byte:
		return strconv.ParseInt(string(x), 10, 64)
	case string:
		return strconv.ParseInt(x, 10, 64)
	}
	return 0, fmt.Errorf("can not convert %T to int64", v)
}

func toFloat64(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case []byte:
		return strconv.ParseFloat(string(x), 64)
	case string:
		return strconv.ParseFloat(x, 64)
	}
	return 0, fmt.Errorf("can not convert %T to float64", v)
}

func toString(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case []byte:
		return string(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), nil
	case bool:
		return strconv.FormatBool(x), nil
	case time.Time:
		return x.Format(time.RFC3339Nano), nil
	}
	return "", fmt.Errorf("can not convert %T to string", v)
}

func toBool(v any) (bool, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case int64:
		return x != 0, nil
	case []byte:
		return strconv.ParseBool(string(x))
	case string:
		return strconv.ParseBool(x)
	}
	return false, fmt.Errorf("can not convert %T to bool", v)
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

func toTime(v any) (time.Time, error) {
	var s string
	switch x := v.(type) {
	case time.Time:
		return x, nil
	case []byte:
		s = string(x)
	case string:
		s = x
	default:
		return time.Time{}, fmt.Errorf("can not convert %T to time.Time", v)
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("can not parse %q as time", s)
}

func toUUID(v any) (uuid.UUID, error) {
	switch x := v.(type) {
	case uuid.UUID:
		return x, nil
	case [16]byte:
		return uuid.UUID(x), nil
	case string:
		return uuid.Parse(x)
	case []byte:
		if len(x) == 16 {
			return uuid.FromBytes(x)
		}
		return uuid.ParseBytes(x)
	}
	return uuid.Nil, fmt.Errorf("can not convert %T to uuid.UUID", v)
}

func toBytes(v any) ([]byte, error) {
	switch x := v.(type) {
	case []byte:
		return append([]byte(nil), x...), nil
	case string:
		return []byte(x), nil
	}
	return nil, fmt.Errorf("can not convert %T to []byte", v)
}
