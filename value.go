package sqlbind

import (
	"database/sql"
	"database/sql/driver"
	"reflect"
	"time"

	"github.com/google/uuid"
)

// Kind identifies the scalar type of a bound value.
type Kind uint8

// Scalar kinds. Nullable is a flag combined with a base kind.
const (
	KindAny Kind = iota
	KindByte
	KindInt32
	KindInt64
	KindFloat32
	KindFloat64
	KindString
	KindBool
	KindTime
	KindUUID
	KindBytes

	Nullable Kind = 1 << 7
)

var kindNames = [...]string{
	KindAny:     "any",
	KindByte:    "byte",
	KindInt32:   "int32",
	KindInt64:   "int64",
	KindFloat32: "float32",
	KindFloat64: "float64",
	KindString:  "string",
	KindBool:    "bool",
	KindTime:    "time",
	KindUUID:    "uuid",
	KindBytes:   "bytes",
}

// Base returns the kind without the Nullable flag.
func (k Kind) Base() Kind {
	return k &^ Nullable
}

// IsNullable reports whether the kind carries the Nullable flag.
func (k Kind) IsNullable() bool {
	return k&Nullable != 0
}

func (k Kind) String() string {
	name := "unknown"
	if b := k.Base(); int(b) < len(kindNames) {
		name = kindNames[b]
	}
	if k.IsNullable() {
		return "nullable " + name
	}
	return name
}

/*
Value is a typed, lazily evaluated scalar.

A Value captures how to obtain a bound value, not the value itself.
Its producer runs every time Get is called:

	id := 42
	v := sqlbind.Func(func() int { return id })
	id = 43
	v.Get() // int64(43)
*/
type Value struct {
	kind    Kind
	produce func() any
}

// Kind returns the type tag of the value.
func (v Value) Kind() Kind {
	return v.kind
}

// Get evaluates the value producer.
func (v Value) Get() any {
	if v.produce == nil {
		return nil
	}
	return v.produce()
}

/*
ValueOf wraps a host value.

Integers, floats, strings, booleans, time.Time, uuid.UUID and []byte get a
dedicated kind. Pointers, sql.Null* types, uuid.NullUUID and nil are the
nullable variants. A zero-argument function is evaluated lazily and gets the
kind of its result type. Anything else is passed through as KindAny.
*/
func ValueOf(v any) Value {
	switch x := v.(type) {
	case Value:
		return x
	case nil:
		return Value{kind: KindAny | Nullable, produce: produceNil}
	}

	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Func {
		t := rv.Type()
		if t.NumIn() == 0 && t.NumOut() == 1 && !rv.IsNil() {
			return Value{
				kind: kindOfType(t.Out(0)),
				produce: func() any {
					_, x := normalize(rv.Call(nil)[0].Interface())
					return x
				},
			}
		}
	}

	kind, x := normalize(v)
	return Value{kind: kind, produce: func() any { return x }}
}

// Func wraps a typed producer function into a lazily evaluated Value.
func Func[T any](f func() T) Value {
	return Value{
		kind: kindOfType(reflect.TypeOf((*T)(nil)).Elem()),
		produce: func() any {
			_, x := normalize(f())
			return x
		},
	}
}

func produceNil() any {
	return nil
}

var (
	timeType     = reflect.TypeOf(time.Time{})
	uuidType     = reflect.TypeOf(uuid.UUID{})
	bytesType    = reflect.TypeOf([]byte(nil))
	valuerType   = reflect.TypeOf((*driver.Valuer)(nil)).Elem()
	nullKindsMap = map[reflect.Type]Kind{
		reflect.TypeOf(sql.NullString{}):  KindString,
		reflect.TypeOf(sql.NullInt64{}):   KindInt64,
		reflect.TypeOf(sql.NullInt32{}):   KindInt32,
		reflect.TypeOf(sql.NullInt16{}):   KindInt32,
		reflect.TypeOf(sql.NullByte{}):    KindByte,
		reflect.TypeOf(sql.NullFloat64{}): KindFloat64,
		reflect.TypeOf(sql.NullBool{}):    KindBool,
		reflect.TypeOf(sql.NullTime{}):    KindTime,
		reflect.TypeOf(uuid.NullUUID{}):   KindUUID,
	}
)

// kindOfType maps a static Go type to a Kind.
func kindOfType(t reflect.Type) Kind {
	switch t {
	case timeType:
		return KindTime
	case uuidType:
		return KindUUID
	case bytesType:
		return KindBytes
	}
	if k, ok := nullKindsMap[t]; ok {
		return k | Nullable
	}
	if t.Kind() != reflect.Ptr && t.Implements(valuerType) {
		return KindAny
	}

	switch t.Kind() {
	case reflect.Ptr:
		return kindOfType(t.Elem()) | Nullable
	case reflect.Uint8:
		return KindByte
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Uint16:
		return KindInt32
	case reflect.Int, reflect.Int64, reflect.Uint32:
		return KindInt64
	case reflect.Uint, reflect.Uint64:
		// May not fit into int64, the driver checks the range
		return KindAny
	case reflect.Float32:
		return KindFloat32
	case reflect.Float64:
		return KindFloat64
	case reflect.String:
		return KindString
	case reflect.Bool:
		return KindBool
	case reflect.Interface:
		return KindAny | Nullable
	}
	return KindAny
}

// normalize converts a host value into the canonical Go type of its kind.
func normalize(v any) (Kind, any) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr && kindOfType(rv.Type().Elem()).Base() != KindAny {
		if rv.IsNil() {
			return kindOfType(rv.Type().Elem()) | Nullable, nil
		}
		k, x := normalize(rv.Elem().Interface())
		return k | Nullable, x
	}

	switch x := v.(type) {
	case nil:
		return KindAny | Nullable, nil
	case time.Time:
		return KindTime, x
	case uuid.UUID:
		return KindUUID, x
	case []byte:
		return KindBytes, x
	case sql.NullString:
		return nullable(KindString, x.Valid, x.String)
	case sql.NullInt64:
		return nullable(KindInt64, x.Valid, x.Int64)
	case sql.NullInt32:
		return nullable(KindInt32, x.Valid, x.Int32)
	case sql.NullInt16:
		return nullable(KindInt32, x.Valid, int32(x.Int16))
	case sql.NullByte:
		return nullable(KindByte, x.Valid, x.Byte)
	case sql.NullFloat64:
		return nullable(KindFloat64, x.Valid, x.Float64)
	case sql.NullBool:
		return nullable(KindBool, x.Valid, x.Bool)
	case sql.NullTime:
		return nullable(KindTime, x.Valid, x.Time)
	case uuid.NullUUID:
		return nullable(KindUUID, x.Valid, x.UUID)
	case driver.Valuer:
		if rv.Kind() == reflect.Ptr {
			return KindAny | Nullable, v
		}
		return KindAny, v
	}

	switch rv.Kind() {
	case reflect.Uint8:
		return KindByte, uint8(rv.Uint())
	case reflect.Int8, reflect.Int16, reflect.Int32:
		return KindInt32, int32(rv.Int())
	case reflect.Uint16:
		return KindInt32, int32(rv.Uint())
	case reflect.Int, reflect.Int64:
		return KindInt64, rv.Int()
	case reflect.Uint32:
		return KindInt64, int64(rv.Uint())
	case reflect.Uint, reflect.Uint64:
		return KindAny, rv.Uint()
	case reflect.Float32:
		return KindFloat32, float32(rv.Float())
	case reflect.Float64:
		return KindFloat64, rv.Float()
	case reflect.String:
		return KindString, rv.String()
	case reflect.Bool:
		return KindBool, rv.Bool()
	}
	return KindAny, v
}

func nullable(kind Kind, valid bool, v any) (Kind, any) {
	if !valid {
		return kind | Nullable, nil
	}
	return kind | Nullable, v
}
