package database

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// Kind is the runtime type carried by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindInt
	KindFloat
	KindBool
	KindText
	KindTemporal
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindText:
		return "text"
	case KindTemporal:
		return "temporal"
	default:
		return "null"
	}
}

// Value is a closed tagged variant holding one cell. The zero Value is NULL.
type Value struct {
	kind Kind
	i    int64
	f    float64
	b    bool
	s    string
	t    time.Time
}

func Null() Value                 { return Value{} }
func Int(v int64) Value           { return Value{kind: KindInt, i: v} }
func Float(v float64) Value       { return Value{kind: KindFloat, f: v} }
func Bool(v bool) Value           { return Value{kind: KindBool, b: v} }
func Text(v string) Value         { return Value{kind: KindText, s: v} }
func Temporal(v time.Time) Value  { return Value{kind: KindTemporal, t: v} }
func (v Value) Kind() Kind        { return v.kind }
func (v Value) IsNull() bool      { return v.kind == KindNull }
func (v Value) AsInt() int64      { return v.i }
func (v Value) AsFloat() float64  { return v.f }
func (v Value) AsBool() bool      { return v.b }
func (v Value) AsText() string    { return v.s }
func (v Value) AsTime() time.Time { return v.t }

// ValueOf converts a driver-native Go value into a Value. Types without a
// dedicated kind are rendered as text.
func ValueOf(x any) Value {
	switch v := x.(type) {
	case nil:
		return Null()
	case Value:
		return v
	case int:
		return Int(int64(v))
	case int8:
		return Int(int64(v))
	case int16:
		return Int(int64(v))
	case int32:
		return Int(int64(v))
	case int64:
		return Int(v)
	case uint8:
		return Int(int64(v))
	case uint16:
		return Int(int64(v))
	case uint32:
		return Int(int64(v))
	case uint64:
		if v > math.MaxInt64 {
			return Text(strconv.FormatUint(v, 10))
		}
		return Int(int64(v))
	case float32:
		return Float(float64(v))
	case float64:
		return Float(v)
	case bool:
		return Bool(v)
	case string:
		return Text(v)
	case []byte:
		return Text(string(v))
	case time.Time:
		return Temporal(v)
	case *string:
		if v == nil {
			return Null()
		}
		return Text(*v)
	case fmt.Stringer:
		return Text(v.String())
	default:
		return Text(fmt.Sprint(v))
	}
}

// Any returns the value as a plain Go value suitable as a statement argument.
func (v Value) Any() any {
	switch v.kind {
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindBool:
		return v.b
	case KindText:
		return v.s
	case KindTemporal:
		return v.t
	default:
		return nil
	}
}

// String renders the value for display. NULL renders as "".
func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindText:
		return v.s
	case KindTemporal:
		return formatTemporal(v.t)
	default:
		return ""
	}
}

// Equal reports whether two values have the same kind and content.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindInt:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f
	case KindBool:
		return v.b == o.b
	case KindText:
		return v.s == o.s
	case KindTemporal:
		return v.t.Equal(o.t)
	default:
		return true
	}
}

// formatTemporal drops the clock for midnight dates so DATE columns read
// naturally.
func formatTemporal(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format(time.DateOnly)
	}
	return t.Format(time.RFC3339)
}

// MarshalJSON encodes NULL as null, numbers and booleans natively, and text and
// temporal values as strings.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindFloat:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return json.Marshal(v.String())
		}
		return json.Marshal(v.f)
	case KindText:
		return json.Marshal(v.s)
	case KindTemporal:
		return json.Marshal(v.t.Format(time.RFC3339Nano))
	default:
		return []byte(v.String()), nil
	}
}

// UnmarshalJSON decodes null, booleans, numbers (integral → KindInt) and
// strings (always KindText; interpretation is left to the column's type).
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var x any
	if err := dec.Decode(&x); err != nil {
		return err
	}
	parsed, err := fromJSON(x)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func fromJSON(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case string:
		return Text(t), nil
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return Int(i), nil
		}
		f, err := t.Float64()
		if err != nil {
			return Null(), fmt.Errorf("invalid number %q: %w", t, err)
		}
		return Float(f), nil
	default:
		return Null(), fmt.Errorf("unsupported JSON value of type %T", x)
	}
}
