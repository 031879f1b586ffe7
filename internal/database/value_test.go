package database

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueOf(t *testing.T) {
	ts := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
	s := "ptr"

	tests := []struct {
		name string
		in   any
		kind Kind
		any  any
	}{
		{"nil", nil, KindNull, nil},
		{"int32", int32(7), KindInt, int64(7)},
		{"uint8", uint8(3), KindInt, int64(3)},
		{"float32", float32(1.5), KindFloat, float64(1.5)},
		{"bool", true, KindBool, true},
		{"string", "hi", KindText, "hi"},
		{"bytes", []byte("raw"), KindText, "raw"},
		{"time", ts, KindTemporal, ts},
		{"string pointer", &s, KindText, "ptr"},
		{"nil string pointer", (*string)(nil), KindNull, nil},
		{"fallback", struct{ A int }{1}, KindText, "{1}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := ValueOf(tt.in)
			assert.Equal(t, tt.kind, v.Kind())
			assert.Equal(t, tt.any, v.Any())
		})
	}
}

func TestValue_String(t *testing.T) {
	assert.Equal(t, "", Null().String())
	assert.Equal(t, "42", Int(42).String())
	assert.Equal(t, "2.5", Float(2.5).String())
	assert.Equal(t, "false", Bool(false).String())
	assert.Equal(t, "2024-05-01", Temporal(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)).String())
	assert.Equal(t, "2024-05-01T10:30:00Z", Temporal(time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)).String())
}

func TestValue_JSON(t *testing.T) {
	b, err := json.Marshal([]Value{Null(), Int(1), Float(1.5), Bool(true), Text("x")})
	require.NoError(t, err)
	assert.JSONEq(t, `[null, 1, 1.5, true, "x"]`, string(b))

	var vs []Value
	require.NoError(t, json.Unmarshal([]byte(`[null, 3, 2.25, false, "y"]`), &vs))
	require.Len(t, vs, 5)
	assert.True(t, vs[0].IsNull())
	assert.Equal(t, Int(3), vs[1])
	assert.Equal(t, Float(2.25), vs[2])
	assert.Equal(t, Bool(false), vs[3])
	assert.Equal(t, Text("y"), vs[4])
}

func TestValue_Equal(t *testing.T) {
	assert.True(t, Int(1).Equal(Int(1)))
	assert.False(t, Int(1).Equal(Float(1)))
	assert.True(t, Null().Equal(Value{}))
}
