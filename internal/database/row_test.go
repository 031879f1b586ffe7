package database

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashkelyonok/TourismAgencyDBManager/internal/errs"
)

func TestRow_PreservesInsertionOrder(t *testing.T) {
	r := NewRow().Set("zeta", Int(1)).Set("alpha", Int(2)).Set("mid", Int(3))
	r.Set("zeta", Int(9))

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, r.Keys())
	assert.Equal(t, []Value{Int(9), Int(2), Int(3)}, r.Values())

	r.Delete("alpha")
	assert.Equal(t, []string{"zeta", "mid"}, r.Keys())
	assert.False(t, r.Has("alpha"))
	assert.Equal(t, 2, r.Len())
}

func TestRow_JSONRoundTrip(t *testing.T) {
	in := `{"name":"Alice","id":7,"price":1.5,"active":true,"note":null}`

	var r Row
	require.NoError(t, json.Unmarshal([]byte(in), &r))
	assert.Equal(t, []string{"name", "id", "price", "active", "note"}, r.Keys())

	out, err := json.Marshal(&r)
	require.NoError(t, err)
	assert.Equal(t, in, string(out))
}

func TestRow_UnmarshalRejectsNonObject(t *testing.T) {
	var r Row
	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &r))
	assert.Error(t, json.Unmarshal([]byte(`{"a":{"nested":1}}`), &r))
}

func TestRowOf(t *testing.T) {
	r := RowOf("id", 1, "name", "Alice")
	v, ok := r.Get("id")
	require.True(t, ok)
	assert.Equal(t, Int(1), v)
	assert.Panics(t, func() { RowOf("odd") })
}

// fakeRows is an in-memory Rows.
type fakeRows struct {
	cols   []string
	data   [][]any
	pos    int
	err    error
	closed bool
}

func (f *fakeRows) Next() bool {
	if f.pos >= len(f.data) {
		return false
	}
	f.pos++
	return true
}

func (f *fakeRows) Scan(dest ...any) error {
	for i, d := range dest {
		*(d.(*any)) = f.data[f.pos-1][i]
	}
	return nil
}

func (f *fakeRows) Columns() ([]string, error) { return f.cols, nil }
func (f *fakeRows) Close()                     { f.closed = true }
func (f *fakeRows) Err() error                 { return f.err }

func TestScanRows(t *testing.T) {
	rows := &fakeRows{
		cols: []string{"id", "name"},
		data: [][]any{{int64(1), "a"}, {int64(2), nil}},
	}

	cols, result, err := ScanRows(rows)
	require.NoError(t, err)
	assert.True(t, rows.closed)
	assert.Equal(t, []string{"id", "name"}, cols)
	require.Len(t, result, 2)

	name, _ := result[1].Get("name")
	assert.True(t, name.IsNull())
}

func TestScanRows_RepeatedColumnNames(t *testing.T) {
	rows := &fakeRows{
		cols: []string{"id", "id", "id_2", "name"},
		data: [][]any{{int64(1), int64(2), int64(3), "a"}},
	}

	cols, result, err := ScanRows(rows)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "id_2", "id_2_2", "name"}, cols)
	require.Len(t, result, 1)
	assert.Equal(t, cols, result[0].Keys())
	assert.Equal(t, []Value{Int(1), Int(2), Int(3), Text("a")}, result[0].Values())
}

func TestScanRows_EmptyIsNonNil(t *testing.T) {
	_, result, err := ScanRows(&fakeRows{cols: []string{"id"}})
	require.NoError(t, err)
	assert.NotNil(t, result)
	assert.Empty(t, result)
}

func TestScanRows_IterationError(t *testing.T) {
	_, _, err := ScanRows(&fakeRows{cols: []string{"id"}, err: errors.New("boom")})
	assert.True(t, errs.IsQueryFailed(err))

	violation := errs.Violation(errs.ConstraintUnique, "insert failed", errors.New("dup"))
	_, _, err = ScanRows(&fakeRows{cols: []string{"id"}, err: violation})
	assert.True(t, errs.IsConstraint(err))
}
