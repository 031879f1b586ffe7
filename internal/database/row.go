package database

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ashkelyonok/TourismAgencyDBManager/internal/errs"
)

// Row is an ordered mapping from column name to Value. Iteration order is
// insertion order; setting an existing key keeps its position.
type Row struct {
	keys []string
	vals map[string]Value
}

// NewRow returns an empty row.
func NewRow() *Row {
	return &Row{vals: map[string]Value{}}
}

// RowOf builds a row from alternating name/value pairs. Values go through
// ValueOf. It panics on an odd argument count or a non-string name, so it is
// meant for literals in code and tests.
func RowOf(pairs ...any) *Row {
	if len(pairs)%2 != 0 {
		panic("database.RowOf: odd number of arguments")
	}
	r := NewRow()
	for i := 0; i < len(pairs); i += 2 {
		name, ok := pairs[i].(string)
		if !ok {
			panic(fmt.Sprintf("database.RowOf: column name at %d is %T", i, pairs[i]))
		}
		r.Set(name, ValueOf(pairs[i+1]))
	}
	return r
}

// Set stores v under name and returns r for chaining.
func (r *Row) Set(name string, v Value) *Row {
	if r.vals == nil {
		r.vals = map[string]Value{}
	}
	if _, ok := r.vals[name]; !ok {
		r.keys = append(r.keys, name)
	}
	r.vals[name] = v
	return r
}

// Get returns the value stored under name.
func (r *Row) Get(name string) (Value, bool) {
	if r == nil {
		return Null(), false
	}
	v, ok := r.vals[name]
	return v, ok
}

// Has reports whether name is present.
func (r *Row) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// Delete removes name, preserving the order of the remaining keys.
func (r *Row) Delete(name string) {
	if _, ok := r.vals[name]; !ok {
		return
	}
	delete(r.vals, name)
	for i, k := range r.keys {
		if k == name {
			r.keys = append(r.keys[:i:i], r.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the column names in order.
func (r *Row) Keys() []string {
	if r == nil {
		return nil
	}
	return append([]string(nil), r.keys...)
}

// Values returns the values in key order.
func (r *Row) Values() []Value {
	if r == nil {
		return nil
	}
	out := make([]Value, len(r.keys))
	for i, k := range r.keys {
		out[i] = r.vals[k]
	}
	return out
}

// Len returns the number of columns.
func (r *Row) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

// MarshalJSON writes the row as a JSON object in key order.
func (r *Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := r.vals[k].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object, keeping the keys in document order.
func (r *Row) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("row must be a JSON object")
	}

	*r = Row{vals: map[string]Value{}}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v in row", tok)
		}
		var raw any
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		v, err := fromJSON(raw)
		if err != nil {
			return fmt.Errorf("column %q: %w", key, err)
		}
		r.Set(key, v)
	}
	_, err = dec.Token()
	return err
}

// ScanRows reads every row from the result set. Each row is keyed by column
// name in result order; values are converted with ValueOf. A repeated column
// name gets a numeric suffix (id, id_2) so no value is lost.
//
// The returned slices are always non-nil (empty on zero rows).
// ScanRows always closes the Rows; callers do not need to call Close().
func ScanRows(rows Rows) ([]string, []*Row, error) {
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, wrapQuery("failed to read column names", err)
	}
	columns = uniqueNames(columns)

	result := make([]*Row, 0)

	for rows.Next() {
		// Allocate scan targets as *any so the driver can write any type.
		dest := make([]any, len(columns))
		destPtrs := make([]any, len(columns))
		for i := range dest {
			destPtrs[i] = &dest[i]
		}

		if err := rows.Scan(destPtrs...); err != nil {
			return nil, nil, wrapQuery("failed to scan row", err)
		}

		row := &Row{keys: make([]string, 0, len(columns)), vals: make(map[string]Value, len(columns))}
		for i, col := range columns {
			row.Set(col, ValueOf(dest[i]))
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, nil, wrapQuery("error during row iteration", err)
	}

	return columns, result, nil
}

func uniqueNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, len(names))
	for i, n := range names {
		name := n
		for k := 2; seen[name]; k++ {
			name = fmt.Sprintf("%s_%d", n, k)
		}
		seen[name] = true
		out[i] = name
	}
	return out
}

// wrapQuery leaves errors a driver already categorised untouched.
func wrapQuery(msg string, err error) error {
	if errs.KindOf(err) != errs.ErrKindUnknown {
		return err
	}
	return errs.Wrap(errs.ErrKindQueryFailed, msg, err)
}
