// Package schema reads table structure from the live catalog. Results are
// point-in-time snapshots; nothing is cached between calls.
package schema

import "strings"

// Column describes one column of a table.
type Column struct {
	Name       string     `json:"name"`
	Type       string     `json:"type"`
	PrimaryKey bool       `json:"primary_key"`
	Nullable   bool       `json:"nullable"`
	Default    *string    `json:"default,omitempty"`
	References *Reference `json:"references,omitempty"`

	// Generated is set by introspection when the engine assigns the value.
	Generated bool `json:"generated,omitempty"`
}

// Reference is the target of a foreign key.
type Reference struct {
	Table  string `json:"table"`
	Column string `json:"column"`
}

// HasDefault reports whether the column declares a default value.
func (c Column) HasDefault() bool { return c.Default != nil }

// Required reports whether an insert must supply the column.
func (c Column) Required() bool {
	return !c.Nullable && !c.HasDefault() && !c.Generated && !c.AutoIncrement()
}

// AutoIncrement reports whether the declared type generates its own values
// (serial, bigserial, auto_increment, identity).
func (c Column) AutoIncrement() bool { return IsAutoIncrementType(c.Type) }

// IsAutoIncrementType reports whether a declared type text denotes a
// self-generating column.
func IsAutoIncrementType(typ string) bool {
	t := strings.ToLower(typ)
	return strings.Contains(t, "serial") ||
		strings.Contains(t, "auto_increment") ||
		strings.Contains(t, "autoincrement") ||
		strings.Contains(t, "identity")
}

// Table is an ordered list of columns.
type Table struct {
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
}

// Column returns the named column.
func (t *Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// ColumnNames returns the column names in table order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// PrimaryKeys returns the primary-key column names in table order.
func (t *Table) PrimaryKeys() []string {
	var pks []string
	for _, c := range t.Columns {
		if c.PrimaryKey {
			pks = append(pks, c.Name)
		}
	}
	return pks
}

// PrimaryKey returns the first primary-key column, which is what row
// identity resolution uses.
func (t *Table) PrimaryKey() (string, bool) {
	pks := t.PrimaryKeys()
	if len(pks) == 0 {
		return "", false
	}
	return pks[0], true
}
