// Package sqlgen renders parameterized statements from column and value
// descriptions. It is pure: nothing here touches a connection.
//
// Identifiers always go through Dialect.QuoteIdent and values are always
// bound as positional arguments, never interpolated.
package sqlgen

import (
	"strings"

	"github.com/ashkelyonok/TourismAgencyDBManager/internal/database"
	"github.com/ashkelyonok/TourismAgencyDBManager/internal/errs"
)

// Statement is SQL text plus its positional arguments.
type Statement struct {
	SQL  string
	Args []any
}

// binder hands out placeholders in order and collects the matching args.
type binder struct {
	d    database.Dialect
	args []any
}

func (b *binder) bind(v database.Value) string {
	b.args = append(b.args, v.Any())
	return b.d.Placeholder(len(b.args))
}

// Insert renders an INSERT whose column list follows the key order of values.
// An empty row inserts a row of defaults.
func Insert(d database.Dialect, table string, values *database.Row) (Statement, error) {
	if table == "" {
		return Statement{}, errs.New(errs.ErrKindValidation, "table name is required")
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(d.QuoteIdent(table))

	if values.Len() == 0 {
		if d == database.DialectMySQL {
			sb.WriteString(" () VALUES ()")
		} else {
			sb.WriteString(" DEFAULT VALUES")
		}
		return Statement{SQL: sb.String()}, nil
	}

	b := &binder{d: d}
	keys := values.Keys()
	marks := make([]string, len(keys))
	for i, k := range keys {
		v, _ := values.Get(k)
		marks[i] = b.bind(v)
	}

	sb.WriteString(" (")
	sb.WriteString(d.QuoteIdents(keys))
	sb.WriteString(") VALUES (")
	sb.WriteString(strings.Join(marks, ", "))
	sb.WriteString(")")
	return Statement{SQL: sb.String(), Args: b.args}, nil
}

// UpdateByKey renders an UPDATE matching one primary-key value. The key
// column is left out of the SET clause; args are [new values..., key value].
func UpdateByKey(d database.Dialect, table, pk string, pkValue database.Value, values *database.Row) (Statement, error) {
	b := &binder{d: d}
	set := setClause(b, values, pk)
	if len(set) == 0 {
		return Statement{}, errs.Newf(errs.ErrKindValidation, "nothing to update in %q besides the primary key", table)
	}

	sql := "UPDATE " + d.QuoteIdent(table) +
		" SET " + strings.Join(set, ", ") +
		" WHERE " + d.QuoteIdent(pk) + " = " + b.bind(pkValue)
	return Statement{SQL: sql, Args: b.args}, nil
}

// UpdateByAllFields renders an UPDATE whose WHERE clause requires equality on
// every column of old. Every row matching all of them is updated. Args are
// [new values..., old values...]; NULL old values match with IS NULL and
// take no argument.
func UpdateByAllFields(d database.Dialect, table string, old, values *database.Row) (Statement, error) {
	if old.Len() == 0 {
		return Statement{}, errs.New(errs.ErrKindValidation, "no columns to identify the row")
	}
	b := &binder{d: d}
	set := setClause(b, values, "")
	if len(set) == 0 {
		return Statement{}, errs.Newf(errs.ErrKindValidation, "nothing to update in %q", table)
	}

	sql := "UPDATE " + d.QuoteIdent(table) +
		" SET " + strings.Join(set, ", ") +
		" WHERE " + matchAll(b, old)
	return Statement{SQL: sql, Args: b.args}, nil
}

// DeleteByKey renders a DELETE matching one primary-key value.
func DeleteByKey(d database.Dialect, table, pk string, pkValue database.Value) Statement {
	b := &binder{d: d}
	sql := "DELETE FROM " + d.QuoteIdent(table) +
		" WHERE " + d.QuoteIdent(pk) + " = " + b.bind(pkValue)
	return Statement{SQL: sql, Args: b.args}
}

// DeleteByAllFields renders a DELETE requiring equality on every column of
// row. Every matching row is deleted.
func DeleteByAllFields(d database.Dialect, table string, row *database.Row) (Statement, error) {
	if row.Len() == 0 {
		return Statement{}, errs.New(errs.ErrKindValidation, "no columns to identify the row")
	}
	b := &binder{d: d}
	sql := "DELETE FROM " + d.QuoteIdent(table) + " WHERE " + matchAll(b, row)
	return Statement{SQL: sql, Args: b.args}, nil
}

func setClause(b *binder, values *database.Row, skip string) []string {
	var set []string
	for _, k := range values.Keys() {
		if k == skip {
			continue
		}
		v, _ := values.Get(k)
		set = append(set, b.d.QuoteIdent(k)+" = "+b.bind(v))
	}
	return set
}

func matchAll(b *binder, row *database.Row) string {
	keys := row.Keys()
	preds := make([]string, len(keys))
	for i, k := range keys {
		v, _ := row.Get(k)
		if v.IsNull() {
			preds[i] = b.d.QuoteIdent(k) + " IS NULL"
			continue
		}
		preds[i] = b.d.QuoteIdent(k) + " = " + b.bind(v)
	}
	return strings.Join(preds, " AND ")
}
