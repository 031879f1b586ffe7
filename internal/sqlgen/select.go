package sqlgen

import (
	"fmt"
	"strings"

	"github.com/ashkelyonok/TourismAgencyDBManager/internal/database"
	"github.com/ashkelyonok/TourismAgencyDBManager/internal/errs"
)

// validOps is the allowlist of comparison operators for WHERE clauses.
// The operator position cannot be parameterized, so anything else is rejected.
var validOps = map[string]bool{
	"=":     true,
	"!=":    true,
	"<>":    true,
	"<":     true,
	">":     true,
	"<=":    true,
	">=":    true,
	"LIKE":  true,
	"ILIKE": true,
}

// SelectBuilder constructs a parameterized SELECT using a fluent API.
// Values are never interpolated into the SQL string; they are always passed as args.
//
// Usage:
//
//	stmt, err := sqlgen.Select(database.DialectPostgres, "tours").
//	    Columns("id", "title").
//	    Where("country", "=", database.Text("Italy")).
//	    OrderBy("price", sqlgen.Desc).
//	    Limit(20).
//	    Build()
type SelectBuilder struct {
	table   string
	dialect database.Dialect
	columns []string
	where   []whereClause
	orderBy []orderClause
	limit   *int
	offset  *int
}

// SortDirection controls the ORDER BY direction.
type SortDirection bool

const (
	Asc  SortDirection = false
	Desc SortDirection = true
)

type whereClause struct {
	column string
	op     string
	value  database.Value
}

type orderClause struct {
	column string
	dir    SortDirection
}

// Select starts a new SelectBuilder for the given dialect and table.
func Select(d database.Dialect, table string) *SelectBuilder {
	return &SelectBuilder{table: table, dialect: d}
}

// Columns restricts the SELECT to the specified columns.
// If not called, SELECT * is used.
func (b *SelectBuilder) Columns(cols ...string) *SelectBuilder {
	b.columns = cols
	return b
}

// Where adds a WHERE condition combined with AND. A NULL value renders IS
// NULL (or IS NOT NULL for != and <>).
func (b *SelectBuilder) Where(column, op string, value database.Value) *SelectBuilder {
	b.where = append(b.where, whereClause{column, op, value})
	return b
}

// OrderBy appends an ORDER BY clause for the given column and direction.
func (b *SelectBuilder) OrderBy(column string, dir SortDirection) *SelectBuilder {
	b.orderBy = append(b.orderBy, orderClause{column, dir})
	return b
}

// Limit sets the maximum number of rows to return.
func (b *SelectBuilder) Limit(n int) *SelectBuilder {
	b.limit = &n
	return b
}

// Offset sets the number of rows to skip (for pagination).
func (b *SelectBuilder) Offset(n int) *SelectBuilder {
	b.offset = &n
	return b
}

// Build produces the final statement.
// Returns a Validation error if any WHERE operator is not in the allowlist.
func (b *SelectBuilder) Build() (Statement, error) {
	if b.table == "" {
		return Statement{}, errs.New(errs.ErrKindValidation, "table name is required")
	}
	d := b.dialect
	bind := &binder{d: d}

	cols := "*"
	if len(b.columns) > 0 {
		cols = d.QuoteIdents(b.columns)
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(cols)
	sb.WriteString(" FROM ")
	sb.WriteString(d.QuoteIdent(b.table))

	// --- WHERE ---
	if len(b.where) > 0 {
		parts := make([]string, 0, len(b.where))
		for _, w := range b.where {
			op := strings.ToUpper(strings.TrimSpace(w.op))
			if !validOps[op] {
				return Statement{}, errs.Newf(errs.ErrKindValidation, "unsupported WHERE operator: %q", w.op)
			}
			if op == "ILIKE" && d != database.DialectPostgres {
				op = "LIKE"
			}
			col := d.QuoteIdent(w.column)
			switch {
			case w.value.IsNull() && (op == "!=" || op == "<>"):
				parts = append(parts, col+" IS NOT NULL")
			case w.value.IsNull():
				parts = append(parts, col+" IS NULL")
			default:
				parts = append(parts, fmt.Sprintf("%s %s %s", col, op, bind.bind(w.value)))
			}
		}
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(parts, " AND "))
	}

	// --- ORDER BY ---
	if len(b.orderBy) > 0 {
		parts := make([]string, len(b.orderBy))
		for i, o := range b.orderBy {
			dir := "ASC"
			if o.dir == Desc {
				dir = "DESC"
			}
			parts[i] = d.QuoteIdent(o.column) + " " + dir
		}
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(parts, ", "))
	}

	// --- LIMIT / OFFSET ---
	if b.limit != nil {
		sb.WriteString(" LIMIT ")
		sb.WriteString(bind.bind(database.Int(int64(*b.limit))))
	}
	if b.offset != nil {
		// MySQL and SQLite reject OFFSET without LIMIT.
		switch {
		case b.limit == nil && d == database.DialectMySQL:
			sb.WriteString(" LIMIT 18446744073709551615")
		case b.limit == nil && d == database.DialectSQLite:
			sb.WriteString(" LIMIT -1")
		}
		sb.WriteString(" OFFSET ")
		sb.WriteString(bind.bind(database.Int(int64(*b.offset))))
	}

	return Statement{SQL: sb.String(), Args: bind.args}, nil
}
