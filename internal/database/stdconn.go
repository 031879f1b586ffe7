package database

import (
	"context"
	"database/sql"
	"slices"
	"strconv"
	"strings"
)

// StdConn adapts a database/sql connection to Conn. The MySQL and SQLite
// drivers share it; they differ only in error mapping and catalog queries.
type StdConn struct {
	db       *sql.DB
	conn     *sql.Conn
	mapErr   func(err error, msg string) error
	catalog  Catalog
	rowCount string
}

// NewStdConn takes ownership of db and conn; Close releases both.
// catalog receives the connection so its queries share the session state.
func NewStdConn(db *sql.DB, conn *sql.Conn, mapErr func(error, string) error, catalog func(*sql.Conn) Catalog) *StdConn {
	return &StdConn{db: db, conn: conn, mapErr: mapErr, catalog: catalog(conn)}
}

// WithRowCount sets the statement that reports how many rows the last
// statement on this connection changed, e.g. SELECT changes().
func (c *StdConn) WithRowCount(query string) *StdConn {
	c.rowCount = query
	return c
}

func (c *StdConn) Catalog() Catalog { return c.catalog }

func (c *StdConn) Ping(ctx context.Context) error {
	if err := c.conn.PingContext(ctx); err != nil {
		return c.mapErr(err, "ping failed")
	}
	return nil
}

func (c *StdConn) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	rows, err := c.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, c.mapErr(err, "query failed")
	}
	return newStdRows(rows, c.mapErr), nil
}

func (c *StdConn) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := c.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, c.mapErr(err, "statement failed")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, c.mapErr(err, "reading affected rows")
	}
	return n, nil
}

// Run decides between a row set and an affected count from the statement's
// shape, since database/sql cannot tell before executing. A row-set statement
// that comes back without columns is reported through the row-count query.
func (c *StdConn) Run(ctx context.Context, query string) (*Result, error) {
	if !ReturnsRows(query) {
		n, err := c.Exec(ctx, query)
		if err != nil {
			return nil, err
		}
		return &Result{RowsAffected: n}, nil
	}

	rows, err := c.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, c.mapErr(err, "query failed")
	}
	cols, err := rows.Columns()
	if err != nil || len(cols) > 0 {
		return &Result{Rows: newStdRows(rows, c.mapErr)}, nil
	}

	for rows.Next() {
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, c.mapErr(err, "statement failed")
	}
	if c.rowCount == "" {
		return &Result{}, nil
	}
	var n int64
	if err := c.conn.QueryRowContext(ctx, c.rowCount).Scan(&n); err != nil {
		return nil, c.mapErr(err, "reading affected rows")
	}
	return &Result{RowsAffected: n}, nil
}

func (c *StdConn) Close(context.Context) error {
	cerr := c.conn.Close()
	derr := c.db.Close()
	if cerr != nil {
		return c.mapErr(cerr, "closing connection")
	}
	if derr != nil {
		return c.mapErr(derr, "closing connection")
	}
	return nil
}

// rowKeywords lead statements that always produce a row set.
var rowKeywords = toSet([]string{
	"select", "show", "describe", "desc", "explain", "pragma", "values", "table",
})

// dmlKeywords lead statements that produce a row set only with RETURNING.
var dmlKeywords = toSet([]string{"insert", "update", "delete", "replace"})

// ReturnsRows reports whether the statement produces a row set. The main verb
// is the leading keyword, or the first verb after a WITH clause's common
// table expressions; data-modifying verbs count only with a top-level
// RETURNING clause. Leading parentheses, quoted text and comments are skipped.
func ReturnsRows(query string) bool {
	words := topLevelWords(skipLeading(query))
	if len(words) == 0 {
		return false
	}
	verb := words[0]
	if verb == "with" {
		verb = ""
		for _, w := range words[1:] {
			if rowKeywords[w] || dmlKeywords[w] {
				verb = w
				break
			}
		}
	}
	switch {
	case rowKeywords[verb]:
		return true
	case dmlKeywords[verb]:
		return slices.Contains(words, "returning")
	default:
		return false
	}
}

// topLevelWords returns the lower-cased words of q that sit outside
// parentheses, quotes and comments.
func topLevelWords(q string) []string {
	var words []string
	depth := 0
	for i := 0; i < len(q); {
		c := q[i]
		switch {
		case c == '\'' || c == '"' || c == '`':
			j := strings.IndexByte(q[i+1:], c)
			if j < 0 {
				return words
			}
			i += j + 2
		case strings.HasPrefix(q[i:], "--"):
			j := strings.IndexByte(q[i:], '\n')
			if j < 0 {
				return words
			}
			i += j + 1
		case strings.HasPrefix(q[i:], "/*"):
			j := strings.Index(q[i+2:], "*/")
			if j < 0 {
				return words
			}
			i += j + 4
		case c == '(':
			depth++
			i++
		case c == ')':
			if depth > 0 {
				depth--
			}
			i++
		case isLetter(c):
			j := i + 1
			for j < len(q) && (isLetter(q[j]) || q[j] >= '0' && q[j] <= '9') {
				j++
			}
			if depth == 0 {
				words = append(words, strings.ToLower(q[i:j]))
			}
			i = j
		default:
			i++
		}
	}
	return words
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}

func skipLeading(q string) string {
	for {
		q = strings.TrimLeft(q, " \t\r\n(")
		switch {
		case strings.HasPrefix(q, "--"):
			i := strings.IndexByte(q, '\n')
			if i < 0 {
				return ""
			}
			q = q[i+1:]
		case strings.HasPrefix(q, "/*"):
			i := strings.Index(q, "*/")
			if i < 0 {
				return ""
			}
			q = q[i+2:]
		default:
			return q
		}
	}
}

// stdRows converts the []byte cells database/sql hands back for textual
// protocols into numbers when the column type says so.
type stdRows struct {
	rows   *sql.Rows
	types  []*sql.ColumnType
	mapErr func(error, string) error
}

func newStdRows(rows *sql.Rows, mapErr func(error, string) error) *stdRows {
	types, _ := rows.ColumnTypes()
	return &stdRows{rows: rows, types: types, mapErr: mapErr}
}

func (r *stdRows) Next() bool { return r.rows.Next() }
func (r *stdRows) Close()     { r.rows.Close() }

func (r *stdRows) Columns() ([]string, error) {
	cols, err := r.rows.Columns()
	if err != nil {
		return nil, r.mapErr(err, "reading columns")
	}
	return cols, nil
}

func (r *stdRows) Err() error {
	if err := r.rows.Err(); err != nil {
		return r.mapErr(err, "iterating rows")
	}
	return nil
}

func (r *stdRows) Scan(dest ...any) error {
	if err := r.rows.Scan(dest...); err != nil {
		return r.mapErr(err, "scanning row")
	}
	for i, d := range dest {
		p, ok := d.(*any)
		if !ok || i >= len(r.types) {
			continue
		}
		if b, ok := (*p).([]byte); ok {
			*p = decodeBytes(b, r.types[i].DatabaseTypeName())
		}
	}
	return nil
}

func decodeBytes(b []byte, typeName string) any {
	s := string(b)
	t := strings.ToUpper(typeName)
	switch {
	case strings.Contains(t, "INT"):
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
	case strings.Contains(t, "DECIMAL"), strings.Contains(t, "NUMERIC"),
		strings.Contains(t, "FLOAT"), strings.Contains(t, "DOUBLE"), strings.Contains(t, "REAL"):
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	case t == "BIT" || t == "BOOL" || t == "BOOLEAN":
		if len(b) == 1 && (b[0] == 0 || b[0] == 1) {
			return b[0] == 1
		}
	}
	return s
}
