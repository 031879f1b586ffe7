package database

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ashkelyonok/TourismAgencyDBManager/internal/errs"
)

// Dialect controls placeholder style, identifier quoting and how a
// connection is pinned to a schema.
type Dialect int

const (
	// DialectPostgres uses $1, $2, … placeholders and "double quotes".
	DialectPostgres Dialect = iota

	// DialectMySQL uses ? placeholders and `backticks`.
	DialectMySQL

	// DialectSQLite uses ? placeholders and "double quotes". It has a single
	// schema per file, so no use-schema directive is issued.
	DialectSQLite
)

func (d Dialect) String() string {
	switch d {
	case DialectPostgres:
		return "postgres"
	case DialectMySQL:
		return "mysql"
	case DialectSQLite:
		return "sqlite"
	default:
		return fmt.Sprintf("dialect(%d)", int(d))
	}
}

// ParseDialect maps a driver name to a Dialect.
func ParseDialect(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "postgres", "postgresql", "pg", "":
		return DialectPostgres, nil
	case "mysql", "mariadb":
		return DialectMySQL, nil
	case "sqlite", "sqlite3":
		return DialectSQLite, nil
	}
	return 0, errs.Newf(errs.ErrKindValidation, "unsupported database driver %q", name)
}

// Placeholder returns the n-th (1-based) positional parameter marker.
func (d Dialect) Placeholder(n int) string {
	if d == DialectPostgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// DefaultSchema is the schema used when none is configured. MySQL has no
// fixed default; the database named in the URL is used instead.
func (d Dialect) DefaultSchema() string {
	switch d {
	case DialectPostgres:
		return "public"
	case DialectSQLite:
		return "main"
	default:
		return ""
	}
}

// UseSchema returns the session-scoped directive that pins a connection to
// schema, or "" when the dialect has none.
func (d Dialect) UseSchema(schema string) string {
	switch d {
	case DialectPostgres:
		return "SET search_path TO " + d.QuoteIdent(schema)
	case DialectMySQL:
		return "USE " + d.QuoteIdent(schema)
	default:
		return ""
	}
}

// identRe is the only shape accepted for a schema name.
var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidIdentifier reports whether name matches ^[A-Za-z_][A-Za-z0-9_]*$.
func ValidIdentifier(name string) bool {
	return identRe.MatchString(name)
}

// QuoteIdent always quotes name with the dialect's quote character,
// doubling any embedded quote. Keyword-named columns such as "order" or
// "isnull" therefore need no special casing.
func (d Dialect) QuoteIdent(name string) string {
	if d == DialectMySQL {
		return "`" + strings.ReplaceAll(name, "`", "``") + "`"
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// QuoteIdents quotes every name and joins them with ", ".
func (d Dialect) QuoteIdents(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = d.QuoteIdent(n)
	}
	return strings.Join(quoted, ", ")
}

// QuoteLiteral renders s as a SQL string literal.
func (d Dialect) QuoteLiteral(s string) string {
	s = strings.ReplaceAll(s, "'", "''")
	if d == DialectMySQL {
		s = strings.ReplaceAll(s, `\`, `\\`)
	}
	return "'" + s + "'"
}

func toSet(ss []string) map[string]bool {
	m := make(map[string]bool, len(ss))
	for _, s := range ss {
		m[s] = true
	}
	return m
}
