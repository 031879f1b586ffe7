package sqlgen

import (
	"regexp"
	"strings"

	"github.com/ashkelyonok/TourismAgencyDBManager/internal/database"
	"github.com/ashkelyonok/TourismAgencyDBManager/internal/errs"
)

// DefaultKind is how a column default text is emitted in CREATE TABLE.
type DefaultKind int

const (
	// DefaultText is plain text, emitted as a quoted string literal.
	DefaultText DefaultKind = iota
	// DefaultQuoted is an already quoted literal, optionally cast, emitted as-is.
	DefaultQuoted
	// DefaultNumeric is a bare number, emitted as-is.
	DefaultNumeric
	// DefaultKeyword is TRUE/FALSE/NULL or a date-time keyword, emitted as-is.
	DefaultKeyword
	// DefaultFunction is a recognized function call, emitted as-is.
	DefaultFunction
	// DefaultSequence is a sequence-advance call such as nextval('s'), emitted as-is.
	DefaultSequence
)

func (k DefaultKind) String() string {
	switch k {
	case DefaultQuoted:
		return "quoted"
	case DefaultNumeric:
		return "numeric"
	case DefaultKeyword:
		return "keyword"
	case DefaultFunction:
		return "function"
	case DefaultSequence:
		return "sequence"
	default:
		return "text"
	}
}

var defaultKeywords = map[string]bool{
	"TRUE":              true,
	"FALSE":             true,
	"NULL":              true,
	"CURRENT_TIMESTAMP": true,
	"CURRENT_DATE":      true,
	"CURRENT_TIME":      true,
	"LOCALTIME":         true,
	"LOCALTIMESTAMP":    true,
	"CURRENT_USER":      true,
}

var (
	numericRe  = regexp.MustCompile(`^[-+]?(\d+(\.\d*)?|\.\d+)([eE][-+]?\d+)?$`)
	quotedRe   = regexp.MustCompile(`^'(?:[^']|'')*'(::[A-Za-z][A-Za-z0-9_ ]*(\[\])?)?$`)
	sequenceRe = regexp.MustCompile(`(?i)^nextval\(\s*'[A-Za-z0-9_."]+'(::regclass)?\s*\)$`)

	// niladicRe lists the zero-argument functions recognized as defaults.
	niladicRe = regexp.MustCompile(`(?i)^(now|gen_random_uuid|uuid_generate_v4|uuid|random|` +
		`current_timestamp|current_date|clock_timestamp|statement_timestamp|transaction_timestamp|` +
		`curdate|curtime|utc_timestamp|sysdate|localtimestamp)\(\s*\)$`)

	// dateFuncRe covers SQLite's date functions with literal arguments,
	// e.g. datetime('now') or strftime('%s','now').
	dateFuncRe = regexp.MustCompile(`(?i)^(datetime|date|time|julianday|strftime|unixepoch)\(\s*'[^']*'(\s*,\s*'[^']*')*\s*\)$`)

	// precisionRe covers CURRENT_TIMESTAMP(3) and friends.
	precisionRe = regexp.MustCompile(`(?i)^(current_timestamp|current_time|localtime|localtimestamp|now)\(\s*\d\s*\)$`)
)

// ClassifyDefault decides how a default text is emitted. Text that looks like
// an expression but is not one of the recognized forms is rejected with a
// Validation error; the caller must quote it explicitly.
func ClassifyDefault(raw string) (DefaultKind, error) {
	s := strings.TrimSpace(raw)
	switch {
	case defaultKeywords[strings.ToUpper(s)]:
		return DefaultKeyword, nil
	case numericRe.MatchString(s):
		return DefaultNumeric, nil
	case sequenceRe.MatchString(s):
		return DefaultSequence, nil
	case niladicRe.MatchString(s), dateFuncRe.MatchString(s), precisionRe.MatchString(s):
		return DefaultFunction, nil
	case quotedRe.MatchString(s):
		return DefaultQuoted, nil
	case looksLikeExpression(s):
		return 0, errs.Newf(errs.ErrKindValidation,
			"default %q is not a recognized literal or function; quote it explicitly", raw)
	default:
		return DefaultText, nil
	}
}

// RenderDefault returns the text to place after DEFAULT.
func RenderDefault(d database.Dialect, raw string) (string, error) {
	kind, err := ClassifyDefault(raw)
	if err != nil {
		return "", err
	}
	if kind == DefaultText {
		return d.QuoteLiteral(raw), nil
	}
	s := strings.TrimSpace(raw)
	if kind == DefaultQuoted && d == database.DialectMySQL {
		if i := strings.LastIndex(s, "::"); i > 0 && strings.HasSuffix(s[:i], "'") {
			s = s[:i]
		}
	}
	return s, nil
}

func looksLikeExpression(s string) bool {
	return strings.ContainsAny(s, "()'\";`\\") ||
		strings.Contains(s, "::") ||
		strings.Contains(s, "--") ||
		strings.Contains(s, "/*")
}
