package errs

import (
	"errors"
	"strings"
)

// ConstraintKind categorises why the database rejected a write.
type ConstraintKind int

const (
	ConstraintNone ConstraintKind = iota
	ConstraintNotNull
	ConstraintForeignKey
	ConstraintUnique
	ConstraintLength
	ConstraintTypeFormat
	ConstraintRange
)

func (c ConstraintKind) String() string {
	switch c {
	case ConstraintNotNull:
		return "not_null"
	case ConstraintForeignKey:
		return "foreign_key"
	case ConstraintUnique:
		return "unique"
	case ConstraintLength:
		return "length"
	case ConstraintTypeFormat:
		return "type_format"
	case ConstraintRange:
		return "range"
	default:
		return "none"
	}
}

// constraintPhrases maps lower-cased fragments of driver error text to a
// category. Postgres, MySQL and SQLite phrasings are all listed; order matters
// only where one fragment could contain another.
var constraintPhrases = []struct {
	fragment string
	kind     ConstraintKind
}{
	{"violates not-null constraint", ConstraintNotNull},
	{"not null constraint failed", ConstraintNotNull},
	{"cannot be null", ConstraintNotNull},
	{"violates foreign key constraint", ConstraintForeignKey},
	{"foreign key constraint failed", ConstraintForeignKey},
	{"a foreign key constraint fails", ConstraintForeignKey},
	{"violates unique constraint", ConstraintUnique},
	{"unique constraint failed", ConstraintUnique},
	{"duplicate entry", ConstraintUnique},
	{"value too long", ConstraintLength},
	{"data too long", ConstraintLength},
	{"invalid input syntax", ConstraintTypeFormat},
	{"incorrect integer value", ConstraintTypeFormat},
	{"incorrect datetime value", ConstraintTypeFormat},
	{"out of range", ConstraintRange},
}

// ClassifyConstraint matches driver error text against known constraint
// phrasings. It returns ConstraintNone when nothing matches.
func ClassifyConstraint(text string) ConstraintKind {
	lower := strings.ToLower(text)
	for _, p := range constraintPhrases {
		if strings.Contains(lower, p.fragment) {
			return p.kind
		}
	}
	return ConstraintNone
}

// Describe renders the categorised, operator-facing message for err.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	switch KindOf(err) {
	case ErrKindConstraint:
		switch ConstraintOf(err) {
		case ConstraintNotNull:
			return "a required field cannot be NULL"
		case ConstraintForeignKey:
			return "foreign key integrity violation"
		case ConstraintUnique:
			return "the value violates a uniqueness constraint"
		case ConstraintLength:
			return "the value is too long for the field"
		case ConstraintTypeFormat:
			return "invalid data format for the field"
		case ConstraintRange:
			return "the value is out of range for the field"
		}
	case ErrKindSchema, ErrKindValidation:
		var e *Error
		if errors.As(err, &e) {
			return e.Message
		}
	case ErrKindConnectionFailed:
		return "database connection failed: " + Cause(err)
	}
	return "database error: " + Cause(err)
}
