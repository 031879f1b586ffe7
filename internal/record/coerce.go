package record

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ashkelyonok/TourismAgencyDBManager/internal/database"
	"github.com/ashkelyonok/TourismAgencyDBManager/internal/errs"
	"github.com/ashkelyonok/TourismAgencyDBManager/internal/schema"
)

// family is the coercion target implied by a declared column type.
type family int

const (
	familyText family = iota
	familyInt
	familyFloat
	familyBool
	familyTemporal
)

var (
	intTypeRe      = regexp.MustCompile(`(^|[^a-z])((tiny|small|medium|big)?int(eger|[248])?|(big|small)?serial[248]?)([^a-z]|$)`)
	floatTypeRe    = regexp.MustCompile(`decimal|numeric|float|real|double`)
	temporalTypeRe = regexp.MustCompile(`^(date|datetime|timestamp)`)
)

func familyOf(declared string) family {
	t := strings.ToLower(strings.TrimSpace(declared))
	switch {
	case strings.HasPrefix(t, "interval"):
		return familyText
	case strings.Contains(t, "bool"):
		return familyBool
	case intTypeRe.MatchString(t):
		return familyInt
	case floatTypeRe.MatchString(t):
		return familyFloat
	case temporalTypeRe.MatchString(t):
		return familyTemporal
	default:
		return familyText
	}
}

var (
	trueWords  = map[string]bool{"true": true, "t": true, "1": true, "yes": true, "y": true, "on": true}
	falseWords = map[string]bool{"false": true, "f": true, "0": true, "no": true, "n": true, "off": true}
)

var temporalLayouts = []string{
	time.RFC3339Nano,
	time.DateTime,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	time.DateOnly,
}

// Coerce converts free text into the value kind implied by the column's
// declared type. Malformed integer, float or boolean text is a Validation
// error; unparsable temporal text stays text for the database to judge.
func Coerce(col schema.Column, text string) (database.Value, error) {
	s := strings.TrimSpace(text)
	switch familyOf(col.Type) {
	case familyInt:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return database.Null(), errs.Newf(errs.ErrKindValidation, "invalid integer %q for column %q", text, col.Name)
		}
		return database.Int(n), nil
	case familyFloat:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return database.Null(), errs.Newf(errs.ErrKindValidation, "invalid number %q for column %q", text, col.Name)
		}
		return database.Float(f), nil
	case familyBool:
		lower := strings.ToLower(s)
		switch {
		case trueWords[lower]:
			return database.Bool(true), nil
		case falseWords[lower]:
			return database.Bool(false), nil
		}
		return database.Null(), errs.Newf(errs.ErrKindValidation, "invalid boolean %q for column %q", text, col.Name)
	case familyTemporal:
		for _, layout := range temporalLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return database.Temporal(ts), nil
			}
		}
		return database.Text(text), nil
	default:
		return database.Text(text), nil
	}
}

// CoerceInsert converts the text values of in for an insert. Empty text is
// dropped so the column falls back to its default; malformed numeric or
// boolean text fails. Non-text values pass through unchanged.
func CoerceInsert(tbl *schema.Table, in *database.Row) (*database.Row, error) {
	out := database.NewRow()
	for _, k := range in.Keys() {
		col, ok := tbl.Column(k)
		if !ok {
			return nil, unknownColumn(tbl.Name, k)
		}
		v, _ := in.Get(k)
		if v.Kind() != database.KindText {
			out.Set(k, v)
			continue
		}
		if strings.TrimSpace(v.AsText()) == "" {
			continue
		}
		cv, err := Coerce(col, v.AsText())
		if err != nil {
			return nil, err
		}
		out.Set(k, cv)
	}
	return out, nil
}

// CoerceUpdate converts the text values of in for an update. Empty text
// becomes NULL, and text that fails to parse is kept as text and left for
// the database to accept or reject.
func CoerceUpdate(tbl *schema.Table, in *database.Row) (*database.Row, error) {
	out := database.NewRow()
	for _, k := range in.Keys() {
		col, ok := tbl.Column(k)
		if !ok {
			return nil, unknownColumn(tbl.Name, k)
		}
		v, _ := in.Get(k)
		if v.Kind() != database.KindText {
			out.Set(k, v)
			continue
		}
		if strings.TrimSpace(v.AsText()) == "" {
			out.Set(k, database.Null())
			continue
		}
		cv, err := Coerce(col, v.AsText())
		if err != nil {
			cv = v
		}
		out.Set(k, cv)
	}
	return out, nil
}

func unknownColumn(table, column string) error {
	return errs.Newf(errs.ErrKindSchema, "unknown column %q in table %q", column, table)
}
