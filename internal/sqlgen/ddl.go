package sqlgen

import (
	"regexp"
	"strings"

	"github.com/ashkelyonok/TourismAgencyDBManager/internal/database"
	"github.com/ashkelyonok/TourismAgencyDBManager/internal/errs"
	"github.com/ashkelyonok/TourismAgencyDBManager/internal/schema"
)

// typeRe bounds what may appear as a declared column type, since the type
// text is written into DDL verbatim: words, an optional (n) or (p,s), more
// words, an optional [] suffix.
var typeRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_ ]*(\(\s*\d+(\s*,\s*\d+)?\s*\))?[A-Za-z0-9_ ]*(\[\])?$`)

// CreateTable renders CREATE TABLE for columns.
//
// Each column gets NOT NULL unless it is nullable or its type generates its
// own values. Defaults go through RenderDefault. Primary-key columns form a
// single composite PRIMARY KEY clause; every reference becomes a constraint
// named fk_<table>_<column>.
func CreateTable(d database.Dialect, table string, columns []schema.Column) (Statement, error) {
	if table == "" {
		return Statement{}, errs.New(errs.ErrKindValidation, "table name is required")
	}
	if len(columns) == 0 {
		return Statement{}, errs.Newf(errs.ErrKindValidation, "table %q needs at least one column", table)
	}

	seen := make(map[string]bool, len(columns))
	defs := make([]string, 0, len(columns)+2)
	var pks []string

	for _, c := range columns {
		if c.Name == "" {
			return Statement{}, errs.New(errs.ErrKindValidation, "column name is required")
		}
		if seen[c.Name] {
			return Statement{}, errs.Newf(errs.ErrKindValidation, "duplicate column %q", c.Name)
		}
		seen[c.Name] = true

		typ := strings.TrimSpace(c.Type)
		if !typeRe.MatchString(typ) {
			return Statement{}, errs.Newf(errs.ErrKindValidation, "invalid type %q for column %q", c.Type, c.Name)
		}

		def := d.QuoteIdent(c.Name) + " " + typ
		if !c.Nullable && !schema.IsAutoIncrementType(typ) {
			def += " NOT NULL"
		}
		if c.Default != nil {
			lit, err := RenderDefault(d, *c.Default)
			if err != nil {
				return Statement{}, err
			}
			def += " DEFAULT " + lit
		}
		defs = append(defs, def)

		if c.PrimaryKey {
			pks = append(pks, c.Name)
		}
	}

	if len(pks) > 0 {
		defs = append(defs, "PRIMARY KEY ("+d.QuoteIdents(pks)+")")
	}

	for _, c := range columns {
		if c.References == nil {
			continue
		}
		if c.References.Table == "" {
			return Statement{}, errs.Newf(errs.ErrKindValidation, "column %q references no table", c.Name)
		}
		fk := "CONSTRAINT " + d.QuoteIdent("fk_"+table+"_"+c.Name) +
			" FOREIGN KEY (" + d.QuoteIdent(c.Name) + ")" +
			" REFERENCES " + d.QuoteIdent(c.References.Table)
		if c.References.Column != "" {
			fk += " (" + d.QuoteIdent(c.References.Column) + ")"
		}
		defs = append(defs, fk)
	}

	sql := "CREATE TABLE " + d.QuoteIdent(table) + " (" + strings.Join(defs, ", ") + ")"
	return Statement{SQL: sql}, nil
}

// DropTable renders an unconditional DROP TABLE.
func DropTable(d database.Dialect, table string) (Statement, error) {
	if table == "" {
		return Statement{}, errs.New(errs.ErrKindValidation, "table name is required")
	}
	return Statement{SQL: "DROP TABLE " + d.QuoteIdent(table)}, nil
}
