package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/ashkelyonok/TourismAgencyDBManager/internal/database"
)

// catalog reads the table-valued pragma functions.
type catalog struct {
	conn *sql.Conn
}

func (c *catalog) ListSchemas(ctx context.Context) ([]string, error) {
	const q = `SELECT name FROM pragma_database_list WHERE name <> 'temp' ORDER BY name`
	return c.fetchStringList(ctx, q, "failed to list schemas")
}

func (c *catalog) ListTables(ctx context.Context, schema string) ([]string, error) {
	q := `
		SELECT name
		FROM ` + database.DialectSQLite.QuoteIdent(schema) + `.sqlite_master
		WHERE type = 'table'
		  AND name NOT LIKE 'sqlite_%'
		ORDER BY name`

	return c.fetchStringList(ctx, q, "failed to list tables")
}

// Columns treats primary-key columns as NOT NULL, as the server engines do,
// even though SQLite only enforces it for INTEGER PRIMARY KEY.
func (c *catalog) Columns(ctx context.Context, schema, table string) ([]database.ColumnInfo, error) {
	const q = `
		SELECT name, type, "notnull", dflt_value, pk
		FROM pragma_table_info(?, ?)
		ORDER BY cid`

	rows, err := c.conn.QueryContext(ctx, q, table, schema)
	if err != nil {
		return nil, mapError(err, "failed to fetch columns")
	}
	defer rows.Close()

	var (
		cols    []database.ColumnInfo
		pkCount int
		rowid   = -1
	)
	for rows.Next() {
		var (
			col     database.ColumnInfo
			notNull int
			def     sql.NullString
			pk      int
		)
		if err := rows.Scan(&col.Name, &col.Type, &notNull, &def, &pk); err != nil {
			return nil, mapError(err, "failed to scan column info")
		}
		col.Nullable = notNull == 0 && pk == 0
		if def.Valid {
			col.Default = &def.String
		}
		if pk > 0 {
			pkCount++
			if strings.EqualFold(col.Type, "INTEGER") {
				rowid = len(cols)
			}
		}
		cols = append(cols, col)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "error iterating columns")
	}
	// A sole INTEGER primary key aliases the rowid and is assigned on insert.
	if pkCount == 1 && rowid >= 0 {
		cols[rowid].Generated = true
	}
	return cols, nil
}

func (c *catalog) PrimaryKeys(ctx context.Context, schema, table string) ([]string, error) {
	const q = `SELECT name FROM pragma_table_info(?, ?) WHERE pk > 0 ORDER BY pk`
	return c.fetchStringList(ctx, q, "failed to fetch primary keys", table, schema)
}

func (c *catalog) ForeignKeys(ctx context.Context, schema, table string) ([]database.ForeignKey, error) {
	const q = `
		SELECT "from", "table", "to"
		FROM pragma_foreign_key_list(?, ?)
		ORDER BY id, seq`

	rows, err := c.conn.QueryContext(ctx, q, table, schema)
	if err != nil {
		return nil, mapError(err, "failed to fetch foreign keys")
	}
	defer rows.Close()

	var fks []database.ForeignKey
	for rows.Next() {
		var (
			fk database.ForeignKey
			to sql.NullString
		)
		if err := rows.Scan(&fk.Column, &fk.RefTable, &to); err != nil {
			return nil, mapError(err, "failed to scan foreign key")
		}
		fk.RefColumn = to.String
		fks = append(fks, fk)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "error iterating foreign keys")
	}
	return fks, nil
}

func (c *catalog) fetchStringList(ctx context.Context, q, errMsg string, args ...any) ([]string, error) {
	rows, err := c.conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, mapError(err, errMsg)
	}
	defer rows.Close()

	var list []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, mapError(err, errMsg)
		}
		list = append(list, s)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, errMsg)
	}
	return list, nil
}
