package mysql

import (
	"context"
	"database/sql"

	"github.com/ashkelyonok/TourismAgencyDBManager/internal/database"
)

// catalog reads information_schema; in MySQL a schema is a database.
type catalog struct {
	conn *sql.Conn
}

func (c *catalog) ListSchemas(ctx context.Context) ([]string, error) {
	const q = `
		SELECT schema_name
		FROM information_schema.schemata
		WHERE schema_name NOT IN ('information_schema', 'mysql', 'performance_schema', 'sys')
		ORDER BY schema_name`

	return c.fetchStringList(ctx, q, "failed to list schemas")
}

func (c *catalog) ListTables(ctx context.Context, schema string) ([]string, error) {
	const q = `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = ?
		  AND table_type   = 'BASE TABLE'
		ORDER BY table_name`

	return c.fetchStringList(ctx, q, "failed to list tables", schema)
}

// Columns reports column_type (e.g. "varchar(64)", "int unsigned") and folds
// auto_increment into the type text so it survives a CREATE round-trip.
func (c *catalog) Columns(ctx context.Context, schema, table string) ([]database.ColumnInfo, error) {
	const q = `
		SELECT column_name,
		       CASE WHEN extra LIKE '%auto_increment%'
		            THEN CONCAT(column_type, ' auto_increment')
		            ELSE column_type
		       END,
		       is_nullable = 'YES',
		       column_default,
		       extra LIKE '%auto_increment%'
		FROM information_schema.columns
		WHERE table_schema = ?
		  AND table_name   = ?
		ORDER BY ordinal_position`

	rows, err := c.conn.QueryContext(ctx, q, schema, table)
	if err != nil {
		return nil, mapError(err, "failed to fetch columns")
	}
	defer rows.Close()

	var cols []database.ColumnInfo
	for rows.Next() {
		var (
			col  database.ColumnInfo
			def  sql.NullString
			null bool
			gen  bool
		)
		if err := rows.Scan(&col.Name, &col.Type, &null, &def, &gen); err != nil {
			return nil, mapError(err, "failed to scan column info")
		}
		col.Nullable = null
		col.Generated = gen
		if def.Valid {
			col.Default = &def.String
		}
		cols = append(cols, col)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "error iterating columns")
	}
	return cols, nil
}

func (c *catalog) PrimaryKeys(ctx context.Context, schema, table string) ([]string, error) {
	const q = `
		SELECT column_name
		FROM information_schema.key_column_usage
		WHERE table_schema    = ?
		  AND table_name      = ?
		  AND constraint_name = 'PRIMARY'
		ORDER BY ordinal_position`

	return c.fetchStringList(ctx, q, "failed to fetch primary keys", schema, table)
}

func (c *catalog) ForeignKeys(ctx context.Context, schema, table string) ([]database.ForeignKey, error) {
	const q = `
		SELECT column_name,
		       referenced_table_name,
		       referenced_column_name
		FROM information_schema.key_column_usage
		WHERE table_schema           = ?
		  AND table_name             = ?
		  AND referenced_table_name IS NOT NULL
		ORDER BY ordinal_position`

	rows, err := c.conn.QueryContext(ctx, q, schema, table)
	if err != nil {
		return nil, mapError(err, "failed to fetch foreign keys")
	}
	defer rows.Close()

	var fks []database.ForeignKey
	for rows.Next() {
		var fk database.ForeignKey
		if err := rows.Scan(&fk.Column, &fk.RefTable, &fk.RefColumn); err != nil {
			return nil, mapError(err, "failed to scan foreign key")
		}
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
