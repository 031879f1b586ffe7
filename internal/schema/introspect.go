package schema

import (
	"context"
	"slices"

	"github.com/ashkelyonok/TourismAgencyDBManager/internal/database"
	"github.com/ashkelyonok/TourismAgencyDBManager/internal/errs"
	"github.com/ashkelyonok/TourismAgencyDBManager/internal/logger"
)

// Describe opens a connection on sess and reads the structure of table in
// the session's schema.
func Describe(ctx context.Context, sess *database.Session, table string) (*Table, error) {
	var t *Table
	err := sess.Do(ctx, func(ctx context.Context, conn database.Conn) error {
		var err error
		t, err = DescribeConn(ctx, conn.Catalog(), sess.Schema(), table)
		return err
	})
	return t, err
}

// DescribeConn reads table over an already open connection. It fails with a
// Schema error when the table is absent or reports no columns.
//
// Existence is checked first, then primary keys, then foreign keys; the
// column rows are read last and the key facts merged into them.
func DescribeConn(ctx context.Context, cat database.Catalog, schemaName, table string) (*Table, error) {
	tables, err := cat.ListTables(ctx, schemaName)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(tables, table) {
		return nil, errs.Newf(errs.ErrKindSchema, "table %q not found in schema %q", table, schemaName)
	}

	pks, err := cat.PrimaryKeys(ctx, schemaName, table)
	if err != nil {
		return nil, err
	}

	fks, err := cat.ForeignKeys(ctx, schemaName, table)
	if err != nil {
		return nil, err
	}
	refs := make(map[string]*Reference, len(fks))
	for _, fk := range fks {
		refs[fk.Column] = &Reference{Table: fk.RefTable, Column: fk.RefColumn}
	}

	infos, err := cat.Columns(ctx, schemaName, table)
	if err != nil {
		return nil, err
	}
	if len(infos) == 0 {
		return nil, errs.Newf(errs.ErrKindSchema, "table %q has no columns", table)
	}

	t := &Table{Name: table, Columns: make([]Column, 0, len(infos))}
	for _, info := range infos {
		t.Columns = append(t.Columns, Column{
			Name:       info.Name,
			Type:       info.Type,
			PrimaryKey: slices.Contains(pks, info.Name),
			Nullable:   info.Nullable,
			Default:    info.Default,
			References: refs[info.Name],
			Generated:  info.Generated,
		})
	}

	logger.FromContext(ctx).DebugWith("table described", map[string]any{
		"schema":  schemaName,
		"table":   table,
		"columns": len(t.Columns),
		"pk":      pks,
	})
	return t, nil
}
