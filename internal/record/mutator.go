// Package record inserts, updates and deletes rows of tables whose shape is
// only known from introspection, and creates or drops whole tables.
package record

import (
	"context"
	"time"

	"github.com/ashkelyonok/TourismAgencyDBManager/internal/database"
	"github.com/ashkelyonok/TourismAgencyDBManager/internal/errs"
	"github.com/ashkelyonok/TourismAgencyDBManager/internal/logger"
	"github.com/ashkelyonok/TourismAgencyDBManager/internal/schema"
	"github.com/ashkelyonok/TourismAgencyDBManager/internal/sqlgen"
)

// Strategy is how a mutation identifies the target rows.
type Strategy string

const (
	// ByPrimaryKey matches the first primary-key column only.
	ByPrimaryKey Strategy = "primary_key"
	// ByAllFields matches every supplied column and may affect several rows.
	ByAllFields Strategy = "all_fields"
)

// Mutator runs single-statement mutations against one session. Each call
// opens a connection, introspects the table, executes one statement and
// closes the connection; there is no batching and no transaction beyond
// the statement's own.
type Mutator struct {
	sess *database.Session
}

// New returns a Mutator bound to sess and its schema.
func New(sess *database.Session) *Mutator {
	return &Mutator{sess: sess}
}

// Insert adds one row. Every column that is not nullable, has no default and
// is not generated by the engine must be present in values, otherwise a
// Validation error naming the column is returned before any SQL runs.
func (m *Mutator) Insert(ctx context.Context, table string, values *database.Row) error {
	return m.sess.Do(ctx, func(ctx context.Context, conn database.Conn) error {
		tbl, err := schema.DescribeConn(ctx, conn.Catalog(), m.sess.Schema(), table)
		if err != nil {
			return err
		}
		if err := checkColumns(tbl, values); err != nil {
			return err
		}
		for _, col := range tbl.Columns {
			if col.Required() && !values.Has(col.Name) {
				return errs.Newf(errs.ErrKindValidation, "required column %q is missing", col.Name)
			}
		}

		stmt, err := sqlgen.Insert(m.sess.Dialect(), table, values)
		if err != nil {
			return err
		}
		n, err := m.exec(ctx, conn, stmt)
		if err != nil {
			return err
		}
		logger.FromContext(ctx).InfoWith("row inserted", map[string]any{
			"table": table, "rows_affected": n,
		})
		return nil
	})
}

// InsertText coerces free-text values with CoerceInsert and inserts them.
func (m *Mutator) InsertText(ctx context.Context, table string, raw *database.Row) error {
	tbl, err := schema.Describe(ctx, m.sess, table)
	if err != nil {
		return err
	}
	values, err := CoerceInsert(tbl, raw)
	if err != nil {
		return err
	}
	return m.Insert(ctx, table, values)
}

// Update replaces the columns of newRow in the row identified by old. It
// reports whether at least one row was affected.
func (m *Mutator) Update(ctx context.Context, table string, old, newRow *database.Row) (bool, error) {
	var affected int64
	err := m.sess.Do(ctx, func(ctx context.Context, conn database.Conn) error {
		tbl, err := schema.DescribeConn(ctx, conn.Catalog(), m.sess.Schema(), table)
		if err != nil {
			return err
		}
		if err := checkColumns(tbl, newRow); err != nil {
			return err
		}

		strategy, pk, pkValue := resolveIdentity(tbl, old)

		var stmt sqlgen.Statement
		if strategy == ByPrimaryKey {
			stmt, err = sqlgen.UpdateByKey(m.sess.Dialect(), table, pk, pkValue, newRow)
		} else {
			if err = checkColumns(tbl, old); err != nil {
				return err
			}
			stmt, err = sqlgen.UpdateByAllFields(m.sess.Dialect(), table, old, newRow)
		}
		if err != nil {
			return err
		}

		affected, err = m.exec(ctx, conn, stmt)
		if err != nil {
			return err
		}
		logger.FromContext(ctx).InfoWith("rows updated", map[string]any{
			"table": table, "strategy": string(strategy), "rows_affected": affected,
		})
		return nil
	})
	return affected > 0, err
}

// UpdateText coerces free-text values of newRow with CoerceUpdate and
// updates the row identified by old.
func (m *Mutator) UpdateText(ctx context.Context, table string, old, rawNew *database.Row) (bool, error) {
	tbl, err := schema.Describe(ctx, m.sess, table)
	if err != nil {
		return false, err
	}
	newRow, err := CoerceUpdate(tbl, rawNew)
	if err != nil {
		return false, err
	}
	return m.Update(ctx, table, old, newRow)
}

// Delete removes the row identified by row, preferring the primary key. It
// reports whether at least one row was affected.
func (m *Mutator) Delete(ctx context.Context, table string, row *database.Row) (bool, error) {
	var affected int64
	err := m.sess.Do(ctx, func(ctx context.Context, conn database.Conn) error {
		tbl, err := schema.DescribeConn(ctx, conn.Catalog(), m.sess.Schema(), table)
		if err != nil {
			return err
		}

		strategy, pk, pkValue := resolveIdentity(tbl, row)

		var stmt sqlgen.Statement
		if strategy == ByPrimaryKey {
			stmt = sqlgen.DeleteByKey(m.sess.Dialect(), table, pk, pkValue)
		} else {
			if err = checkColumns(tbl, row); err != nil {
				return err
			}
			if stmt, err = sqlgen.DeleteByAllFields(m.sess.Dialect(), table, row); err != nil {
				return err
			}
		}

		affected, err = m.exec(ctx, conn, stmt)
		if err != nil {
			return err
		}
		logger.FromContext(ctx).InfoWith("rows deleted", map[string]any{
			"table": table, "strategy": string(strategy), "rows_affected": affected,
		})
		return nil
	})
	return affected > 0, err
}

// CreateTable creates table from columns.
func (m *Mutator) CreateTable(ctx context.Context, table string, columns []schema.Column) error {
	stmt, err := sqlgen.CreateTable(m.sess.Dialect(), table, columns)
	if err != nil {
		return err
	}
	return m.sess.Do(ctx, func(ctx context.Context, conn database.Conn) error {
		if _, err := m.exec(ctx, conn, stmt); err != nil {
			return err
		}
		logger.FromContext(ctx).InfoWith("table created", map[string]any{
			"schema": m.sess.Schema(), "table": table, "columns": len(columns),
		})
		return nil
	})
}

// DropTable drops table without checking that it exists first.
func (m *Mutator) DropTable(ctx context.Context, table string) error {
	stmt, err := sqlgen.DropTable(m.sess.Dialect(), table)
	if err != nil {
		return err
	}
	return m.sess.Do(ctx, func(ctx context.Context, conn database.Conn) error {
		if _, err := m.exec(ctx, conn, stmt); err != nil {
			return err
		}
		logger.FromContext(ctx).InfoWith("table dropped", map[string]any{
			"schema": m.sess.Schema(), "table": table,
		})
		return nil
	})
}

// resolveIdentity picks the primary-key path when the table has a primary
// key and row carries a non-NULL value for its first column.
func resolveIdentity(tbl *schema.Table, row *database.Row) (Strategy, string, database.Value) {
	if pk, ok := tbl.PrimaryKey(); ok {
		if v, present := row.Get(pk); present && !v.IsNull() {
			return ByPrimaryKey, pk, v
		}
	}
	return ByAllFields, "", database.Null()
}

func checkColumns(tbl *schema.Table, row *database.Row) error {
	for _, k := range row.Keys() {
		if _, ok := tbl.Column(k); !ok {
			return unknownColumn(tbl.Name, k)
		}
	}
	return nil
}

// exec logs the statement text and argument count, never the argument values.
func (m *Mutator) exec(ctx context.Context, conn database.Conn, stmt sqlgen.Statement) (int64, error) {
	start := time.Now()
	n, err := conn.Exec(ctx, stmt.SQL, stmt.Args...)
	logger.FromContext(ctx).Timed("statement executed", start, map[string]any{
		"sql": stmt.SQL, "args": len(stmt.Args), "ok": err == nil,
	})
	return n, err
}
