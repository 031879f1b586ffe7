package database_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashkelyonok/TourismAgencyDBManager/internal/database"
	_ "github.com/ashkelyonok/TourismAgencyDBManager/internal/database/sqlite"
	"github.com/ashkelyonok/TourismAgencyDBManager/internal/errs"
)

func openSQLite(t *testing.T) *database.Session {
	t.Helper()
	cfg := &database.Config{
		Dialect: database.DialectSQLite,
		URL:     filepath.Join(t.TempDir(), "agency.db"),
	}
	drv, err := database.NewDriver(cfg)
	require.NoError(t, err)

	sess, err := database.NewSession(context.Background(), drv, cfg)
	require.NoError(t, err)
	return sess
}

func TestNewSession_DefaultsSchema(t *testing.T) {
	sess := openSQLite(t)
	assert.Equal(t, "main", sess.Schema())
	assert.Equal(t, "agency", sess.DatabaseName())
}

func TestSession_WithSchemaRejectsInvalidNames(t *testing.T) {
	sess := openSQLite(t)

	_, err := sess.WithSchema("sales; DROP")
	require.Error(t, err)
	assert.True(t, errs.IsSchema(err))
	assert.Equal(t, "main", sess.Schema(), "original session is untouched")

	next, err := sess.WithSchema("temp_schema")
	require.NoError(t, err)
	assert.Equal(t, "temp_schema", next.Schema())
	assert.Equal(t, "main", sess.Schema())
}

func TestSession_ListTablesSorted(t *testing.T) {
	sess := openSQLite(t)
	ctx := context.Background()

	err := sess.Do(ctx, func(ctx context.Context, conn database.Conn) error {
		for _, stmt := range []string{
			"CREATE TABLE zebra (id INTEGER)",
			"CREATE TABLE alpha (id INTEGER)",
			"CREATE TABLE mango (id INTEGER)",
		} {
			if _, err := conn.Exec(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	tables, err := sess.ListTables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "mango", "zebra"}, tables)

	schemas, err := sess.ListSchemas(ctx)
	require.NoError(t, err)
	assert.Contains(t, schemas, "main")
}

func TestSession_RunDistinguishesRowSets(t *testing.T) {
	sess := openSQLite(t)
	ctx := context.Background()

	err := sess.Do(ctx, func(ctx context.Context, conn database.Conn) error {
		res, err := conn.Run(ctx, "CREATE TABLE t (id INTEGER, name TEXT)")
		require.NoError(t, err)
		assert.Nil(t, res.Rows)

		res, err = conn.Run(ctx, "INSERT INTO t VALUES (1, 'a'), (2, 'b')")
		require.NoError(t, err)
		assert.EqualValues(t, 2, res.RowsAffected)

		res, err = conn.Run(ctx, "SELECT id, name FROM t ORDER BY id")
		require.NoError(t, err)
		require.NotNil(t, res.Rows)

		cols, rows, err := database.ScanRows(res.Rows)
		require.NoError(t, err)
		assert.Equal(t, []string{"id", "name"}, cols)
		require.Len(t, rows, 2)
		id, _ := rows[0].Get("id")
		assert.Equal(t, database.Int(1), id)
		return nil
	})
	require.NoError(t, err)
}

func TestSession_RunColumnlessRowSetReportsCount(t *testing.T) {
	sess := openSQLite(t)
	ctx := context.Background()

	err := sess.Do(ctx, func(ctx context.Context, conn database.Conn) error {
		res, err := conn.Run(ctx, "PRAGMA user_version = 3")
		require.NoError(t, err)
		assert.Nil(t, res.Rows)
		assert.Zero(t, res.RowsAffected)

		res, err = conn.Run(ctx, "PRAGMA user_version")
		require.NoError(t, err)
		require.NotNil(t, res.Rows)
		_, rows, err := database.ScanRows(res.Rows)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		v, _ := rows[0].Get("user_version")
		assert.EqualValues(t, 3, v.AsInt())
		return nil
	})
	require.NoError(t, err)
}

func TestDatabaseName(t *testing.T) {
	tests := []struct {
		dialect database.Dialect
		url     string
		want    string
	}{
		{database.DialectPostgres, "postgres://localhost:5432/agency?sslmode=disable", "agency"},
		{database.DialectPostgres, "postgres://localhost:5432", "unknown"},
		{database.DialectMySQL, "user@tcp(localhost:3306)/agency?parseTime=true", "agency"},
	}
	for _, tt := range tests {
		sess := database.NewSessionForTest(stubDriver{tt.dialect}, &database.Config{Dialect: tt.dialect, URL: tt.url})
		assert.Equal(t, tt.want, sess.DatabaseName(), tt.url)
	}
}

type stubDriver struct{ d database.Dialect }

func (s stubDriver) Dialect() database.Dialect { return s.d }
func (s stubDriver) Open(context.Context) (database.Conn, error) {
	return nil, errs.New(errs.ErrKindConnectionFailed, "stub")
}

func TestNewSession_ConnectionFailure(t *testing.T) {
	cfg := &database.Config{Dialect: database.DialectPostgres, URL: "postgres://nowhere/db"}
	_, err := database.NewSession(context.Background(), stubDriver{database.DialectPostgres}, cfg)
	assert.True(t, errs.IsConnectionFailed(err))
}
