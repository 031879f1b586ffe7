// Package testutil opens throwaway databases for package tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ashkelyonok/TourismAgencyDBManager/internal/database"
	_ "github.com/ashkelyonok/TourismAgencyDBManager/internal/database/sqlite"
)

// SQLiteSession returns a session on a fresh database file under t.TempDir.
func SQLiteSession(t testing.TB) *database.Session {
	t.Helper()
	cfg := &database.Config{
		Dialect: database.DialectSQLite,
		URL:     filepath.Join(t.TempDir(), "test.db"),
	}
	drv, err := database.NewDriver(cfg)
	require.NoError(t, err)

	sess, err := database.NewSession(context.Background(), drv, cfg)
	require.NoError(t, err)
	return sess
}

// Exec runs each statement on one connection of sess, failing the test on
// the first error.
func Exec(t testing.TB, sess *database.Session, stmts ...string) {
	t.Helper()
	err := sess.Do(context.Background(), func(ctx context.Context, conn database.Conn) error {
		for _, s := range stmts {
			if _, err := conn.Exec(ctx, s); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
}

// Count returns SELECT COUNT(*) for the given WHERE-less query suffix,
// e.g. Count(t, sess, "widgets WHERE name = 'a'").
func Count(t testing.TB, sess *database.Session, from string) int64 {
	t.Helper()
	var n int64
	err := sess.Do(context.Background(), func(ctx context.Context, conn database.Conn) error {
		rows, err := conn.Query(ctx, "SELECT COUNT(*) FROM "+from)
		if err != nil {
			return err
		}
		_, result, err := database.ScanRows(rows)
		if err != nil {
			return err
		}
		v, _ := result[0].Get(result[0].Keys()[0])
		n = v.AsInt()
		return nil
	})
	require.NoError(t, err)
	return n
}
