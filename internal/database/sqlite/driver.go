// Package sqlite implements database.Driver over modernc.org/sqlite, a
// cgo-free SQLite. A database file holds a single schema, "main", plus any
// attached databases.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // register "sqlite" driver

	"github.com/ashkelyonok/TourismAgencyDBManager/internal/database"
	"github.com/ashkelyonok/TourismAgencyDBManager/internal/errs"
)

func init() {
	database.Register(database.DialectSQLite, func(cfg *database.Config) (database.Driver, error) {
		return New(cfg)
	})
}

// Driver opens connections to one SQLite file.
type Driver struct {
	dsn         string
	busyTimeout int64 // milliseconds
}

// New returns a Driver for the file named by cfg.URL.
func New(cfg *database.Config) (*Driver, error) {
	dsn := strings.TrimPrefix(strings.TrimPrefix(cfg.URL, "sqlite://"), "sqlite:")
	if dsn == "" {
		return nil, errs.New(errs.ErrKindConnectionFailed, "sqlite database path is required")
	}
	return &Driver{dsn: dsn, busyTimeout: cfg.ConnectTimeout.Milliseconds()}, nil
}

func (d *Driver) Dialect() database.Dialect { return database.DialectSQLite }

// Open creates a single-connection handle with foreign keys enforced.
func (d *Driver) Open(ctx context.Context) (database.Conn, error) {
	db, err := sql.Open("sqlite", d.dsn)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "invalid sqlite path", err)
	}
	db.SetMaxOpenConns(1)

	conn, err := db.Conn(ctx)
	if err != nil {
		_ = db.Close()
		return nil, mapError(err, "failed to open database")
	}

	pragmas := []string{"PRAGMA foreign_keys = ON"}
	if d.busyTimeout > 0 {
		pragmas = append(pragmas, fmt.Sprintf("PRAGMA busy_timeout = %d", d.busyTimeout))
	}
	for _, p := range pragmas {
		if _, err := conn.ExecContext(ctx, p); err != nil {
			_ = conn.Close()
			_ = db.Close()
			return nil, mapError(err, "failed to configure connection")
		}
	}

	return database.NewStdConn(db, conn, mapError, func(c *sql.Conn) database.Catalog {
		return &catalog{conn: c}
	}).WithRowCount("SELECT changes()"), nil
}
