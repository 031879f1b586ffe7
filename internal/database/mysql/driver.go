// Package mysql implements database.Driver with go-sql-driver/mysql behind
// database/sql. Each Open creates a single-connection handle that is fully
// released on Close.
package mysql

import (
	"context"
	"database/sql"

	"github.com/go-sql-driver/mysql"

	"github.com/ashkelyonok/TourismAgencyDBManager/internal/database"
	"github.com/ashkelyonok/TourismAgencyDBManager/internal/errs"
)

func init() {
	database.Register(database.DialectMySQL, func(cfg *database.Config) (database.Driver, error) {
		return New(cfg)
	})
}

// Driver opens MySQL connections from a parsed go-sql-driver config.
type Driver struct {
	mcfg *mysql.Config
}

// New validates the DSN and returns a Driver. No connection is made until Open.
func New(cfg *database.Config) (*Driver, error) {
	mcfg, err := buildConfig(cfg)
	if err != nil {
		return nil, err
	}
	return &Driver{mcfg: mcfg}, nil
}

func (d *Driver) Dialect() database.Dialect { return database.DialectMySQL }

// Open creates a handle limited to one connection and checks it out.
func (d *Driver) Open(ctx context.Context) (database.Conn, error) {
	connector, err := mysql.NewConnector(d.mcfg.Clone())
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "invalid DSN", err)
	}
	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	conn, err := db.Conn(ctx)
	if err != nil {
		_ = db.Close()
		return nil, mapError(err, "failed to connect")
	}
	return database.NewStdConn(db, conn, mapError, func(c *sql.Conn) database.Catalog {
		return &catalog{conn: c}
	}).WithRowCount("SELECT ROW_COUNT()"), nil
}
