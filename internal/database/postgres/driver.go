// Package postgres implements database.Driver on top of pgx. Every Open
// dials a new physical connection; nothing is pooled.
package postgres

import (
	"context"
	"encoding/json"
	"net/netip"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/ashkelyonok/TourismAgencyDBManager/internal/database"
)

func init() {
	database.Register(database.DialectPostgres, func(cfg *database.Config) (database.Driver, error) {
		return New(cfg)
	})
}

// Driver dials PostgreSQL with a parsed pgx connection config.
type Driver struct {
	connCfg *pgx.ConnConfig
}

// New validates the connection URL and returns a Driver. No connection is
// made until Open.
func New(cfg *database.Config) (*Driver, error) {
	connCfg, err := buildConnConfig(cfg)
	if err != nil {
		return nil, err
	}
	return &Driver{connCfg: connCfg}, nil
}

func (d *Driver) Dialect() database.Dialect { return database.DialectPostgres }

// Open dials a new connection.
func (d *Driver) Open(ctx context.Context) (database.Conn, error) {
	conn, err := pgx.ConnectConfig(ctx, d.connCfg.Copy())
	if err != nil {
		return nil, mapError(err, "failed to connect")
	}
	return &Conn{conn: conn}, nil
}

// Conn is one pgx connection.
type Conn struct {
	conn *pgx.Conn
}

func (c *Conn) Catalog() database.Catalog { return &catalog{conn: c.conn} }

func (c *Conn) Ping(ctx context.Context) error {
	if err := c.conn.Ping(ctx); err != nil {
		return mapError(err, "ping failed")
	}
	return nil
}

func (c *Conn) Close(ctx context.Context) error {
	if err := c.conn.Close(ctx); err != nil {
		return mapError(err, "closing connection")
	}
	return nil
}

// Query executes a SQL statement that returns multiple rows.
func (c *Conn) Query(ctx context.Context, sql string, args ...any) (database.Rows, error) {
	rows, err := c.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapError(err, "query failed")
	}
	return &pgxRows{rows: rows}, nil
}

// Exec executes a statement and returns the affected row count.
func (c *Conn) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	tag, err := c.conn.Exec(ctx, sql, args...)
	if err != nil {
		return 0, mapError(err, "statement failed")
	}
	return tag.RowsAffected(), nil
}

// Run sends the text as-is. A statement whose result carries no field
// descriptions is drained and reported as an affected count.
func (c *Conn) Run(ctx context.Context, sql string) (*database.Result, error) {
	rows, err := c.conn.Query(ctx, sql)
	if err != nil {
		return nil, mapError(err, "statement failed")
	}
	if len(rows.FieldDescriptions()) > 0 {
		return &database.Result{Rows: &pgxRows{rows: rows}}, nil
	}
	for rows.Next() {
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "statement failed")
	}
	return &database.Result{RowsAffected: rows.CommandTag().RowsAffected()}, nil
}

// --- pgx type wrappers ---

// pgxRows wraps pgx.Rows to satisfy database.Rows.
type pgxRows struct {
	rows pgx.Rows
}

func (r *pgxRows) Next() bool { return r.rows.Next() }
func (r *pgxRows) Close()     { r.rows.Close() }

func (r *pgxRows) Err() error {
	if err := r.rows.Err(); err != nil {
		return mapError(err, "iterating rows")
	}
	return nil
}

func (r *pgxRows) Columns() ([]string, error) {
	descs := r.rows.FieldDescriptions()
	cols := make([]string, len(descs))
	for i, d := range descs {
		cols[i] = d.Name
	}
	return cols, nil
}

// Scan normalizes the pgtype values that have no natural cell kind when dest
// holds *any targets.
func (r *pgxRows) Scan(dest ...any) error {
	if err := r.rows.Scan(dest...); err != nil {
		return mapError(err, "scanning row")
	}
	for _, d := range dest {
		if p, ok := d.(*any); ok {
			*p = normalize(*p)
		}
	}
	return nil
}

func normalize(v any) any {
	switch t := v.(type) {
	case pgtype.Numeric:
		if !t.Valid {
			return nil
		}
		if f, err := t.Float64Value(); err == nil && f.Valid {
			return f.Float64
		}
		return nil
	case [16]byte:
		return uuid.UUID(t).String()
	case pgtype.Time:
		if !t.Valid {
			return nil
		}
		return time.Time{}.Add(time.Duration(t.Microseconds) * time.Microsecond).Format("15:04:05.999999")
	case pgtype.Interval:
		if !t.Valid {
			return nil
		}
		if v, err := t.Value(); err == nil {
			return v
		}
		return nil
	case netip.Prefix:
		return t.String()
	case map[string]any, []any:
		b, err := json.Marshal(t)
		if err != nil {
			return nil
		}
		return string(b)
	default:
		return v
	}
}
