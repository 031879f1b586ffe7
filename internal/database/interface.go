package database

import "context"

// Driver opens physical connections to one database. Layers above this
// package talk only to Driver, Conn and Catalog; they never import the
// postgres, mysql or sqlite packages directly.
type Driver interface {
	// Dialect reports the SQL flavour spoken by connections from Open.
	Dialect() Dialect

	// Open establishes a new physical connection. Nothing is pooled: the
	// caller owns the connection and must Close it.
	Open(ctx context.Context) (Conn, error)
}

// Conn is a single physical connection.
type Conn interface {
	// Query executes a statement that returns rows.
	Query(ctx context.Context, sql string, args ...any) (Rows, error)

	// Exec executes a statement and returns the number of affected rows.
	Exec(ctx context.Context, sql string, args ...any) (int64, error)

	// Run executes operator-supplied text of unknown shape. Exactly one of
	// Result.Rows (a row set was produced) or Result.RowsAffected applies.
	Run(ctx context.Context, sql string) (*Result, error)

	// Catalog reads structural metadata over this connection.
	Catalog() Catalog

	// Ping verifies the connection is alive.
	Ping(ctx context.Context) error

	// Close releases the connection.
	Close(ctx context.Context) error
}

// Result is what Conn.Run produced.
type Result struct {
	Rows         Rows // nil when the statement produced no row set
	RowsAffected int64
}

// Rows is an abstraction over a database result set.
// Callers must always call Close() when done, even on error.
type Rows interface {
	// Next advances to the next row.
	// Returns false when no more rows exist or on error.
	Next() bool

	// Scan copies the current row's columns into the provided destinations.
	Scan(dest ...any) error

	// Columns returns the column names of the result set.
	Columns() ([]string, error)

	// Close releases resources held by the result set.
	Close()

	// Err returns any error encountered during iteration.
	Err() error
}

// Catalog reads the engine's metadata views. Every method is scoped to an
// explicit schema; none of them depend on the connection's search path.
type Catalog interface {
	ListSchemas(ctx context.Context) ([]string, error)
	ListTables(ctx context.Context, schema string) ([]string, error)

	// Columns returns the table's columns in ordinal order.
	Columns(ctx context.Context, schema, table string) ([]ColumnInfo, error)

	// PrimaryKeys returns the primary-key columns in key order.
	PrimaryKeys(ctx context.Context, schema, table string) ([]string, error)

	ForeignKeys(ctx context.Context, schema, table string) ([]ForeignKey, error)
}

// ColumnInfo is one column as the catalog reports it.
type ColumnInfo struct {
	Name     string
	Type     string
	Nullable bool
	Default  *string // nil when the column has no default

	// Generated is set when the engine assigns values itself (identity,
	// auto_increment, SQLite rowid alias).
	Generated bool
}

// ForeignKey is one imported reference: Column → RefTable.RefColumn.
type ForeignKey struct {
	Column    string
	RefTable  string
	RefColumn string
}
