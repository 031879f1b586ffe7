package database

import (
	"context"
	"net/url"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ashkelyonok/TourismAgencyDBManager/internal/errs"
	"github.com/ashkelyonok/TourismAgencyDBManager/internal/logger"
)

// Session is the connection target plus the active schema. It is immutable:
// WithSchema returns a new Session, so a value handed to one request can
// never be switched underneath it by another.
type Session struct {
	driver Driver
	cfg    Config
	schema string
}

// NewSession verifies that the database is reachable and returns a session
// pinned to cfg.Schema (or the dialect default). Failure to connect is a
// ConnectionFailed error.
func NewSession(ctx context.Context, drv Driver, cfg *Config) (*Session, error) {
	if drv == nil || cfg == nil {
		return nil, errs.New(errs.ErrKindValidation, "driver and config are required")
	}
	s := &Session{driver: drv, cfg: *cfg}

	schema := cfg.Schema
	if schema == "" {
		schema = drv.Dialect().DefaultSchema()
	}
	if schema == "" && drv.Dialect() == DialectMySQL {
		if name := s.DatabaseName(); name != "unknown" {
			schema = name
		}
	}
	if schema != "" && !ValidIdentifier(schema) {
		return nil, invalidSchema(schema)
	}
	s.schema = schema

	start := time.Now()
	conn, err := drv.Open(ctx)
	if err != nil {
		return nil, asConnectionError(err)
	}
	defer conn.Close(ctx)
	if err := conn.Ping(ctx); err != nil {
		return nil, asConnectionError(err)
	}

	logger.FromContext(ctx).InfoWith("database reachable", map[string]any{
		"driver":   drv.Dialect().String(),
		"database": s.DatabaseName(),
		"schema":   s.schema,
		"elapsed":  time.Since(start).String(),
	})
	return s, nil
}

// WithSchema returns a copy of the session pinned to name. The name is
// validated against ^[A-Za-z_][A-Za-z0-9_]*$ before any SQL is issued.
func (s *Session) WithSchema(name string) (*Session, error) {
	if !ValidIdentifier(name) {
		return nil, invalidSchema(name)
	}
	next := *s
	next.schema = name
	return &next, nil
}

// Schema returns the active schema name.
func (s *Session) Schema() string { return s.schema }

// Dialect returns the SQL flavour of the underlying driver.
func (s *Session) Dialect() Dialect { return s.driver.Dialect() }

// Connect opens a new physical connection and pins it to the active schema.
// The caller owns the connection.
func (s *Session) Connect(ctx context.Context) (Conn, error) {
	conn, err := s.driver.Open(ctx)
	if err != nil {
		return nil, err
	}
	if stmt := s.Dialect().UseSchema(s.schema); stmt != "" && s.schema != "" {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			conn.Close(ctx)
			return nil, errs.Wrap(errs.ErrKindSchema, "cannot switch to schema "+s.schema, err)
		}
	}
	return conn, nil
}

// Do connects, runs fn, and closes the connection, applying the configured
// query timeout to ctx.
func (s *Session) Do(ctx context.Context, fn func(ctx context.Context, conn Conn) error) error {
	if s.cfg.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.QueryTimeout)
		defer cancel()
	}
	conn, err := s.Connect(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := conn.Close(context.WithoutCancel(ctx)); cerr != nil {
			logger.FromContext(ctx).WarnWith("closing connection", cerr, nil)
		}
	}()
	return fn(ctx, conn)
}

// ListSchemas returns every schema name, sorted.
func (s *Session) ListSchemas(ctx context.Context) ([]string, error) {
	var names []string
	err := s.Do(ctx, func(ctx context.Context, conn Conn) error {
		var err error
		names, err = conn.Catalog().ListSchemas(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// ListTables returns the base-table names of the active schema, sorted.
func (s *Session) ListTables(ctx context.Context) ([]string, error) {
	var names []string
	err := s.Do(ctx, func(ctx context.Context, conn Conn) error {
		var err error
		names, err = conn.Catalog().ListTables(ctx, s.schema)
		return err
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// DatabaseName is the database named by the connection URL, or "unknown".
func (s *Session) DatabaseName() string {
	raw := s.cfg.URL
	if strings.Contains(raw, "://") {
		if u, err := url.Parse(raw); err == nil {
			if name := strings.Trim(u.Path, "/"); name != "" {
				return name
			}
			return "unknown"
		}
	}
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		raw = raw[:i]
	}
	raw = strings.TrimPrefix(raw, "file:")
	if i := strings.LastIndexByte(raw, '/'); i >= 0 {
		raw = raw[i+1:]
	}
	if s.Dialect() == DialectSQLite {
		raw = strings.TrimSuffix(raw, filepath.Ext(raw))
	}
	if raw == "" {
		return "unknown"
	}
	return raw
}

func invalidSchema(name string) error {
	return errs.Newf(errs.ErrKindSchema, "invalid schema name %q", name)
}

func asConnectionError(err error) error {
	if errs.IsConnectionFailed(err) {
		return err
	}
	return errs.Wrap(errs.ErrKindConnectionFailed, "cannot connect to database", err)
}
