// Package export writes schemas, tables and ad-hoc query results to xlsx
// workbooks under a fixed directory, optionally mirroring each file to an
// object store. No entry point returns an error; failures are reported in
// the Result.
package export

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ashkelyonok/TourismAgencyDBManager/internal/database"
	"github.com/ashkelyonok/TourismAgencyDBManager/internal/errs"
	"github.com/ashkelyonok/TourismAgencyDBManager/internal/filestore"
	"github.com/ashkelyonok/TourismAgencyDBManager/internal/logger"
	"github.com/ashkelyonok/TourismAgencyDBManager/internal/query"
	"github.com/ashkelyonok/TourismAgencyDBManager/internal/sqlgen"
)

// DefaultDir is the export directory used when none is configured.
const DefaultDir = "exports"

const fileTimestamp = "20060102_150405"

// Result is the terminal outcome of one export.
type Result struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Path    string   `json:"path,omitempty"`
	Tables  []string `json:"tables,omitempty"`
	URL     string   `json:"url,omitempty"` // presigned download link when uploaded
}

// Exporter writes workbooks into one directory.
type Exporter struct {
	dir    string
	store  filestore.Store
	bucket string
	ttl    time.Duration
	now    func() time.Time
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithStore uploads every written workbook to bucket and reports a
// presigned URL valid for ttl.
func WithStore(store filestore.Store, bucket string, ttl time.Duration) Option {
	return func(e *Exporter) {
		e.store = store
		e.bucket = bucket
		e.ttl = ttl
	}
}

// WithClock replaces time.Now for file names and the schema info sheet.
func WithClock(now func() time.Time) Option {
	return func(e *Exporter) { e.now = now }
}

// New returns an Exporter writing into dir (DefaultDir when empty). The
// directory is created on first export.
func New(dir string, opts ...Option) *Exporter {
	if dir == "" {
		dir = DefaultDir
	}
	e := &Exporter{dir: dir, now: time.Now, ttl: 24 * time.Hour}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Dir returns the export directory.
func (e *Exporter) Dir() string { return e.dir }

// ExportSchema writes an info sheet followed by one sheet per table of the
// session's schema, each holding a full unfiltered scan.
func (e *Exporter) ExportSchema(ctx context.Context, sess *database.Session) (res Result) {
	defer recoverInto(&res)

	tables, err := sess.ListTables(ctx)
	if err != nil {
		return failed(err)
	}
	if len(tables) == 0 {
		return Result{Message: "no tables found in schema " + sess.Schema()}
	}

	now := e.now()
	wb := newWorkbook()
	defer wb.close()

	if err := wb.infoSheet(sess.Schema(), now, tables); err != nil {
		return failed(err)
	}
	err = sess.Do(ctx, func(ctx context.Context, conn database.Conn) error {
		for _, t := range tables {
			cols, rows, err := scanTable(ctx, conn, sess.Dialect(), t)
			if err != nil {
				return err
			}
			if err := wb.dataSheet(t, cols, rows); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return failed(err)
	}

	res = e.save(ctx, wb, "schema", sess.Schema(), now)
	if res.Success {
		res.Tables = tables
		res.Message = fmt.Sprintf("exported %d tables to %s", len(tables), res.Path) + res.Message
	}
	return res
}

// ExportTable writes one sheet holding a full scan of table.
func (e *Exporter) ExportTable(ctx context.Context, sess *database.Session, table string) (res Result) {
	defer recoverInto(&res)

	var cols []string
	var rows []*database.Row
	err := sess.Do(ctx, func(ctx context.Context, conn database.Conn) error {
		var err error
		cols, rows, err = scanTable(ctx, conn, sess.Dialect(), table)
		return err
	})
	if err != nil {
		return failed(err)
	}

	now := e.now()
	wb := newWorkbook()
	defer wb.close()
	if err := wb.dataSheet(table, cols, rows); err != nil {
		return failed(err)
	}

	res = e.save(ctx, wb, "table", table, now)
	if res.Success {
		res.Tables = []string{table}
		res.Message = fmt.Sprintf("exported %d rows of %s to %s", len(rows), table, res.Path) + res.Message
	}
	return res
}

// ExportOutcome writes the columns and rows of a previously computed
// outcome to a sheet named after label.
func (e *Exporter) ExportOutcome(ctx context.Context, label string, out query.Outcome) (res Result) {
	defer recoverInto(&res)

	if !out.Success {
		return Result{Message: "export failed: query did not succeed"}
	}
	if !out.HasRows() {
		return Result{Message: "export failed: query produced no result set"}
	}
	if label == "" {
		label = "query"
	}

	now := e.now()
	wb := newWorkbook()
	defer wb.close()
	if err := wb.dataSheet(label, out.Columns, out.Rows); err != nil {
		return failed(err)
	}

	res = e.save(ctx, wb, "query", label, now)
	if res.Success {
		res.Message = fmt.Sprintf("exported %d rows to %s", len(out.Rows), res.Path) + res.Message
	}
	return res
}

// save buffers the workbook, writes it with a single file write, and
// uploads it when a store is configured. An upload failure is appended to
// the message without failing the export.
func (e *Exporter) save(ctx context.Context, wb *workbook, category, id string, now time.Time) Result {
	log := logger.FromContext(ctx)

	buf, err := wb.bytes()
	if err != nil {
		return failed(errs.Wrap(errs.ErrKindExport, "cannot render workbook", err))
	}
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return failed(errs.Wrap(errs.ErrKindExport, "cannot create export directory", err))
	}

	name := FileName(category, id, now)
	path := filepath.Join(e.dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return failed(errs.Wrap(errs.ErrKindExport, "cannot write workbook", err))
	}
	log.InfoWith("workbook exported", map[string]any{
		"path": path, "sheets": len(wb.sheets), "bytes": buf.Len(),
	})

	res := Result{Success: true, Path: path}
	if e.store == nil {
		return res
	}
	url, err := e.upload(ctx, name, buf)
	if err != nil {
		log.WarnWith("workbook upload failed", err, map[string]any{"bucket": e.bucket, "key": name})
		res.Message = "; upload failed: " + errs.Cause(err)
		return res
	}
	res.URL = url
	return res
}

func (e *Exporter) upload(ctx context.Context, key string, buf *bytes.Buffer) (string, error) {
	if err := e.store.EnsureBucket(ctx, e.bucket); err != nil {
		return "", err
	}
	if _, err := e.store.PutObject(ctx, e.bucket, key, bytes.NewReader(buf.Bytes()), int64(buf.Len()), filestore.ContentTypeXLSX); err != nil {
		return "", err
	}
	return e.store.PresignGetURL(ctx, e.bucket, key, e.ttl)
}

// FileName is <category>_<id>_<yyyyMMdd_HHmmss>.xlsx with id reduced to
// characters that are safe in file names.
func FileName(category, id string, at time.Time) string {
	return fmt.Sprintf("%s_%s_%s.xlsx", category, safeFileID(id), at.Format(fileTimestamp))
}

func scanTable(ctx context.Context, conn database.Conn, d database.Dialect, table string) ([]string, []*database.Row, error) {
	stmt, err := sqlgen.Select(d, table).Build()
	if err != nil {
		return nil, nil, err
	}
	rows, err := conn.Query(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, nil, err
	}
	return database.ScanRows(rows)
}

func failed(err error) Result {
	return Result{Message: "export failed: " + errs.Cause(err)}
}

func recoverInto(res *Result) {
	if r := recover(); r != nil {
		*res = Result{Message: fmt.Sprintf("export failed: %v", r)}
	}
}
