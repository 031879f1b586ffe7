// Package query runs operator-supplied SQL and table previews. Neither entry
// point returns an error: every failure is folded into the Outcome.
package query

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ashkelyonok/TourismAgencyDBManager/internal/database"
	"github.com/ashkelyonok/TourismAgencyDBManager/internal/errs"
	"github.com/ashkelyonok/TourismAgencyDBManager/internal/logger"
	"github.com/ashkelyonok/TourismAgencyDBManager/internal/sqlgen"
)

// DefaultPreviewLimit is used when Preview is given a non-positive limit.
const DefaultPreviewLimit = 100

// Outcome is the terminal result of an ad-hoc statement. Columns and Rows
// are set only when the statement produced a row set.
type Outcome struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Columns []string        `json:"columns"`
	Rows    []*database.Row `json:"rows"`
}

// HasRows reports whether the outcome carries a row set, possibly empty.
func (o Outcome) HasRows() bool { return o.Columns != nil }

// Failed builds a failure outcome carrying the driver's own text.
func Failed(err error) Outcome {
	return Outcome{Message: "query failed: " + errs.Cause(err)}
}

// Executor runs statements exactly as written against one session.
type Executor struct {
	sess *database.Session
}

func New(sess *database.Session) *Executor {
	return &Executor{sess: sess}
}

// Execute runs sqlText on a fresh connection. A statement that yields a row
// set reports its columns and rows; any other statement reports the number
// of affected rows.
func (e *Executor) Execute(ctx context.Context, sqlText string) (out Outcome) {
	log := logger.FromContext(ctx)
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			out = Outcome{Message: fmt.Sprintf("query failed: %v", r)}
			log.ErrorWith("ad-hoc query panicked", nil, map[string]any{"panic": fmt.Sprint(r)})
		}
	}()

	if strings.TrimSpace(sqlText) == "" {
		return Outcome{Message: "query failed: statement is empty"}
	}

	err := e.sess.Do(ctx, func(ctx context.Context, conn database.Conn) error {
		res, err := conn.Run(ctx, sqlText)
		if err != nil {
			return err
		}
		if res.Rows == nil {
			out = Outcome{Success: true, Message: affectedMessage(res.RowsAffected)}
			return nil
		}
		cols, rows, err := database.ScanRows(res.Rows)
		if err != nil {
			return err
		}
		out = Outcome{Success: true, Message: rowsMessage(len(rows)), Columns: cols, Rows: rows}
		return nil
	})
	if err != nil {
		log.WarnWith("ad-hoc query failed", err, map[string]any{"schema": e.sess.Schema()})
		return Failed(err)
	}
	log.Timed("ad-hoc query executed", start, map[string]any{
		"schema": e.sess.Schema(), "rows": len(out.Rows),
	})
	return out
}

// Preview fetches up to limit rows of table. A non-positive limit means
// DefaultPreviewLimit.
func Preview(ctx context.Context, sess *database.Session, table string, limit int) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = Outcome{Message: fmt.Sprintf("query failed: %v", r)}
		}
	}()

	if limit <= 0 {
		limit = DefaultPreviewLimit
	}
	stmt, err := sqlgen.Select(sess.Dialect(), table).Limit(limit).Build()
	if err != nil {
		return Failed(err)
	}

	err = sess.Do(ctx, func(ctx context.Context, conn database.Conn) error {
		rows, err := conn.Query(ctx, stmt.SQL, stmt.Args...)
		if err != nil {
			return err
		}
		cols, result, err := database.ScanRows(rows)
		if err != nil {
			return err
		}
		out = Outcome{Success: true, Message: rowsMessage(len(result)), Columns: cols, Rows: result}
		return nil
	})
	if err != nil {
		logger.FromContext(ctx).WarnWith("preview failed", err, map[string]any{"table": table})
		return Failed(err)
	}
	return out
}

func rowsMessage(n int) string {
	if n == 1 {
		return "query returned 1 row"
	}
	return fmt.Sprintf("query returned %d rows", n)
}

func affectedMessage(n int64) string {
	if n == 1 {
		return "1 row affected"
	}
	return fmt.Sprintf("%d rows affected", n)
}
