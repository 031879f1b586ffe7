package sqlite

import (
	"context"
	"errors"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/ashkelyonok/TourismAgencyDBManager/internal/errs"
)

// mapError translates modernc sqlite errors into *errs.Error.
func mapError(err error, msg string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_NOTNULL:
			return errs.Violation(errs.ConstraintNotNull, msg, err)
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return errs.Violation(errs.ConstraintForeignKey, msg, err)
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return errs.Violation(errs.ConstraintUnique, msg, err)
		case sqlite3.SQLITE_CANTOPEN, sqlite3.SQLITE_NOTADB:
			return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
		case sqlite3.SQLITE_PERM, sqlite3.SQLITE_READONLY:
			return errs.Wrap(errs.ErrKindPermissionDenied, msg, err)
		case sqlite3.SQLITE_BUSY:
			return errs.Wrap(errs.ErrKindTimeout, msg, err)
		}
	}

	text := strings.ToLower(err.Error())
	if strings.Contains(text, "no such table") || strings.Contains(text, "no such column") {
		return errs.Wrap(errs.ErrKindSchema, msg, err)
	}
	if c := errs.ClassifyConstraint(text); c != errs.ConstraintNone {
		return errs.Violation(c, msg, err)
	}
	return errs.Wrap(errs.ErrKindQueryFailed, msg, err)
}
