package mysql

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"

	"github.com/go-sql-driver/mysql"

	"github.com/ashkelyonok/TourismAgencyDBManager/internal/errs"
)

// mapError translates go-sql-driver/mysql errors into *errs.Error.
func mapError(err error, msg string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}

	if errors.Is(err, sql.ErrNoRows) {
		return errs.Wrap(errs.ErrKindNotFound, msg, err)
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		if c := constraintFor(mysqlErr.Number); c != errs.ConstraintNone {
			return errs.Violation(c, msg, err)
		}
		return errs.Wrap(classifyMySQLCode(mysqlErr.Number), msg, err)
	}

	var netErr net.Error
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, mysql.ErrInvalidConn) || errors.As(err, &netErr) {
		return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
	}

	if c := errs.ClassifyConstraint(err.Error()); c != errs.ConstraintNone {
		return errs.Violation(c, msg, err)
	}
	return errs.Wrap(errs.ErrKindQueryFailed, msg, err)
}

func constraintFor(code uint16) errs.ConstraintKind {
	switch code {
	case 1048, 1364:
		return errs.ConstraintNotNull
	case 1216, 1217, 1451, 1452:
		return errs.ConstraintForeignKey
	case 1062, 1586:
		return errs.ConstraintUnique
	case 1406:
		return errs.ConstraintLength
	case 1292, 1366:
		return errs.ConstraintTypeFormat
	case 1264, 1690:
		return errs.ConstraintRange
	}
	return errs.ConstraintNone
}

// classifyMySQLCode maps MySQL error numbers to ErrKind.
func classifyMySQLCode(code uint16) errs.ErrKind {
	switch code {
	case 1044, 1045, 1049, 1040, 1203:
		return errs.ErrKindConnectionFailed
	case 1046, 1054, 1146:
		return errs.ErrKindSchema
	case 1142, 1143, 1227:
		return errs.ErrKindPermissionDenied
	case 3024:
		return errs.ErrKindTimeout
	default:
		return errs.ErrKindQueryFailed
	}
}
