package postgres

import (
	"context"
	"errors"
	"net"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ashkelyonok/TourismAgencyDBManager/internal/errs"
)

// mapError translates pgx / pgconn native errors into *errs.Error.
func mapError(err error, msg string) error {
	if err == nil {
		return nil
	}

	// Context cancellation / deadline exceeded
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || pgconn.Timeout(err) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return errs.Wrap(errs.ErrKindNotFound, msg, err)
	}

	// Postgres server-side error (SQLSTATE codes)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if c := constraintFor(pgErr.Code); c != errs.ConstraintNone {
			return errs.Violation(c, msg, err)
		}
		return errs.Wrap(kindFor(pgErr.Code), msg, err)
	}

	var connErr *pgconn.ConnectError
	var netErr net.Error
	if errors.As(err, &connErr) || errors.As(err, &netErr) {
		return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
	}

	if c := errs.ClassifyConstraint(err.Error()); c != errs.ConstraintNone {
		return errs.Violation(c, msg, err)
	}
	return errs.Wrap(errs.ErrKindQueryFailed, msg, err)
}

func constraintFor(code string) errs.ConstraintKind {
	switch code {
	case "23502":
		return errs.ConstraintNotNull
	case "23503":
		return errs.ConstraintForeignKey
	case "23505":
		return errs.ConstraintUnique
	case "22001":
		return errs.ConstraintLength
	case "22P02", "22007", "22008":
		return errs.ConstraintTypeFormat
	case "22003":
		return errs.ConstraintRange
	}
	return errs.ConstraintNone
}

func kindFor(code string) errs.ErrKind {
	switch {
	case len(code) >= 2 && (code[:2] == "08" || code[:2] == "28"), code == "3D000":
		// connection exceptions, invalid authorization, unknown database
		return errs.ErrKindConnectionFailed
	case code == "42P01", code == "42703", code == "3F000":
		return errs.ErrKindSchema
	case code == "42501":
		return errs.ErrKindPermissionDenied
	case code == "57014":
		return errs.ErrKindTimeout
	default:
		return errs.ErrKindQueryFailed
	}
}
