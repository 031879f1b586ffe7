// Package errs provides the unified error type used across the manager.
//
// Every subsystem (database drivers, introspection, mutation, export, object
// storage) wraps its native errors into *errs.Error before returning them.
// Callers use the Is* predicates, or Describe for an operator-facing message,
// without importing driver-specific packages.
//
// Usage:
//
//	// In a driver, wrap native errors:
//	return errs.Wrap(errs.ErrKindQueryFailed, "insert failed", pgErr)
//
//	// In a handler, check the error kind:
//	if errs.IsConstraint(err) {
//	    http.Error(w, errs.Describe(err), http.StatusConflict)
//	}
package errs

import (
	"errors"
	"fmt"
)

// ErrKind categorises an error without exposing driver-specific codes.
type ErrKind int

const (
	ErrKindUnknown          ErrKind = iota
	ErrKindConnectionFailed         // session cannot be established
	ErrKindSchema                   // unknown table/column or invalid identifier
	ErrKindValidation               // bad input from the caller
	ErrKindConstraint               // the database rejected the data
	ErrKindQueryFailed              // any other database-level failure
	ErrKindExport                   // filesystem failure while exporting
	ErrKindTimeout                  // context deadline / cancellation
	ErrKindNotFound                 // no rows, no object
	ErrKindPermissionDenied         // access denied by a backend
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindConnectionFailed:
		return "connection_failed"
	case ErrKindSchema:
		return "schema"
	case ErrKindValidation:
		return "validation"
	case ErrKindConstraint:
		return "constraint"
	case ErrKindQueryFailed:
		return "query_failed"
	case ErrKindExport:
		return "export"
	case ErrKindTimeout:
		return "timeout"
	case ErrKindNotFound:
		return "not_found"
	case ErrKindPermissionDenied:
		return "permission_denied"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by all subsystems.
type Error struct {
	Kind       ErrKind
	Constraint ConstraintKind // set only when Kind == ErrKindConstraint
	Message    string
	Cause      error // original driver-level error, preserved for logging
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap allows errors.Is / errors.As to traverse the cause chain.
func (e *Error) Unwrap() error {
	return e.Cause
}

// --- Constructors ---

// New creates an *Error with the given kind and message and no cause.
func New(kind ErrKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Newf is New with a format string.
func Newf(kind ErrKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an *Error with the given kind, message, and an underlying cause.
func Wrap(kind ErrKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// Violation creates a constraint error of the given category.
func Violation(c ConstraintKind, msg string, cause error) *Error {
	return &Error{Kind: ErrKindConstraint, Constraint: c, Message: msg, Cause: cause}
}

// --- Predicates ---

// IsConnectionFailed reports whether err is a connectivity or auth failure.
func IsConnectionFailed(err error) bool {
	return KindOf(err) == ErrKindConnectionFailed
}

// IsSchema reports whether err refers to an unknown table, unknown column or
// an identifier that failed validation.
func IsSchema(err error) bool {
	return KindOf(err) == ErrKindSchema
}

// IsValidation reports whether err was caused by bad input from the caller.
func IsValidation(err error) bool {
	return KindOf(err) == ErrKindValidation
}

// IsConstraint reports whether the database rejected the data.
func IsConstraint(err error) bool {
	return KindOf(err) == ErrKindConstraint
}

// IsQueryFailed reports whether err is an uncategorised database failure.
func IsQueryFailed(err error) bool {
	return KindOf(err) == ErrKindQueryFailed
}

// IsExport reports whether err is an export I/O failure.
func IsExport(err error) bool {
	return KindOf(err) == ErrKindExport
}

// IsTimeout reports whether err was caused by a deadline or context cancellation.
func IsTimeout(err error) bool {
	return KindOf(err) == ErrKindTimeout
}

// IsNotFound reports whether err represents a "not found" result.
func IsNotFound(err error) bool {
	return KindOf(err) == ErrKindNotFound
}

// IsPermissionDenied reports whether err is an access control failure.
func IsPermissionDenied(err error) bool {
	return KindOf(err) == ErrKindPermissionDenied
}

// KindOf extracts the ErrKind from any error in the chain.
func KindOf(err error) ErrKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrKindUnknown
}

// ConstraintOf extracts the constraint category from any error in the chain.
func ConstraintOf(err error) ConstraintKind {
	var e *Error
	if errors.As(err, &e) && e.Kind == ErrKindConstraint {
		return e.Constraint
	}
	return ConstraintNone
}

// Cause returns the innermost error text, which for driver errors is the
// message the database produced.
func Cause(err error) string {
	if err == nil {
		return ""
	}
	for {
		next := errors.Unwrap(err)
		if next == nil {
			break
		}
		err = next
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
