package errs

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrAlreadyExists      = errors.New("already exists")
	ErrNotFound           = errors.New("not found")
	ErrPersistence        = errors.New("persistence failure")
	ErrDatabaseConnection = errors.New("database connection failed")
)

// Database & Storage Specific Errors
var (
	ErrUniqueConstraintViolation = errors.New("unique constraint violation")
	ErrForeignKeyConstraint      = errors.New("foreign key constraint violation")
	ErrTransactionFailed         = errors.New("transaction failed")
	ErrStaleWrite                = errors.New("stale write")
)

// postgres SQLSTATE codes
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func NewAlreadyExists(entity, field string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusConflict,
		err:        fmt.Errorf("%s %w", entity, ErrAlreadyExists),
		Field:      field,
		kind:       ErrConflict,
	}
}

func NewNotFound(entity string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusNotFound,
		err:        fmt.Errorf("%s %w", entity, ErrNotFound),
	}
}

// NewStaleWrite reports a versioned write whose observed version is no longer current.
func NewStaleWrite(entity string, observed int) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusConflict,
		err:        ErrStaleWrite,
		Details:    fmt.Sprintf("%s was modified concurrently (observed version %d)", entity, observed),
		Field:      "version",
		kind:       ErrConflict,
	}
}

// NewDatabaseError creates a new database error with details about the operation
func NewDatabaseError(operation, entity string, cause error) *ApiErr {
	details := fmt.Sprintf("Failed to %s %s", operation, entity)

	if cause != nil {
		if errors.Is(cause, gorm.ErrRecordNotFound) {
			apiErr := NewNotFound(entity)
			apiErr.Cause = cause
			return apiErr
		}

		if constraint, ok := UniqueViolation(cause); ok {
			return NewUniqueConstraintViolationError(entity, constraint, cause)
		}

		var pgErr *pgconn.PgError
		if errors.As(cause, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return NewForeignKeyConstraintError(entity, pgErr.ConstraintName, cause)
		}

		var connErr *pgconn.ConnectError
		if errors.As(cause, &connErr) || errors.Is(cause, driver.ErrBadConn) ||
			strings.Contains(cause.Error(), "connection refused") {
			return &ApiErr{
				StatusCode: http.StatusServiceUnavailable,
				err:        ErrDatabaseConnection,
				Details:    "Unable to connect to database",
				Cause:      cause,
				kind:       ErrPersistence,
			}
		}
	}

	// Generic database error
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrPersistence,
		Details:    details,
		Cause:      cause,
	}
}

// UniqueViolation reports whether err is a unique-constraint violation and, when the
// driver exposes it, the name of the violated constraint.
func UniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return pgErr.ConstraintName, true
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return "", true
	}
	return "", false
}

func NewUniqueConstraintViolationError(entity, constraint string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusConflict,
		err:        ErrUniqueConstraintViolation,
		Details:    fmt.Sprintf("Unique constraint violation on %s (%s)", entity, constraint),
		Cause:      cause,
		Field:      constraint,
		kind:       ErrConflict,
	}
}

func NewTransactionFailedError(operation string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrTransactionFailed,
		Details:    fmt.Sprintf("Transaction failed during %s", operation),
		Cause:      cause,
		Field:      "transaction",
		kind:       ErrPersistence,
	}
}

func NewForeignKeyConstraintError(entity, constraint string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrForeignKeyConstraint,
		Details:    fmt.Sprintf("Foreign key constraint violation on %s (%s)", entity, constraint),
		Cause:      cause,
		Field:      "foreign_key",
		kind:       ErrPersistence,
	}
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

func IsPersistence(err error) bool {
	return errors.Is(err, ErrPersistence)
}

func IsStaleWrite(err error) bool {
	return errors.Is(err, ErrStaleWrite)
}

// Database & Storage Error Type Checkers
func IsUniqueConstraintViolationError(err error) bool {
	return errors.Is(err, ErrUniqueConstraintViolation)
}

func IsTransactionFailedError(err error) bool {
	return errors.Is(err, ErrTransactionFailed)
}

func IsForeignKeyConstraintError(err error) bool {
	return errors.Is(err, ErrForeignKeyConstraint)
}
