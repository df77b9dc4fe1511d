package database

import (
	"database/sql/driver"
	"errors"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Postgres SQLSTATE codes the services react to.
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeAdminShutdown        = "57P01"

	classDataException       = "22"
	classConnectionException = "08"
	classInsufficientRes     = "53"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsUniqueViolation reports whether err came from a unique index. Dialectors
// running with TranslateError report it as gorm.ErrDuplicatedKey instead.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, gorm.ErrDuplicatedKey) || pgCode(err) == codeUniqueViolation
}

// UniqueViolationConstraint returns the index name behind a unique violation,
// or "" when the driver did not report one.
func UniqueViolationConstraint(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation {
		return pgErr.ConstraintName
	}
	return ""
}

// IsForeignKeyViolation reports whether err references a missing row.
func IsForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, gorm.ErrForeignKeyViolated) || pgCode(err) == codeForeignKeyViolation
}

// IsRetryable reports whether the whole transaction may succeed if re-run.
func IsRetryable(err error) bool {
	switch pgCode(err) {
	case codeSerializationFailure, codeDeadlockDetected:
		return true
	}
	return false
}

// IsTransient reports whether err came from the connection or the server
// rather than from the data, so re-sending the same request may succeed.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if IsRetryable(err) || errors.Is(err, driver.ErrBadConn) {
		return true
	}
	if pgconn.Timeout(err) || pgconn.SafeToRetry(err) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	code := pgCode(err)
	return code == codeAdminShutdown ||
		strings.HasPrefix(code, classConnectionException) ||
		strings.HasPrefix(code, classInsufficientRes)
}

// IsDataError reports a SQLSTATE class 22 failure: the value itself was
// rejected, e.g. a numeric overflow.
func IsDataError(err error) bool {
	return strings.HasPrefix(pgCode(err), classDataException)
}

// IsNotFound reports whether err is gorm's record-not-found.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
