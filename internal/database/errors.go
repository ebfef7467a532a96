package database

import (
	"errors"

	"github.com/lib/pq"
)

// PostgreSQL error codes the services react to.
const (
	CodeUniqueViolation     = "23505"
	CodeForeignKeyViolation = "23503"
	CodeCheckViolation      = "23514"
	CodeQueryCanceled       = "57014"
	CodeSerialization       = "40001"
	CodeDeadlockDetected    = "40P01"
)

// ErrorCode extracts the SQLSTATE from err, or "" when err is not a
// PostgreSQL error.
func ErrorCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

// Constraint names the violated constraint, if any.
func Constraint(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Constraint
	}
	return ""
}

func IsUniqueViolation(err error) bool     { return ErrorCode(err) == CodeUniqueViolation }
func IsForeignKeyViolation(err error) bool { return ErrorCode(err) == CodeForeignKeyViolation }
func IsQueryCanceled(err error) bool       { return ErrorCode(err) == CodeQueryCanceled }

// IsRetryable reports whether the caller may safely repeat the whole unit.
func IsRetryable(err error) bool {
	switch ErrorCode(err) {
	case CodeSerialization, CodeDeadlockDetected, CodeQueryCanceled:
		return true
	}
	return false
}
