package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes the repositories care about.
const (
	CodeUniqueViolation      = "23505"
	CodeForeignKeyViolation  = "23503"
	CodeCheckViolation       = "23514"
	CodeSerializationFailure = "40001"
	CodeDeadlockDetected     = "40P01"
)

func code(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func IsUniqueViolation(err error) bool { return code(err) == CodeUniqueViolation }

func IsForeignKeyViolation(err error) bool { return code(err) == CodeForeignKeyViolation }

func IsCheckViolation(err error) bool { return code(err) == CodeCheckViolation }

// IsRetryable reports conflicts where re-running the whole transaction may succeed.
func IsRetryable(err error) bool {
	switch code(err) {
	case CodeSerializationFailure, CodeDeadlockDetected:
		return true
	}
	return false
}
