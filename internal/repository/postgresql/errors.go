package postgresql

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres SQLSTATE codes the repositories branch on.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgInvalidTextRepr     = "22P02"
	pgLockNotAvailable    = "55P03"
	pgQueryCanceled       = "57014"
	pgSerializationFailed = "40001"
	pgDeadlockDetected    = "40P01"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

// isTransient reports failures that say nothing about the request itself:
// lock waits, cancellations, connection loss and serialization conflicts.
func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	switch pgCode(err) {
	case pgLockNotAvailable, pgQueryCanceled, pgSerializationFailed, pgDeadlockDetected, pgUniqueViolation:
		return true
	}
	return pgconn.SafeToRetry(err) || pgconn.Timeout(err)
}
