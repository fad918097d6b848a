package errors

import (
	"context"
	stderrs "errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE classes the publisher can hit
const (
	sqlUniqueViolation     = "23505"
	sqlForeignKeyViolation = "23503"
	sqlNotNullViolation    = "23502"
	sqlCheckViolation      = "23514"
	sqlStringTruncation    = "22001"
	sqlInvalidText         = "22P02"

	sqlSerializationFailure = "40001"
	sqlDeadlockDetected     = "40P01"
	sqlLockNotAvailable     = "55P03"
	sqlQueryCanceled        = "57014" // statement_timeout
	sqlReadOnlyTransaction  = "25006"
	sqlCannotConnectNow     = "57P03"
)

func pgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if stderrs.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

// DBErrorCode maps a Postgres error to an ErrorCode. ok is false when err
// carries no *pgconn.PgError
func DBErrorCode(err error) (code ErrorCode, ok bool) {
	pgErr, ok := pgError(err)
	if !ok {
		return ErrorCodeUnknown, false
	}
	switch pgErr.Code {
	case sqlUniqueViolation:
		return ErrorCodeDuplicateKey, true
	case sqlForeignKeyViolation, sqlStringTruncation, sqlInvalidText:
		return ErrorCodeInvalidArgument, true
	case sqlNotNullViolation, sqlCheckViolation:
		return ErrorCodeValidation, true
	case sqlReadOnlyTransaction, sqlCannotConnectNow:
		return ErrorCodeUnavailable, true
	default:
		return ErrorCodeDB, true
	}
}

// FromPostgres wraps err with the code DBErrorCode picks, ErrorCodeDB otherwise
func FromPostgres(err error, msg string) error {
	if err == nil {
		return nil
	}
	code, ok := DBErrorCode(err)
	if !ok {
		code = ErrorCodeDB
	}
	return Wrap(err, code, msg)
}

// IsRetryable reports whether a Postgres failure is transient contention that
// a fresh transaction may get past. Local cancellation never retries
func IsRetryable(err error) bool {
	if err == nil || stderrs.Is(err, context.Canceled) || stderrs.Is(err, context.DeadlineExceeded) {
		return false
	}
	if pgErr, ok := pgError(err); ok {
		switch pgErr.Code {
		case sqlSerializationFailure, sqlDeadlockDetected, sqlLockNotAvailable, sqlCannotConnectNow:
			return true
		}
		return false
	}
	// pgx reports a server side abort at COMMIT without a PgError
	return strings.Contains(strings.ToLower(Root(err).Error()), "commit unexpectedly resulted in rollback")
}
