package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"courier-dispatch/internal/apperr"
)

// postgres codes a caller may retry: serialization_failure, deadlock_detected.
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

func isNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == codeSerializationFailure || pgErr.Code == codeDeadlockDetected
}

// wrap annotates err with op. Serialization failures and deadlocks also match
// apperr.ErrConflict so callers can treat them as a lost race.
func wrap(op string, err error) error {
	if isRetryable(err) {
		return fmt.Errorf("%s: %w: %w", op, apperr.ErrConflict, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
