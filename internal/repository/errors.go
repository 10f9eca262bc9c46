package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")

	ErrFileNotFound = errors.New("file record not found")
	ErrFileExists   = errors.New("file record already exists")

	ErrShareNotFound = errors.New("share grant not found")
	ErrShareExists   = errors.New("share grant already exists")
)

// translate is the single boundary between driver-specific failures and
// the stable error set above. Callers never see provider error codes:
// unique-constraint violations become the given exists error, missing
// rows become the given notFound error, anything else is wrapped with
// the operation name for diagnostics.
func translate(op string, err, notFound, exists error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	if isUniqueViolation(err) {
		return exists
	}
	return fmt.Errorf("%s: %w", op, err)
}

// isUniqueViolation works for both SQLite and PostgreSQL
func isUniqueViolation(err error) bool {
	s := err.Error()
	return strings.Contains(s, "UNIQUE constraint failed") ||
		strings.Contains(s, "duplicate key value")
}

// affected enforces the not-found contract on UPDATE/DELETE statements,
// which report success with zero rows when the target row is missing.
func affected(op string, result sql.Result, notFound error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rows == 0 {
		return notFound
	}
	return nil
}
