package db

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound        = errors.New("record not found")
	ErrUniqueViolation = errors.New("unique violation")
)

// Unique constraint names, see migrations/.
const (
	ConstraintUsersUsername = "users_username_key"
	ConstraintUsersEmail    = "users_email_key"
)

const pgUniqueViolation = "23505"

// UniqueViolationError names the constraint that rejected a write.
// errors.Is(err, ErrUniqueViolation) holds for it.
type UniqueViolationError struct {
	Constraint string
}

func (e *UniqueViolationError) Error() string {
	return fmt.Sprintf("unique violation on %s", e.Constraint)
}

func (e *UniqueViolationError) Is(target error) bool {
	return target == ErrUniqueViolation
}

// ViolatedConstraint returns the constraint name when err is a unique
// violation, "" otherwise.
func ViolatedConstraint(err error) string {
	var uv *UniqueViolationError
	if errors.As(err, &uv) {
		return uv.Constraint
	}
	return ""
}

func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// translate maps driver errors onto the package sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if IsNoRows(err) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return &UniqueViolationError{Constraint: pgErr.ConstraintName}
	}
	return err
}
