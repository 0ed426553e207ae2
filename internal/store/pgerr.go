package store

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres error codes the repositories care about.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// IsUniqueViolation reports whether err is a Postgres unique-constraint
// violation. Repositories map these to their domain "already exists" errors.
func IsUniqueViolation(err error) bool {
	return isPgCode(err, codeUniqueViolation)
}

// IsForeignKeyViolation reports whether err is a Postgres FK violation,
// i.e. a referenced row does not exist.
func IsForeignKeyViolation(err error) bool {
	return isPgCode(err, codeForeignKeyViolation)
}

// UniqueConstraint returns the violated constraint's name when err is a
// unique violation, and "" otherwise. Used where a table carries more than
// one unique constraint and the mapping differs per constraint.
func UniqueConstraint(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation {
		return pgErr.ConstraintName
	}
	return ""
}

func isPgCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
