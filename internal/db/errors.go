package db

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
)

// IsUniqueViolation reports whether err is a unique constraint violation and returns its constraint name.
func IsUniqueViolation(err error) (string, bool) {
	return pgCode(err, codeUniqueViolation)
}

// IsForeignKeyViolation reports whether err is a foreign key violation and returns its constraint name.
func IsForeignKeyViolation(err error) (string, bool) {
	return pgCode(err, codeForeignKeyViolation)
}

// IsCheckViolation reports whether err is a check constraint violation and returns its constraint name.
func IsCheckViolation(err error) (string, bool) {
	return pgCode(err, codeCheckViolation)
}

func pgCode(err error, code string) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == code {
		return pgErr.ConstraintName, true
	}
	return "", false
}
