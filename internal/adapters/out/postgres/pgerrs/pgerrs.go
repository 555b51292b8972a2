// Package pgerrs translates PostgreSQL driver errors into domain errors.
package pgerrs

import (
	"errors"

	"lastmile/internal/pkg/errs"

	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the SQLSTATE of a unique constraint violation.
const uniqueViolation = "23505"

// Translate maps a unique violation to errs.ConflictError for param and
// returns any other error unchanged.
func Translate(err error, param string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return errs.NewConflictError(param, err)
	}
	return err
}
