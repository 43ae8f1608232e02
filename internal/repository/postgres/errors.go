package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolationCode = "23505"

// isUniqueViolation reports whether err is a Postgres unique-index violation.
// The unique indexes on (opportunity_id, applicant_id) are the primary guard
// against duplicate applications and pipeline records; the services' read
// checks are only a fast path.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
