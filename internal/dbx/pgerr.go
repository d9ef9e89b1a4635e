package dbx

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// IsUniqueViolation reports whether err carries a Postgres unique_violation.
func IsUniqueViolation(err error) bool {
	return hasCode(err, pgerrcode.UniqueViolation)
}

// IsInvalidTextRepresentation reports whether Postgres rejected a parameter
// that cannot be cast to the column type, e.g. a malformed uuid.
func IsInvalidTextRepresentation(err error) bool {
	return hasCode(err, pgerrcode.InvalidTextRepresentation)
}

func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
