package postgres

import (
	"errors"

	"github.com/lib/pq"
)

const pqForeignKeyViolation = "23503"

// IsForeignKeyViolation checks if an error is a PostgreSQL foreign key violation,
// optionally restricted to one constraint
func IsForeignKeyViolation(err error, constraint string) bool {
	return hasCode(err, pqForeignKeyViolation, constraint)
}

func hasCode(err error, code, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}

	if string(pqErr.Code) != code {
		return false
	}

	if constraint == "" {
		return true
	}

	return pqErr.Constraint == constraint
}
