package repository

import (
	"errors"

	"github.com/lib/pq"
)

// pq error codes this package distinguishes. See
// https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	pqUniqueViolation       = "23505"
	pqSerializationFailure  = "40001"
	pqDeadlockDetected      = "40P01"
)

// classifyPQError maps a raw Postgres driver error to the sentinel
// operation it represents, so callers can return domain.ConflictError or
// domain.TransientError instead of leaking driver internals up through
// the service layer.
func classifyPQError(err error) (code string, ok bool) {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return "", false
	}
	return string(pqErr.Code), true
}

func isUniqueViolation(err error) bool {
	code, ok := classifyPQError(err)
	return ok && code == pqUniqueViolation
}

func isTransient(err error) bool {
	code, ok := classifyPQError(err)
	return ok && (code == pqSerializationFailure || code == pqDeadlockDetected)
}
