package store

import (
	"errors"

	"github.com/lib/pq"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrInsightExists = errors.New("session insight already exists")
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
