package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrDuplicate is returned when an insert hits a unique constraint.
	ErrDuplicate = errors.New("duplicate record")

	// ErrStaleWrite is returned when a guarded update matched no row because
	// the record changed since it was read.
	ErrStaleWrite = errors.New("record changed concurrently")
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// mapInsertError turns a unique violation into ErrDuplicate and leaves other errors alone.
func mapInsertError(err error) error {
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}
