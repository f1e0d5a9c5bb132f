package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL SQLSTATE codes the booking flow reacts to
const (
	pgUniqueViolation      = "23505"
	pgExclusionViolation   = "23P01"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// IsSlotConflict reports whether err is the bookings exclusion constraint
// refusing an overlapping active booking.
func IsSlotConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgExclusionViolation
	}
	return false
}

// IsRetryable reports whether the whole transaction can be replayed from
// scratch. The only unique index a booking insert can hit is the booking
// code, which is regenerated on the next attempt.
func IsRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected, pgUniqueViolation:
			return true
		}
	}
	return false
}
