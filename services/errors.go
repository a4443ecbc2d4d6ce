package services

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors. Controllers map these to HTTP statuses and machine codes;
// raw store errors never reach a response body.
var (
	// ErrInvalidAmount is returned when a grant/deduct amount is not a
	// positive integer.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrUserNotFound is returned when the points cache update matched no
	// user row. The just-inserted ledger entry is rolled back first.
	ErrUserNotFound = errors.New("user not found")

	// ErrInsufficientPoints is returned by strict-mode deductions when the
	// balance is short or a debt is outstanding.
	ErrInsufficientPoints = errors.New("insufficient points")

	// ErrRacketUnavailable is returned when no unit of the requested racket
	// is free for the rental period.
	ErrRacketUnavailable = errors.New("racket unavailable")

	// ErrProductUnavailable is returned when stock does not cover the
	// requested quantity.
	ErrProductUnavailable = errors.New("product unavailable")

	// ErrNotFound is returned when the target document does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when an optimistic-concurrency precondition
	// failed: the document changed since the client last saw it.
	ErrConflict = errors.New("conflict")

	// ErrInvalidTransition is returned for status changes the state machine
	// does not allow, including any mutation of a terminal document.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// ValidationError reports one rejected input field. It is raised before any
// write happens.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// IsClientError reports whether the caller can recover by correcting input
// or re-fetching state.
func IsClientError(err error) bool {
	var ve *ValidationError
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInsufficientPoints) ||
		errors.Is(err, ErrRacketUnavailable) ||
		errors.Is(err, ErrProductUnavailable) ||
		errors.Is(err, ErrInvalidTransition) ||
		errors.As(err, &ve)
}

// ErrorCode returns the machine-readable code for a service error.
func ErrorCode(err error) string {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		return "INVALID_INPUT"
	case errors.Is(err, ErrInvalidAmount):
		return "INVALID_AMOUNT"
	case errors.Is(err, ErrUserNotFound):
		return "USER_NOT_FOUND"
	case errors.Is(err, ErrInsufficientPoints):
		return "INSUFFICIENT_POINTS"
	case errors.Is(err, ErrRacketUnavailable):
		return "RACKET_UNAVAILABLE"
	case errors.Is(err, ErrProductUnavailable):
		return "PRODUCT_UNAVAILABLE"
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrConflict):
		return "CONFLICT"
	case errors.Is(err, ErrInvalidTransition):
		return "INVALID_TRANSITION"
	default:
		return "INTERNAL"
	}
}

// isTransientTxError classifies store errors that are worth retrying:
// serialization failures and deadlocks on Postgres, lock contention on
// SQLite. Everything else is fatal for the transaction.
func isTransientTxError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "40001") ||
		strings.Contains(msg, "40P01") ||
		strings.Contains(msg, "could not serialize access") ||
		strings.Contains(msg, "deadlock detected") ||
		strings.Contains(msg, "database is locked")
}
