package errors

import "errors"

var (
	ErrNotFound        = errors.New("reservation not found")
	ErrInvalidID       = errors.New("invalid reservation ID")
	ErrVersionConflict = errors.New("reservation version conflict")

	// ErrLockHeld means another request currently holds the slot lock.
	ErrLockHeld = errors.New("slot lock already held")
)
