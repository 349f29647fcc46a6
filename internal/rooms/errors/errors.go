package errors

import "errors"

var (
	ErrNotFound = errors.New("room not found")

	ErrInvalidID = errors.New("invalid room ID format")

	// ErrVersionConflict signals that the room document changed between read
	// and write. Callers retry a bounded number of times.
	ErrVersionConflict = errors.New("room version conflict")
)
