package errors

import "errors"

var (
	ErrNotFound = errors.New("tour not found")

	ErrInvalidID = errors.New("invalid tour ID format")

	// ErrVersionConflict signals that the tour document changed between read
	// and write. Callers retry a bounded number of times.
	ErrVersionConflict = errors.New("tour version conflict")
)
