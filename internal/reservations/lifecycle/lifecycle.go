package lifecycle

import (
	"tourbook/pkg/config"
	apperrors "tourbook/pkg/errors"
)

// transitions is the full lifecycle graph. Anything absent is rejected.
var transitions = map[string][]string{
	config.StatusInterested: {config.StatusConfirmed, config.StatusCancelled},
	config.StatusConfirmed:  {config.StatusPaid, config.StatusCancelled},
	config.StatusPaid:       {config.StatusCompleted},
	config.StatusCancelled:  {},
	config.StatusCompleted:  {},
}

// Normalize maps accepted aliases onto stored statuses. Clients of the old
// API say "approved" where the stored vocabulary says "confirmed".
func Normalize(status string) string {
	if status == "approved" {
		return config.StatusConfirmed
	}
	return status
}

// Known reports whether the status is part of the stored vocabulary.
func Known(status string) bool {
	_, ok := transitions[status]
	return ok
}

// IsTerminal reports whether no transition leads out of the status.
func IsTerminal(status string) bool {
	next, ok := transitions[status]
	return ok && len(next) == 0
}

// CanTransition validates the edge from one status to another, returning an
// InvalidTransition error naming both ends when the edge does not exist.
func CanTransition(from, to string) error {
	next, ok := transitions[from]
	if !ok {
		return apperrors.InvalidInput("unknown reservation status: " + from)
	}
	if !Known(to) {
		return apperrors.InvalidInput("unknown reservation status: " + to)
	}

	for _, candidate := range next {
		if candidate == to {
			return nil
		}
	}

	return apperrors.InvalidTransition(from, to)
}

// CommitsCapacity reports whether the edge from one status to another takes
// tour headroom (only the confirmation edge does).
func CommitsCapacity(from, to string) bool {
	return from == config.StatusInterested && to == config.StatusConfirmed
}

// ReleasesCapacity reports whether the edge returns tour headroom.
// Completion keeps the seats: those participants went on the tour.
func ReleasesCapacity(from, to string) bool {
	return from == config.StatusConfirmed && to == config.StatusCancelled
}
