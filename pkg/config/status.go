package config

// Reservation lifecycle statuses. "approved" is accepted at the transport
// boundary as an alias for Confirmed but is never stored.
const (
	StatusInterested = "interested"
	StatusConfirmed  = "confirmed"
	StatusPaid       = "paid"
	StatusCancelled  = "cancelled"
	StatusCompleted  = "completed"
)

// Tour statuses.
const (
	TourActive    = "active"
	TourInactive  = "inactive"
	TourCompleted = "completed"
	TourCancelled = "cancelled"
)

// ReservationStatuses lists every valid stored reservation status.
var ReservationStatuses = []string{
	StatusInterested,
	StatusConfirmed,
	StatusPaid,
	StatusCancelled,
	StatusCompleted,
}

// TourStatuses lists every valid tour status.
var TourStatuses = []string{
	TourActive,
	TourInactive,
	TourCompleted,
	TourCancelled,
}
