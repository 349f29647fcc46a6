package model

import "time"

// RoomRequest asks for one room over a half-open date range.
type RoomRequest struct {
	RoomID        string    `json:"room_id" validate:"required,mongodb"`
	CheckIn       time.Time `json:"check_in" validate:"required"`
	CheckOut      time.Time `json:"check_out" validate:"required,gtfield=CheckIn"`
	OccupantCount int       `json:"occupant_count" validate:"required,min=1"`
}

// ReservationRequest is the create payload. With Confirm set the reservation
// is confirmed in the same request: capacity and rooms are acquired together
// or not at all.
type ReservationRequest struct {
	TourID       string        `json:"tour_id" validate:"required,mongodb"`
	Participants []Participant `json:"participants" validate:"required,min=1,dive"`
	RoomRequests []RoomRequest `json:"room_requests,omitempty" validate:"omitempty,dive"`
	Confirm      bool          `json:"confirm,omitempty"`
}

// StatusRequest carries a lifecycle transition.
type StatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// CancelRequest carries an optional reason for the audit trail.
type CancelRequest struct {
	Reason string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

// ParticipantsRequest appends participants to an existing reservation.
type ParticipantsRequest struct {
	Participants []Participant `json:"participants" validate:"required,min=1,dive"`
}
