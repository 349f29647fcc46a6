package model

import (
	"time"
)

type Participant struct {
	Name         string `json:"name" bson:"name" validate:"required,min=1,max=100"`
	Age          int    `json:"age" bson:"age" validate:"gte=0,lte=120"`
	Relationship string `json:"relationship,omitempty" bson:"relationship" validate:"omitempty,max=50"`
	// PriceCategory is derived from Age at pricing time; under-5 is recorded
	// as child even though it bills zero.
	PriceCategory string `json:"price_category,omitempty" bson:"price_category" validate:"omitempty,oneof=adult child senior"`
}

// Pricing is immutable once computed. Appending participants adds the new
// amounts onto the existing ones rather than recomputing from scratch.
type Pricing struct {
	SubtotalCents int64 `json:"subtotal_cents" bson:"subtotal_cents" validate:"gte=0"`
	TaxesCents    int64 `json:"taxes_cents" bson:"taxes_cents" validate:"gte=0"`
	TotalCents    int64 `json:"total_cents" bson:"total_cents" validate:"gte=0"`
}

// Add returns the sum of two pricings.
func (p Pricing) Add(other Pricing) Pricing {
	return Pricing{
		SubtotalCents: p.SubtotalCents + other.SubtotalCents,
		TaxesCents:    p.TaxesCents + other.TaxesCents,
		TotalCents:    p.TotalCents + other.TotalCents,
	}
}

// RoomAssignment links a reservation to a room for a half-open date range.
type RoomAssignment struct {
	RoomID   string    `json:"room_id" bson:"room_id" validate:"required,mongodb"`
	CheckIn  time.Time `json:"check_in" bson:"check_in" validate:"required"`
	CheckOut time.Time `json:"check_out" bson:"check_out" validate:"required,gtfield=CheckIn"`
}

type Reservation struct {
	ID                string           `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	TourID            string           `json:"tour_id" bson:"tour_id" validate:"required,mongodb"`
	Participants      []Participant    `json:"participants" bson:"participants" validate:"required,min=1,dive"`
	TotalParticipants int              `json:"total_participants" bson:"total_participants" validate:"required,min=1"`
	Pricing           Pricing          `json:"pricing" bson:"pricing"`
	Status            string           `json:"status" bson:"status" validate:"required,oneof=interested confirmed paid cancelled completed"`
	RoomAssignments   []RoomAssignment `json:"room_assignments,omitempty" bson:"room_assignments" validate:"omitempty,dive"`
	CancelReason      string           `json:"cancel_reason,omitempty" bson:"cancel_reason" validate:"omitempty,max=500"`
	Version           int64            `json:"version" bson:"version"`
	CreatedAt         time.Time        `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// CapacityCommitted reports whether the reservation currently holds tour
// headroom. Capacity is committed at confirmation and held through paid and
// completed; interested and cancelled reservations hold none.
func (r *Reservation) CapacityCommitted() bool {
	switch r.Status {
	case "confirmed", "paid", "completed":
		return true
	}
	return false
}
