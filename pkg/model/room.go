package model

import (
	"time"
)

// RoomInterval is one half-open occupancy range [CheckIn, CheckOut) held by
// a reservation. Intervals on the same room never overlap.
type RoomInterval struct {
	ReservationID string    `json:"reservation_id" bson:"reservation_id" validate:"required"`
	CheckIn       time.Time `json:"check_in" bson:"check_in" validate:"required"`
	CheckOut      time.Time `json:"check_out" bson:"check_out" validate:"required,gtfield=CheckIn"`
	OccupantCount int       `json:"occupant_count" bson:"occupant_count" validate:"required,min=1"`
}

// Overlaps reports whether the interval intersects [checkIn, checkOut).
// Half-open semantics: touching endpoints do not overlap.
func (iv *RoomInterval) Overlaps(checkIn, checkOut time.Time) bool {
	return iv.CheckIn.Before(checkOut) && checkIn.Before(iv.CheckOut)
}

// Expired reports whether the interval's check-out is strictly in the past.
func (iv *RoomInterval) Expired(now time.Time) bool {
	return iv.CheckOut.Before(now)
}

type Room struct {
	ID              string         `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	AccommodationID string         `json:"accommodation_id" bson:"accommodation_id" validate:"required,min=1,max=100"`
	Name            string         `json:"name" bson:"name" validate:"required,min=1,max=100"`
	Capacity        int            `json:"capacity" bson:"capacity" validate:"required,min=1,max=20"`
	Intervals       []RoomInterval `json:"intervals" bson:"intervals"`
	Version         int64          `json:"version" bson:"version"`
	CreatedAt       time.Time      `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type RoomUpdate struct {
	Name     string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Capacity *int   `json:"capacity,omitempty" validate:"omitempty,min=1,max=20"`
}
