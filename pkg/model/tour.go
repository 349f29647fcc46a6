package model

import (
	"time"
)

// TierPrices maps the three price tiers to amounts in cents. Participants
// under five are recorded as child but billed at zero.
type TierPrices struct {
	AdultCents  int64 `json:"adult_cents" bson:"adult_cents" validate:"gte=0"`
	ChildCents  int64 `json:"child_cents" bson:"child_cents" validate:"gte=0"`
	SeniorCents int64 `json:"senior_cents" bson:"senior_cents" validate:"gte=0"`
}

type Tour struct {
	ID                  string     `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name                string     `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Description         string     `json:"description,omitempty" bson:"description" validate:"omitempty,max=2000"`
	StartDate           time.Time  `json:"start_date" bson:"start_date" validate:"required"`
	MaxParticipants     int        `json:"max_participants" bson:"max_participants" validate:"required,min=1,max=500"`
	CurrentParticipants int        `json:"current_participants" bson:"current_participants" validate:"gte=0"`
	Prices              TierPrices `json:"prices" bson:"prices"`
	Status              string     `json:"status" bson:"status" validate:"required,oneof=active inactive completed cancelled"`
	Version             int64      `json:"version" bson:"version"`
	CreatedAt           time.Time  `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// Headroom reports how many more participants the tour can take.
func (t *Tour) Headroom() int {
	return t.MaxParticipants - t.CurrentParticipants
}

type TourUpdate struct {
	Name            string      `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Description     *string     `json:"description,omitempty" validate:"omitempty,max=2000"`
	StartDate       *time.Time  `json:"start_date,omitempty" validate:"omitempty"`
	MaxParticipants *int        `json:"max_participants,omitempty" validate:"omitempty,min=1,max=500"`
	Prices          *TierPrices `json:"prices,omitempty"`
	Status          string      `json:"status,omitempty" validate:"omitempty,oneof=active inactive completed cancelled"`
}
