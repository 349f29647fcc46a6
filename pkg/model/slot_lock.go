package model

import "time"

// SlotLock is an advisory lock taken while a reservation request reserves
// tour capacity and room intervals. It serializes the check-then-commit
// section for one tour; a unique-key insert either wins or conflicts.
type SlotLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
