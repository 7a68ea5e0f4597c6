// models/giveaway.go
package models

import "time"

// GiveawayState is the admin-controlled open/closed window gating new
// signups. Persisted as a singleton document so it survives restarts and is
// shared across instances.
type GiveawayState struct {
	ID        string     `json:"-" bson:"_id"`
	IsActive  bool       `json:"isActive" bson:"isActive"`
	CloseTime *time.Time `json:"closeTime" bson:"closeTime,omitempty"`
	UpdatedAt time.Time  `json:"updatedAt" bson:"updatedAt"`
}

// ReactivateRequest reopens the giveaway, either for a fixed number of hours
// (default 1) or until an explicit close time.
type ReactivateRequest struct {
	DurationHours float64    `json:"durationHours,omitempty"`
	CloseTime     *time.Time `json:"closeTime,omitempty"`
}

// AdminAuthRequest is the dashboard login payload.
type AdminAuthRequest struct {
	Password string `json:"password" validate:"required"`
}
