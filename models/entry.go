// models/entry.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Entry statuses. An entry moves pending -> verified -> completed; no
// transition is reversible except by an admin forcing the status directly.
const (
	EntryStatusPending   = "pending"
	EntryStatusVerified  = "verified"
	EntryStatusCompleted = "completed"
)

// GiveawayEntry is one user's participation record for a calendar day.
type GiveawayEntry struct {
	ID    primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name  string             `json:"name" bson:"name"`
	Email string             `json:"email" bson:"email"`
	Phone string             `json:"phone" bson:"phone"`
	UpiID string             `json:"upiId,omitempty" bson:"upiId,omitempty"`
	OTP   string             `json:"otp,omitempty" bson:"otp,omitempty"`
	// Date is the user's local submission day, formatted YYYY-MM-DD. At most
	// one entry may exist per (email, date).
	Date   string `json:"date" bson:"date"`
	Status string `json:"status" bson:"status"`
	// Legacy records carry a bare verified flag instead of a status. Kept for
	// read compatibility; never written by this codebase.
	Verified  bool      `json:"verified,omitempty" bson:"verified,omitempty"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// EntryRequest is the public signup payload.
type EntryRequest struct {
	Name   string `json:"name" validate:"required"`
	Email  string `json:"email" validate:"required,email"`
	Phone  string `json:"phone" validate:"required"`
	Date   string `json:"date" validate:"required"`
	Status string `json:"status,omitempty"`
}

// EntryUpdateRequest is a partial update; nil fields are left untouched.
type EntryUpdateRequest struct {
	Name   *string `json:"name,omitempty"`
	Email  *string `json:"email,omitempty"`
	Phone  *string `json:"phone,omitempty"`
	UpiID  *string `json:"upiId,omitempty"`
	OTP    *string `json:"otp,omitempty"`
	Date   *string `json:"date,omitempty"`
	Status *string `json:"status,omitempty"`
}

// Bulk operations accepted by POST /api/entries/bulk.
const (
	BulkOperationDelete       = "delete"
	BulkOperationUpdateStatus = "updateStatus"
)

// BulkRequest is a batched delete or status update applied to a list of
// entry ids in a single write.
type BulkRequest struct {
	Operation string   `json:"operation"`
	EntryIDs  []string `json:"entryIds"`
	Status    string   `json:"status,omitempty"`
}

// AdminStats is the dashboard aggregate block.
type AdminStats struct {
	TotalUsers       int64           `json:"totalUsers"`
	TodayUsers       int64           `json:"todayUsers"`
	PendingEntries   int64           `json:"pendingEntries"`
	VerifiedEntries  int64           `json:"verifiedEntries"`
	CompletedEntries int64           `json:"completedEntries"`
	RecentEntries    []GiveawayEntry `json:"recentEntries"`
}
