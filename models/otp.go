// models/otp.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OTPCode is a one-time 5-digit code tied to a phone number. A code is
// redeemable only while IsUsed is false and ExpiresAt has not passed.
type OTPCode struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Phone     string             `json:"phone" bson:"phone"`
	Name      string             `json:"name" bson:"name"`
	Email     string             `json:"email" bson:"email"`
	OTP       string             `json:"otp" bson:"otp"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	ExpiresAt time.Time          `json:"expiresAt" bson:"expiresAt"`
	IsUsed    bool               `json:"isUsed" bson:"isUsed"`
	UsedAt    *time.Time         `json:"usedAt,omitempty" bson:"usedAt,omitempty"`
}

// OTPGenerateRequest is the issuance payload.
type OTPGenerateRequest struct {
	Phone string `json:"phone" validate:"required"`
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

// OTPVerifyRequest is the verification payload. EntryID is optional: the
// page flow supplies the pending entry it created at signup, the direct
// endpoint omits it and a verified entry is created on the spot.
type OTPVerifyRequest struct {
	Phone   string `json:"phone" validate:"required"`
	OTP     string `json:"otp" validate:"required"`
	UpiID   string `json:"upiId" validate:"required"`
	EntryID string `json:"entryId,omitempty"`
}
