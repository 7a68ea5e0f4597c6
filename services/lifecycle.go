// services/lifecycle.go
package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dailydraw/giveaway_backend/config"
	"github.com/dailydraw/giveaway_backend/models"
)

// Lifecycle errors. Handlers map these to 400/404; anything else is a store
// failure.
var (
	ErrInvalidOTP     = errors.New("invalid OTP or OTP already used")
	ErrExpiredOTP     = errors.New("OTP has expired")
	ErrDuplicateEntry = errors.New("you have already entered today's giveaway")
	ErrEntryNotFound  = errors.New("entry not found")
)

// EntryLifecycle owns the pending -> verified -> completed transitions of a
// giveaway entry. Both the page-flow PATCH and the direct verify endpoint go
// through VerifyEntry, so the transition cannot drift between entry points.
type EntryLifecycle struct {
	DB *mongo.Database
}

func NewEntryLifecycle(db *mongo.Database) *EntryLifecycle {
	return &EntryLifecycle{DB: db}
}

// Today returns the calendar day string used by the one-entry-per-day guard.
func Today() string {
	return time.Now().Format("2006-01-02")
}

func (l *EntryLifecycle) entries() *mongo.Collection {
	return l.DB.Collection(config.EntriesCollection)
}

func (l *EntryLifecycle) otps() *mongo.Collection {
	return l.DB.Collection(config.OTPCollection)
}

// CreateEntry inserts a pending entry for the given signup. The existence
// check gives duplicate submissions a friendly message; the unique
// (email, date) index catches the ones that race past it.
func (l *EntryLifecycle) CreateEntry(ctx context.Context, req *models.EntryRequest) (primitive.ObjectID, error) {
	count, err := l.entries().CountDocuments(ctx, bson.M{"email": req.Email, "date": req.Date})
	if err != nil {
		return primitive.NilObjectID, err
	}
	if count > 0 {
		return primitive.NilObjectID, ErrDuplicateEntry
	}

	status := req.Status
	if status == "" {
		status = models.EntryStatusPending
	}

	now := time.Now()
	entry := models.GiveawayEntry{
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Date:      req.Date,
		Status:    status,
		Timestamp: now,
		CreatedAt: now,
		UpdatedAt: now,
	}

	result, err := l.entries().InsertOne(ctx, entry)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, ErrDuplicateEntry
		}
		return primitive.NilObjectID, err
	}

	return result.InsertedID.(primitive.ObjectID), nil
}

// VerifyEntry consumes a live OTP for the phone and promotes the matching
// entry to verified. When entryID is nil a verified entry is created from
// the data captured at issuance, guarded by the one-entry-per-day rule.
//
// OTP consumption is a single compare-and-swap on isUsed, so a code can be
// redeemed exactly once no matter how many verifications race for it.
func (l *EntryLifecycle) VerifyEntry(ctx context.Context, phone, code, upiID string, entryID *primitive.ObjectID) (primitive.ObjectID, error) {
	now := time.Now()

	var otp models.OTPCode
	err := l.otps().FindOneAndUpdate(ctx,
		bson.M{"phone": phone, "otp": code, "isUsed": false},
		bson.M{"$set": bson.M{"isUsed": true, "usedAt": now}},
		options.FindOneAndUpdate().SetReturnDocument(options.Before),
	).Decode(&otp)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return primitive.NilObjectID, ErrInvalidOTP
		}
		return primitive.NilObjectID, err
	}

	if now.After(otp.ExpiresAt) {
		l.releaseCode(ctx, otp.ID)
		return primitive.NilObjectID, ErrExpiredOTP
	}

	if entryID != nil {
		update := bson.M{"$set": bson.M{
			"upiId":     upiID,
			"otp":       code,
			"status":    models.EntryStatusVerified,
			"updatedAt": now,
		}}
		result, err := l.entries().UpdateOne(ctx, bson.M{"_id": *entryID}, update)
		if err != nil {
			return primitive.NilObjectID, err
		}
		if result.MatchedCount == 0 {
			return primitive.NilObjectID, ErrEntryNotFound
		}
		return *entryID, nil
	}

	// No pending entry to promote: create a verified one for the identity the
	// code was issued to.
	today := Today()
	count, err := l.entries().CountDocuments(ctx, bson.M{"email": otp.Email, "date": today})
	if err != nil {
		return primitive.NilObjectID, err
	}
	if count > 0 {
		l.releaseCode(ctx, otp.ID)
		return primitive.NilObjectID, ErrDuplicateEntry
	}

	entry := models.GiveawayEntry{
		Name:      otp.Name,
		Email:     otp.Email,
		Phone:     otp.Phone,
		UpiID:     upiID,
		OTP:       code,
		Date:      today,
		Status:    models.EntryStatusVerified,
		Timestamp: now,
		CreatedAt: now,
		UpdatedAt: now,
	}

	result, err := l.entries().InsertOne(ctx, entry)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			l.releaseCode(ctx, otp.ID)
			return primitive.NilObjectID, ErrDuplicateEntry
		}
		return primitive.NilObjectID, err
	}

	return result.InsertedID.(primitive.ObjectID), nil
}

// releaseCode clears the consumed flag of an OTP whose verification did not
// go through, so the next attempt reports the real failure (expired,
// duplicate day) instead of reuse. The TTL sweep removes the record
// eventually.
func (l *EntryLifecycle) releaseCode(ctx context.Context, id primitive.ObjectID) {
	l.otps().UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"isUsed": false}, "$unset": bson.M{"usedAt": ""}},
	)
}

// CompleteEntry marks an entry completed. This is a display confirmation
// step triggered by the client after its countdown, not a security gate.
func (l *EntryLifecycle) CompleteEntry(ctx context.Context, entryID primitive.ObjectID) error {
	result, err := l.entries().UpdateOne(ctx,
		bson.M{"_id": entryID},
		bson.M{"$set": bson.M{"status": models.EntryStatusCompleted, "updatedAt": time.Now()}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrEntryNotFound
	}
	return nil
}
