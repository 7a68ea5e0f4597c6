// services/window.go
package services

import (
	"context"
	"log"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dailydraw/giveaway_backend/config"
	"github.com/dailydraw/giveaway_backend/models"
	"github.com/dailydraw/giveaway_backend/websocket"
)

const stateDocID = "current"

// DefaultReactivateDuration applies when an admin reopens the giveaway
// without picking a duration or close time.
const DefaultReactivateDuration = time.Hour

// WindowController owns the open/closed state gating new signups. The state
// is cached in-process for request checks, persisted in the giveaway_state
// collection and broadcast to hub subscribers on every change. Persistence is
// best-effort: a store failure is logged and must not swallow the broadcast.
type WindowController struct {
	DB  *mongo.Database
	Hub *websocket.Hub

	mu    sync.RWMutex
	state models.GiveawayState
}

// NewWindowController loads the persisted window state, defaulting to an
// open window with no scheduled close when none has been stored yet.
func NewWindowController(db *mongo.Database, hub *websocket.Hub) *WindowController {
	w := &WindowController{
		DB:  db,
		Hub: hub,
		state: models.GiveawayState{
			ID:        stateDocID,
			IsActive:  true,
			UpdatedAt: time.Now(),
		},
	}

	if db != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		var stored models.GiveawayState
		err := db.Collection(config.StateCollection).FindOne(ctx, bson.M{"_id": stateDocID}).Decode(&stored)
		switch err {
		case nil:
			w.state = stored
		case mongo.ErrNoDocuments:
			// First run, keep the default.
		default:
			log.Printf("Error loading giveaway state, starting with default: %v", err)
		}
	}

	return w
}

// Current returns the window state as last set.
func (w *WindowController) Current() models.GiveawayState {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.state
}

// IsOpen reports whether new signups are accepted right now. A close time in
// the past counts as closed even before an admin ends the giveaway, so the
// server cannot drift behind clients that already flipped their countdown.
func (w *WindowController) IsOpen() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if !w.state.IsActive {
		return false
	}
	if w.state.CloseTime != nil && time.Now().After(*w.state.CloseTime) {
		return false
	}
	return true
}

// End closes the giveaway immediately and notifies all subscribers.
func (w *WindowController) End(ctx context.Context) models.GiveawayState {
	return w.set(ctx, false, nil)
}

// Reactivate reopens the giveaway until the given close time.
func (w *WindowController) Reactivate(ctx context.Context, closeTime time.Time) models.GiveawayState {
	return w.set(ctx, true, &closeTime)
}

func (w *WindowController) set(ctx context.Context, active bool, closeTime *time.Time) models.GiveawayState {
	w.mu.Lock()
	w.state = models.GiveawayState{
		ID:        stateDocID,
		IsActive:  active,
		CloseTime: closeTime,
		UpdatedAt: time.Now(),
	}
	state := w.state
	w.mu.Unlock()

	w.persist(ctx, state)

	if w.Hub != nil {
		w.Hub.Broadcast(websocket.StateUpdate{
			Type: websocket.UpdateTypeGiveawayState,
			Data: state,
		})
	}

	return state
}

func (w *WindowController) persist(ctx context.Context, state models.GiveawayState) {
	if w.DB == nil {
		return
	}

	// Replace the whole document so a cleared close time does not linger.
	_, err := w.DB.Collection(config.StateCollection).ReplaceOne(ctx,
		bson.M{"_id": stateDocID},
		state,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		log.Printf("Error persisting giveaway state: %v", err)
	}
}
