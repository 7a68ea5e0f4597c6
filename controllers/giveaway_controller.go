package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dailydraw/giveaway_backend/models"
	"github.com/dailydraw/giveaway_backend/services"
	"github.com/dailydraw/giveaway_backend/websocket"
)

type GiveawayController struct {
	Window *services.WindowController
}

func NewGiveawayController(window *services.WindowController) *GiveawayController {
	return &GiveawayController{Window: window}
}

// GetState returns the current window state for clients that poll instead of
// holding a WebSocket subscription.
func (gc *GiveawayController) GetState(c echo.Context) error {
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Success: true,
		Message: "Giveaway state retrieved successfully",
		Data:    map[string]interface{}{"state": gc.Window.Current()},
	})
}

// Subscribe upgrades to a WebSocket and streams window changes. The current
// state is pushed immediately so a fresh page renders correctly before the
// first broadcast.
func (gc *GiveawayController) Subscribe(c echo.Context) error {
	return websocket.Subscribe(c, gc.Window.Hub, gc.Window.Current())
}

// End closes the giveaway immediately. Subscribers are notified regardless of
// the prior state.
func (gc *GiveawayController) End(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	state := gc.Window.End(ctx)

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Success: true,
		Message: "Giveaway ended",
		Data:    map[string]interface{}{"state": state},
	})
}

// Reactivate reopens the giveaway, either for a number of hours (default 1)
// or until an explicit close time.
func (gc *GiveawayController) Reactivate(c echo.Context) error {
	var req models.ReactivateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	var closeTime time.Time
	switch {
	case req.CloseTime != nil:
		if !req.CloseTime.After(time.Now()) {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Close time must be in the future",
			})
		}
		closeTime = *req.CloseTime
	case req.DurationHours < 0:
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Duration must be positive",
		})
	case req.DurationHours > 0:
		closeTime = time.Now().Add(time.Duration(req.DurationHours * float64(time.Hour)))
	default:
		closeTime = time.Now().Add(services.DefaultReactivateDuration)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	state := gc.Window.Reactivate(ctx, closeTime)

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Success: true,
		Message: "Giveaway reactivated",
		Data:    map[string]interface{}{"state": state},
	})
}
