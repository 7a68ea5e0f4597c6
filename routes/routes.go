package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/dailydraw/giveaway_backend/controllers"
	"github.com/dailydraw/giveaway_backend/middleware"
	"github.com/dailydraw/giveaway_backend/services"
	"github.com/dailydraw/giveaway_backend/websocket"
)

// SetupRoutes wires every endpoint. The signup, verification and
// confirmation pages work unauthenticated; destructive admin operations and
// the window controls require a session token.
func SetupRoutes(e *echo.Echo, db *mongo.Database, hub *websocket.Hub) {
	lifecycle := services.NewEntryLifecycle(db)
	window := services.NewWindowController(db, hub)

	entryController := controllers.NewEntryController(db, lifecycle, window)
	otpController := controllers.NewOTPController(db, lifecycle)
	adminController := controllers.NewAdminController()
	giveawayController := controllers.NewGiveawayController(window)

	api := e.Group("/api")

	// Entry lifecycle and dashboard reads
	api.POST("/entries", entryController.CreateEntry)
	api.GET("/entries", entryController.GetEntries)
	api.GET("/entries/:id", entryController.GetEntry)
	api.PATCH("/entries/:id", entryController.UpdateEntry)
	api.GET("/stats", entryController.GetStats)

	// OTP issuance and verification
	api.POST("/otp/generate", otpController.GenerateOTP)
	api.POST("/otp/verify", otpController.VerifyOTP)

	// Giveaway window
	api.GET("/giveaway", giveawayController.GetState)
	api.GET("/ws", giveawayController.Subscribe)

	// Admin login
	api.POST("/admin/auth", adminController.Auth)

	// Protected routes (require admin authentication)
	protected := api.Group("")
	protected.Use(middleware.JWTMiddleware())
	protected.DELETE("/entries/:id", entryController.DeleteEntry)
	protected.POST("/entries/bulk", entryController.BulkUpdate)
	protected.POST("/admin/giveaway/end", giveawayController.End)
	protected.POST("/admin/giveaway/reactivate", giveawayController.Reactivate)
}
