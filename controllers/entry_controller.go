package controllers

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dailydraw/giveaway_backend/config"
	"github.com/dailydraw/giveaway_backend/models"
	"github.com/dailydraw/giveaway_backend/services"
)

type EntryController struct {
	DB        *mongo.Database
	Lifecycle *services.EntryLifecycle
	Window    *services.WindowController
}

func NewEntryController(db *mongo.Database, lifecycle *services.EntryLifecycle, window *services.WindowController) *EntryController {
	return &EntryController{DB: db, Lifecycle: lifecycle, Window: window}
}

// CreateEntry handles the public signup form: it inserts a pending entry for
// the caller's calendar day, provided the giveaway window is open.
func (ec *EntryController) CreateEntry(c echo.Context) error {
	var req models.EntryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Name, email, phone, and date are required",
		})
	}

	if !ec.Window.IsOpen() {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "The giveaway is currently closed",
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	entryID, err := ec.Lifecycle.CreateEntry(ctx, &req)
	if err != nil {
		if err == services.ErrDuplicateEntry {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "You have already entered today's giveaway",
			})
		}
		log.Printf("Error creating entry: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create entry",
		})
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Success: true,
		Message: "Entry created successfully",
		Data:    map[string]string{"entryId": entryID.Hex()},
	})
}

// buildListFilter translates the status/date query parameters into a Mongo
// filter. "verified" is special: it means everything that got past the OTP
// step, which includes completed entries and legacy records that carry a
// bare verified flag instead of a status.
func buildListFilter(status, date string) bson.M {
	if status == models.EntryStatusVerified {
		return bson.M{"$or": []bson.M{
			{"status": models.EntryStatusVerified},
			{"status": models.EntryStatusCompleted},
			{"verified": true},
		}}
	}

	filter := bson.M{}
	if date != "" {
		filter["date"] = date
	}
	if status != "" {
		filter["status"] = status
	}
	return filter
}

// GetEntries lists entries, newest first, with optional status/date/limit
// filters. The verified union ignores date and limit, matching the dashboard
// contract.
func (ec *EntryController) GetEntries(c echo.Context) error {
	status := c.QueryParam("status")
	date := c.QueryParam("date")

	filter := buildListFilter(status, date)

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if status != models.EntryStatusVerified {
		if limitParam := c.QueryParam("limit"); limitParam != "" {
			if limit, err := strconv.ParseInt(limitParam, 10, 64); err == nil && limit > 0 {
				findOptions.SetLimit(limit)
			}
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	cursor, err := ec.DB.Collection(config.EntriesCollection).Find(ctx, filter, findOptions)
	if err != nil {
		log.Printf("Error fetching entries: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch entries",
		})
	}
	defer cursor.Close(ctx)

	entries := []models.GiveawayEntry{}
	if err := cursor.All(ctx, &entries); err != nil {
		log.Printf("Error decoding entries: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch entries",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Success: true,
		Message: "Entries retrieved successfully",
		Data:    map[string]interface{}{"entries": entries},
	})
}

// GetEntry returns a single entry by id.
func (ec *EntryController) GetEntry(c echo.Context) error {
	entryID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid entry ID",
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	var entry models.GiveawayEntry
	err = ec.DB.Collection(config.EntriesCollection).FindOne(ctx, bson.M{"_id": entryID}).Decode(&entry)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Entry not found",
			})
		}
		log.Printf("Error fetching entry: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch entry",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Success: true,
		Message: "Entry retrieved successfully",
		Data:    map[string]interface{}{"entry": entry},
	})
}

// UpdateEntry applies a partial update. Two payload shapes go through the
// lifecycle instead of a raw write: a verification (status=verified with an
// OTP attached) must consume the code, and a bare status=completed is the
// confirmation-step transition. Any other combination is an admin forcing
// fields directly.
func (ec *EntryController) UpdateEntry(c echo.Context) error {
	entryID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid entry ID",
		})
	}

	var req models.EntryUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if req.Status != nil && *req.Status == models.EntryStatusVerified && req.OTP != nil {
		return ec.verifyViaUpdate(c, ctx, entryID, &req)
	}

	if req.Status != nil && *req.Status == models.EntryStatusCompleted && onlyStatus(&req) {
		if err := ec.Lifecycle.CompleteEntry(ctx, entryID); err != nil {
			if err == services.ErrEntryNotFound {
				return c.JSON(http.StatusNotFound, models.Response{
					Status:  http.StatusNotFound,
					Message: "Entry not found",
				})
			}
			log.Printf("Error completing entry: %v", err)
			return c.JSON(http.StatusInternalServerError, models.Response{
				Status:  http.StatusInternalServerError,
				Message: "Failed to update entry",
			})
		}
		return c.JSON(http.StatusOK, models.Response{
			Status:  http.StatusOK,
			Success: true,
			Message: "Entry updated successfully",
		})
	}

	update := bson.M{"updatedAt": time.Now()}
	if req.Name != nil {
		update["name"] = *req.Name
	}
	if req.Email != nil {
		update["email"] = *req.Email
	}
	if req.Phone != nil {
		update["phone"] = *req.Phone
	}
	if req.UpiID != nil {
		update["upiId"] = *req.UpiID
	}
	if req.OTP != nil {
		update["otp"] = *req.OTP
	}
	if req.Date != nil {
		update["date"] = *req.Date
	}
	if req.Status != nil {
		update["status"] = *req.Status
	}

	result, err := ec.DB.Collection(config.EntriesCollection).UpdateOne(ctx, bson.M{"_id": entryID}, bson.M{"$set": update})
	if err != nil {
		log.Printf("Error updating entry: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update entry",
		})
	}
	if result.MatchedCount == 0 {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Entry not found",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Success: true,
		Message: "Entry updated successfully",
	})
}

// verifyViaUpdate routes a PATCH-shaped verification through the same
// lifecycle transition as POST /api/otp/verify.
func (ec *EntryController) verifyViaUpdate(c echo.Context, ctx context.Context, entryID primitive.ObjectID, req *models.EntryUpdateRequest) error {
	phone := ""
	if req.Phone != nil {
		phone = *req.Phone
	} else {
		var entry models.GiveawayEntry
		err := ec.DB.Collection(config.EntriesCollection).FindOne(ctx, bson.M{"_id": entryID}).Decode(&entry)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				return c.JSON(http.StatusNotFound, models.Response{
					Status:  http.StatusNotFound,
					Message: "Entry not found",
				})
			}
			log.Printf("Error fetching entry for verification: %v", err)
			return c.JSON(http.StatusInternalServerError, models.Response{
				Status:  http.StatusInternalServerError,
				Message: "Failed to update entry",
			})
		}
		phone = entry.Phone
	}

	upiID := ""
	if req.UpiID != nil {
		upiID = *req.UpiID
	}

	_, err := ec.Lifecycle.VerifyEntry(ctx, phone, *req.OTP, upiID, &entryID)
	if err != nil {
		return verificationErrorResponse(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Success: true,
		Message: "Entry verified successfully",
	})
}

// onlyStatus reports whether the update carries nothing but a status change.
func onlyStatus(req *models.EntryUpdateRequest) bool {
	return req.Name == nil && req.Email == nil && req.Phone == nil &&
		req.UpiID == nil && req.OTP == nil && req.Date == nil
}

// DeleteEntry removes a single entry.
func (ec *EntryController) DeleteEntry(c echo.Context) error {
	entryID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid entry ID",
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	result, err := ec.DB.Collection(config.EntriesCollection).DeleteOne(ctx, bson.M{"_id": entryID})
	if err != nil {
		log.Printf("Error deleting entry: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to delete entry",
		})
	}
	if result.DeletedCount == 0 {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Entry not found",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Success: true,
		Message: "Entry deleted successfully",
	})
}

// validateBulkRequest rejects malformed bulk payloads before anything is
// written. Returns an empty string when the request is acceptable.
func validateBulkRequest(req *models.BulkRequest) string {
	if req.Operation == "" || req.EntryIDs == nil {
		return "Invalid request parameters"
	}

	switch req.Operation {
	case models.BulkOperationDelete:
		return ""
	case models.BulkOperationUpdateStatus:
		if req.Status == "" {
			return "Status is required for update operation"
		}
		return ""
	default:
		return "Invalid operation"
	}
}

// BulkUpdate executes a batched delete or status update as a single ordered
// write. Validation failures mutate nothing.
func (ec *EntryController) BulkUpdate(c echo.Context) error {
	var req models.BulkRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request parameters",
		})
	}

	if msg := validateBulkRequest(&req); msg != "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: msg,
		})
	}

	writes := make([]mongo.WriteModel, 0, len(req.EntryIDs))
	now := time.Now()
	for _, id := range req.EntryIDs {
		entryID, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invalid entry ID: " + id,
			})
		}

		switch req.Operation {
		case models.BulkOperationDelete:
			writes = append(writes, mongo.NewDeleteOneModel().SetFilter(bson.M{"_id": entryID}))
		case models.BulkOperationUpdateStatus:
			writes = append(writes, mongo.NewUpdateOneModel().
				SetFilter(bson.M{"_id": entryID}).
				SetUpdate(bson.M{"$set": bson.M{"status": req.Status, "updatedAt": now}}))
		}
	}

	if len(writes) > 0 {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
		defer cancel()

		_, err := ec.DB.Collection(config.EntriesCollection).BulkWrite(ctx, writes)
		if err != nil {
			log.Printf("Error in bulk %s: %v", req.Operation, err)
			return c.JSON(http.StatusInternalServerError, models.Response{
				Status:  http.StatusInternalServerError,
				Message: "Bulk operation failed",
			})
		}
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Success: true,
		Message: "Bulk " + req.Operation + " completed successfully",
	})
}

// GetStats aggregates the dashboard counters plus the ten most recent
// entries. Each count is its own query; the dashboard polls this endpoint on
// a fixed interval.
func (ec *EntryController) GetStats(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	entries := ec.DB.Collection(config.EntriesCollection)

	stats := models.AdminStats{}
	countFilters := map[*int64]bson.M{
		&stats.TotalUsers:       {},
		&stats.TodayUsers:       {"date": services.Today()},
		&stats.PendingEntries:   {"status": models.EntryStatusPending},
		&stats.VerifiedEntries:  {"status": models.EntryStatusVerified},
		&stats.CompletedEntries: {"status": models.EntryStatusCompleted},
	}

	for dest, filter := range countFilters {
		n, err := entries.CountDocuments(ctx, filter)
		if err != nil {
			log.Printf("Error counting entries: %v", err)
			return c.JSON(http.StatusInternalServerError, models.Response{
				Status:  http.StatusInternalServerError,
				Message: "Failed to fetch statistics",
			})
		}
		*dest = n
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(10)
	cursor, err := entries.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		log.Printf("Error fetching recent entries: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch statistics",
		})
	}
	defer cursor.Close(ctx)

	stats.RecentEntries = []models.GiveawayEntry{}
	if err := cursor.All(ctx, &stats.RecentEntries); err != nil {
		log.Printf("Error decoding recent entries: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch statistics",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Success: true,
		Message: "Statistics retrieved successfully",
		Data:    map[string]interface{}{"stats": stats},
	})
}
