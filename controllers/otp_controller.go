package controllers

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/dailydraw/giveaway_backend/config"
	"github.com/dailydraw/giveaway_backend/models"
	"github.com/dailydraw/giveaway_backend/services"
	"github.com/dailydraw/giveaway_backend/utils"
)

// OTPValidity is how long an issued code stays redeemable.
const OTPValidity = 5 * time.Minute

type OTPController struct {
	DB        *mongo.Database
	Lifecycle *services.EntryLifecycle
	Sender    *utils.OTPSender
}

func NewOTPController(db *mongo.Database, lifecycle *services.EntryLifecycle) *OTPController {
	return &OTPController{DB: db, Lifecycle: lifecycle, Sender: utils.NewOTPSender()}
}

// GenerateOTP issues a 5-digit code for the phone number and hands it to the
// delivery service. The code is echoed back only when OTP_DEMO_MODE is set;
// in any real deployment the issuing caller must never see the secret.
func (oc *OTPController) GenerateOTP(c echo.Context) error {
	var req models.OTPGenerateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Phone, name, and email are required",
		})
	}

	code, err := utils.GenerateOTP()
	if err != nil {
		log.Printf("Error generating OTP: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate OTP",
		})
	}

	now := time.Now()
	record := models.OTPCode{
		Phone:     req.Phone,
		Name:      req.Name,
		Email:     req.Email,
		OTP:       code,
		CreatedAt: now,
		ExpiresAt: now.Add(OTPValidity),
		IsUsed:    false,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	result, err := oc.DB.Collection(config.OTPCollection).InsertOne(ctx, record)
	if err != nil {
		log.Printf("Error storing OTP: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate OTP",
		})
	}

	oc.Sender.Send(req.Phone, req.Email, code)

	data := map[string]string{
		"otpId": result.InsertedID.(primitive.ObjectID).Hex(),
	}
	if os.Getenv("OTP_DEMO_MODE") == "true" {
		data["demoOtp"] = code
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Success: true,
		Message: "OTP sent successfully",
		Data:    data,
	})
}

// VerifyOTP redeems a code together with a UPI id. When the request names a
// pending entry it is promoted to verified; otherwise a verified entry is
// created from the identity captured at issuance.
func (oc *OTPController) VerifyOTP(c echo.Context) error {
	var req models.OTPVerifyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Phone, OTP, and UPI ID are required",
		})
	}

	if err := utils.ValidateOTPAttempts(req.Phone, config.GetRedisClient()); err != nil {
		if err == utils.ErrTooManyAttempts {
			return c.JSON(http.StatusTooManyRequests, models.Response{
				Status:  http.StatusTooManyRequests,
				Message: "Too many verification attempts, try again later",
			})
		}
		log.Printf("Error checking OTP attempts: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to verify OTP",
		})
	}

	var entryID *primitive.ObjectID
	if req.EntryID != "" {
		parsed, err := primitive.ObjectIDFromHex(req.EntryID)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invalid entry ID",
			})
		}
		entryID = &parsed
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	resultID, err := oc.Lifecycle.VerifyEntry(ctx, req.Phone, req.OTP, req.UpiID, entryID)
	if err != nil {
		return verificationErrorResponse(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Success: true,
		Message: "Entry verified and created successfully",
		Data:    map[string]string{"entryId": resultID.Hex()},
	})
}

// verificationErrorResponse maps lifecycle verification errors onto the
// response envelope. Shared by both verify entry points.
func verificationErrorResponse(c echo.Context, err error) error {
	switch err {
	case services.ErrInvalidOTP:
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid OTP or OTP already used",
		})
	case services.ErrExpiredOTP:
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "OTP has expired",
		})
	case services.ErrDuplicateEntry:
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "You have already entered today's giveaway",
		})
	case services.ErrEntryNotFound:
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Entry not found",
		})
	default:
		log.Printf("Error verifying OTP: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to verify OTP",
		})
	}
}
