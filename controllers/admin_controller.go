package controllers

import (
	"crypto/subtle"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/dailydraw/giveaway_backend/middleware"
	"github.com/dailydraw/giveaway_backend/models"
)

type AdminController struct{}

func NewAdminController() *AdminController {
	return &AdminController{}
}

// checkAdminPassword compares the supplied password against the configured
// secret. ADMIN_PASSWORD_HASH (bcrypt) takes precedence; the plaintext
// ADMIN_PASSWORD fallback is compared in constant time.
func checkAdminPassword(supplied string) (bool, error) {
	if hash := os.Getenv("ADMIN_PASSWORD_HASH"); hash != "" {
		err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(supplied))
		return err == nil, nil
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		return false, errors.New("admin password is not configured")
	}

	return subtle.ConstantTimeCompare([]byte(supplied), []byte(password)) == 1, nil
}

// Auth handles the dashboard login. A correct password yields a signed
// session token; there is nothing for the client to store that the server
// cannot verify.
func (ac *AdminController) Auth(c echo.Context) error {
	var req models.AdminAuthRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Password is required",
		})
	}

	ok, err := checkAdminPassword(req.Password)
	if err != nil {
		log.Printf("Admin auth misconfigured: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Login failed",
		})
	}
	if !ok {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid password",
		})
	}

	token, err := middleware.GenerateAdminToken()
	if err != nil {
		log.Printf("Failed to generate admin token: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate token",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Success: true,
		Message: "Admin login successful",
		Data: map[string]interface{}{
			"token":     token,
			"loginTime": time.Now().Format(time.RFC3339),
			"expiresIn": int(middleware.AdminSessionTTL.Seconds()),
		},
	})
}
