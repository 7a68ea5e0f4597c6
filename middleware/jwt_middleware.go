// middleware/jwt_middleware.go
package middleware

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
)

// AdminSessionTTL bounds how long a dashboard session token stays valid.
const AdminSessionTTL = 24 * time.Hour

// AdminClaims for the admin session token. The token is signed, so the
// dashboard cannot forge its own session by editing client-side state.
type AdminClaims struct {
	Role      string `json:"role"`
	SessionID string `json:"sessionId"`
	jwt.StandardClaims
}

// Valid implements the Claims interface for Echo's JWT middleware.
func (c AdminClaims) Valid() error {
	if c.ExpiresAt > 0 && time.Now().Unix() > c.ExpiresAt {
		return errors.New("token is expired")
	}

	if c.NotBefore > 0 && time.Now().Unix() < c.NotBefore {
		return errors.New("token used before valid")
	}

	if c.Role != "admin" {
		return errors.New("not an admin token")
	}

	return nil
}

// GetJWTSecret returns the JWT secret from environment variables
func GetJWTSecret() (string, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return "", errors.New("JWT_SECRET environment variable is required")
	}
	return secret, nil
}

// GenerateAdminToken issues a signed session token for the admin dashboard.
func GenerateAdminToken() (string, error) {
	secret, err := GetJWTSecret()
	if err != nil {
		return "", err
	}

	claims := &AdminClaims{
		Role:      "admin",
		SessionID: uuid.NewString(),
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  time.Now().Unix(),
			ExpiresAt: time.Now().Add(AdminSessionTTL).Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// JWTMiddleware protects admin-only routes.
func JWTMiddleware() echo.MiddlewareFunc {
	secret, err := GetJWTSecret()
	if err != nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				return echo.NewHTTPError(echo.ErrUnauthorized.Code, "JWT configuration error")
			}
		}
	}

	return echoMiddleware.JWTWithConfig(echoMiddleware.JWTConfig{
		SigningKey: []byte(secret),
		Claims:     &AdminClaims{},
		SuccessHandler: func(c echo.Context) {
			user := c.Get("user").(*jwt.Token)
			claims := user.Claims.(*AdminClaims)
			c.Set("sessionId", claims.SessionID)
		},
		ErrorHandler: func(err error) error {
			return echo.NewHTTPError(echo.ErrUnauthorized.Code, "Invalid or expired token")
		},
	})
}
