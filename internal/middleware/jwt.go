package middleware

import (
	"net/http"

	"meeplemart/internal/services"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

const (
	UserIDContextKey  = "user_id"
	IsAdminContextKey = "is_admin"
)

// JWT validates the bearer token and stashes the caller's identity on the
// echo context for handlers to pick up.
func JWT(jwtSecret string) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(jwtSecret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(services.Claims)
		},
		SuccessHandler: func(c echo.Context) {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return
			}
			claims, ok := token.Claims.(*services.Claims)
			if !ok {
				return
			}
			c.Set(UserIDContextKey, claims.UserID)
			c.Set(IsAdminContextKey, claims.IsAdmin)
		},
	})
}

// AdminOnly rejects requests whose token does not carry the admin flag.
// Must run after JWT.
func AdminOnly() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			isAdmin, _ := c.Get(IsAdminContextKey).(bool)
			if !isAdmin {
				return echo.NewHTTPError(http.StatusForbidden, "Admin access required")
			}
			return next(c)
		}
	}
}

// UserIDFromContext extracts the authenticated user's ID set by JWT.
func UserIDFromContext(c echo.Context) (uuid.UUID, bool) {
	userID, ok := c.Get(UserIDContextKey).(uuid.UUID)
	return userID, ok
}
