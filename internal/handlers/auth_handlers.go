package handlers

import (
	"net/http"

	"meeplemart/internal/services"

	"github.com/labstack/echo/v4"
)

// AuthHandlers handles registration, login and token lifecycle.
type AuthHandlers struct {
	authService services.AuthService
}

func NewAuthHandlers(authService services.AuthService) *AuthHandlers {
	return &AuthHandlers{authService: authService}
}

// Register handles POST /auth/register
func (h *AuthHandlers) Register(c echo.Context) error {
	var req services.RegisterParams
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	user, err := h.authService.Register(c.Request().Context(), req)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusCreated, user)
}

// Login handles POST /auth/login
func (h *AuthHandlers) Login(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	tokens, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, tokens)
}

// Refresh handles POST /auth/refresh
func (h *AuthHandlers) Refresh(c echo.Context) error {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Refresh token is required")
	}

	tokens, err := h.authService.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, tokens)
}

// Logout handles POST /auth/logout
func (h *AuthHandlers) Logout(c echo.Context) error {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Refresh token is required")
	}

	if err := h.authService.Logout(c.Request().Context(), req.RefreshToken); err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Logged out"})
}

// RequestPasswordReset handles POST /auth/password-reset
func (h *AuthHandlers) RequestPasswordReset(c echo.Context) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil || req.Email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Email is required")
	}

	if err := h.authService.RequestPasswordReset(c.Request().Context(), req.Email); err != nil {
		return serviceError(err)
	}
	// Same response whether or not the address exists.
	return c.JSON(http.StatusOK, map[string]string{"message": "If the address exists, a reset email has been sent"})
}

// ResetPassword handles POST /auth/password-reset/confirm
func (h *AuthHandlers) ResetPassword(c echo.Context) error {
	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil || req.Token == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Token is required")
	}

	if err := h.authService.ResetPassword(c.Request().Context(), req.Token, req.Password); err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Password updated"})
}
