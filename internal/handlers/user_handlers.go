package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"meeplemart/internal/middleware"
	"meeplemart/internal/repositories"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
)

// UserHandlers handles profile endpoints.
type UserHandlers struct {
	userRepo repositories.UserRepository
}

func NewUserHandlers(userRepo repositories.UserRepository) *UserHandlers {
	return &UserHandlers{userRepo: userRepo}
}

// GetMe handles GET /users/me
func (h *UserHandlers) GetMe(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	}

	user, err := h.userRepo.GetByID(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateMe handles PUT /users/me
func (h *UserHandlers) UpdateMe(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	}

	var req struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	user, err := h.userRepo.GetByID(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	user.FirstName = req.FirstName
	user.LastName = req.LastName
	if err := h.userRepo.Update(c.Request().Context(), user); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, user)
}

// ListUsers handles GET /admin/users
func (h *UserHandlers) ListUsers(c echo.Context) error {
	limit := 20
	offset := 0
	if limitParam := c.QueryParam("limit"); limitParam != "" {
		if l, err := strconv.Atoi(limitParam); err == nil && l > 0 {
			limit = l
		}
	}
	if offsetParam := c.QueryParam("offset"); offsetParam != "" {
		if o, err := strconv.Atoi(offsetParam); err == nil && o >= 0 {
			offset = o
		}
	}

	users, err := h.userRepo.List(c.Request().Context(), limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"users":  users,
		"limit":  limit,
		"offset": offset,
	})
}
