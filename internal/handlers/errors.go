package handlers

import (
	"errors"
	"log"
	"net/http"

	"meeplemart/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// serviceError maps service-layer errors onto HTTP responses so every
// handler reports the same shapes for the same failure classes.
func serviceError(err error) error {
	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{
			validationErr.Field: validationErr.Message,
		})
	}

	var reorderErr *services.ReorderValidationError
	if errors.As(err, &reorderErr) {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{
			"order": reorderErr.Error(),
		})
	}

	switch {
	case errors.Is(err, services.ErrProductNotFound),
		errors.Is(err, services.ErrImageNotFound),
		errors.Is(err, services.ErrBrandNotFound),
		errors.Is(err, services.ErrReviewNotFound),
		errors.Is(err, services.ErrCartItemNotFound),
		errors.Is(err, services.ErrOrderNotFound),
		errors.Is(err, services.ErrUserNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrCartEmpty),
		errors.Is(err, services.ErrInsufficientStock):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrEmailTaken):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrInvalidToken):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}

	// Everything else, including image decode failures, is a server-side
	// fault. Keep the detail in the log and out of the response body.
	log.Printf("Internal error: %v", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
}

// pathUUID parses a UUID path parameter and rejects malformed values.
func pathUUID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid UUID format")
	}
	return id, nil
}
