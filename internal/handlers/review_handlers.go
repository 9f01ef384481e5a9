package handlers

import (
	"net/http"

	"meeplemart/internal/middleware"
	"meeplemart/internal/models"
	"meeplemart/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ReviewHandlers handles product review endpoints.
type ReviewHandlers struct {
	reviewService services.ReviewService
}

func NewReviewHandlers(reviewService services.ReviewService) *ReviewHandlers {
	return &ReviewHandlers{reviewService: reviewService}
}

// CreateReview handles POST /products/:id/reviews
func (h *ReviewHandlers) CreateReview(c echo.Context) error {
	productID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	}

	var req struct {
		Rating  float64 `json:"rating"`
		Comment string  `json:"comment"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	review := &models.Review{
		ID:        uuid.New(),
		ProductID: productID,
		UserID:    userID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}
	if err := h.reviewService.Create(c.Request().Context(), review); err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusCreated, review)
}

// ListReviews handles GET /products/:id/reviews
func (h *ReviewHandlers) ListReviews(c echo.Context) error {
	productID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	reviews, err := h.reviewService.ListByProduct(c.Request().Context(), productID)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"reviews": reviews,
		"count":   len(reviews),
	})
}

// DeleteReview handles DELETE /admin/products/:id/reviews/:reviewId
func (h *ReviewHandlers) DeleteReview(c echo.Context) error {
	productID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	reviewID, err := pathUUID(c, "reviewId")
	if err != nil {
		return err
	}

	if err := h.reviewService.Delete(c.Request().Context(), productID, reviewID); err != nil {
		return serviceError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
