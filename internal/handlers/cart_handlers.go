package handlers

import (
	"net/http"

	"meeplemart/internal/middleware"
	"meeplemart/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// CartHandlers handles the authenticated user's cart.
type CartHandlers struct {
	cartService services.CartService
}

func NewCartHandlers(cartService services.CartService) *CartHandlers {
	return &CartHandlers{cartService: cartService}
}

// AddItem handles POST /cart/items
func (h *CartHandlers) AddItem(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	}

	var req struct {
		ProductID string `json:"product_id"`
		Quantity  int    `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid product ID")
	}

	item, err := h.cartService.Add(c.Request().Context(), userID, productID, req.Quantity)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusCreated, item)
}

// ListItems handles GET /cart
func (h *CartHandlers) ListItems(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	}

	items, err := h.cartService.List(c.Request().Context(), userID)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"items": items,
		"count": len(items),
	})
}

// UpdateItem handles PUT /cart/items/:id
func (h *CartHandlers) UpdateItem(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	}
	itemID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := h.cartService.UpdateQuantity(c.Request().Context(), userID, itemID, req.Quantity); err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Quantity updated"})
}

// RemoveItem handles DELETE /cart/items/:id
func (h *CartHandlers) RemoveItem(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	}
	itemID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	if err := h.cartService.Remove(c.Request().Context(), userID, itemID); err != nil {
		return serviceError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Clear handles DELETE /cart
func (h *CartHandlers) Clear(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	}

	if err := h.cartService.Clear(c.Request().Context(), userID); err != nil {
		return serviceError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
