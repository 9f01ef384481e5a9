package handlers

import (
	"net/http"
	"strconv"

	"meeplemart/internal/middleware"
	"meeplemart/internal/services"

	"github.com/labstack/echo/v4"
)

// OrderHandlers handles checkout and order tracking.
type OrderHandlers struct {
	orderService services.OrderService
}

func NewOrderHandlers(orderService services.OrderService) *OrderHandlers {
	return &OrderHandlers{orderService: orderService}
}

// Checkout handles POST /orders
func (h *OrderHandlers) Checkout(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	}

	order, err := h.orderService.Checkout(c.Request().Context(), userID)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusCreated, order)
}

// GetOrder handles GET /orders/:id
func (h *OrderHandlers) GetOrder(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	}
	orderID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	order, err := h.orderService.GetByID(c.Request().Context(), userID, orderID)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, order)
}

// ListOrders handles GET /orders
func (h *OrderHandlers) ListOrders(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	}

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

	orders, err := h.orderService.ListByUser(c.Request().Context(), userID, limit, offset)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"orders": orders,
		"limit":  limit,
		"offset": offset,
	})
}

// UpdateOrderStatus handles PUT /orders/:id/status
func (h *OrderHandlers) UpdateOrderStatus(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	}
	orderID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil || req.Status == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Status is required")
	}

	if err := h.orderService.UpdateStatus(c.Request().Context(), userID, orderID, req.Status); err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Status updated"})
}

// CreatePaymentIntent handles POST /orders/:id/payment-intent
func (h *OrderHandlers) CreatePaymentIntent(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	}
	orderID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	intent, err := h.orderService.CreatePaymentIntent(c.Request().Context(), userID, orderID)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusCreated, intent)
}
