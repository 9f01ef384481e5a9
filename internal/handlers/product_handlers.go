package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"meeplemart/internal/models"
	"meeplemart/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ProductHandlers handles HTTP requests for the product catalog.
type ProductHandlers struct {
	productService services.ProductService
}

func NewProductHandlers(productService services.ProductService) *ProductHandlers {
	return &ProductHandlers{productService: productService}
}

type productRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	BrandID     string   `json:"brand_id"`
	PriceCents  int64    `json:"price_cents"`
	Discount    float64  `json:"discount"`
	Stock       int      `json:"stock"`
	CategoryIDs []string `json:"category_ids"`
	GameTypeIDs []string `json:"game_type_ids"`
	AudienceIDs []string `json:"audience_ids"`
}

func (req *productRequest) toModel() (*models.Product, error) {
	brandID, err := uuid.Parse(req.BrandID)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid brand ID")
	}

	product := &models.Product{
		Name:        req.Name,
		Description: req.Description,
		BrandID:     brandID,
		PriceCents:  req.PriceCents,
		Discount:    req.Discount,
		Stock:       req.Stock,
	}
	if product.CategoryIDs, err = parseUUIDs(req.CategoryIDs); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid category ID")
	}
	if product.GameTypeIDs, err = parseUUIDs(req.GameTypeIDs); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid game type ID")
	}
	if product.AudienceIDs, err = parseUUIDs(req.AudienceIDs); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid audience ID")
	}
	return product, nil
}

func parseUUIDs(raw []string) ([]uuid.UUID, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// CreateProduct handles POST /admin/products
func (h *ProductHandlers) CreateProduct(c echo.Context) error {
	var req productRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	product, err := req.toModel()
	if err != nil {
		return err
	}
	if err := h.productService.Create(c.Request().Context(), product); err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusCreated, product)
}

// GetProduct handles GET /products/:id
func (h *ProductHandlers) GetProduct(c echo.Context) error {
	productID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	product, err := h.productService.GetByID(c.Request().Context(), productID)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, product)
}

// UpdateProduct handles PUT /admin/products/:id
func (h *ProductHandlers) UpdateProduct(c echo.Context) error {
	productID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	var req productRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	product, err := req.toModel()
	if err != nil {
		return err
	}
	product.ID = productID
	if err := h.productService.Update(c.Request().Context(), product); err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, product)
}

// DeleteProduct handles DELETE /admin/products/:id
func (h *ProductHandlers) DeleteProduct(c echo.Context) error {
	productID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	if err := h.productService.Delete(c.Request().Context(), productID); err != nil {
		return serviceError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// SearchProducts handles GET /products
func (h *ProductHandlers) SearchProducts(c echo.Context) error {
	filter := &models.ProductSearchFilter{
		Query:      c.QueryParam("q"),
		Brand:      c.QueryParam("brand"),
		OrderBy:    c.QueryParam("order_by"),
		Descending: c.QueryParam("sort") == "desc",
		GameTypes:  splitParam(c.QueryParam("game_types")),
		Audiences:  splitParam(c.QueryParam("audiences")),
	}

	if raw := splitParam(c.QueryParam("category_ids")); len(raw) > 0 {
		ids, err := parseUUIDs(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid category ID")
		}
		filter.CategoryIDs = ids
	}

	if limitParam := c.QueryParam("limit"); limitParam != "" {
		if l, err := strconv.Atoi(limitParam); err == nil && l > 0 {
			filter.Limit = l
		}
	}
	if offsetParam := c.QueryParam("offset"); offsetParam != "" {
		if o, err := strconv.Atoi(offsetParam); err == nil && o >= 0 {
			filter.Offset = o
		}
	}

	products, err := h.productService.Search(c.Request().Context(), filter)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"products": products,
		"limit":    filter.Limit,
		"offset":   filter.Offset,
	})
}

func splitParam(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
