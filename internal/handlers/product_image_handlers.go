package handlers

import (
	"net/http"
	"strconv"

	"meeplemart/internal/services"

	"github.com/labstack/echo/v4"
)

const maxUploadBytes = 10 * 1024 * 1024

// ProductImageHandlers handles the image endpoints under a product.
type ProductImageHandlers struct {
	imageService services.ImageService
}

func NewProductImageHandlers(imageService services.ImageService) *ProductImageHandlers {
	return &ProductImageHandlers{imageService: imageService}
}

// UploadImage handles POST /admin/products/:id/images
func (h *ProductImageHandlers) UploadImage(c echo.Context) error {
	productID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	file, err := c.FormFile("image")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Image file is required")
	}
	if file.Size > maxUploadBytes {
		return echo.NewHTTPError(http.StatusBadRequest, "File size exceeds maximum limit of 10MB")
	}

	src, err := file.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to open image file")
	}
	defer src.Close()

	params := services.UploadParams{AltText: c.FormValue("alt_text")}
	if sortStr := c.FormValue("sort"); sortStr != "" {
		sort, err := strconv.Atoi(sortStr)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"sort": "must be an integer"})
		}
		params.SortOverride = &sort
	}

	image, err := h.imageService.Upload(c.Request().Context(), productID, file.Filename, src, params)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusCreated, image)
}

// ListImages handles GET /products/:id/images
func (h *ProductImageHandlers) ListImages(c echo.Context) error {
	productID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	images, err := h.imageService.List(c.Request().Context(), productID)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"images": images,
		"count":  len(images),
	})
}

// DeleteImage handles DELETE /admin/products/:id/images/:imageId
func (h *ProductImageHandlers) DeleteImage(c echo.Context) error {
	productID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	imageID, err := pathUUID(c, "imageId")
	if err != nil {
		return err
	}

	if err := h.imageService.Delete(c.Request().Context(), productID, imageID); err != nil {
		return serviceError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ReorderImages handles PUT /admin/products/:id/images/order
func (h *ProductImageHandlers) ReorderImages(c echo.Context) error {
	productID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	var req struct {
		Order []services.ImageOrder `json:"order"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if len(req.Order) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Order list is required")
	}

	if err := h.imageService.Reorder(c.Request().Context(), productID, req.Order); err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Order updated"})
}
