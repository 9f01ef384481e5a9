package handlers

import (
	"errors"
	"net/http"
	"strings"

	"meeplemart/internal/models"
	"meeplemart/internal/repositories"
	"meeplemart/internal/services"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
)

// CatalogHandlers handles categories, brands, game types and audiences.
type CatalogHandlers struct {
	categoryRepo repositories.CategoryRepository
	brandRepo    repositories.NamedEntityRepository
	gameTypeRepo repositories.NamedEntityRepository
	audienceRepo repositories.NamedEntityRepository
}

func NewCatalogHandlers(
	categoryRepo repositories.CategoryRepository,
	brandRepo repositories.NamedEntityRepository,
	gameTypeRepo repositories.NamedEntityRepository,
	audienceRepo repositories.NamedEntityRepository,
) *CatalogHandlers {
	return &CatalogHandlers{
		categoryRepo: categoryRepo,
		brandRepo:    brandRepo,
		gameTypeRepo: gameTypeRepo,
		audienceRepo: audienceRepo,
	}
}

// ListCategories handles GET /categories
func (h *CatalogHandlers) ListCategories(c echo.Context) error {
	categories, err := h.categoryRepo.List(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"categories": categories})
}

// CreateCategory handles POST /admin/categories
func (h *CatalogHandlers) CreateCategory(c echo.Context) error {
	var req struct {
		Name     string  `json:"name"`
		ParentID *string `json:"parent_id"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if strings.TrimSpace(req.Name) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Category name is required")
	}

	category := &models.Category{
		ID:   uuid.New(),
		Name: req.Name,
		Slug: services.Slugify(req.Name),
	}
	if req.ParentID != nil && *req.ParentID != "" {
		parentID, err := uuid.Parse(*req.ParentID)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid parent ID")
		}
		category.ParentID = &parentID
	}

	if err := h.categoryRepo.Create(c.Request().Context(), category); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, category)
}

// UpdateCategory handles PUT /admin/categories/:id
func (h *CatalogHandlers) UpdateCategory(c echo.Context) error {
	categoryID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if strings.TrimSpace(req.Name) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Category name is required")
	}

	category, err := h.categoryRepo.GetByID(c.Request().Context(), categoryID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return echo.NewHTTPError(http.StatusNotFound, "Category not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	category.Name = req.Name
	category.Slug = services.Slugify(req.Name)
	if err := h.categoryRepo.Update(c.Request().Context(), category); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, category)
}

// DeleteCategory handles DELETE /admin/categories/:id
func (h *CatalogHandlers) DeleteCategory(c echo.Context) error {
	categoryID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	if err := h.categoryRepo.Delete(c.Request().Context(), categoryID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// The brand, game type and audience endpoints share one shape.

func (h *CatalogHandlers) ListBrands(c echo.Context) error {
	return listNamed(c, h.brandRepo, "brands")
}

func (h *CatalogHandlers) CreateBrand(c echo.Context) error {
	return createNamed(c, h.brandRepo)
}

func (h *CatalogHandlers) DeleteBrand(c echo.Context) error {
	return deleteNamed(c, h.brandRepo)
}

func (h *CatalogHandlers) ListGameTypes(c echo.Context) error {
	return listNamed(c, h.gameTypeRepo, "game_types")
}

func (h *CatalogHandlers) CreateGameType(c echo.Context) error {
	return createNamed(c, h.gameTypeRepo)
}

func (h *CatalogHandlers) DeleteGameType(c echo.Context) error {
	return deleteNamed(c, h.gameTypeRepo)
}

func (h *CatalogHandlers) ListAudiences(c echo.Context) error {
	return listNamed(c, h.audienceRepo, "audiences")
}

func (h *CatalogHandlers) CreateAudience(c echo.Context) error {
	return createNamed(c, h.audienceRepo)
}

func (h *CatalogHandlers) DeleteAudience(c echo.Context) error {
	return deleteNamed(c, h.audienceRepo)
}

func listNamed(c echo.Context, repo repositories.NamedEntityRepository, field string) error {
	entities, err := repo.List(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{field: entities})
}

func createNamed(c echo.Context, repo repositories.NamedEntityRepository) error {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if strings.TrimSpace(req.Name) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Name is required")
	}

	id := uuid.New()
	if err := repo.Create(c.Request().Context(), id, req.Name); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{"id": id, "name": req.Name})
}

func deleteNamed(c echo.Context, repo repositories.NamedEntityRepository) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	if err := repo.Delete(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
