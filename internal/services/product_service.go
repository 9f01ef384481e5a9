package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"meeplemart/internal/caching"
	"meeplemart/internal/models"
	"meeplemart/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrBrandNotFound = errors.New("brand not found")

const productCacheTTL = 15 * time.Minute

type ProductService interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, filter *models.ProductSearchFilter) ([]*models.Product, error)
}

type productService struct {
	productRepo  repositories.ProductRepository
	brandRepo    repositories.NamedEntityRepository
	categoryRepo repositories.CategoryRepository
	imageService ImageService
	cacheService caching.CacheService
}

func NewProductService(
	productRepo repositories.ProductRepository,
	brandRepo repositories.NamedEntityRepository,
	categoryRepo repositories.CategoryRepository,
	imageService ImageService,
	cacheService caching.CacheService,
) ProductService {
	return &productService{
		productRepo:  productRepo,
		brandRepo:    brandRepo,
		categoryRepo: categoryRepo,
		imageService: imageService,
		cacheService: cacheService,
	}
}

var slugStripPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases and collapses non-alphanumeric runs to single hyphens.
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugStripPattern.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

func (s *productService) Create(ctx context.Context, product *models.Product) error {
	if strings.TrimSpace(product.Name) == "" {
		return &ValidationError{Field: "name", Message: "is required"}
	}
	if product.PriceCents <= 0 {
		return &ValidationError{Field: "price_cents", Message: "must be positive"}
	}
	if product.Stock < 0 {
		return &ValidationError{Field: "stock", Message: "cannot be negative"}
	}
	if product.Discount < 0 || product.Discount > 100 {
		return &ValidationError{Field: "discount", Message: "must be between 0 and 100"}
	}

	if _, err := s.brandRepo.GetByID(ctx, product.BrandID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrBrandNotFound
		}
		return fmt.Errorf("failed to load brand: %w", err)
	}

	if product.Slug == "" {
		product.Slug = Slugify(product.Name)
	}
	product.ID = uuid.New()

	if err := s.productRepo.Create(ctx, product); err != nil {
		return err
	}
	return s.saveLinks(ctx, product)
}

func (s *productService) saveLinks(ctx context.Context, product *models.Product) error {
	if err := s.productRepo.SetCategories(ctx, product.ID, product.CategoryIDs); err != nil {
		return fmt.Errorf("failed to set categories: %w", err)
	}
	if err := s.productRepo.SetGameTypes(ctx, product.ID, product.GameTypeIDs); err != nil {
		return fmt.Errorf("failed to set game types: %w", err)
	}
	if err := s.productRepo.SetAudiences(ctx, product.ID, product.AudienceIDs); err != nil {
		return fmt.Errorf("failed to set audiences: %w", err)
	}
	return nil
}

func (s *productService) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if cached, err := s.cacheService.GetProduct(ctx, id); cached != nil {
		return cached, nil
	} else if err != nil {
		// Cache errors must not fail the read path.
		log.Printf("cache error for product %s: %v", id, err)
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	if cacheErr := s.cacheService.SetProduct(ctx, product, productCacheTTL); cacheErr != nil {
		log.Printf("failed to cache product %s: %v", id, cacheErr)
	}
	return product, nil
}

func (s *productService) Update(ctx context.Context, product *models.Product) error {
	existing, err := s.productRepo.GetByID(ctx, product.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrProductNotFound
		}
		return err
	}
	if product.Slug == "" {
		if product.Name != existing.Name {
			product.Slug = Slugify(product.Name)
		} else {
			product.Slug = existing.Slug
		}
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return err
	}
	if err := s.saveLinks(ctx, product); err != nil {
		return err
	}

	if cacheErr := s.cacheService.DeleteProduct(ctx, product.ID); cacheErr != nil {
		log.Printf("failed to invalidate product cache %s: %v", product.ID, cacheErr)
	}
	return nil
}

// Delete removes the product and its images. Image blob removal is
// best-effort through the image pipeline; the catalog row goes regardless.
func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	images, err := s.imageService.List(ctx, id)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	for _, image := range images {
		if err := s.imageService.Delete(ctx, id, image.ID); err != nil {
			log.Printf("failed to delete image %s of product %s: %v", image.ID, id, err)
		}
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}
	if cacheErr := s.cacheService.DeleteProduct(ctx, id); cacheErr != nil {
		log.Printf("failed to invalidate product cache %s: %v", id, cacheErr)
	}
	return nil
}

func (s *productService) Search(ctx context.Context, filter *models.ProductSearchFilter) ([]*models.Product, error) {
	return s.productRepo.Search(ctx, filter)
}
