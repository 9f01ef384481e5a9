package services

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"meeplemart/internal/models"
	"meeplemart/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrImageNotFound   = errors.New("image not found")
)

// ValidationError carries a field-level message for 400 responses.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ReorderValidationError names the first image id in a reorder batch that
// does not belong to the target product.
type ReorderValidationError struct {
	ImageID uuid.UUID
}

func (e *ReorderValidationError) Error() string {
	return fmt.Sprintf("image %s does not belong to this product", e.ImageID)
}

// ImageOrder is one entry of a reorder batch.
type ImageOrder struct {
	ID   uuid.UUID `json:"id"`
	Sort int       `json:"sort"`
}

// UploadParams are the optional fields of an upload request.
type UploadParams struct {
	AltText      string
	SortOverride *int
}

const maxAltTextLen = 255

// ImageService orchestrates the product image pipeline: validate, derive
// variants, store blobs, persist metadata; and the best-effort delete and
// reorder paths.
type ImageService interface {
	Upload(ctx context.Context, productID uuid.UUID, filename string, r io.Reader, params UploadParams) (*models.ProductImage, error)
	List(ctx context.Context, productID uuid.UUID) ([]*models.ProductImage, error)
	Delete(ctx context.Context, productID, imageID uuid.UUID) error
	Reorder(ctx context.Context, productID uuid.UUID, orders []ImageOrder) error
}

type imageService struct {
	productRepo repositories.ProductRepository
	imageRepo   repositories.ProductImageRepository
	storage     ObjectStorage
	generator   VariantGenerator
	invalidator CDNInvalidator
	suffix      func() string // random hex suffix source, substitutable in tests
}

func NewImageService(
	productRepo repositories.ProductRepository,
	imageRepo repositories.ProductImageRepository,
	storage ObjectStorage,
	generator VariantGenerator,
	invalidator CDNInvalidator,
) ImageService {
	return &imageService{
		productRepo: productRepo,
		imageRepo:   imageRepo,
		storage:     storage,
		generator:   generator,
		invalidator: invalidator,
		suffix:      randomHexSuffix,
	}
}

// randomHexSuffix returns 4 random bytes hex-encoded. The suffix only has to
// avoid key collisions when the same filename is uploaded twice for one
// product; it carries no other meaning.
func randomHexSuffix() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return uuid.NewString()[:8]
	}
	return hex.EncodeToString(b)
}

// derivedKey builds products/{tag}/{productID}_{base}_{tag}_{suffix}.jpg.
func derivedKey(productID uuid.UUID, baseName, tag, suffix string) string {
	return fmt.Sprintf("products/%s/%s_%s_%s_%s%s", tag, productID, baseName, tag, suffix, DerivedExt)
}

// originalKey builds products/original/{productID}_{base}_original_{suffix}{ext},
// keeping the upload's own extension.
func originalKey(productID uuid.UUID, baseName, suffix, ext string) string {
	return fmt.Sprintf("products/original/%s_%s_original_%s%s", productID, baseName, suffix, ext)
}

func (s *imageService) Upload(ctx context.Context, productID uuid.UUID, filename string, r io.Reader, params UploadParams) (*models.ProductImage, error) {
	if len(params.AltText) > maxAltTextLen {
		return nil, &ValidationError{Field: "alt_text", Message: fmt.Sprintf("must be at most %d characters", maxAltTextLen)}
	}
	if params.SortOverride != nil && *params.SortOverride < 0 {
		return nil, &ValidationError{Field: "sort", Message: "must be non-negative"}
	}

	if _, err := s.productRepo.GetByID(ctx, productID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	variants, err := s.generator.Generate(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	ext := filepath.Ext(filename)
	baseName := strings.TrimSuffix(filepath.Base(filename), ext)
	if baseName == "" {
		baseName = "image"
	}

	// Derived variants go out first, then the untouched original. A failed
	// write aborts the upload; blobs already written stay behind (they are
	// invisible without a metadata row and reconciled out of band).
	urls := make(map[string]string, len(variants))
	for _, variant := range variants {
		key := derivedKey(productID, baseName, variant.Tag, s.suffix())
		storedKey, err := s.storage.Save(ctx, key, variant.Data, "image/jpeg")
		if err != nil {
			return nil, fmt.Errorf("failed to store %s variant: %w", variant.Tag, err)
		}
		urls[variant.Tag] = s.storage.URL(storedKey)
	}

	origKey := originalKey(productID, baseName, s.suffix(), ext)
	storedKey, err := s.storage.Save(ctx, origKey, data, http.DetectContentType(data))
	if err != nil {
		return nil, fmt.Errorf("failed to store original: %w", err)
	}
	urlOriginal := s.storage.URL(storedKey)

	sortIndex := 0
	if params.SortOverride != nil {
		sortIndex = *params.SortOverride
	} else {
		sortIndex, err = s.imageRepo.NextSortIndex(ctx, productID)
		if err != nil {
			return nil, fmt.Errorf("failed to compute sort index: %w", err)
		}
	}

	image := &models.ProductImage{
		ID:          uuid.New(),
		ProductID:   productID,
		URLOriginal: urlOriginal,
		URLLarge:    urls[SizeTagLarge],
		URLMedium:   urls[SizeTagMedium],
		URLSmall:    urls[SizeTagSmall],
		AltText:     params.AltText,
		SortIndex:   sortIndex,
	}
	if err := s.imageRepo.Create(ctx, image); err != nil {
		return nil, fmt.Errorf("failed to persist image metadata: %w", err)
	}
	return image, nil
}

func (s *imageService) List(ctx context.Context, productID uuid.UUID) ([]*models.ProductImage, error) {
	if _, err := s.productRepo.GetByID(ctx, productID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	return s.imageRepo.ListByProduct(ctx, productID)
}

// Delete removes the four backing blobs best-effort, always removes the
// metadata row, then purges the CDN paths of the blobs that were deleted.
// Storage and CDN failures are logged and swallowed; metadata is the source
// of truth and its deletion must not be blocked by either.
func (s *imageService) Delete(ctx context.Context, productID, imageID uuid.UUID) error {
	image, err := s.imageRepo.GetByID(ctx, productID, imageID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrImageNotFound
		}
		return fmt.Errorf("failed to load image: %w", err)
	}

	var pathsToInvalidate []string
	for _, blobURL := range image.URLs() {
		key := s.storage.KeyFromURL(blobURL)
		if key == "" {
			log.Printf("could not extract storage key from URL %q for image %s", blobURL, image.ID)
			continue
		}
		if err := s.storage.Delete(ctx, key); err != nil {
			log.Printf("failed to delete blob %s for image %s: %v", key, image.ID, err)
			continue
		}
		pathsToInvalidate = append(pathsToInvalidate, "/"+key)
	}

	if err := s.imageRepo.Delete(ctx, imageID); err != nil {
		return fmt.Errorf("failed to delete image metadata: %w", err)
	}

	if err := s.invalidator.Invalidate(ctx, pathsToInvalidate); err != nil {
		log.Printf("CDN invalidation failed for image %s: %v", image.ID, err)
	}
	return nil
}

// Reorder applies each pair in order. The first id not owned by the product
// aborts the batch with a validation error naming it; pairs already applied
// are not rolled back.
func (s *imageService) Reorder(ctx context.Context, productID uuid.UUID, orders []ImageOrder) error {
	for _, order := range orders {
		if order.Sort < 0 {
			return &ValidationError{Field: "sort", Message: "must be non-negative"}
		}
		if _, err := s.imageRepo.GetByID(ctx, productID, order.ID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return &ReorderValidationError{ImageID: order.ID}
			}
			return fmt.Errorf("failed to load image %s: %w", order.ID, err)
		}
		if err := s.imageRepo.UpdateSort(ctx, order.ID, order.Sort); err != nil {
			return fmt.Errorf("failed to update sort for image %s: %w", order.ID, err)
		}
	}
	return nil
}
