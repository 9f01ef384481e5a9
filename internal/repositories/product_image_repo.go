package repositories

import (
	"context"

	"meeplemart/internal/models"

	"github.com/google/uuid"
)

type ProductImageRepository interface {
	Create(ctx context.Context, image *models.ProductImage) error
	GetByID(ctx context.Context, productID, id uuid.UUID) (*models.ProductImage, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]*models.ProductImage, error)
	NextSortIndex(ctx context.Context, productID uuid.UUID) (int, error)
	UpdateSort(ctx context.Context, id uuid.UUID, sortIndex int) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAllByProduct(ctx context.Context, productID uuid.UUID) error
}

type productImageRepo struct {
	db Database
}

func NewProductImageRepo(db Database) ProductImageRepository {
	return &productImageRepo{db: db}
}

func (r *productImageRepo) Create(ctx context.Context, image *models.ProductImage) error {
	query := `
		INSERT INTO product_images (id, product_id, url_original, url_large, url_medium, url_small, alt_text, sort_index, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
	`
	if image.ID == uuid.Nil {
		image.ID = uuid.New()
	}
	_, err := r.db.Exec(ctx, query,
		image.ID, image.ProductID, image.URLOriginal, image.URLLarge, image.URLMedium, image.URLSmall, image.AltText, image.SortIndex)
	return err
}

// GetByID is product-scoped: an id that exists but belongs to another product
// is reported as not found, so delete and reorder can never act cross-product.
func (r *productImageRepo) GetByID(ctx context.Context, productID, id uuid.UUID) (*models.ProductImage, error) {
	query := `
		SELECT id, product_id, url_original, url_large, url_medium, url_small, alt_text, sort_index, created_at
		FROM product_images
		WHERE product_id = $1 AND id = $2
	`
	image := &models.ProductImage{}
	err := r.db.QueryRow(ctx, query, productID, id).Scan(
		&image.ID, &image.ProductID, &image.URLOriginal, &image.URLLarge, &image.URLMedium, &image.URLSmall,
		&image.AltText, &image.SortIndex, &image.CreatedAt)
	if err != nil {
		return nil, err
	}
	return image, nil
}

func (r *productImageRepo) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*models.ProductImage, error) {
	query := `
		SELECT id, product_id, url_original, url_large, url_medium, url_small, alt_text, sort_index, created_at
		FROM product_images
		WHERE product_id = $1
		ORDER BY sort_index ASC, created_at ASC
	`
	rows, err := r.db.Query(ctx, query, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []*models.ProductImage
	for rows.Next() {
		image := &models.ProductImage{}
		if err := rows.Scan(
			&image.ID, &image.ProductID, &image.URLOriginal, &image.URLLarge, &image.URLMedium, &image.URLSmall,
			&image.AltText, &image.SortIndex, &image.CreatedAt); err != nil {
			return nil, err
		}
		images = append(images, image)
	}
	return images, rows.Err()
}

// NextSortIndex returns max(sort_index)+1 for the product, or 1 when the
// product has no images. Not wrapped in a lock; concurrent uploads may tie,
// which only affects display order.
func (r *productImageRepo) NextSortIndex(ctx context.Context, productID uuid.UUID) (int, error) {
	query := `SELECT COALESCE(MAX(sort_index), 0) + 1 FROM product_images WHERE product_id = $1`
	var next int
	if err := r.db.QueryRow(ctx, query, productID).Scan(&next); err != nil {
		return 0, err
	}
	return next, nil
}

func (r *productImageRepo) UpdateSort(ctx context.Context, id uuid.UUID, sortIndex int) error {
	query := `UPDATE product_images SET sort_index = $2 WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id, sortIndex)
	return err
}

func (r *productImageRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM product_images WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *productImageRepo) DeleteAllByProduct(ctx context.Context, productID uuid.UUID) error {
	query := `DELETE FROM product_images WHERE product_id = $1`
	_, err := r.db.Exec(ctx, query, productID)
	return err
}
