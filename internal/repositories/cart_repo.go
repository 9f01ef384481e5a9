package repositories

import (
	"context"
	"time"

	"meeplemart/internal/models"

	"github.com/google/uuid"
)

type CartRepository interface {
	Upsert(ctx context.Context, item *models.CartItem) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*models.CartItem, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.CartItemDetail, error)
	UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int) error
	Delete(ctx context.Context, id uuid.UUID) error
	ClearUser(ctx context.Context, userID uuid.UUID) error
	DeleteStale(ctx context.Context, olderThan time.Time) (int64, error)
}

type cartRepo struct {
	db Database
}

func NewCartRepo(db Database) CartRepository {
	return &cartRepo{db: db}
}

// Upsert adds a product to the cart, incrementing quantity when the product
// is already there.
func (r *cartRepo) Upsert(ctx context.Context, item *models.CartItem) error {
	query := `
		INSERT INTO cart_items (id, user_id, product_id, quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = NOW()
	`
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	_, err := r.db.Exec(ctx, query, item.ID, item.UserID, item.ProductID, item.Quantity)
	return err
}

func (r *cartRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.CartItem, error) {
	item := &models.CartItem{}
	query := `SELECT id, user_id, product_id, quantity, created_at, updated_at FROM cart_items WHERE user_id = $1 AND id = $2`
	err := r.db.QueryRow(ctx, query, userID, id).Scan(
		&item.ID, &item.UserID, &item.ProductID, &item.Quantity, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *cartRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.CartItemDetail, error) {
	query := `
		SELECT c.id, c.user_id, c.product_id, c.quantity, c.created_at, c.updated_at,
		       p.id, p.name, p.slug, p.description, p.brand_id, p.price_cents, p.discount, p.stock, p.stars, p.created_at, p.updated_at
		FROM cart_items c
		JOIN products p ON p.id = c.product_id
		WHERE c.user_id = $1
		ORDER BY c.created_at ASC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.CartItemDetail
	for rows.Next() {
		item := &models.CartItemDetail{Product: &models.Product{}}
		p := item.Product
		if err := rows.Scan(
			&item.ID, &item.UserID, &item.ProductID, &item.Quantity, &item.CreatedAt, &item.UpdatedAt,
			&p.ID, &p.Name, &p.Slug, &p.Description, &p.BrandID, &p.PriceCents, &p.Discount, &p.Stock, &p.Stars, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *cartRepo) UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int) error {
	query := `UPDATE cart_items SET quantity = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id, quantity)
	return err
}

func (r *cartRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE id = $1`, id)
	return err
}

func (r *cartRepo) ClearUser(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID)
	return err
}

// DeleteStale removes cart rows untouched since olderThan. Used by the
// background sweep.
func (r *cartRepo) DeleteStale(ctx context.Context, olderThan time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE updated_at < $1`, olderThan)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
