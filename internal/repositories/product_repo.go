package repositories

import (
	"context"
	"fmt"
	"strings"

	"meeplemart/internal/models"

	"github.com/google/uuid"
)

type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetBySlug(ctx context.Context, slug string) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	UpdateStock(ctx context.Context, id uuid.UUID, delta int) error
	UpdateStars(ctx context.Context, id uuid.UUID, stars float64) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, filter *models.ProductSearchFilter) ([]*models.Product, error)
	SetCategories(ctx context.Context, productID uuid.UUID, categoryIDs []uuid.UUID) error
	SetGameTypes(ctx context.Context, productID uuid.UUID, gameTypeIDs []uuid.UUID) error
	SetAudiences(ctx context.Context, productID uuid.UUID, audienceIDs []uuid.UUID) error
}

type productRepo struct {
	db Database
}

func NewProductRepo(db Database) ProductRepository {
	return &productRepo{db: db}
}

const productColumns = `id, name, slug, description, brand_id, price_cents, discount, stock, stars, created_at, updated_at`

func scanProduct(row interface{ Scan(dest ...any) error }) (*models.Product, error) {
	product := &models.Product{}
	err := row.Scan(&product.ID, &product.Name, &product.Slug, &product.Description, &product.BrandID,
		&product.PriceCents, &product.Discount, &product.Stock, &product.Stars, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (r *productRepo) Create(ctx context.Context, product *models.Product) error {
	query := `
		INSERT INTO products (id, name, slug, description, brand_id, price_cents, discount, stock, stars, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, product.ID, product.Name, product.Slug, product.Description,
		product.BrandID, product.PriceCents, product.Discount, product.Stock, product.Stars)
	return err
}

func (r *productRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	return scanProduct(r.db.QueryRow(ctx, query, id))
}

func (r *productRepo) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE slug = $1`
	return scanProduct(r.db.QueryRow(ctx, query, slug))
}

func (r *productRepo) Update(ctx context.Context, product *models.Product) error {
	query := `
		UPDATE products
		SET name = $2, slug = $3, description = $4, brand_id = $5, price_cents = $6, discount = $7, stock = $8, updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.db.Exec(ctx, query, product.ID, product.Name, product.Slug, product.Description,
		product.BrandID, product.PriceCents, product.Discount, product.Stock)
	return err
}

// UpdateStock adjusts stock by delta; the CHECK constraint on the column
// rejects a decrement below zero.
func (r *productRepo) UpdateStock(ctx context.Context, id uuid.UUID, delta int) error {
	query := `UPDATE products SET stock = stock + $2, updated_at = NOW() WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id, delta)
	return err
}

func (r *productRepo) UpdateStars(ctx context.Context, id uuid.UUID, stars float64) error {
	query := `UPDATE products SET stars = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id, stars)
	return err
}

func (r *productRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM products WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

var productOrderColumns = map[string]string{
	"price":      "p.price_cents",
	"created_at": "p.created_at",
	"updated_at": "p.updated_at",
	"name":       "p.name",
	"stars":      "p.stars",
}

func (r *productRepo) Search(ctx context.Context, filter *models.ProductSearchFilter) ([]*models.Product, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}

	var conditions []string
	var args []any
	argPos := 1

	addArg := func(v any) string {
		args = append(args, v)
		placeholder := fmt.Sprintf("$%d", argPos)
		argPos++
		return placeholder
	}

	if filter.Query != "" {
		p := addArg("%" + filter.Query + "%")
		conditions = append(conditions, fmt.Sprintf("(p.name ILIKE %s OR p.description ILIKE %s)", p, p))
	}
	if filter.Brand != "" {
		p := addArg(filter.Brand)
		conditions = append(conditions, fmt.Sprintf("p.brand_id IN (SELECT id FROM brands WHERE LOWER(name) = LOWER(%s))", p))
	}
	if len(filter.CategoryIDs) > 0 {
		p := addArg(filter.CategoryIDs)
		conditions = append(conditions, fmt.Sprintf("p.id IN (SELECT product_id FROM product_categories WHERE category_id = ANY(%s))", p))
	}
	if len(filter.GameTypes) > 0 {
		p := addArg(filter.GameTypes)
		conditions = append(conditions, fmt.Sprintf(
			"p.id IN (SELECT product_id FROM product_game_types pg JOIN game_types g ON g.id = pg.game_type_id WHERE g.name = ANY(%s))", p))
	}
	if len(filter.Audiences) > 0 {
		p := addArg(filter.Audiences)
		conditions = append(conditions, fmt.Sprintf(
			"p.id IN (SELECT product_id FROM product_audiences pa JOIN audiences a ON a.id = pa.audience_id WHERE a.name = ANY(%s))", p))
	}

	orderColumn, ok := productOrderColumns[filter.OrderBy]
	if !ok {
		orderColumn = "p.created_at"
	}
	direction := "ASC"
	if filter.Descending {
		direction = "DESC"
	}

	query := `SELECT p.id, p.name, p.slug, p.description, p.brand_id, p.price_cents, p.discount, p.stock, p.stars, p.created_at, p.updated_at FROM products p`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY %s %s LIMIT %s OFFSET %s", orderColumn, direction, addArg(filter.Limit), addArg(filter.Offset))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, rows.Err()
}

func (r *productRepo) SetCategories(ctx context.Context, productID uuid.UUID, categoryIDs []uuid.UUID) error {
	return r.replaceLinks(ctx, "product_categories", "category_id", productID, categoryIDs)
}

func (r *productRepo) SetGameTypes(ctx context.Context, productID uuid.UUID, gameTypeIDs []uuid.UUID) error {
	return r.replaceLinks(ctx, "product_game_types", "game_type_id", productID, gameTypeIDs)
}

func (r *productRepo) SetAudiences(ctx context.Context, productID uuid.UUID, audienceIDs []uuid.UUID) error {
	return r.replaceLinks(ctx, "product_audiences", "audience_id", productID, audienceIDs)
}

func (r *productRepo) replaceLinks(ctx context.Context, table, column string, productID uuid.UUID, ids []uuid.UUID) error {
	if _, err := r.db.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE product_id = $1", table), productID); err != nil {
		return err
	}
	for _, id := range ids {
		query := fmt.Sprintf("INSERT INTO %s (product_id, %s) VALUES ($1, $2) ON CONFLICT DO NOTHING", table, column)
		if _, err := r.db.Exec(ctx, query, productID, id); err != nil {
			return err
		}
	}
	return nil
}
