package repositories

import (
	"context"

	"meeplemart/internal/models"

	"github.com/google/uuid"
)

type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

type orderRepo struct {
	db Database
}

func NewOrderRepo(db Database) OrderRepository {
	return &orderRepo{db: db}
}

// Create persists the order row and its items. Item rows carry the unit
// price at purchase time so later catalog price changes do not rewrite
// history.
func (r *orderRepo) Create(ctx context.Context, order *models.Order) error {
	query := `
		INSERT INTO orders (id, user_id, total_amount_cents, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
	`
	if _, err := r.db.Exec(ctx, query, order.ID, order.UserID, order.TotalAmountCents, order.Status); err != nil {
		return err
	}

	itemQuery := `
		INSERT INTO order_items (id, order_id, product_id, quantity, unit_price_cents)
		VALUES ($1, $2, $3, $4, $5)
	`
	for _, item := range order.Items {
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		item.OrderID = order.ID
		if _, err := r.db.Exec(ctx, itemQuery, item.ID, item.OrderID, item.ProductID, item.Quantity, item.UnitPriceCents); err != nil {
			return err
		}
	}
	return nil
}

func (r *orderRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Order, error) {
	order := &models.Order{}
	query := `SELECT id, user_id, total_amount_cents, status, created_at, updated_at FROM orders WHERE user_id = $1 AND id = $2`
	err := r.db.QueryRow(ctx, query, userID, id).Scan(
		&order.ID, &order.UserID, &order.TotalAmountCents, &order.Status, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return nil, err
	}

	items, err := r.listItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return order, nil
}

func (r *orderRepo) listItems(ctx context.Context, orderID uuid.UUID) ([]*models.OrderItem, error) {
	query := `SELECT id, order_id, product_id, quantity, unit_price_cents FROM order_items WHERE order_id = $1`
	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.OrderItem
	for rows.Next() {
		item := &models.OrderItem{}
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.UnitPriceCents); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *orderRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Order, error) {
	query := `
		SELECT id, user_id, total_amount_cents, status, created_at, updated_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order := &models.Order{}
		if err := rows.Scan(&order.ID, &order.UserID, &order.TotalAmountCents, &order.Status, &order.CreatedAt, &order.UpdatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, order := range orders {
		items, err := r.listItems(ctx, order.ID)
		if err != nil {
			return nil, err
		}
		order.Items = items
	}
	return orders, nil
}

func (r *orderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := `UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id, status)
	return err
}
