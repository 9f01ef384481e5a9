package models

import (
	"time"

	"github.com/google/uuid"
)

// Order statuses mirror the storefront fulfilment flow.
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

type Order struct {
	ID               uuid.UUID    `json:"id" db:"id"`
	UserID           uuid.UUID    `json:"user_id" db:"user_id"`
	TotalAmountCents int64        `json:"total_amount_cents" db:"total_amount_cents"`
	Status           string       `json:"status" db:"status"`
	Items            []*OrderItem `json:"items" db:"-"`
	CreatedAt        time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at" db:"updated_at"`
}

type OrderItem struct {
	ID             uuid.UUID `json:"id" db:"id"`
	OrderID        uuid.UUID `json:"order_id" db:"order_id"`
	ProductID      uuid.UUID `json:"product_id" db:"product_id"`
	Quantity       int       `json:"quantity" db:"quantity"`
	UnitPriceCents int64     `json:"unit_price_cents" db:"unit_price_cents"` // Price at time of purchase
}

// ValidStatusTransition reports whether an order may move between statuses.
// Cancellation is allowed from any non-terminal state.
func ValidStatusTransition(from, to string) bool {
	if from == to {
		return false
	}
	switch to {
	case OrderStatusCancelled:
		return from == OrderStatusPending || from == OrderStatusProcessing
	case OrderStatusProcessing:
		return from == OrderStatusPending
	case OrderStatusShipped:
		return from == OrderStatusProcessing
	case OrderStatusDelivered:
		return from == OrderStatusShipped
	}
	return false
}
