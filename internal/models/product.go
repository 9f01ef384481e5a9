package models

import (
	"time"

	"github.com/google/uuid"
)

// ProductSearchFilter holds search and filter criteria for catalog queries
type ProductSearchFilter struct {
	Query       string      `json:"query,omitempty"`        // Search across name and description
	Brand       string      `json:"brand,omitempty"`        // Filter by brand name (case-insensitive)
	CategoryIDs []uuid.UUID `json:"category_ids,omitempty"` // Filter by category ids
	GameTypes   []string    `json:"game_types,omitempty"`   // Filter by game type names
	Audiences   []string    `json:"audiences,omitempty"`    // Filter by audience names
	OrderBy     string      `json:"order_by,omitempty"`     // Sort field: price, created_at, updated_at, name
	Descending  bool        `json:"descending,omitempty"`
	Limit       int         `json:"limit,omitempty"`  // Page size (default: 20, max: 100)
	Offset      int         `json:"offset,omitempty"` // Page offset
}

type Product struct {
	ID          uuid.UUID   `json:"id" db:"id"`
	Name        string      `json:"name" db:"name"`
	Slug        string      `json:"slug" db:"slug"`
	Description string      `json:"description" db:"description"`
	BrandID     uuid.UUID   `json:"brand_id" db:"brand_id"`
	PriceCents  int64       `json:"price_cents" db:"price_cents"`
	Discount    float64     `json:"discount" db:"discount"` // Percentage discount, e.g. 15.00
	Stock       int         `json:"stock" db:"stock"`
	Stars       float64     `json:"stars" db:"stars"` // Average review rating
	CategoryIDs []uuid.UUID `json:"category_ids" db:"-"`
	GameTypeIDs []uuid.UUID `json:"game_type_ids" db:"-"`
	AudienceIDs []uuid.UUID `json:"audience_ids" db:"-"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"`
}

// DiscountedPriceCents applies the percentage discount, rounding down.
func (p *Product) DiscountedPriceCents() int64 {
	if p.Discount <= 0 {
		return p.PriceCents
	}
	return p.PriceCents - int64(float64(p.PriceCents)*p.Discount/100.0)
}
