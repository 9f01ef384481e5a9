package models

import (
	"time"

	"github.com/google/uuid"
)

// ProductImage is one stored variant set: the uploaded original plus the
// three derived sizes. All four URLs are populated before the row is
// persisted; a row with a blank URL never reaches the database.
type ProductImage struct {
	ID          uuid.UUID `json:"id" db:"id"`
	ProductID   uuid.UUID `json:"product_id" db:"product_id"`
	URLOriginal string    `json:"url_original" db:"url_original"`
	URLLarge    string    `json:"url_large" db:"url_large"`
	URLMedium   string    `json:"url_medium" db:"url_medium"`
	URLSmall    string    `json:"url_small" db:"url_small"`
	AltText     string    `json:"alt_text" db:"alt_text"`
	SortIndex   int       `json:"sort_index" db:"sort_index"` // Display order, ascending; ties allowed
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// URLs returns the four blob locators in storage order (lg, md, sm, original).
func (i *ProductImage) URLs() []string {
	return []string{i.URLLarge, i.URLMedium, i.URLSmall, i.URLOriginal}
}
