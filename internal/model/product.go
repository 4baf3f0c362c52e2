package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxImages is the most stored images a single product can reference.
const MaxImages = 5

// Product represents a catalog product. ImageRefs holds public paths to
// stored images in display order, at most MaxImages of them.
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	CategoryID  int64           `json:"category_id"`
	Category    *Category       `json:"category,omitempty"`
	ImageRefs   []string        `json:"image_refs"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
