package models

import (
	"time"

	"github.com/google/uuid"
)

// InventoryItem is the per-product stock counter. The checkout transaction is
// the only writer that decrements it, always under a row lock.
type InventoryItem struct {
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;primaryKey"`
	Quantity  int       `gorm:"column:quantity;not null;default:0"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
