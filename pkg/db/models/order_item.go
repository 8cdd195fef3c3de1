package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderItem is a priced, quantity-bound snapshot of one product inside one
// order. TitleSnapshot and PriceXAFSnapshot are copied at creation and never
// overwritten; LineTotalXAF is computed once as price*qty and stored.
type OrderItem struct {
	ID               uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	OrderID          uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID        uuid.UUID `gorm:"column:product_id;type:uuid;not null;index"`
	TitleSnapshot    string    `gorm:"column:title_snapshot;not null"`
	PriceXAFSnapshot int       `gorm:"column:price_xaf_snapshot;not null"`
	Qty              int       `gorm:"column:qty;not null"`
	LineTotalXAF     int       `gorm:"column:line_total_xaf;not null"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
