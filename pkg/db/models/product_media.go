package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mokolo-market/mokolo-backend/pkg/enums"
)

// ProductMedia stores an externally-hosted media URL for a product.
type ProductMedia struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	ProductID uuid.UUID       `gorm:"column:product_id;type:uuid;not null;index"`
	URL       string          `gorm:"column:url;not null"`
	Kind      enums.MediaKind `gorm:"column:kind;type:text;not null;default:'image'"`
	SortOrder int             `gorm:"column:sort_order;not null;default:0"`
	IsPrimary bool            `gorm:"column:is_primary;not null;default:false"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
