package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is a live catalog listing. Order items snapshot its title and price
// at purchase time, so later edits never rewrite order history.
type Product struct {
	ID          uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	VendorID    uuid.UUID      `gorm:"column:vendor_id;type:uuid;not null;index"`
	CategoryID  uuid.UUID      `gorm:"column:category_id;type:uuid;not null;index"`
	Title       string         `gorm:"column:title;not null"`
	Slug        string         `gorm:"column:slug;not null;uniqueIndex"`
	Description string         `gorm:"column:description;not null;default:''"`
	PriceXAF    int            `gorm:"column:price_xaf;not null"`
	IsActive    bool           `gorm:"column:is_active;not null;default:true"`
	Media       []ProductMedia `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Inventory   *InventoryItem `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
