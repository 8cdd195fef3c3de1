package models

import (
	"time"

	"github.com/google/uuid"
)

// Category is a catalog grouping. Parent is nil for top-level categories.
type Category struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Name      string     `gorm:"column:name;not null;uniqueIndex"`
	Slug      string     `gorm:"column:slug;not null;uniqueIndex"`
	IsActive  bool       `gorm:"column:is_active;not null;default:true"`
	ParentID  *uuid.UUID `gorm:"column:parent_id;type:uuid"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
