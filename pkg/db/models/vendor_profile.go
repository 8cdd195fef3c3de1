package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mokolo-market/mokolo-backend/pkg/enums"
)

// VendorProfile holds the onboarding application and review state for a
// vendor account. One per user.
type VendorProfile struct {
	ID                  uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	UserID              uuid.UUID          `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	BusinessName        string             `gorm:"column:business_name;not null"`
	BusinessDescription string             `gorm:"column:business_description;not null;default:''"`
	Phone               string             `gorm:"column:phone;not null"`
	Address             string             `gorm:"column:address;not null"`
	City                string             `gorm:"column:city;not null"`
	IDDocument          *string            `gorm:"column:id_document"`
	Status              enums.VendorStatus `gorm:"column:status;type:text;not null;default:'PENDING'"`
	ApprovedAt          *time.Time         `gorm:"column:approved_at"`
	CreatedAt           time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// IsActive reports whether the vendor may sell.
func (v VendorProfile) IsActive() bool {
	return v.Status == enums.VendorStatusApproved
}
