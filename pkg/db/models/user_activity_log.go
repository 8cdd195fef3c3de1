package models

import (
	"time"

	"github.com/google/uuid"
)

// UserActivityLog is an append-only audit row for account-level actions
// (login, order creation, admin bans). PerformedBy is nil when the user acted
// on their own behalf.
type UserActivityLog struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	UserID      uuid.UUID  `gorm:"column:user_id;type:uuid;not null;index"`
	Action      string     `gorm:"column:action;not null"`
	Description string     `gorm:"column:description;not null;default:''"`
	PerformedBy *uuid.UUID `gorm:"column:performed_by;type:uuid"`
	IPAddress   *string    `gorm:"column:ip_address"`
	UserAgent   *string    `gorm:"column:user_agent"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
}
