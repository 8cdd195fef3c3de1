package models

import (
	"time"

	"github.com/google/uuid"
)

// Status audit field names.
const (
	AuditFieldPaymentStatus     = "payment_status"
	AuditFieldFulfillmentStatus = "fulfillment_status"
)

// OrderStatusAudit records every status write on an order: which field moved,
// from what, to what, and who asked. Append-only.
type OrderStatusAudit struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	OrderID   uuid.UUID  `gorm:"column:order_id;type:uuid;not null;index"`
	Field     string     `gorm:"column:field;not null"`
	OldValue  string     `gorm:"column:old_value;not null"`
	NewValue  string     `gorm:"column:new_value;not null"`
	ActorID   *uuid.UUID `gorm:"column:actor_id;type:uuid"`
	ActorRole string     `gorm:"column:actor_role;not null;default:''"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
}
