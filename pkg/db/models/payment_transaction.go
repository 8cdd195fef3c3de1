package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mokolo-market/mokolo-backend/pkg/enums"
)

// PaymentTransaction is one attempt to collect an order's total through a
// mobile-money provider. An order can carry several attempts; only a SUCCESS
// outcome advances the order to PAID. RawPayload keeps the opaque provider
// response for audit and debugging.
type PaymentTransaction struct {
	ID          uuid.UUID               `gorm:"column:id;type:uuid;primaryKey"`
	OrderID     uuid.UUID               `gorm:"column:order_id;type:uuid;not null;index"`
	Provider    enums.PaymentProvider   `gorm:"column:provider;type:text;not null"`
	Status      enums.TransactionStatus `gorm:"column:status;type:text;not null;default:'INITIATED'"`
	AmountXAF   int                     `gorm:"column:amount_xaf;not null"`
	PayerPhone  string                  `gorm:"column:payer_phone;not null"`
	ExternalRef *string                 `gorm:"column:external_ref"`
	RawPayload  map[string]any          `gorm:"column:raw_payload;type:jsonb;serializer:json"`
	CreatedAt   time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
