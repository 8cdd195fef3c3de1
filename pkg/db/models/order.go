package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mokolo-market/mokolo-backend/pkg/enums"
)

// Order is a customer purchase and its two independent lifecycles: money
// (PaymentStatus) and delivery (FulfillmentStatus). Contact fields are
// denormalized at creation so the order stays readable if the account is
// later altered or removed. The monetary fields are a snapshot: total must
// equal subtotal+delivery fee at creation and is never recomputed.
type Order struct {
	ID                uuid.UUID               `gorm:"column:id;type:uuid;primaryKey"`
	OrderNumber       int64                   `gorm:"column:order_number;not null;uniqueIndex"`
	UserID            *uuid.UUID              `gorm:"column:user_id;type:uuid;index"`
	CustomerEmail     *string                 `gorm:"column:customer_email"`
	CustomerPhone     string                  `gorm:"column:customer_phone;not null"`
	City              enums.City              `gorm:"column:city;type:text;not null"`
	Address           string                  `gorm:"column:address;not null"`
	Note              *string                 `gorm:"column:note"`
	PaymentStatus     enums.PaymentStatus     `gorm:"column:payment_status;type:text;not null;default:'PENDING'"`
	FulfillmentStatus enums.FulfillmentStatus `gorm:"column:fulfillment_status;type:text;not null;default:'PENDING'"`
	SubtotalXAF       int                     `gorm:"column:subtotal_xaf;not null"`
	DeliveryFeeXAF    int                     `gorm:"column:delivery_fee_xaf;not null"`
	TotalXAF          int                     `gorm:"column:total_xaf;not null"`
	Items             []OrderItem             `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

// IsPaid reports whether money has been collected for the order.
func (o Order) IsPaid() bool {
	return o.PaymentStatus == enums.PaymentStatusPaid
}
