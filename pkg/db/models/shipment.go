package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mokolo-market/mokolo-backend/pkg/enums"
)

// Shipment is the optional delivery record for an order, updated manually by
// couriers and support today.
type Shipment struct {
	ID           uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	OrderID      uuid.UUID            `gorm:"column:order_id;type:uuid;not null;uniqueIndex"`
	Status       enums.ShipmentStatus `gorm:"column:status;type:text;not null;default:'CREATED'"`
	CourierName  string               `gorm:"column:courier_name;not null;default:''"`
	CourierPhone string               `gorm:"column:courier_phone;not null;default:''"`
	RelayPoint   string               `gorm:"column:relay_point;not null;default:''"`
	Events       []ShipmentEvent      `gorm:"foreignKey:ShipmentID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// ShipmentEvent is one append-only entry in a shipment's timeline.
type ShipmentEvent struct {
	ID         uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	ShipmentID uuid.UUID            `gorm:"column:shipment_id;type:uuid;not null;index"`
	Status     enums.ShipmentStatus `gorm:"column:status;type:text;not null"`
	Message    string               `gorm:"column:message;not null;default:''"`
	Location   string               `gorm:"column:location;not null;default:''"`
	CreatedAt  time.Time            `gorm:"column:created_at;autoCreateTime"`
}
