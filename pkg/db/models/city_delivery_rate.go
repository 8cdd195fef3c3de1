package models

import (
	"time"

	"github.com/mokolo-market/mokolo-backend/pkg/enums"
)

// CityDeliveryRate is the per-city delivery fee table. Cities without a row
// fall back to the configured default fee.
type CityDeliveryRate struct {
	City      enums.City `gorm:"column:city;type:text;primaryKey"`
	FeeXAF    int        `gorm:"column:fee_xaf;not null"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
