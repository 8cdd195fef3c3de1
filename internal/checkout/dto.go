package checkout

import (
	"github.com/google/uuid"

	"github.com/mokolo-market/mokolo-backend/pkg/enums"
)

// ItemInput is one requested product/quantity pair.
type ItemInput struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Qty       int       `json:"qty" validate:"required,min=1"`
}

// Input carries everything needed to place an order. UserID is nil for guest
// checkout; contact fields are denormalized onto the order either way.
type Input struct {
	UserID        *uuid.UUID  `json:"-"`
	CustomerEmail *string     `json:"customer_email" validate:"omitempty,email"`
	CustomerPhone string      `json:"customer_phone" validate:"required"`
	City          enums.City  `json:"city" validate:"required"`
	Address       string      `json:"address" validate:"required"`
	Note          *string     `json:"note"`
	Items         []ItemInput `json:"items" validate:"required,min=1,dive"`
}
