package payments

import (
	"time"

	"github.com/google/uuid"

	"github.com/mokolo-market/mokolo-backend/pkg/db/models"
	"github.com/mokolo-market/mokolo-backend/pkg/enums"
)

// InitInput starts a collection attempt against an order.
type InitInput struct {
	OrderID    uuid.UUID             `json:"order_id" validate:"required"`
	Provider   enums.PaymentProvider `json:"provider" validate:"required"`
	PayerPhone string                `json:"payer_phone" validate:"required"`
}

// Outcome is the provider's terminal answer for a collection.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailed  Outcome = "failed"
)

// ConfirmInput resolves a pending transaction.
type ConfirmInput struct {
	TransactionID uuid.UUID
	Outcome       Outcome
	RawPayload    map[string]any
}

// View is the serialized payment transaction.
type View struct {
	ID          uuid.UUID               `json:"id"`
	OrderID     uuid.UUID               `json:"order_id"`
	Provider    enums.PaymentProvider   `json:"provider"`
	Status      enums.TransactionStatus `json:"status"`
	AmountXAF   int                     `json:"amount_xaf"`
	PayerPhone  string                  `json:"payer_phone"`
	ExternalRef *string                 `json:"external_ref,omitempty"`
	CreatedAt   time.Time               `json:"created_at"`
}

// NewView projects the model into its API shape.
func NewView(tx *models.PaymentTransaction) *View {
	if tx == nil {
		return nil
	}
	return &View{
		ID:          tx.ID,
		OrderID:     tx.OrderID,
		Provider:    tx.Provider,
		Status:      tx.Status,
		AmountXAF:   tx.AmountXAF,
		PayerPhone:  tx.PayerPhone,
		ExternalRef: tx.ExternalRef,
		CreatedAt:   tx.CreatedAt,
	}
}
