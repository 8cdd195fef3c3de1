package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/mokolo-market/mokolo-backend/pkg/db/models"
	"github.com/mokolo-market/mokolo-backend/pkg/enums"
)

// Actor identifies who is asking for a status change.
type Actor struct {
	ID   uuid.UUID
	Role enums.UserRole
}

// ListFilters describe the inputs supported by the order lists.
type ListFilters struct {
	PaymentStatus     *enums.PaymentStatus
	FulfillmentStatus *enums.FulfillmentStatus
	City              *enums.City
	DateFrom          *time.Time
	DateTo            *time.Time
}

// ItemView is the serialized order line.
type ItemView struct {
	ID           uuid.UUID `json:"id"`
	ProductID    uuid.UUID `json:"product_id"`
	Title        string    `json:"title"`
	PriceXAF     int       `json:"price_xaf"`
	Qty          int       `json:"qty"`
	LineTotalXAF int       `json:"line_total_xaf"`
}

// View is the serialized order returned by the API.
type View struct {
	ID                uuid.UUID               `json:"id"`
	OrderNumber       int64                   `json:"order_number"`
	UserID            *uuid.UUID              `json:"user_id,omitempty"`
	CustomerEmail     *string                 `json:"customer_email,omitempty"`
	CustomerPhone     string                  `json:"customer_phone"`
	City              enums.City              `json:"city"`
	Address           string                  `json:"address"`
	Note              *string                 `json:"note,omitempty"`
	PaymentStatus     enums.PaymentStatus     `json:"payment_status"`
	FulfillmentStatus enums.FulfillmentStatus `json:"fulfillment_status"`
	SubtotalXAF       int                     `json:"subtotal_xaf"`
	DeliveryFeeXAF    int                     `json:"delivery_fee_xaf"`
	TotalXAF          int                     `json:"total_xaf"`
	Items             []ItemView              `json:"items"`
	CreatedAt         time.Time               `json:"created_at"`
}

// List wraps paginated orders plus the next page cursor.
type List struct {
	Orders     []View `json:"orders"`
	NextCursor string `json:"next_cursor,omitempty"`
}

// AuditView is one serialized status-audit row.
type AuditView struct {
	Field     string    `json:"field"`
	OldValue  string    `json:"old_value"`
	NewValue  string    `json:"new_value"`
	ActorRole string    `json:"actor_role,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewView projects the model into its API shape.
func NewView(order *models.Order) *View {
	if order == nil {
		return nil
	}
	items := make([]ItemView, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, ItemView{
			ID:           item.ID,
			ProductID:    item.ProductID,
			Title:        item.TitleSnapshot,
			PriceXAF:     item.PriceXAFSnapshot,
			Qty:          item.Qty,
			LineTotalXAF: item.LineTotalXAF,
		})
	}
	return &View{
		ID:                order.ID,
		OrderNumber:       order.OrderNumber,
		UserID:            order.UserID,
		CustomerEmail:     order.CustomerEmail,
		CustomerPhone:     order.CustomerPhone,
		City:              order.City,
		Address:           order.Address,
		Note:              order.Note,
		PaymentStatus:     order.PaymentStatus,
		FulfillmentStatus: order.FulfillmentStatus,
		SubtotalXAF:       order.SubtotalXAF,
		DeliveryFeeXAF:    order.DeliveryFeeXAF,
		TotalXAF:          order.TotalXAF,
		Items:             items,
		CreatedAt:         order.CreatedAt,
	}
}
