package vendors

import (
	"time"

	"github.com/google/uuid"

	"github.com/mokolo-market/mokolo-backend/pkg/db/models"
	"github.com/mokolo-market/mokolo-backend/pkg/enums"
)

// ApplyInput is a customer's vendor application.
type ApplyInput struct {
	BusinessName        string  `json:"business_name" validate:"required"`
	BusinessDescription string  `json:"business_description"`
	Phone               string  `json:"phone" validate:"required"`
	Address             string  `json:"address" validate:"required"`
	City                string  `json:"city" validate:"required"`
	IDDocument          *string `json:"id_document,omitempty"`
}

// ProfileView is the serialized vendor profile.
type ProfileView struct {
	ID                  uuid.UUID          `json:"id"`
	UserID              uuid.UUID          `json:"user_id"`
	BusinessName        string             `json:"business_name"`
	BusinessDescription string             `json:"business_description"`
	Phone               string             `json:"phone"`
	Address             string             `json:"address"`
	City                string             `json:"city"`
	Status              enums.VendorStatus `json:"status"`
	ApprovedAt          *time.Time         `json:"approved_at,omitempty"`
	CreatedAt           time.Time          `json:"created_at"`
}

// NewProfileView projects the model into its API shape.
func NewProfileView(p *models.VendorProfile) *ProfileView {
	if p == nil {
		return nil
	}
	return &ProfileView{
		ID:                  p.ID,
		UserID:              p.UserID,
		BusinessName:        p.BusinessName,
		BusinessDescription: p.BusinessDescription,
		Phone:               p.Phone,
		Address:             p.Address,
		City:                p.City,
		Status:              p.Status,
		ApprovedAt:          p.ApprovedAt,
		CreatedAt:           p.CreatedAt,
	}
}

// Stats summarizes a vendor's footprint on the marketplace. RevenueXAF counts
// only line totals inside PAID orders.
type Stats struct {
	ProductCount int64 `json:"product_count"`
	OrderCount   int64 `json:"order_count"`
	RevenueXAF   int64 `json:"revenue_xaf"`
}

// OrderItemView is one of the vendor's own lines inside an order.
type OrderItemView struct {
	ID               uuid.UUID `json:"id"`
	ProductID        uuid.UUID `json:"product_id"`
	TitleSnapshot    string    `json:"title_snapshot"`
	PriceXAFSnapshot int       `json:"price_xaf_snapshot"`
	Qty              int       `json:"qty"`
	LineTotalXAF     int       `json:"line_total_xaf"`
}

// OrderView is the vendor-scoped projection of an order. Items are filtered
// to the vendor's own products and VendorTotalXAF is recomputed from that
// filtered set on every read; it is never stored. Other vendors' lines and
// the customer-wide total are not exposed.
type OrderView struct {
	OrderID           uuid.UUID               `json:"order_id"`
	OrderNumber       int64                   `json:"order_number"`
	City              enums.City              `json:"city"`
	Address           string                  `json:"address"`
	CustomerPhone     string                  `json:"customer_phone"`
	PaymentStatus     enums.PaymentStatus     `json:"payment_status"`
	FulfillmentStatus enums.FulfillmentStatus `json:"fulfillment_status"`
	Items             []OrderItemView         `json:"items"`
	VendorTotalXAF    int                     `json:"vendor_total_xaf"`
	CreatedAt         time.Time               `json:"created_at"`
}

// OrderList is one page of vendor-scoped orders.
type OrderList struct {
	Orders     []OrderView `json:"orders"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

// ListFilters narrows a vendor's order listing.
type ListFilters struct {
	PaymentStatus     *enums.PaymentStatus
	FulfillmentStatus *enums.FulfillmentStatus
}

func projectOrder(order *models.Order, items []models.OrderItem) *OrderView {
	view := &OrderView{
		OrderID:           order.ID,
		OrderNumber:       order.OrderNumber,
		City:              order.City,
		Address:           order.Address,
		CustomerPhone:     order.CustomerPhone,
		PaymentStatus:     order.PaymentStatus,
		FulfillmentStatus: order.FulfillmentStatus,
		Items:             make([]OrderItemView, 0, len(items)),
		CreatedAt:         order.CreatedAt,
	}
	for _, item := range items {
		view.Items = append(view.Items, OrderItemView{
			ID:               item.ID,
			ProductID:        item.ProductID,
			TitleSnapshot:    item.TitleSnapshot,
			PriceXAFSnapshot: item.PriceXAFSnapshot,
			Qty:              item.Qty,
			LineTotalXAF:     item.LineTotalXAF,
		})
		view.VendorTotalXAF += item.LineTotalXAF
	}
	return view
}
