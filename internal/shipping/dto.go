package shipping

import (
	"time"

	"github.com/google/uuid"

	"github.com/mokolo-market/mokolo-backend/pkg/db/models"
	"github.com/mokolo-market/mokolo-backend/pkg/enums"
)

// CreateInput opens the delivery record for an order.
type CreateInput struct {
	OrderID      uuid.UUID `json:"order_id" validate:"required"`
	CourierName  string    `json:"courier_name"`
	CourierPhone string    `json:"courier_phone"`
	RelayPoint   string    `json:"relay_point"`
}

// EventInput appends one entry to a shipment's timeline.
type EventInput struct {
	Status   enums.ShipmentStatus `json:"status" validate:"required"`
	Message  string               `json:"message"`
	Location string               `json:"location"`
}

// EventView is one timeline entry.
type EventView struct {
	ID        uuid.UUID            `json:"id"`
	Status    enums.ShipmentStatus `json:"status"`
	Message   string               `json:"message"`
	Location  string               `json:"location"`
	CreatedAt time.Time            `json:"created_at"`
}

// View is the serialized shipment with its full timeline.
type View struct {
	ID           uuid.UUID            `json:"id"`
	OrderID      uuid.UUID            `json:"order_id"`
	Status       enums.ShipmentStatus `json:"status"`
	CourierName  string               `json:"courier_name,omitempty"`
	CourierPhone string               `json:"courier_phone,omitempty"`
	RelayPoint   string               `json:"relay_point,omitempty"`
	Events       []EventView          `json:"events"`
	CreatedAt    time.Time            `json:"created_at"`
}

// NewView projects the model into its API shape.
func NewView(s *models.Shipment) *View {
	if s == nil {
		return nil
	}
	view := &View{
		ID:           s.ID,
		OrderID:      s.OrderID,
		Status:       s.Status,
		CourierName:  s.CourierName,
		CourierPhone: s.CourierPhone,
		RelayPoint:   s.RelayPoint,
		Events:       make([]EventView, 0, len(s.Events)),
		CreatedAt:    s.CreatedAt,
	}
	for _, e := range s.Events {
		view.Events = append(view.Events, EventView{
			ID:        e.ID,
			Status:    e.Status,
			Message:   e.Message,
			Location:  e.Location,
			CreatedAt: e.CreatedAt,
		})
	}
	return view
}
