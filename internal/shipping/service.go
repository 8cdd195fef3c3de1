package shipping

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mokolo-market/mokolo-backend/pkg/db/models"
	"github.com/mokolo-market/mokolo-backend/pkg/enums"
	pkgerrors "github.com/mokolo-market/mokolo-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages delivery records and their timelines.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*View, error)
	AppendEvent(ctx context.Context, shipmentID uuid.UUID, input EventInput) (*View, error)
	TrackByOrder(ctx context.Context, orderID uuid.UUID) (*View, error)
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService builds the shipping service.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("shipping repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

// Create opens the delivery record. One shipment per order; a second create
// is a conflict.
func (s *service) Create(ctx context.Context, input CreateInput) (*View, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	if _, err := s.repo.FindOrder(ctx, input.OrderID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if _, err := s.repo.FindByOrderID(ctx, input.OrderID); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "order already has a shipment")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shipment")
	}

	var created *models.Shipment
	err := s.tx.WithTx(ctx, func(dbtx *gorm.DB) error {
		repo := s.repo.WithTx(dbtx)
		shipment, err := repo.Create(ctx, &models.Shipment{
			OrderID:      input.OrderID,
			Status:       enums.ShipmentStatusCreated,
			CourierName:  input.CourierName,
			CourierPhone: input.CourierPhone,
			RelayPoint:   input.RelayPoint,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create shipment")
		}
		_, err = repo.CreateEvent(ctx, &models.ShipmentEvent{
			ShipmentID: shipment.ID,
			Status:     enums.ShipmentStatusCreated,
			Message:    "shipment created",
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create event")
		}
		created = shipment
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, created.ID)
}

// AppendEvent records a timeline entry and mirrors its status onto the
// shipment. The timeline is append-only and deliberately unvalidated;
// couriers log out-of-order and corrective events as they happen.
func (s *service) AppendEvent(ctx context.Context, shipmentID uuid.UUID, input EventInput) (*View, error) {
	if shipmentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipment id required")
	}
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid shipment status %q", input.Status))
	}

	shipment, err := s.repo.FindByID(ctx, shipmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shipment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shipment")
	}

	err = s.tx.WithTx(ctx, func(dbtx *gorm.DB) error {
		repo := s.repo.WithTx(dbtx)
		_, err := repo.CreateEvent(ctx, &models.ShipmentEvent{
			ShipmentID: shipment.ID,
			Status:     input.Status,
			Message:    input.Message,
			Location:   input.Location,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create event")
		}
		if err := repo.UpdateStatus(ctx, shipment.ID, input.Status); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update status")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, shipment.ID)
}

func (s *service) TrackByOrder(ctx context.Context, orderID uuid.UUID) (*View, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	shipment, err := s.repo.FindByOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no shipment for this order")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shipment")
	}
	return NewView(shipment), nil
}

func (s *service) reload(ctx context.Context, id uuid.UUID) (*View, error) {
	shipment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload shipment")
	}
	return NewView(shipment), nil
}
