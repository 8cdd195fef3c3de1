package checkout

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mokolo-market/mokolo-backend/internal/checkout/reservation"
	"github.com/mokolo-market/mokolo-backend/internal/orders"
	"github.com/mokolo-market/mokolo-backend/pkg/db/models"
	"github.com/mokolo-market/mokolo-backend/pkg/enums"
	pkgerrors "github.com/mokolo-market/mokolo-backend/pkg/errors"
	"github.com/mokolo-market/mokolo-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type stockDecrementer interface {
	Decrement(ctx context.Context, tx *gorm.DB, lines []reservation.Line) error
}

type lockingDecrementer struct{}

func (lockingDecrementer) Decrement(ctx context.Context, tx *gorm.DB, lines []reservation.Line) error {
	return reservation.DecrementStock(ctx, tx, lines)
}

// Service places orders.
type Service interface {
	Execute(ctx context.Context, input Input) (*orders.View, error)
}

type service struct {
	tx             txRunner
	repo           Repository
	ordersRepo     orders.Repository
	stock          stockDecrementer
	defaultFeeXAF  int
	checkoutMetric *metrics.CheckoutMetrics
}

// NewService builds the checkout service. metrics may be nil.
func NewService(tx txRunner, repo Repository, ordersRepo orders.Repository, defaultFeeXAF int, m *metrics.CheckoutMetrics) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("checkout repository required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if defaultFeeXAF < 0 {
		return nil, fmt.Errorf("default delivery fee cannot be negative")
	}
	return &service{
		tx:             tx,
		repo:           repo,
		ordersRepo:     ordersRepo,
		stock:          lockingDecrementer{},
		defaultFeeXAF:  defaultFeeXAF,
		checkoutMetric: m,
	}, nil
}

// Execute validates the request, then inside one transaction locks and
// decrements stock, snapshots prices into an order, and records the audit
// trail. Any failure rolls the whole thing back.
func (s *service) Execute(ctx context.Context, input Input) (*orders.View, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	lines := make([]reservation.Line, 0, len(input.Items))
	qtyByProduct := make(map[uuid.UUID]int, len(input.Items))
	for _, item := range input.Items {
		lines = append(lines, reservation.Line{ProductID: item.ProductID, Qty: item.Qty})
		qtyByProduct[item.ProductID] += item.Qty
	}

	var created *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		ordersRepo := s.ordersRepo.WithTx(tx)

		// Products are resolved before stock is touched so an unknown or
		// retired listing reads as NOT_FOUND rather than a stock conflict.
		ids := make([]uuid.UUID, 0, len(qtyByProduct))
		for id := range qtyByProduct {
			ids = append(ids, id)
		}
		products, err := repo.FindProducts(ctx, ids)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
		}
		byID := make(map[uuid.UUID]models.Product, len(products))
		for _, p := range products {
			byID[p.ID] = p
		}

		subtotal := 0
		items := make([]models.OrderItem, 0, len(input.Items))
		for _, item := range input.Items {
			product, ok := byID[item.ProductID]
			if !ok {
				return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %s not found", item.ProductID))
			}
			if !product.IsActive {
				return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("product %q is not available", product.Title))
			}
			lineTotal := product.PriceXAF * item.Qty
			subtotal += lineTotal
			items = append(items, models.OrderItem{
				ProductID:        product.ID,
				TitleSnapshot:    product.Title,
				PriceXAFSnapshot: product.PriceXAF,
				Qty:              item.Qty,
				LineTotalXAF:     lineTotal,
			})
		}

		if err := s.stock.Decrement(ctx, tx, lines); err != nil {
			return err
		}

		fee, found, err := repo.FindDeliveryFee(ctx, input.City)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load delivery rate")
		}
		if !found {
			fee = s.defaultFeeXAF
		}

		order := &models.Order{
			UserID:            input.UserID,
			CustomerEmail:     input.CustomerEmail,
			CustomerPhone:     input.CustomerPhone,
			City:              input.City,
			Address:           input.Address,
			Note:              input.Note,
			PaymentStatus:     enums.PaymentStatusPending,
			FulfillmentStatus: enums.FulfillmentStatusPending,
			SubtotalXAF:       subtotal,
			DeliveryFeeXAF:    fee,
			TotalXAF:          subtotal + fee,
			Items:             items,
		}
		created, err = ordersRepo.Create(ctx, order)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		if input.UserID != nil {
			if err := repo.CreateActivityLog(ctx, &models.UserActivityLog{
				UserID:      *input.UserID,
				Action:      "order_created",
				Description: fmt.Sprintf("order #%d placed (%d XAF)", created.OrderNumber, created.TotalXAF),
			}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write activity log")
			}
		}
		return nil
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeConflict {
			s.checkoutMetric.IncStockConflict()
		}
		return nil, err
	}

	s.checkoutMetric.IncOrder(created.City.String(), created.TotalXAF)
	return orders.NewView(created), nil
}

func validateInput(input Input) error {
	if !input.City.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported city %q", input.City))
	}
	if input.CustomerPhone == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer phone required")
	}
	if input.Address == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "delivery address required")
	}
	if len(input.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one item required")
	}
	for _, item := range input.Items {
		if item.ProductID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "item product id required")
		}
		if item.Qty < 1 {
			return pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be at least 1")
		}
	}
	return nil
}
