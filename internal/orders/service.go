package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mokolo-market/mokolo-backend/pkg/db/models"
	"github.com/mokolo-market/mokolo-backend/pkg/enums"
	pkgerrors "github.com/mokolo-market/mokolo-backend/pkg/errors"
	"github.com/mokolo-market/mokolo-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// UpdateFulfillmentInput carries a fulfillment transition request.
type UpdateFulfillmentInput struct {
	OrderID uuid.UUID
	Target  enums.FulfillmentStatus
	Actor   Actor
}

// UpdatePaymentInput carries a payment transition request.
type UpdatePaymentInput struct {
	OrderID uuid.UUID
	Target  enums.PaymentStatus
	Actor   Actor
}

// Service defines order reads and the two guarded status writes.
type Service interface {
	Get(ctx context.Context, orderID uuid.UUID, actor *Actor) (*View, error)
	GetByNumber(ctx context.Context, number int64) (*View, error)
	ListMine(ctx context.Context, userID uuid.UUID, params pagination.Params, filters ListFilters) (*List, error)
	ListAll(ctx context.Context, params pagination.Params, filters ListFilters) (*List, error)
	History(ctx context.Context, orderID uuid.UUID) ([]AuditView, error)
	UpdateFulfillmentStatus(ctx context.Context, input UpdateFulfillmentInput) (*View, error)
	UpdatePaymentStatus(ctx context.Context, input UpdatePaymentInput) (*View, error)
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService builds the orders service.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) Get(ctx context.Context, orderID uuid.UUID, actor *Actor) (*View, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if !canRead(order, actor) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to caller")
	}
	return NewView(order), nil
}

// GetByNumber resolves an order by its human-facing number. Support staff
// work from the number customers quote, so this is mounted admin-only and
// skips the ownership check.
func (s *service) GetByNumber(ctx context.Context, number int64) (*View, error) {
	if number < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order number required")
	}
	order, err := s.repo.FindByOrderNumber(ctx, number)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return NewView(order), nil
}

// canRead allows admins everywhere, owners on their own orders, and anyone
// holding the id of a guest order (the uuid is the only credential a guest has).
func canRead(order *models.Order, actor *Actor) bool {
	if order.UserID == nil {
		return true
	}
	if actor == nil {
		return false
	}
	if actor.Role == enums.UserRoleAdmin {
		return true
	}
	return *order.UserID == actor.ID
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID, params pagination.Params, filters ListFilters) (*List, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	list, err := s.repo.ListByUser(ctx, userID, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return list, nil
}

func (s *service) ListAll(ctx context.Context, params pagination.Params, filters ListFilters) (*List, error) {
	list, err := s.repo.ListAll(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return list, nil
}

func (s *service) History(ctx context.Context, orderID uuid.UUID) ([]AuditView, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	audits, err := s.repo.ListStatusAudits(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list status audits")
	}
	views := make([]AuditView, 0, len(audits))
	for _, audit := range audits {
		views = append(views, AuditView{
			Field:     audit.Field,
			OldValue:  audit.OldValue,
			NewValue:  audit.NewValue,
			ActorRole: audit.ActorRole,
			CreatedAt: audit.CreatedAt,
		})
	}
	return views, nil
}

func (s *service) UpdateFulfillmentStatus(ctx context.Context, input UpdateFulfillmentInput) (*View, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !input.Target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown fulfillment status %q", input.Target))
	}
	if input.Actor.Role != enums.UserRoleVendor && input.Actor.Role != enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "fulfillment updates require a vendor or admin actor")
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByIDForUpdate(ctx, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		if !CanTransitionFulfillment(order.FulfillmentStatus, input.Target) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("fulfillment cannot move from %s to %s", order.FulfillmentStatus, input.Target))
		}
		// Unpaid orders only ever move to CANCELLED.
		if input.Target != enums.FulfillmentStatusCancelled && !order.IsPaid() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is not paid")
		}

		if err := repo.UpdateStatusFields(ctx, order.ID, map[string]any{
			"fulfillment_status": input.Target,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update fulfillment status")
		}
		if err := repo.CreateStatusAudit(ctx, &models.OrderStatusAudit{
			OrderID:   order.ID,
			Field:     models.AuditFieldFulfillmentStatus,
			OldValue:  order.FulfillmentStatus.String(),
			NewValue:  input.Target.String(),
			ActorID:   actorID(input.Actor),
			ActorRole: input.Actor.Role.String(),
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write status audit")
		}

		order.FulfillmentStatus = input.Target
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return NewView(updated), nil
}

func (s *service) UpdatePaymentStatus(ctx context.Context, input UpdatePaymentInput) (*View, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !input.Target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown payment status %q", input.Target))
	}
	// Money writes are reserved for admins and the payment confirmation path.
	if input.Actor.Role != enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "payment updates require an admin actor")
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByIDForUpdate(ctx, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		if err := ApplyPaymentTransition(ctx, repo, order, input.Target, input.Actor); err != nil {
			return err
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return NewView(updated), nil
}

// ApplyPaymentTransition validates and persists a payment-status move plus its
// audit row using the provided (transaction-bound) repository. The payments
// confirmation flow shares this path so the guard can never be bypassed.
func ApplyPaymentTransition(ctx context.Context, repo Repository, order *models.Order, target enums.PaymentStatus, actor Actor) error {
	if !CanTransitionPayment(order.PaymentStatus, target) {
		return pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("payment cannot move from %s to %s", order.PaymentStatus, target))
	}
	if err := repo.UpdateStatusFields(ctx, order.ID, map[string]any{
		"payment_status": target,
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update payment status")
	}
	if err := repo.CreateStatusAudit(ctx, &models.OrderStatusAudit{
		OrderID:   order.ID,
		Field:     models.AuditFieldPaymentStatus,
		OldValue:  order.PaymentStatus.String(),
		NewValue:  target.String(),
		ActorID:   actorID(actor),
		ActorRole: actor.Role.String(),
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write status audit")
	}
	order.PaymentStatus = target
	return nil
}

func actorID(actor Actor) *uuid.UUID {
	if actor.ID == uuid.Nil {
		return nil
	}
	id := actor.ID
	return &id
}
