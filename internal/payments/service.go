package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mokolo-market/mokolo-backend/internal/orders"
	"github.com/mokolo-market/mokolo-backend/pkg/db/models"
	"github.com/mokolo-market/mokolo-backend/pkg/enums"
	pkgerrors "github.com/mokolo-market/mokolo-backend/pkg/errors"
	"github.com/mokolo-market/mokolo-backend/pkg/momo"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type collector interface {
	Collect(ctx context.Context, req momo.CollectionRequest) (*momo.CollectionResult, error)
}

// Service drives the payment lifecycle for orders.
type Service interface {
	Init(ctx context.Context, input InitInput) (*View, error)
	Confirm(ctx context.Context, input ConfirmInput) (*View, error)
	Get(ctx context.Context, id uuid.UUID) (*View, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]View, error)
}

type service struct {
	repo       Repository
	ordersRepo orders.Repository
	tx         txRunner
	momo       collector
}

// NewService builds the payments service.
func NewService(repo Repository, ordersRepo orders.Repository, tx txRunner, momoClient collector) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("payments repository required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if momoClient == nil {
		return nil, fmt.Errorf("momo client required")
	}
	return &service{repo: repo, ordersRepo: ordersRepo, tx: tx, momo: momoClient}, nil
}

// Init creates a collection attempt for the order's full total and asks the
// provider to collect it. The transaction starts INITIATED and moves to
// PENDING once the provider accepts the request.
func (s *service) Init(ctx context.Context, input InitInput) (*View, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !input.Provider.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported provider %q", input.Provider))
	}
	if input.PayerPhone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payer phone required")
	}

	order, err := s.ordersRepo.FindByID(ctx, input.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.IsPaid() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is already paid")
	}
	if order.FulfillmentStatus == enums.FulfillmentStatusCancelled {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is cancelled")
	}

	tx, err := s.repo.Create(ctx, &models.PaymentTransaction{
		OrderID:    order.ID,
		Provider:   input.Provider,
		Status:     enums.TransactionStatusInitiated,
		AmountXAF:  order.TotalXAF,
		PayerPhone: input.PayerPhone,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create transaction")
	}

	result, err := s.momo.Collect(ctx, momo.CollectionRequest{
		Provider:   input.Provider,
		AmountXAF:  order.TotalXAF,
		PayerPhone: input.PayerPhone,
		Reference:  fmt.Sprintf("order-%d-tx-%s", order.OrderNumber, tx.ID),
	})
	if err != nil {
		// The attempt is kept as an audit trail of the failed collect call.
		_ = s.repo.Update(ctx, tx.ID, map[string]any{
			"status": enums.TransactionStatusFailed,
		})
		tx.Status = enums.TransactionStatusFailed
		return nil, err
	}

	updates := map[string]any{
		"status":       result.Status,
		"external_ref": result.ExternalRef,
		"raw_payload":  result.RawPayload,
	}
	if err := s.repo.Update(ctx, tx.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update transaction")
	}
	tx.Status = result.Status
	tx.ExternalRef = &result.ExternalRef
	tx.RawPayload = result.RawPayload
	return NewView(tx), nil
}

// Confirm resolves a transaction from a provider callback. It is idempotent:
// confirming an already-successful transaction with a success outcome is a
// no-op that returns the current state. The transaction status and the order's
// payment status move in one database transaction.
func (s *service) Confirm(ctx context.Context, input ConfirmInput) (*View, error) {
	if input.TransactionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction id required")
	}
	if input.Outcome != OutcomeSuccess && input.Outcome != OutcomeFailed {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown outcome %q", input.Outcome))
	}

	var resolved *models.PaymentTransaction
	err := s.tx.WithTx(ctx, func(dbtx *gorm.DB) error {
		repo := s.repo.WithTx(dbtx)
		ordersRepo := s.ordersRepo.WithTx(dbtx)

		tx, err := repo.FindByIDForUpdate(ctx, input.TransactionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load transaction")
		}

		if tx.Status == enums.TransactionStatusSuccess {
			if input.Outcome == OutcomeSuccess {
				resolved = tx
				return nil
			}
			return pkgerrors.New(pkgerrors.CodeStateConflict, "transaction already succeeded")
		}
		if tx.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("transaction is %s and cannot be confirmed", tx.Status))
		}

		target := enums.TransactionStatusSuccess
		if input.Outcome == OutcomeFailed {
			target = enums.TransactionStatusFailed
		}
		updates := map[string]any{"status": target}
		if input.RawPayload != nil {
			updates["raw_payload"] = input.RawPayload
		}
		if err := repo.Update(ctx, tx.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update transaction")
		}
		tx.Status = target

		order, err := ordersRepo.FindByIDForUpdate(ctx, tx.OrderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		switch target {
		case enums.TransactionStatusSuccess:
			if !order.IsPaid() {
				if err := orders.ApplyPaymentTransition(ctx, ordersRepo, order, enums.PaymentStatusPaid, orders.Actor{}); err != nil {
					return err
				}
			}
		case enums.TransactionStatusFailed:
			// A failed attempt never clobbers money already collected.
			if order.PaymentStatus == enums.PaymentStatusPending {
				if err := orders.ApplyPaymentTransition(ctx, ordersRepo, order, enums.PaymentStatusFailed, orders.Actor{}); err != nil {
					return err
				}
			}
		}

		resolved = tx
		return nil
	})
	if err != nil {
		return nil, err
	}
	return NewView(resolved), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*View, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction id required")
	}
	tx, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load transaction")
	}
	return NewView(tx), nil
}

func (s *service) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]View, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	rows, err := s.repo.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list transactions")
	}
	views := make([]View, 0, len(rows))
	for i := range rows {
		views = append(views, *NewView(&rows[i]))
	}
	return views, nil
}
