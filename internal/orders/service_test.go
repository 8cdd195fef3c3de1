package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mokolo-market/mokolo-backend/pkg/db/models"
	"github.com/mokolo-market/mokolo-backend/pkg/enums"
	pkgerrors "github.com/mokolo-market/mokolo-backend/pkg/errors"
	"github.com/mokolo-market/mokolo-backend/pkg/pagination"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:orders_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Order{}, &models.OrderItem{}, &models.OrderStatusAudit{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(db), gormTxRunner{db: db})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func seedOrder(t *testing.T, db *gorm.DB, mutate func(*models.Order)) *models.Order {
	t.Helper()
	userID := uuid.New()
	order := &models.Order{
		OrderNumber:       0,
		UserID:            &userID,
		CustomerPhone:     "+237670000000",
		City:              enums.CityYaounde,
		Address:           "Quartier Bastos",
		PaymentStatus:     enums.PaymentStatusPending,
		FulfillmentStatus: enums.FulfillmentStatusPending,
		SubtotalXAF:       4000,
		DeliveryFeeXAF:    1000,
		TotalXAF:          5000,
	}
	if mutate != nil {
		mutate(order)
	}
	created, err := NewRepository(db).Create(context.Background(), order)
	if err != nil {
		t.Fatalf("seed order: %v", err)
	}
	return created
}

func TestUpdateFulfillmentRequiresPaidOrder(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	svc := newTestService(t, db)
	order := seedOrder(t, db, nil)

	_, err := svc.UpdateFulfillmentStatus(context.Background(), UpdateFulfillmentInput{
		OrderID: order.ID,
		Target:  enums.FulfillmentStatusProcessing,
		Actor:   Actor{ID: uuid.New(), Role: enums.UserRoleAdmin},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict for unpaid order, got %v", err)
	}

	// Cancelling an unpaid order is the one allowed escape.
	view, err := svc.UpdateFulfillmentStatus(context.Background(), UpdateFulfillmentInput{
		OrderID: order.ID,
		Target:  enums.FulfillmentStatusCancelled,
		Actor:   Actor{ID: uuid.New(), Role: enums.UserRoleAdmin},
	})
	if err != nil {
		t.Fatalf("cancel unpaid: %v", err)
	}
	if view.FulfillmentStatus != enums.FulfillmentStatusCancelled {
		t.Fatalf("expected CANCELLED, got %s", view.FulfillmentStatus)
	}
}

func TestFulfillmentForwardChain(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	svc := newTestService(t, db)
	order := seedOrder(t, db, func(o *models.Order) {
		o.PaymentStatus = enums.PaymentStatusPaid
	})
	admin := Actor{ID: uuid.New(), Role: enums.UserRoleAdmin}
	ctx := context.Background()

	for _, target := range []enums.FulfillmentStatus{
		enums.FulfillmentStatusProcessing,
		enums.FulfillmentStatusShipped,
		enums.FulfillmentStatusDelivered,
	} {
		view, err := svc.UpdateFulfillmentStatus(ctx, UpdateFulfillmentInput{
			OrderID: order.ID, Target: target, Actor: admin,
		})
		if err != nil {
			t.Fatalf("advance to %s: %v", target, err)
		}
		if view.FulfillmentStatus != target {
			t.Fatalf("expected %s, got %s", target, view.FulfillmentStatus)
		}
	}

	// Delivered orders cannot go backwards.
	_, err := svc.UpdateFulfillmentStatus(ctx, UpdateFulfillmentInput{
		OrderID: order.ID, Target: enums.FulfillmentStatusShipped, Actor: admin,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected conflict moving DELIVERED back, got %v", err)
	}

	// But cancellation is still reachable from DELIVERED.
	if _, err := svc.UpdateFulfillmentStatus(ctx, UpdateFulfillmentInput{
		OrderID: order.ID, Target: enums.FulfillmentStatusCancelled, Actor: admin,
	}); err != nil {
		t.Fatalf("cancel delivered: %v", err)
	}

	// CANCELLED is terminal.
	_, err = svc.UpdateFulfillmentStatus(ctx, UpdateFulfillmentInput{
		OrderID: order.ID, Target: enums.FulfillmentStatusProcessing, Actor: admin,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected terminal CANCELLED, got %v", err)
	}
}

func TestUpdateFulfillmentActorRules(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	svc := newTestService(t, db)
	order := seedOrder(t, db, func(o *models.Order) {
		o.PaymentStatus = enums.PaymentStatusPaid
	})

	_, err := svc.UpdateFulfillmentStatus(context.Background(), UpdateFulfillmentInput{
		OrderID: order.ID,
		Target:  enums.FulfillmentStatusProcessing,
		Actor:   Actor{ID: uuid.New(), Role: enums.UserRoleCustomer},
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for customer actor, got %v", err)
	}
}

func TestUpdatePaymentStatusTransitions(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	svc := newTestService(t, db)
	admin := Actor{ID: uuid.New(), Role: enums.UserRoleAdmin}
	ctx := context.Background()

	order := seedOrder(t, db, nil)

	// PENDING -> FAILED -> PENDING -> PAID -> REFUNDED, then terminal.
	steps := []enums.PaymentStatus{
		enums.PaymentStatusFailed,
		enums.PaymentStatusPending,
		enums.PaymentStatusPaid,
		enums.PaymentStatusRefunded,
	}
	for _, target := range steps {
		view, err := svc.UpdatePaymentStatus(ctx, UpdatePaymentInput{
			OrderID: order.ID, Target: target, Actor: admin,
		})
		if err != nil {
			t.Fatalf("move to %s: %v", target, err)
		}
		if view.PaymentStatus != target {
			t.Fatalf("expected %s, got %s", target, view.PaymentStatus)
		}
	}

	_, err := svc.UpdatePaymentStatus(ctx, UpdatePaymentInput{
		OrderID: order.ID, Target: enums.PaymentStatusPending, Actor: admin,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected REFUNDED terminal, got %v", err)
	}
}

func TestUpdatePaymentStatusVendorForbidden(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	svc := newTestService(t, db)
	order := seedOrder(t, db, nil)

	_, err := svc.UpdatePaymentStatus(context.Background(), UpdatePaymentInput{
		OrderID: order.ID,
		Target:  enums.PaymentStatusPaid,
		Actor:   Actor{ID: uuid.New(), Role: enums.UserRoleVendor},
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for vendor actor, got %v", err)
	}
}

func TestStatusWritesAreAudited(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	svc := newTestService(t, db)
	admin := Actor{ID: uuid.New(), Role: enums.UserRoleAdmin}
	ctx := context.Background()
	order := seedOrder(t, db, nil)

	if _, err := svc.UpdatePaymentStatus(ctx, UpdatePaymentInput{
		OrderID: order.ID, Target: enums.PaymentStatusPaid, Actor: admin,
	}); err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if _, err := svc.UpdateFulfillmentStatus(ctx, UpdateFulfillmentInput{
		OrderID: order.ID, Target: enums.FulfillmentStatusProcessing, Actor: admin,
	}); err != nil {
		t.Fatalf("advance fulfillment: %v", err)
	}

	history, err := svc.History(ctx, order.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 audit rows, got %d", len(history))
	}
	if history[0].Field != models.AuditFieldPaymentStatus ||
		history[0].OldValue != "PENDING" || history[0].NewValue != "PAID" {
		t.Fatalf("unexpected first audit %+v", history[0])
	}
	if history[1].Field != models.AuditFieldFulfillmentStatus ||
		history[1].NewValue != "PROCESSING" {
		t.Fatalf("unexpected second audit %+v", history[1])
	}
}

func TestGetOwnership(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	order := seedOrder(t, db, nil)
	owner := Actor{ID: *order.UserID, Role: enums.UserRoleCustomer}
	stranger := Actor{ID: uuid.New(), Role: enums.UserRoleCustomer}
	admin := Actor{ID: uuid.New(), Role: enums.UserRoleAdmin}

	if _, err := svc.Get(ctx, order.ID, &owner); err != nil {
		t.Fatalf("owner read: %v", err)
	}
	if _, err := svc.Get(ctx, order.ID, &admin); err != nil {
		t.Fatalf("admin read: %v", err)
	}
	_, err := svc.Get(ctx, order.ID, &stranger)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for stranger, got %v", err)
	}

	// Guest orders are readable by id alone.
	guest := seedOrder(t, db, func(o *models.Order) { o.UserID = nil })
	if _, err := svc.Get(ctx, guest.ID, nil); err != nil {
		t.Fatalf("guest read: %v", err)
	}
}

func TestGetByNumber(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	order := seedOrder(t, db, nil)

	view, err := svc.GetByNumber(ctx, order.OrderNumber)
	if err != nil {
		t.Fatalf("get by number: %v", err)
	}
	if view.ID != order.ID {
		t.Fatalf("expected order %s, got %s", order.ID, view.ID)
	}

	_, err = svc.GetByNumber(ctx, order.OrderNumber+99)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for unknown number, got %v", err)
	}

	_, err = svc.GetByNumber(ctx, 0)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation for zero number, got %v", err)
	}
}

func TestListMinePaginates(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	userID := uuid.New()
	for i := 0; i < 3; i++ {
		seedOrder(t, db, func(o *models.Order) { o.UserID = &userID })
	}
	seedOrder(t, db, nil) // someone else's order

	page, err := svc.ListMine(ctx, userID, pagination.Params{Limit: 2}, ListFilters{})
	if err != nil {
		t.Fatalf("list mine: %v", err)
	}
	if len(page.Orders) != 2 || page.NextCursor == "" {
		t.Fatalf("expected 2 orders and a cursor, got %d %q", len(page.Orders), page.NextCursor)
	}

	rest, err := svc.ListMine(ctx, userID, pagination.Params{Limit: 2, Cursor: page.NextCursor}, ListFilters{})
	if err != nil {
		t.Fatalf("list rest: %v", err)
	}
	if len(rest.Orders) != 1 || rest.NextCursor != "" {
		t.Fatalf("expected final page of 1, got %d %q", len(rest.Orders), rest.NextCursor)
	}
}
