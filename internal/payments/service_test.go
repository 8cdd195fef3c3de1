package payments

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mokolo-market/mokolo-backend/internal/orders"
	"github.com/mokolo-market/mokolo-backend/pkg/db/models"
	"github.com/mokolo-market/mokolo-backend/pkg/enums"
	pkgerrors "github.com/mokolo-market/mokolo-backend/pkg/errors"
	"github.com/mokolo-market/mokolo-backend/pkg/momo"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

type stubCollector struct {
	result *momo.CollectionResult
	err    error
	calls  int
	last   momo.CollectionRequest
}

func (c *stubCollector) Collect(_ context.Context, req momo.CollectionRequest) (*momo.CollectionResult, error) {
	c.calls++
	c.last = req
	if c.err != nil {
		return nil, c.err
	}
	return c.result, nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:payments_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Order{},
		&models.OrderItem{},
		&models.OrderStatusAudit{},
		&models.PaymentTransaction{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestService(t *testing.T, db *gorm.DB, c collector) Service {
	t.Helper()
	if c == nil {
		c = &stubCollector{result: &momo.CollectionResult{
			ExternalRef: "ref-1",
			Status:      enums.TransactionStatusPending,
		}}
	}
	svc, err := NewService(NewRepository(db), orders.NewRepository(db), gormTxRunner{db: db}, c)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func seedOrder(t *testing.T, db *gorm.DB, mutate func(*models.Order)) *models.Order {
	t.Helper()
	userID := uuid.New()
	order := &models.Order{
		UserID:            &userID,
		CustomerPhone:     "+237670000000",
		City:              enums.CityDouala,
		Address:           "Akwa, Rue Joffre",
		PaymentStatus:     enums.PaymentStatusPending,
		FulfillmentStatus: enums.FulfillmentStatusPending,
		SubtotalXAF:       8000,
		DeliveryFeeXAF:    1500,
		TotalXAF:          9500,
	}
	if mutate != nil {
		mutate(order)
	}
	created, err := orders.NewRepository(db).Create(context.Background(), order)
	if err != nil {
		t.Fatalf("seed order: %v", err)
	}
	return created
}

func seedTransaction(t *testing.T, db *gorm.DB, orderID uuid.UUID, status enums.TransactionStatus) *models.PaymentTransaction {
	t.Helper()
	tx, err := NewRepository(db).Create(context.Background(), &models.PaymentTransaction{
		OrderID:    orderID,
		Provider:   enums.PaymentProviderMTNMomo,
		Status:     status,
		AmountXAF:  9500,
		PayerPhone: "+237690000000",
	})
	if err != nil {
		t.Fatalf("seed transaction: %v", err)
	}
	return tx
}

func TestInitCreatesPendingTransactionForOrderTotal(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	c := &stubCollector{result: &momo.CollectionResult{
		ExternalRef: "momo-abc",
		Status:      enums.TransactionStatusPending,
		RawPayload:  map[string]any{"ok": true},
	}}
	svc := newTestService(t, db, c)
	order := seedOrder(t, db, nil)

	view, err := svc.Init(context.Background(), InitInput{
		OrderID:    order.ID,
		Provider:   enums.PaymentProviderOrangeMoney,
		PayerPhone: "+237690000000",
	})
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if view.Status != enums.TransactionStatusPending {
		t.Fatalf("expected PENDING, got %s", view.Status)
	}
	if view.AmountXAF != order.TotalXAF {
		t.Fatalf("expected amount %d, got %d", order.TotalXAF, view.AmountXAF)
	}
	if view.ExternalRef == nil || *view.ExternalRef != "momo-abc" {
		t.Fatalf("expected external ref momo-abc, got %v", view.ExternalRef)
	}
	if c.calls != 1 {
		t.Fatalf("expected one collect call, got %d", c.calls)
	}
	if c.last.AmountXAF != order.TotalXAF {
		t.Fatalf("collect requested %d, want %d", c.last.AmountXAF, order.TotalXAF)
	}
}

func TestInitRejectsPaidOrCancelledOrder(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	svc := newTestService(t, db, nil)

	paid := seedOrder(t, db, func(o *models.Order) { o.PaymentStatus = enums.PaymentStatusPaid })
	cancelled := seedOrder(t, db, func(o *models.Order) { o.FulfillmentStatus = enums.FulfillmentStatusCancelled })

	for _, orderID := range []uuid.UUID{paid.ID, cancelled.ID} {
		_, err := svc.Init(context.Background(), InitInput{
			OrderID:    orderID,
			Provider:   enums.PaymentProviderMTNMomo,
			PayerPhone: "+237690000000",
		})
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
			t.Fatalf("expected state conflict, got %v", err)
		}
	}
}

func TestInitMarksTransactionFailedWhenCollectFails(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	c := &stubCollector{err: pkgerrors.New(pkgerrors.CodeDependency, "provider unreachable")}
	svc := newTestService(t, db, c)
	order := seedOrder(t, db, nil)

	_, err := svc.Init(context.Background(), InitInput{
		OrderID:    order.ID,
		Provider:   enums.PaymentProviderMTNMomo,
		PayerPhone: "+237690000000",
	})
	if err == nil {
		t.Fatal("expected error")
	}

	rows, listErr := NewRepository(db).ListByOrder(context.Background(), order.ID)
	if listErr != nil {
		t.Fatalf("list: %v", listErr)
	}
	if len(rows) != 1 || rows[0].Status != enums.TransactionStatusFailed {
		t.Fatalf("expected one FAILED attempt, got %+v", rows)
	}
}

func TestConfirmSuccessMarksOrderPaidAtomically(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	svc := newTestService(t, db, nil)
	order := seedOrder(t, db, nil)
	tx := seedTransaction(t, db, order.ID, enums.TransactionStatusPending)

	view, err := svc.Confirm(context.Background(), ConfirmInput{
		TransactionID: tx.ID,
		Outcome:       OutcomeSuccess,
		RawPayload:    map[string]any{"provider_code": "00"},
	})
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if view.Status != enums.TransactionStatusSuccess {
		t.Fatalf("expected SUCCESS, got %s", view.Status)
	}

	fresh, err := orders.NewRepository(db).FindByID(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("reload order: %v", err)
	}
	if fresh.PaymentStatus != enums.PaymentStatusPaid {
		t.Fatalf("expected order PAID, got %s", fresh.PaymentStatus)
	}

	var audits []models.OrderStatusAudit
	if err := db.Where("order_id = ?", order.ID).Find(&audits).Error; err != nil {
		t.Fatalf("load audits: %v", err)
	}
	if len(audits) != 1 {
		t.Fatalf("expected one audit row, got %d", len(audits))
	}
}

func TestConfirmIsIdempotentForRepeatedSuccess(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	svc := newTestService(t, db, nil)
	order := seedOrder(t, db, nil)
	tx := seedTransaction(t, db, order.ID, enums.TransactionStatusPending)

	for i := 0; i < 3; i++ {
		view, err := svc.Confirm(context.Background(), ConfirmInput{
			TransactionID: tx.ID,
			Outcome:       OutcomeSuccess,
		})
		if err != nil {
			t.Fatalf("confirm %d: %v", i, err)
		}
		if view.Status != enums.TransactionStatusSuccess {
			t.Fatalf("confirm %d: expected SUCCESS, got %s", i, view.Status)
		}
	}

	var audits []models.OrderStatusAudit
	if err := db.Where("order_id = ?", order.ID).Find(&audits).Error; err != nil {
		t.Fatalf("load audits: %v", err)
	}
	if len(audits) != 1 {
		t.Fatalf("repeat confirms must not duplicate audits, got %d", len(audits))
	}
}

func TestConfirmFailedOutcomeOnSucceededTransactionConflicts(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	svc := newTestService(t, db, nil)
	order := seedOrder(t, db, func(o *models.Order) { o.PaymentStatus = enums.PaymentStatusPaid })
	tx := seedTransaction(t, db, order.ID, enums.TransactionStatusSuccess)

	_, err := svc.Confirm(context.Background(), ConfirmInput{
		TransactionID: tx.ID,
		Outcome:       OutcomeFailed,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}

	fresh, _ := orders.NewRepository(db).FindByID(context.Background(), order.ID)
	if fresh.PaymentStatus != enums.PaymentStatusPaid {
		t.Fatalf("paid order must stay PAID, got %s", fresh.PaymentStatus)
	}
}

func TestConfirmFailedOutcomeMovesPendingOrderToFailed(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	svc := newTestService(t, db, nil)
	order := seedOrder(t, db, nil)
	tx := seedTransaction(t, db, order.ID, enums.TransactionStatusPending)

	view, err := svc.Confirm(context.Background(), ConfirmInput{
		TransactionID: tx.ID,
		Outcome:       OutcomeFailed,
	})
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if view.Status != enums.TransactionStatusFailed {
		t.Fatalf("expected FAILED, got %s", view.Status)
	}

	fresh, _ := orders.NewRepository(db).FindByID(context.Background(), order.ID)
	if fresh.PaymentStatus != enums.PaymentStatusFailed {
		t.Fatalf("expected order FAILED, got %s", fresh.PaymentStatus)
	}
}

func TestConfirmFailedOutcomeNeverClobbersPaidOrder(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	svc := newTestService(t, db, nil)
	order := seedOrder(t, db, func(o *models.Order) { o.PaymentStatus = enums.PaymentStatusPaid })
	// A second, still-open attempt fails after another one already paid.
	tx := seedTransaction(t, db, order.ID, enums.TransactionStatusPending)

	view, err := svc.Confirm(context.Background(), ConfirmInput{
		TransactionID: tx.ID,
		Outcome:       OutcomeFailed,
	})
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if view.Status != enums.TransactionStatusFailed {
		t.Fatalf("expected FAILED attempt, got %s", view.Status)
	}

	fresh, _ := orders.NewRepository(db).FindByID(context.Background(), order.ID)
	if fresh.PaymentStatus != enums.PaymentStatusPaid {
		t.Fatalf("paid order must stay PAID, got %s", fresh.PaymentStatus)
	}
}

func TestConfirmCancelledTransactionConflicts(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	svc := newTestService(t, db, nil)
	order := seedOrder(t, db, nil)
	tx := seedTransaction(t, db, order.ID, enums.TransactionStatusCancelled)

	_, err := svc.Confirm(context.Background(), ConfirmInput{
		TransactionID: tx.ID,
		Outcome:       OutcomeSuccess,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestListByOrderReturnsAllAttempts(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	svc := newTestService(t, db, nil)
	order := seedOrder(t, db, nil)
	seedTransaction(t, db, order.ID, enums.TransactionStatusFailed)
	seedTransaction(t, db, order.ID, enums.TransactionStatusPending)

	views, err := svc.ListByOrder(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(views))
	}
}
