package checkout

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
)

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:checkout_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = db.AutoMigrate(
		&models.Product{}, &models.InventoryItem{}, &models.CityDeliveryRate{},
		&models.Order{}, &models.OrderItem{}, &models.UserActivityLog{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(gormTxRunner{db: db}, NewRepository(db), orders.NewRepository(db), 1000, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func seedProduct(t *testing.T, db *gorm.DB, title string, priceXAF, stock int, active bool) models.Product {
	t.Helper()
	product := models.Product{
		VendorID:   uuid.New(),
		CategoryID: uuid.New(),
		Title:      title,
		Slug:       title + "-" + uuid.NewString()[:8],
		PriceXAF:   priceXAF,
		IsActive:   active,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	if err := db.Create(&models.InventoryItem{ProductID: product.ID, Quantity: stock}).Error; err != nil {
		t.Fatalf("seed inventory: %v", err)
	}
	return product
}

func TestExecuteCreatesOrderWithSnapshots(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	soap := seedProduct(t, db, "Savon de Marseille", 1500, 10, true)
	oil := seedProduct(t, db, "Huile de palme 1L", 2500, 4, true)
	if err := db.Create(&models.CityDeliveryRate{City: enums.CityDouala, FeeXAF: 1500}).Error; err != nil {
		t.Fatalf("seed rate: %v", err)
	}
	userID := uuid.New()

	view, err := svc.Execute(ctx, Input{
		UserID:        &userID,
		CustomerPhone: "+237670000001",
		City:          enums.CityDouala,
		Address:       "Bonapriso, Rue Njo-Njo",
		Items: []ItemInput{
			{ProductID: soap.ID, Qty: 2},
			{ProductID: oil.ID, Qty: 1},
		},
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	if view.SubtotalXAF != 2*1500+2500 {
		t.Fatalf("unexpected subtotal %d", view.SubtotalXAF)
	}
	if view.DeliveryFeeXAF != 1500 {
		t.Fatalf("expected douala rate 1500, got %d", view.DeliveryFeeXAF)
	}
	if view.TotalXAF != view.SubtotalXAF+view.DeliveryFeeXAF {
		t.Fatalf("total invariant broken: %+v", view)
	}
	if view.PaymentStatus != enums.PaymentStatusPending || view.FulfillmentStatus != enums.FulfillmentStatusPending {
		t.Fatalf("new order must start PENDING/PENDING: %+v", view)
	}
	if view.OrderNumber < 1000 {
		t.Fatalf("expected assigned order number, got %d", view.OrderNumber)
	}
	if len(view.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(view.Items))
	}

	var inv models.InventoryItem
	if err := db.First(&inv, "product_id = ?", soap.ID).Error; err != nil {
		t.Fatalf("load inventory: %v", err)
	}
	if inv.Quantity != 8 {
		t.Fatalf("stock not decremented, got %d", inv.Quantity)
	}

	var logs []models.UserActivityLog
	if err := db.Find(&logs, "user_id = ?", userID).Error; err != nil {
		t.Fatalf("load activity: %v", err)
	}
	if len(logs) != 1 || logs[0].Action != "order_created" {
		t.Fatalf("expected order_created activity, got %+v", logs)
	}
}

func TestExecuteFallsBackToDefaultFee(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	svc := newTestService(t, db)
	product := seedProduct(t, db, "Poivre de Penja", 4000, 5, true)

	view, err := svc.Execute(context.Background(), Input{
		CustomerPhone: "+237670000002",
		City:          enums.CityYaounde,
		Address:       "Mvan",
		Items:         []ItemInput{{ProductID: product.ID, Qty: 1}},
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if view.DeliveryFeeXAF != 1000 {
		t.Fatalf("expected default fee 1000, got %d", view.DeliveryFeeXAF)
	}
	if view.UserID != nil {
		t.Fatalf("guest order must have nil user id")
	}
}

func TestExecuteOversellRollsBackEverything(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	svc := newTestService(t, db)
	plenty := seedProduct(t, db, "Arachides 500g", 1000, 50, true)
	scarce := seedProduct(t, db, "Miel d'Oku", 8000, 1, true)

	_, err := svc.Execute(context.Background(), Input{
		CustomerPhone: "+237670000003",
		City:          enums.CityYaounde,
		Address:       "Nkolbisson",
		Items: []ItemInput{
			{ProductID: plenty.ID, Qty: 5},
			{ProductID: scarce.ID, Qty: 2},
		},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected stock conflict, got %v", err)
	}

	var inv models.InventoryItem
	if err := db.First(&inv, "product_id = ?", plenty.ID).Error; err != nil {
		t.Fatalf("load inventory: %v", err)
	}
	if inv.Quantity != 50 {
		t.Fatalf("decrement leaked on rollback: %d", inv.Quantity)
	}
	var count int64
	if err := db.Model(&models.Order{}).Count(&count).Error; err != nil {
		t.Fatalf("count orders: %v", err)
	}
	if count != 0 {
		t.Fatalf("order row leaked on rollback")
	}
}

func TestExecuteRejectsInactiveProduct(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	svc := newTestService(t, db)
	retired := seedProduct(t, db, "Ancien modele", 2000, 10, false)

	_, err := svc.Execute(context.Background(), Input{
		CustomerPhone: "+237670000004",
		City:          enums.CityDouala,
		Address:       "Bonaberi",
		Items:         []ItemInput{{ProductID: retired.ID, Qty: 1}},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	var inv models.InventoryItem
	if err := db.First(&inv, "product_id = ?", retired.ID).Error; err != nil {
		t.Fatalf("load inventory: %v", err)
	}
	if inv.Quantity != 10 {
		t.Fatalf("stock decrement leaked: %d", inv.Quantity)
	}
}

func TestExecuteRejectsUnknownProductAndCity(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	_, err := svc.Execute(ctx, Input{
		CustomerPhone: "+237670000005",
		City:          "BAFOUSSAM",
		Address:       "Centre",
		Items:         []ItemInput{{ProductID: uuid.New(), Qty: 1}},
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation for unknown city, got %v", err)
	}

	_, err = svc.Execute(ctx, Input{
		CustomerPhone: "+237670000005",
		City:          enums.CityYaounde,
		Address:       "Centre",
		Items:         []ItemInput{{ProductID: uuid.New(), Qty: 1}},
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for unknown product, got %v", err)
	}
}

func TestExecuteUnknownProductBesideRealOneLeavesStockAlone(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	svc := newTestService(t, db)
	real := seedProduct(t, db, "Poivre de Penja", 3000, 8, true)

	_, err := svc.Execute(context.Background(), Input{
		CustomerPhone: "+237670000006",
		City:          enums.CityYaounde,
		Address:       "Bastos",
		Items: []ItemInput{
			{ProductID: real.ID, Qty: 2},
			{ProductID: uuid.New(), Qty: 1},
		},
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for unknown product, got %v", err)
	}

	var inv models.InventoryItem
	if err := db.First(&inv, "product_id = ?", real.ID).Error; err != nil {
		t.Fatalf("load inventory: %v", err)
	}
	if inv.Quantity != 8 {
		t.Fatalf("stock decrement leaked: %d", inv.Quantity)
	}
}
