package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/mokolo-market/mokolo-backend/pkg/db/models"
	"github.com/mokolo-market/mokolo-backend/pkg/enums"
	"github.com/mokolo-market/mokolo-backend/pkg/pagination"
)

func TestCreateAssignsSequentialOrderNumbers(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	first := seedOrder(t, db, nil)
	second := seedOrder(t, db, nil)

	if first.OrderNumber != 1000 {
		t.Fatalf("expected first order number 1000, got %d", first.OrderNumber)
	}
	if second.OrderNumber != first.OrderNumber+1 {
		t.Fatalf("expected consecutive numbers, got %d then %d", first.OrderNumber, second.OrderNumber)
	}

	found, err := repo.FindByOrderNumber(ctx, second.OrderNumber)
	if err != nil {
		t.Fatalf("find by number: %v", err)
	}
	if found.ID != second.ID {
		t.Fatalf("wrong order for number %d", second.OrderNumber)
	}
}

func TestCreatePersistsItems(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	productID := uuid.New()
	order := &models.Order{
		CustomerPhone:     "+237690000000",
		City:              enums.CityDouala,
		Address:           "Akwa",
		PaymentStatus:     enums.PaymentStatusPending,
		FulfillmentStatus: enums.FulfillmentStatusPending,
		SubtotalXAF:       6000,
		DeliveryFeeXAF:    1500,
		TotalXAF:          7500,
		Items: []models.OrderItem{
			{ProductID: productID, TitleSnapshot: "Ndole spice mix", PriceXAFSnapshot: 3000, Qty: 2, LineTotalXAF: 6000},
		},
	}
	created, err := repo.Create(ctx, order)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	loaded, err := repo.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(loaded.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(loaded.Items))
	}
	item := loaded.Items[0]
	if item.TitleSnapshot != "Ndole spice mix" || item.LineTotalXAF != 6000 {
		t.Fatalf("snapshot not persisted: %+v", item)
	}
}

func TestListAllFilters(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seedOrder(t, db, func(o *models.Order) { o.PaymentStatus = enums.PaymentStatusPaid })
	seedOrder(t, db, nil)
	seedOrder(t, db, func(o *models.Order) { o.City = enums.CityDouala })

	paid := enums.PaymentStatusPaid
	list, err := repo.ListAll(ctx, paginationParams(10), ListFilters{PaymentStatus: &paid})
	if err != nil {
		t.Fatalf("list paid: %v", err)
	}
	if len(list.Orders) != 1 {
		t.Fatalf("expected 1 paid order, got %d", len(list.Orders))
	}

	douala := enums.CityDouala
	list, err = repo.ListAll(ctx, paginationParams(10), ListFilters{City: &douala})
	if err != nil {
		t.Fatalf("list douala: %v", err)
	}
	if len(list.Orders) != 1 || list.Orders[0].City != enums.CityDouala {
		t.Fatalf("unexpected douala list %+v", list.Orders)
	}
}

func paginationParams(limit int) pagination.Params {
	return pagination.Params{Limit: limit}
}
