package catalog

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
	dsn := "file:catalog_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Category{},
		&models.Product{},
		&models.ProductMedia{},
		&models.InventoryItem{},
		&models.VendorProfile{},
		&models.OrderItem{},
	); err != nil {
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

func seedVendor(t *testing.T, db *gorm.DB, status enums.VendorStatus) uuid.UUID {
	t.Helper()
	userID := uuid.New()
	profile := &models.VendorProfile{
		UserID:       userID,
		BusinessName: "Shop " + uuid.NewString()[:8],
		Phone:        "+237690000000",
		Address:      "Marche Central",
		City:         "YAOUNDE",
		Status:       status,
	}
	if err := db.Create(profile).Error; err != nil {
		t.Fatalf("seed vendor: %v", err)
	}
	return userID
}

func seedCategory(t *testing.T, db *gorm.DB, name string) *models.Category {
	t.Helper()
	category := &models.Category{Name: name, Slug: slugify(name), IsActive: true}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}
	return category
}

func TestSlugify(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"Ndole Spice Mix":          "ndole-spice-mix",
		"  Wax Print -- Fabric  ":  "wax-print-fabric",
		"Telephone Portable 128Go": "telephone-portable-128go",
	}
	for input, want := range cases {
		if got := slugify(input); got != want {
			t.Fatalf("slugify(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestCreateProductRequiresApprovedVendor(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	svc := newTestService(t, db)
	category := seedCategory(t, db, "Food")
	pending := seedVendor(t, db, enums.VendorStatusPending)

	_, err := svc.CreateProduct(context.Background(), pending, CreateProductInput{
		CategoryID: category.ID,
		Title:      "Ndole Spice Mix",
		PriceXAF:   2500,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestCreateProductSetsSlugInventoryAndMedia(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	svc := newTestService(t, db)
	category := seedCategory(t, db, "Fabrics")
	vendor := seedVendor(t, db, enums.VendorStatusApproved)

	view, err := svc.CreateProduct(context.Background(), vendor, CreateProductInput{
		CategoryID:  category.ID,
		Title:       "Wax Print Fabric",
		Description: "6 yards",
		PriceXAF:    12000,
		InitialQty:  10,
		Media: []MediaInput{
			{URL: "https://cdn.example.cm/fabric-1.jpg", IsPrimary: true},
			{URL: "https://cdn.example.cm/fabric-2.jpg"},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if view.Slug != "wax-print-fabric" {
		t.Fatalf("expected slug wax-print-fabric, got %s", view.Slug)
	}
	if view.Quantity != 10 {
		t.Fatalf("expected quantity 10, got %d", view.Quantity)
	}
	if len(view.Media) != 2 {
		t.Fatalf("expected 2 media rows, got %d", len(view.Media))
	}
	if view.Media[0].Kind != enums.MediaKindImage {
		t.Fatalf("expected default image kind, got %s", view.Media[0].Kind)
	}
}

func TestCreateProductDisambiguatesDuplicateSlug(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	svc := newTestService(t, db)
	category := seedCategory(t, db, "Food")
	vendor := seedVendor(t, db, enums.VendorStatusApproved)

	first, err := svc.CreateProduct(context.Background(), vendor, CreateProductInput{
		CategoryID: category.ID, Title: "Penja Pepper", PriceXAF: 3000,
	})
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	second, err := svc.CreateProduct(context.Background(), vendor, CreateProductInput{
		CategoryID: category.ID, Title: "Penja Pepper", PriceXAF: 3500,
	})
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	if first.Slug == second.Slug {
		t.Fatalf("expected distinct slugs, both %q", first.Slug)
	}
}

func TestGetProductBySlugAndByID(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	svc := newTestService(t, db)
	category := seedCategory(t, db, "Electronics")
	vendor := seedVendor(t, db, enums.VendorStatusApproved)

	created, err := svc.CreateProduct(context.Background(), vendor, CreateProductInput{
		CategoryID: category.ID, Title: "Telephone Portable", PriceXAF: 85000,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	bySlug, err := svc.GetProduct(context.Background(), created.Slug)
	if err != nil {
		t.Fatalf("get by slug: %v", err)
	}
	byID, err := svc.GetProduct(context.Background(), created.ID.String())
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if bySlug.ID != byID.ID || bySlug.ID != created.ID {
		t.Fatal("slug and id lookups must resolve the same product")
	}
}

func TestGetProductHidesInactiveListings(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	svc := newTestService(t, db)
	category := seedCategory(t, db, "Food")
	vendor := seedVendor(t, db, enums.VendorStatusApproved)

	created, err := svc.CreateProduct(context.Background(), vendor, CreateProductInput{
		CategoryID: category.ID, Title: "Eru Bundle", PriceXAF: 1500,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	inactive := false
	if _, err := svc.UpdateProduct(context.Background(), vendor, created.ID, UpdateProductInput{IsActive: &inactive}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	_, err = svc.GetProduct(context.Background(), created.Slug)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for inactive product, got %v", err)
	}
}

func TestListProductsFiltersCategoryAndSearch(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	svc := newTestService(t, db)
	food := seedCategory(t, db, "Food")
	fabrics := seedCategory(t, db, "Fabrics")
	vendor := seedVendor(t, db, enums.VendorStatusApproved)

	mustCreate := func(categoryID uuid.UUID, title string) {
		t.Helper()
		if _, err := svc.CreateProduct(context.Background(), vendor, CreateProductInput{
			CategoryID: categoryID, Title: title, PriceXAF: 1000,
		}); err != nil {
			t.Fatalf("create %s: %v", title, err)
		}
	}
	mustCreate(food.ID, "Ndole Spice Mix")
	mustCreate(food.ID, "Penja Pepper")
	mustCreate(fabrics.ID, "Wax Print Fabric")

	list, err := svc.ListProducts(context.Background(), pagination.Params{}, ListFilters{CategoryID: &food.ID})
	if err != nil {
		t.Fatalf("list by category: %v", err)
	}
	if len(list.Products) != 2 {
		t.Fatalf("expected 2 food products, got %d", len(list.Products))
	}

	list, err = svc.ListProducts(context.Background(), pagination.Params{}, ListFilters{Search: "Pepper"})
	if err != nil {
		t.Fatalf("list by search: %v", err)
	}
	if len(list.Products) != 1 || list.Products[0].Title != "Penja Pepper" {
		t.Fatalf("expected only Penja Pepper, got %+v", list.Products)
	}
}

func TestListProductsPaginates(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	svc := newTestService(t, db)
	category := seedCategory(t, db, "Food")
	vendor := seedVendor(t, db, enums.VendorStatusApproved)

	for i := 0; i < 5; i++ {
		if _, err := svc.CreateProduct(context.Background(), vendor, CreateProductInput{
			CategoryID: category.ID,
			Title:      "Item " + uuid.NewString()[:8],
			PriceXAF:   1000,
		}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	seen := map[uuid.UUID]bool{}
	cursor := ""
	for {
		list, err := svc.ListProducts(context.Background(), pagination.Params{Limit: 2, Cursor: cursor}, ListFilters{})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		for _, p := range list.Products {
			if seen[p.ID] {
				t.Fatalf("product %s returned twice", p.ID)
			}
			seen[p.ID] = true
		}
		if list.NextCursor == "" {
			break
		}
		cursor = list.NextCursor
	}
	if len(seen) != 5 {
		t.Fatalf("expected 5 products across pages, got %d", len(seen))
	}
}

func TestDeleteProductProtectedByOrderReferences(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	svc := newTestService(t, db)
	category := seedCategory(t, db, "Food")
	vendor := seedVendor(t, db, enums.VendorStatusApproved)

	created, err := svc.CreateProduct(context.Background(), vendor, CreateProductInput{
		CategoryID: category.ID, Title: "Eru Bundle", PriceXAF: 1500,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	item := &models.OrderItem{
		OrderID:          uuid.New(),
		ProductID:        created.ID,
		TitleSnapshot:    created.Title,
		PriceXAFSnapshot: created.PriceXAF,
		Qty:              1,
		LineTotalXAF:     created.PriceXAF,
	}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("seed order item: %v", err)
	}

	err = svc.DeleteProduct(context.Background(), vendor, created.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestDeleteUnreferencedProduct(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	svc := newTestService(t, db)
	category := seedCategory(t, db, "Food")
	vendor := seedVendor(t, db, enums.VendorStatusApproved)

	created, err := svc.CreateProduct(context.Background(), vendor, CreateProductInput{
		CategoryID: category.ID, Title: "Koki Beans", PriceXAF: 800,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.DeleteProduct(context.Background(), vendor, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, err = svc.GetProduct(context.Background(), created.ID.String())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestVendorCannotTouchAnotherVendorsProduct(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	svc := newTestService(t, db)
	category := seedCategory(t, db, "Food")
	owner := seedVendor(t, db, enums.VendorStatusApproved)
	intruder := seedVendor(t, db, enums.VendorStatusApproved)

	created, err := svc.CreateProduct(context.Background(), owner, CreateProductInput{
		CategoryID: category.ID, Title: "Safou", PriceXAF: 500,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	err = svc.SetInventory(context.Background(), intruder, created.ID, 99)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestSetInventoryAndRestock(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	svc := newTestService(t, db)
	category := seedCategory(t, db, "Food")
	vendor := seedVendor(t, db, enums.VendorStatusApproved)

	created, err := svc.CreateProduct(context.Background(), vendor, CreateProductInput{
		CategoryID: category.ID, Title: "Plantain Chips", PriceXAF: 500, InitialQty: 3,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.SetInventory(context.Background(), vendor, created.ID, 20); err != nil {
		t.Fatalf("set inventory: %v", err)
	}
	if err := svc.Restock(context.Background(), vendor, created.ID, 5); err != nil {
		t.Fatalf("restock: %v", err)
	}

	view, err := svc.GetProduct(context.Background(), created.ID.String())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if view.Quantity != 25 {
		t.Fatalf("expected quantity 25, got %d", view.Quantity)
	}

	if err := svc.Restock(context.Background(), vendor, created.ID, 0); err == nil {
		t.Fatal("expected validation error for zero delta")
	}
}

func TestCreateCategoryRejectsDuplicates(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	svc := newTestService(t, db)

	if _, err := svc.CreateCategory(context.Background(), CreateCategoryInput{Name: "Food"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := svc.CreateCategory(context.Background(), CreateCategoryInput{Name: "Food"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}
