package models

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:models_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	return conn
}

// Every model must be migratable on SQLite so service tests and local
// tooling can run without Postgres.
func TestAutoMigrateAllModelsOnSQLite(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	if err := db.AutoMigrate(
		&User{},
		&UserActivityLog{},
		&VendorProfile{},
		&Category{},
		&Product{},
		&ProductMedia{},
		&InventoryItem{},
		&CityDeliveryRate{},
		&Order{},
		&OrderItem{},
		&OrderStatusAudit{},
		&PaymentTransaction{},
		&Shipment{},
		&ShipmentEvent{},
		&ContactMessage{},
	); err != nil {
		t.Fatalf("migrate models: %v", err)
	}
}

func TestBeforeCreateAssignsID(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	if err := db.AutoMigrate(&User{}, &UserActivityLog{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	user := User{Email: "hooks@example.cm", PasswordHash: "x"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	if user.ID == uuid.Nil {
		t.Fatal("expected created user to get an id")
	}

	var found User
	if err := db.First(&found, "id = ?", user.ID).Error; err != nil {
		t.Fatalf("find user by assigned id: %v", err)
	}
	if found.Email != user.Email {
		t.Fatalf("expected %q, got %q", user.Email, found.Email)
	}
}

func TestBeforeCreateKeepsExplicitID(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	if err := db.AutoMigrate(&ContactMessage{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	id := uuid.New()
	msg := ContactMessage{ID: id, Name: "n", Email: "e@example.cm", Subject: "s", Message: "m"}
	if err := db.Create(&msg).Error; err != nil {
		t.Fatalf("create message: %v", err)
	}
	if msg.ID != id {
		t.Fatalf("expected id %s preserved, got %s", id, msg.ID)
	}
}
