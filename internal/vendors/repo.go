package vendors

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mokolo-market/mokolo-backend/pkg/db/models"
	"github.com/mokolo-market/mokolo-backend/pkg/enums"
	"github.com/mokolo-market/mokolo-backend/pkg/pagination"
)

// Repository defines persistence operations for vendor profiles and the
// vendor-scoped order projection.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateProfile(ctx context.Context, profile *models.VendorProfile) (*models.VendorProfile, error)
	FindProfileByID(ctx context.Context, id uuid.UUID) (*models.VendorProfile, error)
	FindProfileByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.VendorProfile, error)
	FindProfileByUserID(ctx context.Context, userID uuid.UUID) (*models.VendorProfile, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, updates map[string]any) error
	ListProfiles(ctx context.Context, status *enums.VendorStatus) ([]models.VendorProfile, error)

	FindUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateUserRole(ctx context.Context, userID uuid.UUID, role enums.UserRole) error

	ListVendorOrders(ctx context.Context, vendorID uuid.UUID, params pagination.Params, filters ListFilters) ([]models.Order, string, error)
	FindVendorOrder(ctx context.Context, vendorID, orderID uuid.UUID) (*models.Order, error)
	ListVendorItems(ctx context.Context, vendorID uuid.UUID, orderIDs []uuid.UUID) (map[uuid.UUID][]models.OrderItem, error)

	CountProducts(ctx context.Context, vendorID uuid.UUID) (int64, error)
	CountVendorOrders(ctx context.Context, vendorID uuid.UUID) (int64, error)
	SumPaidRevenue(ctx context.Context, vendorID uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a vendors repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateProfile(ctx context.Context, profile *models.VendorProfile) (*models.VendorProfile, error) {
	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		return nil, err
	}
	return profile, nil
}

func (r *repository) FindProfileByID(ctx context.Context, id uuid.UUID) (*models.VendorProfile, error) {
	var profile models.VendorProfile
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *repository) FindProfileByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.VendorProfile, error) {
	var profile models.VendorProfile
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *repository) FindProfileByUserID(ctx context.Context, userID uuid.UUID) (*models.VendorProfile, error) {
	var profile models.VendorProfile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *repository) UpdateProfile(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.VendorProfile{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) ListProfiles(ctx context.Context, status *enums.VendorStatus) ([]models.VendorProfile, error) {
	query := r.db.WithContext(ctx).Model(&models.VendorProfile{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	var profiles []models.VendorProfile
	if err := query.Order("created_at DESC").Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *repository) FindUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repository) UpdateUserRole(ctx context.Context, userID uuid.UUID, role enums.UserRole) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Update("role", role).Error
}

// vendorOrderIDs is the subquery selecting every order that contains at least
// one of the vendor's products.
func (r *repository) vendorOrderIDs(vendorID uuid.UUID) *gorm.DB {
	return r.db.
		Table("order_items").
		Select("order_items.order_id").
		Joins("JOIN products ON products.id = order_items.product_id").
		Where("products.vendor_id = ?", vendorID)
}

func (r *repository) ListVendorOrders(ctx context.Context, vendorID uuid.UUID, params pagination.Params, filters ListFilters) ([]models.Order, string, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id IN (?)", r.vendorOrderIDs(vendorID))
	if filters.PaymentStatus != nil {
		query = query.Where("payment_status = ?", *filters.PaymentStatus)
	}
	if filters.FulfillmentStatus != nil {
		query = query.Where("fulfillment_status = ?", *filters.FulfillmentStatus)
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}
	if cursor != nil {
		query = query.Where(
			"created_at < ? OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	limit := pagination.NormalizeLimit(params.Limit)
	var rows []models.Order
	err = query.
		Order("created_at DESC, id DESC").
		Limit(limit + 1).
		Find(&rows).Error
	if err != nil {
		return nil, "", err
	}

	next := ""
	if len(rows) > limit {
		last := rows[limit-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		rows = rows[:limit]
	}
	return rows, next, nil
}

func (r *repository) FindVendorOrder(ctx context.Context, vendorID, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Where("id = ?", orderID).
		Where("id IN (?)", r.vendorOrderIDs(vendorID)).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListVendorItems(ctx context.Context, vendorID uuid.UUID, orderIDs []uuid.UUID) (map[uuid.UUID][]models.OrderItem, error) {
	grouped := make(map[uuid.UUID][]models.OrderItem, len(orderIDs))
	if len(orderIDs) == 0 {
		return grouped, nil
	}
	var items []models.OrderItem
	err := r.db.WithContext(ctx).
		Joins("JOIN products ON products.id = order_items.product_id").
		Where("products.vendor_id = ?", vendorID).
		Where("order_items.order_id IN ?", orderIDs).
		Order("order_items.created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		grouped[item.OrderID] = append(grouped[item.OrderID], item)
	}
	return grouped, nil
}

func (r *repository) CountProducts(ctx context.Context, vendorID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("vendor_id = ?", vendorID).
		Count(&count).Error
	return count, err
}

func (r *repository) CountVendorOrders(ctx context.Context, vendorID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id IN (?)", r.vendorOrderIDs(vendorID)).
		Count(&count).Error
	return count, err
}

func (r *repository) SumPaidRevenue(ctx context.Context, vendorID uuid.UUID) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Table("order_items").
		Select("COALESCE(SUM(order_items.line_total_xaf), 0)").
		Joins("JOIN products ON products.id = order_items.product_id").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("products.vendor_id = ?", vendorID).
		Where("orders.payment_status = ?", enums.PaymentStatusPaid).
		Scan(&total).Error
	return total, err
}
