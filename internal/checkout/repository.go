package checkout

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mokolo-market/mokolo-backend/pkg/db/models"
	"github.com/mokolo-market/mokolo-backend/pkg/enums"
)

// Repository exposes the catalog and rate lookups checkout needs.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindProducts(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
	FindDeliveryFee(ctx context.Context, city enums.City) (int, bool, error)
	CreateActivityLog(ctx context.Context, log *models.UserActivityLog) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a checkout repository backed by the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindProducts(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

// FindDeliveryFee returns the configured fee for the city. The second return
// is false when the city has no rate row and the caller should fall back to
// the default fee.
func (r *repository) FindDeliveryFee(ctx context.Context, city enums.City) (int, bool, error) {
	var rate models.CityDeliveryRate
	err := r.db.WithContext(ctx).
		Where("city = ?", city).
		First(&rate).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return rate.FeeXAF, true, nil
}

func (r *repository) CreateActivityLog(ctx context.Context, log *models.UserActivityLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}
