package vendors

import (
	"context"
	"errors"
	"fmt"
	"time"

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

// Service manages vendor onboarding, review and the vendor order surface.
type Service interface {
	Apply(ctx context.Context, userID uuid.UUID, input ApplyInput) (*ProfileView, error)
	GetMine(ctx context.Context, userID uuid.UUID) (*ProfileView, error)
	GetProfile(ctx context.Context, id uuid.UUID) (*ProfileView, error)
	ListApplications(ctx context.Context, status *enums.VendorStatus) ([]ProfileView, error)
	Approve(ctx context.Context, profileID uuid.UUID) (*ProfileView, error)
	Reject(ctx context.Context, profileID uuid.UUID) (*ProfileView, error)
	Suspend(ctx context.Context, profileID uuid.UUID) (*ProfileView, error)
	EnsureActive(ctx context.Context, userID uuid.UUID) error
	Stats(ctx context.Context, vendorID uuid.UUID) (*Stats, error)
	GetOrder(ctx context.Context, vendorID, orderID uuid.UUID) (*OrderView, error)
	ListOrders(ctx context.Context, vendorID uuid.UUID, params pagination.Params, filters ListFilters) (*OrderList, error)
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService builds the vendors service.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("vendors repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

// Apply files a vendor application for the user. A rejected applicant may
// reapply, which resets the profile to PENDING; any other existing profile
// is a conflict.
func (s *service) Apply(ctx context.Context, userID uuid.UUID, input ApplyInput) (*ProfileView, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if input.BusinessName == "" || input.Phone == "" || input.Address == "" || input.City == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "business name, phone, address and city are required")
	}

	user, err := s.repo.FindUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if user.IsBanned {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "banned accounts cannot apply")
	}
	if user.Role == enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin accounts cannot apply")
	}

	existing, err := s.repo.FindProfileByUserID(ctx, userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
	}
	if existing != nil {
		if existing.Status != enums.VendorStatusRejected {
			return nil, pkgerrors.New(pkgerrors.CodeConflict,
				fmt.Sprintf("vendor application already exists with status %s", existing.Status))
		}
		updates := map[string]any{
			"business_name":        input.BusinessName,
			"business_description": input.BusinessDescription,
			"phone":                input.Phone,
			"address":              input.Address,
			"city":                 input.City,
			"id_document":          input.IDDocument,
			"status":               enums.VendorStatusPending,
		}
		if err := s.repo.UpdateProfile(ctx, existing.ID, updates); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update profile")
		}
		return s.GetProfile(ctx, existing.ID)
	}

	profile, err := s.repo.CreateProfile(ctx, &models.VendorProfile{
		UserID:              userID,
		BusinessName:        input.BusinessName,
		BusinessDescription: input.BusinessDescription,
		Phone:               input.Phone,
		Address:             input.Address,
		City:                input.City,
		IDDocument:          input.IDDocument,
		Status:              enums.VendorStatusPending,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create profile")
	}
	return NewProfileView(profile), nil
}

func (s *service) GetMine(ctx context.Context, userID uuid.UUID) (*ProfileView, error) {
	profile, err := s.repo.FindProfileByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vendor profile not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
	}
	return NewProfileView(profile), nil
}

// EnsureActive rejects vendors whose profile is not APPROVED. Suspended and
// pending vendors keep read access to their surface but cannot mutate orders
// or listings.
func (s *service) EnsureActive(ctx context.Context, userID uuid.UUID) error {
	profile, err := s.repo.FindProfileByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeForbidden, "vendor profile required")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
	}
	if profile.Status != enums.VendorStatusApproved {
		return pkgerrors.New(pkgerrors.CodeForbidden,
			fmt.Sprintf("vendor is %s and cannot update orders", profile.Status))
	}
	return nil
}

func (s *service) GetProfile(ctx context.Context, id uuid.UUID) (*ProfileView, error) {
	profile, err := s.repo.FindProfileByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vendor profile not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
	}
	return NewProfileView(profile), nil
}

func (s *service) ListApplications(ctx context.Context, status *enums.VendorStatus) ([]ProfileView, error) {
	if status != nil && !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid vendor status %q", *status))
	}
	profiles, err := s.repo.ListProfiles(ctx, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list profiles")
	}
	views := make([]ProfileView, 0, len(profiles))
	for i := range profiles {
		views = append(views, *NewProfileView(&profiles[i]))
	}
	return views, nil
}

// Approve marks the application APPROVED, stamps approved_at and flips the
// user's role to vendor in the same transaction.
func (s *service) Approve(ctx context.Context, profileID uuid.UUID) (*ProfileView, error) {
	var approved *models.VendorProfile
	err := s.tx.WithTx(ctx, func(dbtx *gorm.DB) error {
		repo := s.repo.WithTx(dbtx)
		profile, err := repo.FindProfileByIDForUpdate(ctx, profileID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "vendor profile not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
		}
		if profile.Status == enums.VendorStatusApproved {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "vendor is already approved")
		}

		now := time.Now().UTC()
		updates := map[string]any{
			"status":      enums.VendorStatusApproved,
			"approved_at": now,
		}
		if err := repo.UpdateProfile(ctx, profile.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update profile")
		}
		if err := repo.UpdateUserRole(ctx, profile.UserID, enums.UserRoleVendor); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update user role")
		}
		profile.Status = enums.VendorStatusApproved
		profile.ApprovedAt = &now
		approved = profile
		return nil
	})
	if err != nil {
		return nil, err
	}
	return NewProfileView(approved), nil
}

// Reject turns down a pending application. The applicant keeps the customer
// role and may reapply.
func (s *service) Reject(ctx context.Context, profileID uuid.UUID) (*ProfileView, error) {
	return s.setStatus(ctx, profileID, enums.VendorStatusRejected, enums.VendorStatusPending)
}

// Suspend blocks an approved vendor from selling. The role stays vendor so
// the account keeps read access to its own history; IsActive gates selling.
func (s *service) Suspend(ctx context.Context, profileID uuid.UUID) (*ProfileView, error) {
	return s.setStatus(ctx, profileID, enums.VendorStatusSuspended, enums.VendorStatusApproved)
}

func (s *service) setStatus(ctx context.Context, profileID uuid.UUID, target, required enums.VendorStatus) (*ProfileView, error) {
	var updated *models.VendorProfile
	err := s.tx.WithTx(ctx, func(dbtx *gorm.DB) error {
		repo := s.repo.WithTx(dbtx)
		profile, err := repo.FindProfileByIDForUpdate(ctx, profileID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "vendor profile not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
		}
		if profile.Status != required {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot move vendor from %s to %s", profile.Status, target))
		}
		if err := repo.UpdateProfile(ctx, profile.ID, map[string]any{"status": target}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update profile")
		}
		profile.Status = target
		updated = profile
		return nil
	})
	if err != nil {
		return nil, err
	}
	return NewProfileView(updated), nil
}

func (s *service) Stats(ctx context.Context, vendorID uuid.UUID) (*Stats, error) {
	if vendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor id required")
	}
	products, err := s.repo.CountProducts(ctx, vendorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count products")
	}
	orders, err := s.repo.CountVendorOrders(ctx, vendorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count orders")
	}
	revenue, err := s.repo.SumPaidRevenue(ctx, vendorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum revenue")
	}
	return &Stats{ProductCount: products, OrderCount: orders, RevenueXAF: revenue}, nil
}

// GetOrder returns the vendor-scoped projection. Orders with none of the
// vendor's products read as not found.
func (s *service) GetOrder(ctx context.Context, vendorID, orderID uuid.UUID) (*OrderView, error) {
	if vendorID == uuid.Nil || orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor id and order id required")
	}
	order, err := s.repo.FindVendorOrder(ctx, vendorID, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	items, err := s.repo.ListVendorItems(ctx, vendorID, []uuid.UUID{order.ID})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load items")
	}
	return projectOrder(order, items[order.ID]), nil
}

func (s *service) ListOrders(ctx context.Context, vendorID uuid.UUID, params pagination.Params, filters ListFilters) (*OrderList, error) {
	if vendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor id required")
	}
	if filters.PaymentStatus != nil && !filters.PaymentStatus.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment status filter")
	}
	if filters.FulfillmentStatus != nil && !filters.FulfillmentStatus.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid fulfillment status filter")
	}

	orders, next, err := s.repo.ListVendorOrders(ctx, vendorID, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	ids := make([]uuid.UUID, 0, len(orders))
	for i := range orders {
		ids = append(ids, orders[i].ID)
	}
	itemsByOrder, err := s.repo.ListVendorItems(ctx, vendorID, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load items")
	}

	list := &OrderList{Orders: make([]OrderView, 0, len(orders)), NextCursor: next}
	for i := range orders {
		list.Orders = append(list.Orders, *projectOrder(&orders[i], itemsByOrder[orders[i].ID]))
	}
	return list, nil
}
