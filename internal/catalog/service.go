package catalog

import (
	"context"
	"errors"
	"fmt"

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

// Service exposes the public catalog and the vendor listing surface.
type Service interface {
	ListCategories(ctx context.Context) ([]CategoryView, error)
	CreateCategory(ctx context.Context, input CreateCategoryInput) (*CategoryView, error)

	ListProducts(ctx context.Context, params pagination.Params, filters ListFilters) (*ProductList, error)
	GetProduct(ctx context.Context, slugOrID string) (*ProductView, error)

	ListVendorProducts(ctx context.Context, vendorID uuid.UUID) ([]ProductView, error)
	CreateProduct(ctx context.Context, vendorID uuid.UUID, input CreateProductInput) (*ProductView, error)
	UpdateProduct(ctx context.Context, vendorID, productID uuid.UUID, input UpdateProductInput) (*ProductView, error)
	DeleteProduct(ctx context.Context, vendorID, productID uuid.UUID) error
	SetInventory(ctx context.Context, vendorID, productID uuid.UUID, quantity int) error
	Restock(ctx context.Context, vendorID, productID uuid.UUID, delta int) error
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService builds the catalog service.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) ListCategories(ctx context.Context) ([]CategoryView, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	views := make([]CategoryView, 0, len(categories))
	for i := range categories {
		views = append(views, *NewCategoryView(&categories[i]))
	}
	return views, nil
}

func (s *service) CreateCategory(ctx context.Context, input CreateCategoryInput) (*CategoryView, error) {
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name required")
	}
	slug := slugify(input.Name)
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name yields an empty slug")
	}
	taken, err := s.repo.CategorySlugExists(ctx, slug)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check slug")
	}
	if taken {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("category %q already exists", input.Name))
	}
	category, err := s.repo.CreateCategory(ctx, &models.Category{
		Name:     input.Name,
		Slug:     slug,
		IsActive: true,
		ParentID: input.ParentID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create category")
	}
	return NewCategoryView(category), nil
}

func (s *service) ListProducts(ctx context.Context, params pagination.Params, filters ListFilters) (*ProductList, error) {
	rows, next, err := s.repo.ListProducts(ctx, params, filters, true)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	list := &ProductList{Products: make([]ProductView, 0, len(rows)), NextCursor: next}
	for i := range rows {
		list.Products = append(list.Products, *NewProductView(&rows[i]))
	}
	return list, nil
}

// GetProduct resolves by id when the path segment parses as a UUID, by slug
// otherwise. Inactive products read as not found on the public surface.
func (s *service) GetProduct(ctx context.Context, slugOrID string) (*ProductView, error) {
	if slugOrID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product reference required")
	}
	var (
		product *models.Product
		err     error
	)
	if id, parseErr := uuid.Parse(slugOrID); parseErr == nil {
		product, err = s.repo.FindProductByID(ctx, id)
	} else {
		product, err = s.repo.FindProductBySlug(ctx, slugOrID)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return NewProductView(product), nil
}

func (s *service) ListVendorProducts(ctx context.Context, vendorID uuid.UUID) ([]ProductView, error) {
	if vendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor id required")
	}
	rows, err := s.repo.ListVendorProducts(ctx, vendorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vendor products")
	}
	views := make([]ProductView, 0, len(rows))
	for i := range rows {
		views = append(views, *NewProductView(&rows[i]))
	}
	return views, nil
}

func (s *service) CreateProduct(ctx context.Context, vendorID uuid.UUID, input CreateProductInput) (*ProductView, error) {
	if err := s.ensureActiveVendor(ctx, vendorID); err != nil {
		return nil, err
	}
	if input.Title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title required")
	}
	if input.PriceXAF <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be a positive amount in XAF")
	}
	if input.InitialQty < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "initial quantity cannot be negative")
	}
	if err := validateMedia(input.Media); err != nil {
		return nil, err
	}
	if _, err := s.repo.FindCategoryByID(ctx, input.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown category")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}

	slug, err := s.uniqueSlug(ctx, input.Title)
	if err != nil {
		return nil, err
	}

	var created *models.Product
	err = s.tx.WithTx(ctx, func(dbtx *gorm.DB) error {
		repo := s.repo.WithTx(dbtx)
		product, err := repo.CreateProduct(ctx, &models.Product{
			VendorID:    vendorID,
			CategoryID:  input.CategoryID,
			Title:       input.Title,
			Slug:        slug,
			Description: input.Description,
			PriceXAF:    input.PriceXAF,
			IsActive:    true,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
		}
		if err := repo.UpsertInventory(ctx, product.ID, input.InitialQty); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create inventory")
		}
		if err := repo.ReplaceMedia(ctx, product.ID, buildMediaRows(product.ID, input.Media)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create media")
		}
		created = product
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, created.ID)
}

func (s *service) UpdateProduct(ctx context.Context, vendorID, productID uuid.UUID, input UpdateProductInput) (*ProductView, error) {
	product, err := s.ownedProduct(ctx, vendorID, productID)
	if err != nil {
		return nil, err
	}
	if input.PriceXAF != nil && *input.PriceXAF <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be a positive amount in XAF")
	}
	if err := validateMedia(input.Media); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.CategoryID != nil {
		if _, err := s.repo.FindCategoryByID(ctx, *input.CategoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown category")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
		}
		updates["category_id"] = *input.CategoryID
	}
	if input.Title != nil && *input.Title != product.Title {
		if *input.Title == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "title required")
		}
		slug, err := s.uniqueSlug(ctx, *input.Title)
		if err != nil {
			return nil, err
		}
		updates["title"] = *input.Title
		updates["slug"] = slug
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.PriceXAF != nil {
		updates["price_xaf"] = *input.PriceXAF
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}

	err = s.tx.WithTx(ctx, func(dbtx *gorm.DB) error {
		repo := s.repo.WithTx(dbtx)
		if len(updates) > 0 {
			if err := repo.UpdateProduct(ctx, product.ID, updates); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
			}
		}
		if input.Media != nil {
			if err := repo.ReplaceMedia(ctx, product.ID, buildMediaRows(product.ID, input.Media)); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace media")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, product.ID)
}

// DeleteProduct removes a listing. Products referenced by order items are
// protected; deactivate them instead so order history keeps its snapshots.
func (s *service) DeleteProduct(ctx context.Context, vendorID, productID uuid.UUID) error {
	product, err := s.ownedProduct(ctx, vendorID, productID)
	if err != nil {
		return err
	}
	refs, err := s.repo.CountOrderItemRefs(ctx, product.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count order references")
	}
	if refs > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict,
			"product appears in existing orders and cannot be deleted; deactivate it instead")
	}
	if err := s.repo.DeleteProduct(ctx, product.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	return nil
}

func (s *service) SetInventory(ctx context.Context, vendorID, productID uuid.UUID, quantity int) error {
	if quantity < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}
	product, err := s.ownedProduct(ctx, vendorID, productID)
	if err != nil {
		return err
	}
	if err := s.repo.UpsertInventory(ctx, product.ID, quantity); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set inventory")
	}
	return nil
}

func (s *service) Restock(ctx context.Context, vendorID, productID uuid.UUID, delta int) error {
	if delta <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "restock delta must be positive")
	}
	product, err := s.ownedProduct(ctx, vendorID, productID)
	if err != nil {
		return err
	}
	if err := s.repo.RestockInventory(ctx, product.ID, delta); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.repo.UpsertInventory(ctx, product.ID, delta)
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restock inventory")
	}
	return nil
}

func (s *service) ensureActiveVendor(ctx context.Context, vendorID uuid.UUID) error {
	if vendorID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "vendor id required")
	}
	status, err := s.repo.FindVendorStatus(ctx, vendorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeForbidden, "vendor profile required")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vendor status")
	}
	if status != enums.VendorStatusApproved {
		return pkgerrors.New(pkgerrors.CodeForbidden,
			fmt.Sprintf("vendor is %s and cannot sell", status))
	}
	return nil
}

func (s *service) ownedProduct(ctx context.Context, vendorID, productID uuid.UUID) (*models.Product, error) {
	if err := s.ensureActiveVendor(ctx, vendorID); err != nil {
		return nil, err
	}
	product, err := s.repo.FindProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product.VendorID != vendorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "product belongs to another vendor")
	}
	return product, nil
}

func (s *service) uniqueSlug(ctx context.Context, title string) (string, error) {
	slug := slugify(title)
	if slug == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "title yields an empty slug")
	}
	taken, err := s.repo.ProductSlugExists(ctx, slug)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check slug")
	}
	if taken {
		slug = slug + "-" + uuid.NewString()[:8]
	}
	return slug, nil
}

func (s *service) reload(ctx context.Context, productID uuid.UUID) (*ProductView, error) {
	product, err := s.repo.FindProductByID(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload product")
	}
	return NewProductView(product), nil
}

func validateMedia(media []MediaInput) error {
	for _, m := range media {
		if m.URL == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "media url required")
		}
		if m.Kind != "" && !m.Kind.IsValid() {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid media kind %q", m.Kind))
		}
	}
	return nil
}

func buildMediaRows(productID uuid.UUID, media []MediaInput) []models.ProductMedia {
	rows := make([]models.ProductMedia, 0, len(media))
	for i, m := range media {
		kind := m.Kind
		if kind == "" {
			kind = enums.MediaKindImage
		}
		sort := m.SortOrder
		if sort == 0 {
			sort = i
		}
		rows = append(rows, models.ProductMedia{
			ProductID: productID,
			URL:       m.URL,
			Kind:      kind,
			SortOrder: sort,
			IsPrimary: m.IsPrimary,
		})
	}
	return rows
}
