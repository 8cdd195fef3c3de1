package catalog

import (
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/mokolo-market/mokolo-backend/pkg/db/models"
	"github.com/mokolo-market/mokolo-backend/pkg/enums"
)

// CategoryView is the serialized category.
type CategoryView struct {
	ID       uuid.UUID  `json:"id"`
	Name     string     `json:"name"`
	Slug     string     `json:"slug"`
	ParentID *uuid.UUID `json:"parent_id,omitempty"`
}

// NewCategoryView projects the model into its API shape.
func NewCategoryView(c *models.Category) *CategoryView {
	if c == nil {
		return nil
	}
	return &CategoryView{ID: c.ID, Name: c.Name, Slug: c.Slug, ParentID: c.ParentID}
}

// CreateCategoryInput adds a catalog grouping.
type CreateCategoryInput struct {
	Name     string     `json:"name" validate:"required"`
	ParentID *uuid.UUID `json:"parent_id,omitempty"`
}

// MediaInput attaches an externally-hosted media URL to a product.
type MediaInput struct {
	URL       string          `json:"url" validate:"required,url"`
	Kind      enums.MediaKind `json:"kind"`
	SortOrder int             `json:"sort_order"`
	IsPrimary bool            `json:"is_primary"`
}

// CreateProductInput is a vendor's new listing.
type CreateProductInput struct {
	CategoryID  uuid.UUID    `json:"category_id" validate:"required"`
	Title       string       `json:"title" validate:"required"`
	Description string       `json:"description"`
	PriceXAF    int          `json:"price_xaf" validate:"required,gt=0"`
	InitialQty  int          `json:"initial_qty" validate:"gte=0"`
	Media       []MediaInput `json:"media"`
}

// UpdateProductInput edits a listing. Nil fields are left untouched. Price
// edits never rewrite order history; items snapshot the price at checkout.
type UpdateProductInput struct {
	CategoryID  *uuid.UUID   `json:"category_id,omitempty"`
	Title       *string      `json:"title,omitempty"`
	Description *string      `json:"description,omitempty"`
	PriceXAF    *int         `json:"price_xaf,omitempty"`
	IsActive    *bool        `json:"is_active,omitempty"`
	Media       []MediaInput `json:"media,omitempty"`
}

// ListFilters narrows the public product listing.
type ListFilters struct {
	CategoryID *uuid.UUID
	Search     string
}

// MediaView is one product media row.
type MediaView struct {
	ID        uuid.UUID       `json:"id"`
	URL       string          `json:"url"`
	Kind      enums.MediaKind `json:"kind"`
	SortOrder int             `json:"sort_order"`
	IsPrimary bool            `json:"is_primary"`
}

// ProductView is the serialized product with its media and stock level.
type ProductView struct {
	ID          uuid.UUID   `json:"id"`
	VendorID    uuid.UUID   `json:"vendor_id"`
	CategoryID  uuid.UUID   `json:"category_id"`
	Title       string      `json:"title"`
	Slug        string      `json:"slug"`
	Description string      `json:"description"`
	PriceXAF    int         `json:"price_xaf"`
	IsActive    bool        `json:"is_active"`
	Quantity    int         `json:"quantity"`
	Media       []MediaView `json:"media"`
	CreatedAt   time.Time   `json:"created_at"`
}

// NewProductView projects the model into its API shape.
func NewProductView(p *models.Product) *ProductView {
	if p == nil {
		return nil
	}
	view := &ProductView{
		ID:          p.ID,
		VendorID:    p.VendorID,
		CategoryID:  p.CategoryID,
		Title:       p.Title,
		Slug:        p.Slug,
		Description: p.Description,
		PriceXAF:    p.PriceXAF,
		IsActive:    p.IsActive,
		Media:       make([]MediaView, 0, len(p.Media)),
		CreatedAt:   p.CreatedAt,
	}
	if p.Inventory != nil {
		view.Quantity = p.Inventory.Quantity
	}
	for _, m := range p.Media {
		view.Media = append(view.Media, MediaView{
			ID:        m.ID,
			URL:       m.URL,
			Kind:      m.Kind,
			SortOrder: m.SortOrder,
			IsPrimary: m.IsPrimary,
		})
	}
	return view
}

// ProductList is one page of the public catalog.
type ProductList struct {
	Products   []ProductView `json:"products"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

// slugify lowercases the title and collapses everything that is not a letter
// or digit into single hyphens.
func slugify(title string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		case !lastHyphen:
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.Trim(b.String(), "-")
}
