package reservation

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mokolo-market/mokolo-backend/pkg/db/models"
	pkgerrors "github.com/mokolo-market/mokolo-backend/pkg/errors"
)

// Line is one product/quantity pair to take out of stock.
type Line struct {
	ProductID uuid.UUID
	Qty       int
}

// ShortageDetail names the product that blocked the decrement.
type ShortageDetail struct {
	ProductID uuid.UUID `json:"product_id"`
	Requested int       `json:"requested"`
	Available int       `json:"available"`
}

// DecrementStock atomically removes stock for every line or none of them.
// Rows are locked FOR UPDATE in ascending product-id order so concurrent
// checkouts touching the same products serialize instead of deadlocking.
// Must be called inside an open transaction.
func DecrementStock(ctx context.Context, tx *gorm.DB, lines []Line) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "transaction handle required")
	}
	if len(lines) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one line required")
	}

	needed := make(map[uuid.UUID]int, len(lines))
	for _, line := range lines {
		if line.ProductID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "product id required")
		}
		if line.Qty < 1 {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("quantity for product %s must be at least 1", line.ProductID))
		}
		needed[line.ProductID] += line.Qty
	}

	ids := make([]uuid.UUID, 0, len(needed))
	for id := range needed {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	for _, id := range ids {
		qty := needed[id]

		var item models.InventoryItem
		err := tx.WithContext(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("product_id = ?", id).
			First(&item).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeConflict, "product has no stock record").
					WithDetails(ShortageDetail{ProductID: id, Requested: qty, Available: 0})
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "locking inventory row")
		}

		if item.Quantity < qty {
			return pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock").
				WithDetails(ShortageDetail{ProductID: id, Requested: qty, Available: item.Quantity})
		}

		res := tx.WithContext(ctx).
			Model(&models.InventoryItem{}).
			Where("product_id = ?", id).
			Update("quantity", gorm.Expr("quantity - ?", qty))
		if res.Error != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "decrementing inventory")
		}
	}

	return nil
}
