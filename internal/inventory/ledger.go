package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gourmetpress/gourmetpress-backend/pkg/db/models"
	pkgerrors "github.com/gourmetpress/gourmetpress-backend/pkg/errors"
)

// ReservationRequest asks the ledger to deduct stock for one order line.
type ReservationRequest struct {
	MenuItemID uuid.UUID
	Qty        int
}

// ReservationResult reports what the ledger did for one line. Untracked
// items pass through untouched. Oversold means the decrement drove the
// quantity below zero; the order still proceeds, the caller surfaces it.
type ReservationResult struct {
	MenuItemID uuid.UUID
	Tracked    bool
	NewStock   int
	Oversold   bool
	LowStock   bool
}

// Reserve deducts stock for each request inside the caller's transaction.
// Each deduction is a single UPDATE so concurrent orders serialize on the
// row instead of racing a read-modify-write. Stock is allowed to go
// negative; the result flags it.
func Reserve(ctx context.Context, tx *gorm.DB, requests []ReservationRequest, lowStockThreshold int) ([]ReservationResult, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "inventory reserve requires a transaction")
	}

	results := make([]ReservationResult, 0, len(requests))
	for _, req := range requests {
		if req.MenuItemID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "menu item id required")
		}
		if req.Qty <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid quantity %d for item %s", req.Qty, req.MenuItemID))
		}

		update := tx.WithContext(ctx).
			Model(&models.InventoryRecord{}).
			Where("menu_item_id = ? AND track_stock = ?", req.MenuItemID, true).
			Update("stock_qty", gorm.Expr("stock_qty - ?", req.Qty))
		if update.Error != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, update.Error, "deduct stock")
		}
		if update.RowsAffected == 0 {
			results = append(results, ReservationResult{MenuItemID: req.MenuItemID})
			continue
		}

		var record models.InventoryRecord
		if err := tx.WithContext(ctx).First(&record, "menu_item_id = ?", req.MenuItemID).Error; err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload stock")
		}
		results = append(results, ReservationResult{
			MenuItemID: req.MenuItemID,
			Tracked:    true,
			NewStock:   record.StockQty,
			Oversold:   record.StockQty < 0,
			LowStock:   lowStockThreshold > 0 && record.StockQty >= 0 && record.StockQty <= lowStockThreshold,
		})
	}
	return results, nil
}

// Release returns stock to the ledger, used when an order is cancelled or
// refunded. Untracked items are skipped silently.
func Release(ctx context.Context, tx *gorm.DB, requests []ReservationRequest) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "inventory release requires a transaction")
	}

	for _, req := range requests {
		if req.MenuItemID == uuid.Nil || req.Qty <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "invalid release request")
		}
		err := tx.WithContext(ctx).
			Model(&models.InventoryRecord{}).
			Where("menu_item_id = ? AND track_stock = ?", req.MenuItemID, true).
			Update("stock_qty", gorm.Expr("stock_qty + ?", req.Qty)).Error
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "restore stock")
		}
	}
	return nil
}

// Stock returns the current quantity for a tracked item.
func Stock(ctx context.Context, db *gorm.DB, menuItemID uuid.UUID) (int, bool, error) {
	var record models.InventoryRecord
	err := db.WithContext(ctx).First(&record, "menu_item_id = ?", menuItemID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, false, nil
		}
		return 0, false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load stock")
	}
	return record.StockQty, record.TrackStock, nil
}
