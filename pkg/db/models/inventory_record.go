package models

import (
	"time"

	"github.com/google/uuid"
)

// InventoryRecord tracks per-item stock. StockQty is signed: a negative
// value means oversold and is surfaced as a warning, never silently clamped.
type InventoryRecord struct {
	MenuItemID uuid.UUID `gorm:"column:menu_item_id;type:uuid;primaryKey"`
	StockQty   int       `gorm:"column:stock_qty;not null;default:0"`
	TrackStock bool      `gorm:"column:track_stock;not null;default:false"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
