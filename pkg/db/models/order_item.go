package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderItem is the snapshot of a menu item at purchase time. Item data is
// copied, not referenced, so later catalog edits never alter historical
// orders. Insertion order is line order.
type OrderItem struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	OrderID    uuid.UUID  `gorm:"column:order_id;type:uuid;not null;index"`
	MenuItemID *uuid.UUID `gorm:"column:menu_item_id;type:uuid"`

	Name                string  `gorm:"column:name;not null"`
	SKU                 string  `gorm:"column:sku;not null"`
	UnitPriceCents      int64   `gorm:"column:unit_price_cents;not null"`
	Qty                 int     `gorm:"column:qty;not null"`
	LineTotalCents      int64   `gorm:"column:line_total_cents;not null"`
	Addons              *string `gorm:"column:addons;type:jsonb"`
	SpecialInstructions *string `gorm:"column:special_instructions"`

	Position  int       `gorm:"column:position;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
