package models

import (
	"time"

	"github.com/google/uuid"
)

// MenuItem is the catalog collaborator's read model. The order core only
// reads name/sku/price/track_stock to build snapshots; authoring lives
// elsewhere.
type MenuItem struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	LocationID     uuid.UUID  `gorm:"column:location_id;type:uuid;not null;index"`
	Name           string     `gorm:"column:name;not null"`
	SKU            string     `gorm:"column:sku;not null"`
	UnitPriceCents int64      `gorm:"column:unit_price_cents;not null"`
	Available      bool       `gorm:"column:available;not null;default:true"`
	Inventory      *InventoryRecord `gorm:"foreignKey:MenuItemID"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
