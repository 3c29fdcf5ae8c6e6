package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/gourmetpress/gourmetpress-backend/pkg/enums"
)

// Notification stores staff-facing notification rows produced from order
// events.
type Notification struct {
	ID         uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	LocationID uuid.UUID              `gorm:"column:location_id;type:uuid;not null;index"`
	Type       enums.NotificationType `gorm:"column:type;type:text;not null"`
	Title      string                 `gorm:"column:title;not null"`
	Message    string                 `gorm:"column:message;not null"`
	OrderID    *uuid.UUID             `gorm:"column:order_id;type:uuid"`
	ReadAt     *time.Time             `gorm:"column:read_at"`
	CreatedAt  time.Time              `gorm:"column:created_at;autoCreateTime"`
}
