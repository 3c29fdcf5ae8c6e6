package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/gourmetpress/gourmetpress-backend/pkg/enums"
)

// OrderNote is one entry of the append-only order activity log. Notes are
// immutable once written and are displayed newest first.
type OrderNote struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	OrderID   uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	Note      string          `gorm:"column:note;not null"`
	ActorRole enums.ActorRole `gorm:"column:actor_role;type:text;not null;default:'system'"`
	ActorID   *uuid.UUID      `gorm:"column:actor_id;type:uuid"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}
