package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/gourmetpress/gourmetpress-backend/pkg/enums"
)

// OutboxEvent is a transactional outbox row: events are written in the same
// transaction as the state change they describe and delivered at least once
// by the notification dispatcher.
type OutboxEvent struct {
	ID            int64                     `gorm:"column:id;primaryKey;autoIncrement"`
	EventType     enums.OutboxEventType     `gorm:"column:event_type;type:text;not null"`
	AggregateType enums.OutboxAggregateType `gorm:"column:aggregate_type;type:text;not null"`
	AggregateID   uuid.UUID                 `gorm:"column:aggregate_id;type:uuid;not null;index"`
	Payload       json.RawMessage           `gorm:"column:payload;type:jsonb;not null"`
	Status        enums.OutboxStatus        `gorm:"column:status;type:text;not null;default:'pending';index"`
	Attempts      int                       `gorm:"column:attempts;not null;default:0"`
	DeliveredAt   *time.Time                `gorm:"column:delivered_at"`
	CreatedAt     time.Time                 `gorm:"column:created_at;autoCreateTime"`
}
