package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gourmetpress/gourmetpress-backend/pkg/db/models"
	"github.com/gourmetpress/gourmetpress-backend/pkg/enums"
	"github.com/gourmetpress/gourmetpress-backend/pkg/errors"
)

// DomainEvent describes a fact the order engine wants to publish.
type DomainEvent struct {
	EventType     enums.OutboxEventType
	AggregateType enums.OutboxAggregateType
	AggregateID   uuid.UUID
	Actor         *ActorRef
	Data          any
	Version       int
}

// Service writes domain events to the outbox table inside the caller's
// transaction, so an event row commits if and only if the state change does.
type Service interface {
	Emit(ctx context.Context, tx *gorm.DB, event DomainEvent) error
}

type service struct {
	now func() time.Time
}

func NewService() Service {
	return &service{now: time.Now}
}

func (s *service) Emit(ctx context.Context, tx *gorm.DB, event DomainEvent) error {
	if tx == nil {
		return errors.New(errors.CodeInternal, "outbox emit requires a transaction")
	}
	if !event.EventType.IsValid() {
		return errors.New(errors.CodeInternal, fmt.Sprintf("unknown event type %q", event.EventType))
	}

	data, err := json.Marshal(event.Data)
	if err != nil {
		return errors.Wrap(errors.CodeInternal, err, "marshal event data")
	}
	version := event.Version
	if version <= 0 {
		version = 1
	}
	envelope := PayloadEnvelope{
		Version:    version,
		EventID:    uuid.NewString(),
		OccurredAt: s.now().UTC(),
		Actor:      event.Actor,
		Data:       data,
	}
	payload, err := json.Marshal(envelope)
	if err != nil {
		return errors.Wrap(errors.CodeInternal, err, "marshal event envelope")
	}

	row := models.OutboxEvent{
		EventType:     event.EventType,
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		Payload:       payload,
		Status:        enums.OutboxStatusPending,
	}
	if err := tx.WithContext(ctx).Create(&row).Error; err != nil {
		return errors.Wrap(errors.CodeInternal, err, "insert outbox event")
	}
	return nil
}
