package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/gourmetpress/gourmetpress-backend/pkg/db/models"
	"github.com/gourmetpress/gourmetpress-backend/pkg/enums"
	pkgerrors "github.com/gourmetpress/gourmetpress-backend/pkg/errors"
	"github.com/gourmetpress/gourmetpress-backend/pkg/logger"
	"github.com/gourmetpress/gourmetpress-backend/pkg/money"
	"github.com/gourmetpress/gourmetpress-backend/pkg/outbox"
)

// Dispatcher drains pending outbox rows and materializes them as staff
// notifications. Delivery is at-least-once; rows that fail to translate stay
// pending with an incremented attempt count.
type Dispatcher struct {
	events outbox.Repository
	repo   Repository
	logg   *logger.Logger
}

func NewDispatcher(events outbox.Repository, repo Repository, logg *logger.Logger) (*Dispatcher, error) {
	if events == nil {
		return nil, fmt.Errorf("outbox repository required")
	}
	if repo == nil {
		return nil, fmt.Errorf("notification repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Dispatcher{events: events, repo: repo, logg: logg}, nil
}

// Dispatch processes up to limit pending events and returns how many were
// delivered.
func (d *Dispatcher) Dispatch(ctx context.Context, limit int) (int, error) {
	rows, err := d.events.FindPending(ctx, limit)
	if err != nil {
		return 0, err
	}

	delivered := 0
	for _, row := range rows {
		if err := d.deliver(ctx, row); err != nil {
			lctx := d.logg.WithFields(ctx, map[string]any{
				"outbox_id":  row.ID,
				"event_type": row.EventType.String(),
			})
			d.logg.Error(lctx, "outbox event delivery failed", err)
			if markErr := d.events.MarkFailed(ctx, row.ID); markErr != nil {
				d.logg.Error(lctx, "mark outbox event failed", markErr)
			}
			continue
		}
		if err := d.events.MarkDelivered(ctx, row.ID); err != nil {
			return delivered, err
		}
		delivered++
	}
	return delivered, nil
}

func (d *Dispatcher) deliver(ctx context.Context, row models.OutboxEvent) error {
	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(row.Payload, &envelope); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode outbox envelope")
	}

	notification, err := d.translate(row, envelope.Data)
	if err != nil {
		return err
	}
	if notification == nil {
		// Event type carries no staff-facing notification.
		return nil
	}
	return d.repo.Create(ctx, notification)
}

func (d *Dispatcher) translate(row models.OutboxEvent, data json.RawMessage) (*models.Notification, error) {
	switch row.EventType {
	case enums.EventOrderCreated:
		var event outbox.OrderCreatedEvent
		if err := json.Unmarshal(data, &event); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode order created event")
		}
		total := money.FromCents(event.TotalCents).Format(event.Currency)
		return &models.Notification{
			ID:         uuid.New(),
			LocationID: event.LocationID,
			Type:       enums.NotificationTypeNewOrder,
			Title:      "New order " + event.OrderKey,
			Message:    fmt.Sprintf("%s order for %s", event.OrderType, total),
			OrderID:    &event.OrderID,
		}, nil

	case enums.EventOrderStatusChanged:
		var event outbox.StatusChangedEvent
		if err := json.Unmarshal(data, &event); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode status changed event")
		}
		label := enums.OrderStatus(event.NewStatus).Label()
		return &models.Notification{
			ID:         uuid.New(),
			LocationID: event.LocationID,
			Type:       enums.NotificationTypeOrderStatus,
			Title:      "Order " + event.OrderKey + " updated",
			Message:    fmt.Sprintf("Status changed to: %s", label),
			OrderID:    &event.OrderID,
		}, nil

	case enums.EventInventoryLowStock:
		var event outbox.LowStockEvent
		if err := json.Unmarshal(data, &event); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode low stock event")
		}
		message := fmt.Sprintf("%s is down to %d in stock", event.Name, event.NewStock)
		if event.Oversold {
			message = fmt.Sprintf("%s is oversold by %d", event.Name, -event.NewStock)
		}
		return &models.Notification{
			ID:         uuid.New(),
			LocationID: event.LocationID,
			Type:       enums.NotificationTypeLowStock,
			Title:      "Low stock: " + event.Name,
			Message:    message,
		}, nil

	case enums.EventPaymentFailed:
		var event outbox.PaymentFailedEvent
		if err := json.Unmarshal(data, &event); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode payment failed event")
		}
		message := "Payment failed for order " + event.OrderKey
		if event.Reason != "" {
			message += ": " + event.Reason
		}
		return &models.Notification{
			ID:         uuid.New(),
			LocationID: event.LocationID,
			Type:       enums.NotificationTypeOrderStatus,
			Title:      "Payment failed " + event.OrderKey,
			Message:    message,
			OrderID:    &event.OrderID,
		}, nil

	default:
		return nil, nil
	}
}
