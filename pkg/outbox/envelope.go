package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ActorRef identifies who produced the event.
type ActorRef struct {
	ActorID *uuid.UUID `json:"actorId,omitempty"`
	Role    string     `json:"role,omitempty"`
}

// PayloadEnvelope is the stable payload structure stored in outbox_events.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Actor      *ActorRef       `json:"actor,omitempty"`
	Data       json.RawMessage `json:"data"`
}

// OrderCreatedEvent is the payload emitted when an order commits.
type OrderCreatedEvent struct {
	OrderID    uuid.UUID `json:"order_id"`
	OrderKey   string    `json:"order_key"`
	LocationID uuid.UUID `json:"location_id"`
	OrderType  string    `json:"order_type"`
	TotalCents int64     `json:"total_cents"`
	Currency   string    `json:"currency"`
}

// StatusChangedEvent is the payload emitted on every successful transition.
type StatusChangedEvent struct {
	OrderID    uuid.UUID `json:"order_id"`
	OrderKey   string    `json:"order_key"`
	LocationID uuid.UUID `json:"location_id"`
	OldStatus  string    `json:"old_status"`
	NewStatus  string    `json:"new_status"`
}

// LowStockEvent is the payload emitted when a reservation leaves an item at
// or below its low-stock threshold, or oversold.
type LowStockEvent struct {
	MenuItemID uuid.UUID `json:"menu_item_id"`
	Name       string    `json:"name"`
	LocationID uuid.UUID `json:"location_id"`
	NewStock   int       `json:"new_stock"`
	Oversold   bool      `json:"oversold"`
}

// PaymentFailedEvent is the payload emitted when a gateway reports failure.
type PaymentFailedEvent struct {
	OrderID    uuid.UUID `json:"order_id"`
	OrderKey   string    `json:"order_key"`
	LocationID uuid.UUID `json:"location_id"`
	Gateway    string    `json:"gateway"`
	Reason     string    `json:"reason,omitempty"`
}
