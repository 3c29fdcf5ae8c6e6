package enums

// OutboxEventType names the domain events persisted through the outbox.
type OutboxEventType string

const (
	EventOrderCreated       OutboxEventType = "order.created"
	EventOrderStatusChanged OutboxEventType = "order.status_changed"
	EventPaymentFailed      OutboxEventType = "order.payment_failed"
	EventInventoryLowStock  OutboxEventType = "inventory.low_stock"
)

var validOutboxEventTypes = map[OutboxEventType]struct{}{
	EventOrderCreated:       {},
	EventOrderStatusChanged: {},
	EventPaymentFailed:      {},
	EventInventoryLowStock:  {},
}

func (t OutboxEventType) String() string { return string(t) }

func (t OutboxEventType) IsValid() bool {
	_, ok := validOutboxEventTypes[t]
	return ok
}

// OutboxAggregateType names the aggregate an outbox event belongs to.
type OutboxAggregateType string

const (
	AggregateOrder    OutboxAggregateType = "order"
	AggregateMenuItem OutboxAggregateType = "menu_item"
)

func (t OutboxAggregateType) String() string { return string(t) }

// OutboxStatus tracks delivery progress of an outbox row.
type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "pending"
	OutboxStatusDelivered OutboxStatus = "delivered"
)

func (s OutboxStatus) String() string { return string(s) }
