package enums

import "fmt"

// OrderStatus tracks the lifecycle of an order.
type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "pending"
	OrderStatusConfirmed      OrderStatus = "confirmed"
	OrderStatusPreparing      OrderStatus = "preparing"
	OrderStatusReady          OrderStatus = "ready"
	OrderStatusOutForDelivery OrderStatus = "out_for_delivery"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCancelled      OrderStatus = "cancelled"
	OrderStatusRefunded       OrderStatus = "refunded"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusPreparing,
	OrderStatusReady,
	OrderStatusOutForDelivery,
	OrderStatusDelivered,
	OrderStatusCancelled,
	OrderStatusRefunded,
}

var orderStatusLabels = map[OrderStatus]string{
	OrderStatusPending:        "Pending",
	OrderStatusConfirmed:      "Confirmed",
	OrderStatusPreparing:      "Preparing",
	OrderStatusReady:          "Ready",
	OrderStatusOutForDelivery: "Out for delivery",
	OrderStatusDelivered:      "Delivered",
	OrderStatusCancelled:      "Cancelled",
	OrderStatusRefunded:       "Refunded",
}

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}

// Label returns the human-facing form used in order notes.
func (s OrderStatus) Label() string {
	if label, ok := orderStatusLabels[s]; ok {
		return label
	}
	return string(s)
}

// IsValid reports whether the value is a known OrderStatus.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions leave this status,
// except the explicit refund exit from delivered/cancelled.
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case OrderStatusDelivered, OrderStatusCancelled, OrderStatusRefunded:
		return true
	default:
		return false
	}
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
