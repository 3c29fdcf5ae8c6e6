package enums

import "fmt"

// NotificationType classifies staff-facing notification rows.
type NotificationType string

const (
	NotificationTypeNewOrder    NotificationType = "new_order"
	NotificationTypeOrderStatus NotificationType = "order_status"
	NotificationTypeLowStock    NotificationType = "low_stock"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeNewOrder,
	NotificationTypeOrderStatus,
	NotificationTypeLowStock,
}

// String implements fmt.Stringer.
func (n NotificationType) String() string {
	return string(n)
}

// IsValid reports whether the value is a known NotificationType.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw input into a NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}
