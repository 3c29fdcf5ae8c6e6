package enums

import "fmt"

// OrderType describes how the customer receives the order.
type OrderType string

const (
	OrderTypeDelivery OrderType = "delivery"
	OrderTypePickup   OrderType = "pickup"
	OrderTypeDineIn   OrderType = "dinein"
)

var validOrderTypes = []OrderType{
	OrderTypeDelivery,
	OrderTypePickup,
	OrderTypeDineIn,
}

// String implements fmt.Stringer.
func (t OrderType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known OrderType.
func (t OrderType) IsValid() bool {
	for _, candidate := range validOrderTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseOrderType converts raw input into an OrderType.
func ParseOrderType(value string) (OrderType, error) {
	for _, candidate := range validOrderTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order type %q", value)
}
