package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/gourmetpress/gourmetpress-backend/pkg/enums"
	"github.com/gourmetpress/gourmetpress-backend/pkg/types"
)

// CreateOrderItemInput is one requested order line.
type CreateOrderItemInput struct {
	MenuItemID          uuid.UUID
	Qty                 int
	Addons              *string
	SpecialInstructions *string
}

// CreateOrderInput carries everything needed to place an order.
type CreateOrderInput struct {
	LocationID      uuid.UUID
	CustomerID      *uuid.UUID
	OrderType       enums.OrderType
	PaymentMethod   enums.PaymentMethod
	TableID         *string
	DeliveryAddress *types.Address
	TipCents        int64
	DiscountCents   int64
	CustomerNote    *string
	ScheduledFor    *time.Time
	Items           []CreateOrderItemInput
}

// StockWarning surfaces an inventory side effect of order creation. Orders
// are never blocked on stock; oversells and low stock are reported, not
// enforced.
type StockWarning struct {
	MenuItemID uuid.UUID `json:"menuItemId"`
	Name       string    `json:"name"`
	NewStock   int       `json:"newStock"`
	Oversold   bool      `json:"oversold"`
	LowStock   bool      `json:"lowStock"`
}

// CreateOrderResult is what order creation hands back to the transport
// layer. ClientSecret is only set for card payments.
type CreateOrderResult struct {
	OrderID       uuid.UUID      `json:"orderId"`
	OrderKey      string         `json:"orderKey"`
	Status        string         `json:"status"`
	TotalCents    int64          `json:"totalCents"`
	Currency      string         `json:"currency"`
	ClientSecret  string         `json:"clientSecret,omitempty"`
	RedirectURL   string         `json:"redirectUrl,omitempty"`
	StockWarnings []StockWarning `json:"stockWarnings,omitempty"`
}

// RetryPaymentResult reports a fresh initiation for an existing order.
type RetryPaymentResult struct {
	OrderID      uuid.UUID `json:"orderId"`
	OrderKey     string    `json:"orderKey"`
	ClientSecret string    `json:"clientSecret,omitempty"`
	RedirectURL  string    `json:"redirectUrl,omitempty"`
}
