package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/gourmetpress/gourmetpress-backend/pkg/enums"
	"github.com/gourmetpress/gourmetpress-backend/pkg/types"
)

// Order is the central aggregate: the order row plus its owned items and
// notes form one consistency boundary. Orders are never physically deleted;
// cancelled and refunded orders remain for audit.
type Order struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	OrderKey      string              `gorm:"column:order_key;size:32;not null;uniqueIndex"`
	LocationID    uuid.UUID           `gorm:"column:location_id;type:uuid;not null;index"`
	CustomerID    *uuid.UUID          `gorm:"column:customer_id;type:uuid"`
	Status        enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'pending';index:idx_orders_status_created"`
	PaymentMethod enums.PaymentMethod `gorm:"column:payment_method;type:text;not null;default:'cod'"`
	PaymentStatus enums.PaymentStatus `gorm:"column:payment_status;type:text;not null;default:'pending'"`
	OrderType     enums.OrderType     `gorm:"column:order_type;type:text;not null;default:'delivery'"`
	TableID       *string             `gorm:"column:table_id"`

	Currency         string `gorm:"column:currency;size:3;not null;default:'USD'"`
	SubtotalCents    int64  `gorm:"column:subtotal_cents;not null"`
	TaxTotalCents    int64  `gorm:"column:tax_total_cents;not null;default:0"`
	DeliveryFeeCents int64  `gorm:"column:delivery_fee_cents;not null;default:0"`
	TipCents         int64  `gorm:"column:tip_cents;not null;default:0"`
	DiscountCents    int64  `gorm:"column:discount_cents;not null;default:0"`
	TotalCents       int64  `gorm:"column:total_cents;not null"`

	DeliveryAddress *types.Address `gorm:"column:delivery_address;type:jsonb;serializer:json"`
	DriverID        *uuid.UUID     `gorm:"column:driver_id;type:uuid;index"`
	CustomerNote    *string        `gorm:"column:customer_note"`
	ScheduledFor    *time.Time     `gorm:"column:scheduled_for"`
	TransactionID   *string        `gorm:"column:transaction_id;index"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Notes []OrderNote `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime;index:idx_orders_status_created"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
