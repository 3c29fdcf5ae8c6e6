package payments

import (
	"context"

	"github.com/google/uuid"

	"github.com/gourmetpress/gourmetpress-backend/pkg/enums"
)

// OrderSnapshot is the slice of order state a gateway needs to start a
// payment. Gateways never see or mutate the order aggregate itself.
type OrderSnapshot struct {
	OrderID    uuid.UUID
	OrderKey   string
	TotalCents int64
	Currency   string
	CustomerID *uuid.UUID
}

// Initiation is what a gateway hands back after starting a payment.
// ClientSecret is the client-side continuation token for card flows;
// RedirectURL is where the customer lands next.
type Initiation struct {
	TransactionID string
	ClientSecret  string
	RedirectURL   string
}

// Outcome is the decoded result of a verified provider callback.
type Outcome struct {
	Gateway       enums.PaymentMethod
	TransactionID string
	OrderKey      string
	Status        enums.PaymentStatus
	Reason        string
}

// Gateway is the capability set every payment variant implements. The set
// of implementations is closed and registered explicitly at startup.
type Gateway interface {
	ID() enums.PaymentMethod
	Enabled() bool
	Initiate(ctx context.Context, snapshot OrderSnapshot) (*Initiation, error)
	VerifyCallback(payload []byte, signature string) bool
	HandleCallback(payload []byte) (*Outcome, error)
}
