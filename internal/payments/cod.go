package payments

import (
	"context"
	"fmt"
	"net/url"

	"github.com/gourmetpress/gourmetpress-backend/pkg/config"
	"github.com/gourmetpress/gourmetpress-backend/pkg/enums"
	pkgerrors "github.com/gourmetpress/gourmetpress-backend/pkg/errors"
)

// codGateway is the pay-on-delivery variant. It never talks to an external
// provider: initiation always succeeds with a local redirect, and there is
// no callback path because nothing asynchronous ever happens.
type codGateway struct {
	enabled      bool
	redirectBase string
}

// NewCODGateway builds the pay-on-delivery gateway.
func NewCODGateway(cfg config.PaymentsConfig, ordersCfg config.OrdersConfig) Gateway {
	return &codGateway{
		enabled:      cfg.EnableCOD,
		redirectBase: ordersCfg.OrderBaseURL,
	}
}

func (g *codGateway) ID() enums.PaymentMethod { return enums.PaymentMethodCOD }

func (g *codGateway) Enabled() bool { return g.enabled }

func (g *codGateway) Initiate(ctx context.Context, snapshot OrderSnapshot) (*Initiation, error) {
	if snapshot.OrderKey == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order key required")
	}
	redirect := fmt.Sprintf("%s?key=%s", g.redirectBase, url.QueryEscape(snapshot.OrderKey))
	return &Initiation{RedirectURL: redirect}, nil
}

func (g *codGateway) VerifyCallback(payload []byte, signature string) bool {
	return false
}

func (g *codGateway) HandleCallback(payload []byte) (*Outcome, error) {
	return nil, pkgerrors.New(pkgerrors.CodeValidation, "cod gateway does not accept callbacks")
}
