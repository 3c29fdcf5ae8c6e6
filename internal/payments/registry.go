package payments

import (
	"fmt"

	"github.com/gourmetpress/gourmetpress-backend/pkg/config"
	"github.com/gourmetpress/gourmetpress-backend/pkg/enums"
	pkgerrors "github.com/gourmetpress/gourmetpress-backend/pkg/errors"
)

// Registry holds the closed set of gateway variants, registered at startup.
// Lookup by method never constructs anything at runtime.
type Registry struct {
	gateways map[enums.PaymentMethod]Gateway
}

// NewRegistry wires the known gateways from configuration.
func NewRegistry(cfg config.PaymentsConfig, ordersCfg config.OrdersConfig) *Registry {
	reg := &Registry{gateways: make(map[enums.PaymentMethod]Gateway)}
	reg.register(NewCODGateway(cfg, ordersCfg))
	reg.register(NewCardGateway(cfg))
	return reg
}

func (r *Registry) register(gateway Gateway) {
	if gateway == nil {
		return
	}
	r.gateways[gateway.ID()] = gateway
}

// Get returns the enabled gateway for the method.
func (r *Registry) Get(method enums.PaymentMethod) (Gateway, error) {
	gateway, ok := r.gateways[method]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown payment method %q", method))
	}
	if !gateway.Enabled() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("payment method %q is disabled", method))
	}
	return gateway, nil
}

// Enabled lists the methods currently accepting payments.
func (r *Registry) Enabled() []enums.PaymentMethod {
	var methods []enums.PaymentMethod
	for method, gateway := range r.gateways {
		if gateway.Enabled() {
			methods = append(methods, method)
		}
	}
	return methods
}
