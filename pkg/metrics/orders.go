package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics tracks the order engine's throughput and payment outcomes.
type OrderMetrics struct {
	created     *prometheus.CounterVec
	transitions *prometheus.CounterVec
	webhooks    *prometheus.CounterVec
}

// NewOrderMetrics registers order metrics on the provided registerer.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	created := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Orders created, labeled by order type and payment method.",
	}, []string{"order_type", "payment_method"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_transitions_total",
		Help: "Successful order status transitions.",
	}, []string{"from", "to"})
	webhooks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_webhooks_total",
		Help: "Payment webhook callbacks, labeled by gateway and result.",
	}, []string{"gateway", "result"})
	reg.MustRegister(created, transitions, webhooks)
	return &OrderMetrics{
		created:     created,
		transitions: transitions,
		webhooks:    webhooks,
	}
}

// IncCreated increments the created counter for the order type and method.
func (m *OrderMetrics) IncCreated(orderType, paymentMethod string) {
	if m == nil || m.created == nil {
		return
	}
	m.created.WithLabelValues(normalizeLabel(orderType), normalizeLabel(paymentMethod)).Inc()
}

// IncTransition increments the transition counter for a status change.
func (m *OrderMetrics) IncTransition(from, to string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(from), normalizeLabel(to)).Inc()
}

// IncWebhook increments the webhook counter for a gateway result.
// Result is one of accepted, duplicate, rejected, failed.
func (m *OrderMetrics) IncWebhook(gateway, result string) {
	if m == nil || m.webhooks == nil {
		return
	}
	m.webhooks.WithLabelValues(normalizeLabel(gateway), normalizeLabel(result)).Inc()
}
