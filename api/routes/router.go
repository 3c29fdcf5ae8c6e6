package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gourmetpress/gourmetpress-backend/api/controllers"
	ordercontrollers "github.com/gourmetpress/gourmetpress-backend/api/controllers/orders"
	webhookcontrollers "github.com/gourmetpress/gourmetpress-backend/api/controllers/webhooks"
	"github.com/gourmetpress/gourmetpress-backend/api/middleware"
	"github.com/gourmetpress/gourmetpress-backend/internal/notifications"
	"github.com/gourmetpress/gourmetpress-backend/internal/orders"
	"github.com/gourmetpress/gourmetpress-backend/internal/payments"
	"github.com/gourmetpress/gourmetpress-backend/pkg/config"
	"github.com/gourmetpress/gourmetpress-backend/pkg/db"
	"github.com/gourmetpress/gourmetpress-backend/pkg/enums"
	"github.com/gourmetpress/gourmetpress-backend/pkg/logger"
	"github.com/gourmetpress/gourmetpress-backend/pkg/metrics"
	"github.com/gourmetpress/gourmetpress-backend/pkg/redis"
)

// RouterParams carry every dependency the HTTP surface needs. Wiring is
// explicit; handlers never reach into a shared registry.
type RouterParams struct {
	Config            *config.Config
	Logger            *logger.Logger
	DB                db.Pinger
	Redis             redis.Pinger
	OrderService      orders.Service
	NotificationsRepo notifications.Repository
	Gateways          *payments.Registry
	WebhookGuard      *payments.IdempotencyGuard
	OrderMetrics      *metrics.OrderMetrics
	MetricsGatherer   prometheus.Gatherer
}

func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.CORS(cfg.App.CORSOrigins),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.DB, p.Redis))
	})

	if p.MetricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.MetricsGatherer, promhttp.HandlerOpts{}))
	}

	// Gateway callbacks authenticate by signature, not bearer token.
	r.Route("/api/v1/payments", func(r chi.Router) {
		r.Post("/{gateway}/webhook", webhookcontrollers.PaymentWebhook(p.OrderService, p.Gateways, p.WebhookGuard, p.OrderMetrics, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/orders", func(r chi.Router) {
			// Public tracking lookup; returns a trimmed view keyed by order key.
			r.Get("/key/{orderKey}", ordercontrollers.Track(p.OrderService, logg))

			// Guest checkout: create accepts anonymous customers, a token
			// when present attributes the order.
			r.With(middleware.OptionalAuth(cfg.JWT, logg)).Post("/", ordercontrollers.Create(p.OrderService, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(cfg.JWT, logg))
				r.Get("/{orderId}", ordercontrollers.Detail(p.OrderService, logg))
				r.Post("/{orderId}/retry-payment", ordercontrollers.RetryPayment(p.OrderService, logg))

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(logg, enums.ActorRoleStaff, enums.ActorRoleDispatcher))
					r.Get("/", ordercontrollers.List(p.OrderService, logg))
					r.Put("/{orderId}/status", ordercontrollers.UpdateStatus(p.OrderService, logg))
					r.Post("/{orderId}/assign-driver", ordercontrollers.AssignDriver(p.OrderService, logg))
				})
			})
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Use(middleware.RequireRole(logg, enums.ActorRoleStaff, enums.ActorRoleDispatcher))
			r.Get("/", controllers.ListNotifications(p.NotificationsRepo, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(p.NotificationsRepo, logg))
		})
	})

	return r
}
