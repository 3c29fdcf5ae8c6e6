package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/gourmetpress/gourmetpress-backend/api/routes"
	"github.com/gourmetpress/gourmetpress-backend/internal/catalog"
	"github.com/gourmetpress/gourmetpress-backend/internal/notifications"
	"github.com/gourmetpress/gourmetpress-backend/internal/orders"
	"github.com/gourmetpress/gourmetpress-backend/internal/payments"
	"github.com/gourmetpress/gourmetpress-backend/pkg/config"
	"github.com/gourmetpress/gourmetpress-backend/pkg/db"
	"github.com/gourmetpress/gourmetpress-backend/pkg/logger"
	"github.com/gourmetpress/gourmetpress-backend/pkg/metrics"
	"github.com/gourmetpress/gourmetpress-backend/pkg/migrate"
	"github.com/gourmetpress/gourmetpress-backend/pkg/outbox"
	"github.com/gourmetpress/gourmetpress-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	promRegistry := prometheus.NewRegistry()
	orderMetrics := metrics.NewOrderMetrics(promRegistry)

	gateways := payments.NewRegistry(cfg.Payments, cfg.Orders)
	webhookGuard, err := payments.NewIdempotencyGuard(redisClient, cfg.Payments.WebhookIdempotencyTTL, "webhook")
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook guard", err)
		os.Exit(1)
	}

	orderRepo := orders.NewRepository(dbClient.DB())
	publisher := outbox.NewService()
	stateMachine, err := orders.NewStateMachine(orderRepo, publisher)
	if err != nil {
		logg.Error(context.Background(), "failed to create state machine", err)
		os.Exit(1)
	}
	orderService, err := orders.NewService(
		dbClient,
		orderRepo,
		catalog.NewRepository(dbClient.DB()),
		stateMachine,
		gateways,
		publisher,
		logg,
		orderMetrics,
		cfg.Orders,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:            cfg,
			Logger:            logg,
			DB:                dbClient,
			Redis:             redisClient,
			OrderService:      orderService,
			NotificationsRepo: notifications.NewRepository(dbClient.DB()),
			Gateways:          gateways,
			WebhookGuard:      webhookGuard,
			OrderMetrics:      orderMetrics,
			MetricsGatherer:   promRegistry,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
