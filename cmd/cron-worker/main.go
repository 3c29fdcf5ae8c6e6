package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/gourmetpress/gourmetpress-backend/internal/catalog"
	"github.com/gourmetpress/gourmetpress-backend/internal/cron"
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
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
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
		payments.NewRegistry(cfg.Payments, cfg.Orders),
		publisher,
		logg,
		nil,
		cfg.Orders,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	dispatcher, err := notifications.NewDispatcher(
		outbox.NewRepository(dbClient.DB()),
		notifications.NewRepository(dbClient.DB()),
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create dispatcher", err)
		os.Exit(1)
	}

	pendingJob, err := cron.NewPendingOrderJob(cron.PendingOrderJobParams{
		Logger: logg,
		Orders: orderService,
		TTL:    cfg.Orders.PendingTTL,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create pending order job", err)
		os.Exit(1)
	}
	dispatchJob, err := cron.NewNotificationDispatchJob(cron.NotificationDispatchJobParams{
		Logger:     logg,
		Dispatcher: dispatcher,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create dispatch job", err)
		os.Exit(1)
	}
	retentionJob, err := cron.NewOutboxRetentionJob(cron.OutboxRetentionJobParams{
		Logger:     logg,
		Repository: outbox.NewRepository(dbClient.DB()),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create retention job", err)
		os.Exit(1)
	}

	lock, err := cron.NewRedisLock(redisClient, lockName(cfg.App.Env), cfg.Cron.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(dispatchJob, pendingJob, retentionJob),
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func lockName(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("cron-worker:%s", env)
}
