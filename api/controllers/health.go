package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gourmetpress/gourmetpress-backend/api/responses"
	"github.com/gourmetpress/gourmetpress-backend/pkg/config"
	"github.com/gourmetpress/gourmetpress-backend/pkg/db"
	"github.com/gourmetpress/gourmetpress-backend/pkg/logger"
	"github.com/gourmetpress/gourmetpress-backend/pkg/redis"
)

const readinessTimeout = 2 * time.Second

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-GourmetPress-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the backing stores and reports per-dependency status.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-GourmetPress-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		status := map[string]string{"status": "ready"}
		healthy := true

		if dbP != nil {
			if err := dbP.Ping(ctx); err != nil {
				status["db"] = "down"
				healthy = false
				if logg != nil {
					logg.Error(ctx, "db readiness check failed", err)
				}
			} else {
				status["db"] = "up"
			}
		}

		if redisP != nil {
			if err := redisP.Ping(ctx); err != nil {
				status["redis"] = "down"
				healthy = false
				if logg != nil {
					logg.Error(ctx, "redis readiness check failed", err)
				}
			} else {
				status["redis"] = "up"
			}
		}

		if !healthy {
			status["status"] = "degraded"
			responses.WriteSuccessStatus(w, http.StatusServiceUnavailable, status)
			return
		}
		responses.WriteSuccess(w, status)
	}
}
