package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/gourmetpress/gourmetpress-backend/pkg/logger"
)

const (
	defaultPendingTTL   = 24 * time.Hour
	defaultPendingBatch = 100
)

// PendingOrderJobParams configure the stale pending order sweeper.
type PendingOrderJobParams struct {
	Logger *logger.Logger
	Orders stalePendingCanceller
	TTL    time.Duration
	Batch  int
}

type stalePendingCanceller interface {
	CancelStalePending(ctx context.Context, olderThan time.Time, limit int) (int, error)
}

// NewPendingOrderJob builds the job that cancels orders left unpaid past
// their TTL, releasing any stock they reserved.
func NewPendingOrderJob(params PendingOrderJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("order service required")
	}
	ttl := params.TTL
	if ttl <= 0 {
		ttl = defaultPendingTTL
	}
	batch := params.Batch
	if batch <= 0 {
		batch = defaultPendingBatch
	}
	return &pendingOrderJob{
		logg:   params.Logger,
		orders: params.Orders,
		ttl:    ttl,
		batch:  batch,
		now:    time.Now,
	}, nil
}

type pendingOrderJob struct {
	logg   *logger.Logger
	orders stalePendingCanceller
	ttl    time.Duration
	batch  int
	now    func() time.Time
}

func (j *pendingOrderJob) Name() string { return "pending-order-ttl" }

func (j *pendingOrderJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.ttl)
	cancelled, err := j.orders.CancelStalePending(ctx, cutoff, j.batch)
	if err != nil {
		return fmt.Errorf("cancel stale pending orders: %w", err)
	}
	if cancelled > 0 {
		lctx := j.logg.WithField(ctx, "cancelled", cancelled)
		j.logg.Info(lctx, "stale pending orders cancelled")
	}
	return nil
}
