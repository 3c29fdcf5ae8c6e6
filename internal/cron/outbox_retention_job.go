package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/gourmetpress/gourmetpress-backend/pkg/logger"
)

const outboxRetentionDays = 30

// OutboxRetentionJobParams configure the delivered event reaper.
type OutboxRetentionJobParams struct {
	Logger     *logger.Logger
	Repository outboxRetentionRepo
	Retention  int
}

type outboxRetentionRepo interface {
	DeleteDeliveredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// NewOutboxRetentionJob builds the job that prunes delivered outbox rows
// past the retention window.
func NewOutboxRetentionJob(params OutboxRetentionJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("outbox repository required")
	}
	retention := params.Retention
	if retention <= 0 {
		retention = outboxRetentionDays
	}
	return &outboxRetentionJob{
		logg:      params.Logger,
		repo:      params.Repository,
		retention: retention,
		now:       time.Now,
	}, nil
}

type outboxRetentionJob struct {
	logg      *logger.Logger
	repo      outboxRetentionRepo
	retention int
	now       func() time.Time
}

func (j *outboxRetentionJob) Name() string { return "outbox-retention" }

func (j *outboxRetentionJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-time.Duration(j.retention) * 24 * time.Hour)
	deleted, err := j.repo.DeleteDeliveredBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("outbox retention: %w", err)
	}
	if deleted > 0 {
		lctx := j.logg.WithField(ctx, "deleted", deleted)
		j.logg.Info(lctx, "delivered outbox events pruned")
	}
	return nil
}
