package cron

import (
	"context"
	"fmt"

	"github.com/gourmetpress/gourmetpress-backend/pkg/logger"
)

const (
	defaultDispatchBatch  = 50
	defaultDispatchRounds = 10
)

// NotificationDispatchJobParams configure the outbox drain job.
type NotificationDispatchJobParams struct {
	Logger     *logger.Logger
	Dispatcher eventDispatcher
	Batch      int
}

type eventDispatcher interface {
	Dispatch(ctx context.Context, limit int) (int, error)
}

// NewNotificationDispatchJob builds the job that drains pending outbox
// events into staff notifications.
func NewNotificationDispatchJob(params NotificationDispatchJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Dispatcher == nil {
		return nil, fmt.Errorf("dispatcher required")
	}
	batch := params.Batch
	if batch <= 0 {
		batch = defaultDispatchBatch
	}
	return &notificationDispatchJob{
		logg:       params.Logger,
		dispatcher: params.Dispatcher,
		batch:      batch,
	}, nil
}

type notificationDispatchJob struct {
	logg       *logger.Logger
	dispatcher eventDispatcher
	batch      int
}

func (j *notificationDispatchJob) Name() string { return "notification-dispatch" }

// Run drains in rounds so one run cannot loop forever on a backlog that
// refuses to shrink.
func (j *notificationDispatchJob) Run(ctx context.Context) error {
	total := 0
	for round := 0; round < defaultDispatchRounds; round++ {
		delivered, err := j.dispatcher.Dispatch(ctx, j.batch)
		if err != nil {
			return fmt.Errorf("dispatch outbox events: %w", err)
		}
		total += delivered
		if delivered < j.batch {
			break
		}
	}
	if total > 0 {
		lctx := j.logg.WithField(ctx, "delivered", total)
		j.logg.Info(lctx, "outbox events dispatched")
	}
	return nil
}
