package outbox

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/gourmetpress/gourmetpress-backend/pkg/db/models"
	"github.com/gourmetpress/gourmetpress-backend/pkg/enums"
	"github.com/gourmetpress/gourmetpress-backend/pkg/errors"
)

// Repository drains pending outbox rows for in-process delivery.
type Repository interface {
	FindPending(ctx context.Context, limit int) ([]models.OutboxEvent, error)
	MarkDelivered(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64) error
	DeleteDeliveredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindPending(ctx context.Context, limit int) ([]models.OutboxEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []models.OutboxEvent
	err := r.db.WithContext(ctx).
		Where("status = ?", enums.OutboxStatusPending).
		Order("id ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "find pending outbox events")
	}
	return rows, nil
}

func (r *repository) MarkDelivered(ctx context.Context, id int64) error {
	now := time.Now().UTC()
	err := r.db.WithContext(ctx).
		Model(&models.OutboxEvent{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":       enums.OutboxStatusDelivered,
			"delivered_at": &now,
			"attempts":     gorm.Expr("attempts + 1"),
		}).Error
	if err != nil {
		return errors.Wrap(errors.CodeInternal, err, "mark outbox event delivered")
	}
	return nil
}

// DeleteDeliveredBefore drops delivered rows older than the cutoff and
// returns how many were removed.
func (r *repository) DeleteDeliveredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("status = ? AND delivered_at < ?", enums.OutboxStatusDelivered, cutoff).
		Delete(&models.OutboxEvent{})
	if result.Error != nil {
		return 0, errors.Wrap(errors.CodeInternal, result.Error, "delete delivered outbox events")
	}
	return result.RowsAffected, nil
}

func (r *repository) MarkFailed(ctx context.Context, id int64) error {
	err := r.db.WithContext(ctx).
		Model(&models.OutboxEvent{}).
		Where("id = ?", id).
		Update("attempts", gorm.Expr("attempts + 1")).Error
	if err != nil {
		return errors.Wrap(errors.CodeInternal, err, "mark outbox event failed")
	}
	return nil
}
