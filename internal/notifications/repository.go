package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gourmetpress/gourmetpress-backend/pkg/db/models"
	pkgerrors "github.com/gourmetpress/gourmetpress-backend/pkg/errors"
)

// Repository persists staff-facing notifications.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, notification *models.Notification) error
	List(ctx context.Context, locationID uuid.UUID, unreadOnly bool, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(gdb *gorm.DB) Repository {
	if gdb == nil {
		return nil
	}
	return &repository{db: gdb}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, notification *models.Notification) error {
	if notification == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification required")
	}
	if notification.ID == uuid.Nil {
		notification.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(notification).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "insert notification")
	}
	return nil
}

func (r *repository) List(ctx context.Context, locationID uuid.UUID, unreadOnly bool, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	query := r.db.WithContext(ctx).
		Where("location_id = ?", locationID).
		Order("created_at DESC").
		Limit(limit)
	if unreadOnly {
		query = query.Where("read_at IS NULL")
	}
	var rows []models.Notification
	if err := query.Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list notifications")
	}
	return rows, nil
}

func (r *repository) MarkRead(ctx context.Context, id uuid.UUID) error {
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND read_at IS NULL", id).
		Update("read_at", &now)
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, result.Error, "mark notification read")
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found or already read")
	}
	return nil
}
