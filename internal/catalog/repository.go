package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gourmetpress/gourmetpress-backend/pkg/db/models"
	pkgerrors "github.com/gourmetpress/gourmetpress-backend/pkg/errors"
)

// Repository exposes the catalog read model the order engine snapshots from.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindLocation(ctx context.Context, id uuid.UUID) (*models.Location, error)
	FindMenuItems(ctx context.Context, locationID uuid.UUID, ids []uuid.UUID) ([]models.MenuItem, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a catalog repository backed by the provided DB.
func NewRepository(db *gorm.DB) Repository {
	if db == nil {
		return nil
	}
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindLocation(ctx context.Context, id uuid.UUID) (*models.Location, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "location id required")
	}
	var location models.Location
	err := r.db.WithContext(ctx).First(&location, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "location not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find location")
	}
	return &location, nil
}

func (r *repository) FindMenuItems(ctx context.Context, locationID uuid.UUID, ids []uuid.UUID) ([]models.MenuItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []models.MenuItem
	query := r.db.WithContext(ctx).Preload("Inventory").Where("id IN ?", ids)
	if locationID != uuid.Nil {
		query = query.Where("location_id = ?", locationID)
	}
	if err := query.Find(&items).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find menu items")
	}
	return items, nil
}
