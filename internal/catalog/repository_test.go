package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/gourmetpress/gourmetpress-backend/pkg/db/models"
	pkgerrors "github.com/gourmetpress/gourmetpress-backend/pkg/errors"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:catalog_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Location{}, &models.MenuItem{}, &models.InventoryRecord{}))
	return db
}

func TestFindLocation(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	location := &models.Location{ID: uuid.New(), Name: "Downtown", Active: true}
	require.NoError(t, db.Create(location).Error)

	found, err := repo.FindLocation(ctx, location.ID)
	require.NoError(t, err)
	assert.Equal(t, "Downtown", found.Name)

	_, err = repo.FindLocation(ctx, uuid.New())
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestFindMenuItemsScopedToLocation(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	locationA := &models.Location{ID: uuid.New(), Name: "A", Active: true}
	locationB := &models.Location{ID: uuid.New(), Name: "B", Active: true}
	require.NoError(t, db.Create(locationA).Error)
	require.NoError(t, db.Create(locationB).Error)

	burger := &models.MenuItem{ID: uuid.New(), LocationID: locationA.ID, Name: "Burger", SKU: "BRG-1", UnitPriceCents: 1099, Available: true}
	fries := &models.MenuItem{ID: uuid.New(), LocationID: locationB.ID, Name: "Fries", SKU: "FRY-1", UnitPriceCents: 399, Available: true}
	require.NoError(t, db.Create(burger).Error)
	require.NoError(t, db.Create(fries).Error)
	require.NoError(t, db.Create(&models.InventoryRecord{MenuItemID: burger.ID, StockQty: 7, TrackStock: true}).Error)

	items, err := repo.FindMenuItems(ctx, locationA.ID, []uuid.UUID{burger.ID, fries.ID})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Burger", items[0].Name)
	require.NotNil(t, items[0].Inventory)
	assert.Equal(t, 7, items[0].Inventory.StockQty)
	assert.True(t, items[0].Inventory.TrackStock)

	empty, err := repo.FindMenuItems(ctx, locationA.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
