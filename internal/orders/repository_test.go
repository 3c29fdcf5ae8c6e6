package orders

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gourmetpress/gourmetpress-backend/pkg/db/models"
	"github.com/gourmetpress/gourmetpress-backend/pkg/enums"
	pkgerrors "github.com/gourmetpress/gourmetpress-backend/pkg/errors"
	"github.com/gourmetpress/gourmetpress-backend/pkg/pagination"
)

func TestRepositoryCreateAndFind(t *testing.T) {
	db := setupOrderTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := seedOrder(t, db, enums.OrderStatusPending)
	txn := "pi_lookup"
	require.NoError(t, db.Model(&models.Order{}).
		Where("id = ?", order.ID).
		Update("transaction_id", txn).Error)

	byID, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderKey, byID.OrderKey)

	byKey, err := repo.FindByKey(ctx, order.OrderKey)
	require.NoError(t, err)
	assert.Equal(t, order.ID, byKey.ID)

	byTxn, err := repo.FindByTransactionID(ctx, txn)
	require.NoError(t, err)
	assert.Equal(t, order.ID, byTxn.ID)

	_, err = repo.FindByID(ctx, uuid.New())
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestRepositoryCreateDuplicateKey(t *testing.T) {
	db := setupOrderTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	first := seedOrder(t, db, enums.OrderStatusPending)

	dup := &models.Order{
		ID:            uuid.New(),
		OrderKey:      first.OrderKey,
		LocationID:    first.LocationID,
		Status:        enums.OrderStatusPending,
		PaymentMethod: enums.PaymentMethodCOD,
		PaymentStatus: enums.PaymentStatusPending,
		OrderType:     enums.OrderTypePickup,
		Currency:      "USD",
		SubtotalCents: 500,
		TotalCents:    500,
	}
	err := repo.Create(ctx, dup)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
}

func TestRepositoryListPagination(t *testing.T) {
	db := setupOrderTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	location := seedLocation(t, db)
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		key, err := GenerateOrderKey()
		require.NoError(t, err)
		order := &models.Order{
			ID:            uuid.New(),
			OrderKey:      key,
			LocationID:    location.ID,
			Status:        enums.OrderStatusPending,
			PaymentMethod: enums.PaymentMethodCOD,
			PaymentStatus: enums.PaymentStatusPending,
			OrderType:     enums.OrderTypePickup,
			Currency:      "USD",
			SubtotalCents: int64(100 * (i + 1)),
			TotalCents:    int64(100 * (i + 1)),
			CreatedAt:     base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, db.Create(order).Error)
	}

	page1, err := repo.List(ctx, pagination.Params{Limit: 2}, ListFilters{})
	require.NoError(t, err)
	require.Len(t, page1.Orders, 2)
	require.NotEmpty(t, page1.NextCursor)
	// Newest first.
	assert.Equal(t, int64(500), page1.Orders[0].TotalCents)
	assert.Equal(t, int64(400), page1.Orders[1].TotalCents)

	page2, err := repo.List(ctx, pagination.Params{Limit: 2, Cursor: page1.NextCursor}, ListFilters{})
	require.NoError(t, err)
	require.Len(t, page2.Orders, 2)
	assert.Equal(t, int64(300), page2.Orders[0].TotalCents)
	assert.Equal(t, int64(200), page2.Orders[1].TotalCents)

	page3, err := repo.List(ctx, pagination.Params{Limit: 2, Cursor: page2.NextCursor}, ListFilters{})
	require.NoError(t, err)
	require.Len(t, page3.Orders, 1)
	assert.Equal(t, int64(100), page3.Orders[0].TotalCents)
	assert.Empty(t, page3.NextCursor)

	_, err = repo.List(ctx, pagination.Params{Limit: 2, Cursor: "not-a-cursor"}, ListFilters{})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestRepositoryListFilters(t *testing.T) {
	db := setupOrderTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	locationA := seedLocation(t, db)
	locationB := seedLocation(t, db)
	driver := uuid.New()

	makeOrder := func(locID uuid.UUID, status enums.OrderStatus, driverID *uuid.UUID, createdAt time.Time) *models.Order {
		key, err := GenerateOrderKey()
		require.NoError(t, err)
		order := &models.Order{
			ID:            uuid.New(),
			OrderKey:      key,
			LocationID:    locID,
			Status:        status,
			PaymentMethod: enums.PaymentMethodCOD,
			PaymentStatus: enums.PaymentStatusPending,
			OrderType:     enums.OrderTypePickup,
			Currency:      "USD",
			SubtotalCents: 1000,
			TotalCents:    1000,
			DriverID:      driverID,
			CreatedAt:     createdAt,
		}
		require.NoError(t, db.Create(order).Error)
		return order
	}

	now := time.Now()
	pendingA := makeOrder(locationA.ID, enums.OrderStatusPending, nil, now.Add(-3*time.Hour))
	confirmedA := makeOrder(locationA.ID, enums.OrderStatusConfirmed, nil, now.Add(-2*time.Hour))
	deliveringB := makeOrder(locationB.ID, enums.OrderStatusOutForDelivery, &driver, now.Add(-time.Hour))

	statusPending := enums.OrderStatusPending
	byStatus, err := repo.List(ctx, pagination.Params{}, ListFilters{Status: &statusPending})
	require.NoError(t, err)
	require.Len(t, byStatus.Orders, 1)
	assert.Equal(t, pendingA.ID, byStatus.Orders[0].ID)

	byLocation, err := repo.List(ctx, pagination.Params{}, ListFilters{LocationID: &locationA.ID})
	require.NoError(t, err)
	assert.Len(t, byLocation.Orders, 2)

	byDriver, err := repo.List(ctx, pagination.Params{}, ListFilters{DriverID: &driver})
	require.NoError(t, err)
	require.Len(t, byDriver.Orders, 1)
	assert.Equal(t, deliveringB.ID, byDriver.Orders[0].ID)

	from := now.Add(-150 * time.Minute)
	to := now.Add(-30 * time.Minute)
	byWindow, err := repo.List(ctx, pagination.Params{}, ListFilters{DateFrom: &from, DateTo: &to})
	require.NoError(t, err)
	require.Len(t, byWindow.Orders, 2)
	assert.Equal(t, deliveringB.ID, byWindow.Orders[0].ID)
	assert.Equal(t, confirmedA.ID, byWindow.Orders[1].ID)
}

func TestRepositoryUpdateStatusGuarded(t *testing.T) {
	db := setupOrderTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := seedOrder(t, db, enums.OrderStatusPending)

	applied, err := repo.UpdateStatusGuarded(ctx, order.ID, enums.OrderStatusPending, enums.OrderStatusConfirmed, nil)
	require.NoError(t, err)
	assert.True(t, applied)

	// Same guard again loses: the row is no longer pending.
	applied, err = repo.UpdateStatusGuarded(ctx, order.ID, enums.OrderStatusPending, enums.OrderStatusPreparing, nil)
	require.NoError(t, err)
	assert.False(t, applied)

	var reloaded models.Order
	require.NoError(t, db.First(&reloaded, "id = ?", order.ID).Error)
	assert.Equal(t, enums.OrderStatusConfirmed, reloaded.Status)

	driver := uuid.New()
	applied, err = repo.UpdateStatusGuarded(ctx, order.ID, enums.OrderStatusConfirmed, enums.OrderStatusOutForDelivery, map[string]any{"driver_id": driver})
	require.NoError(t, err)
	assert.True(t, applied)

	require.NoError(t, db.First(&reloaded, "id = ?", order.ID).Error)
	require.NotNil(t, reloaded.DriverID)
	assert.Equal(t, driver, *reloaded.DriverID)
}

func TestRepositoryAppendNoteOrdering(t *testing.T) {
	db := setupOrderTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := seedOrder(t, db, enums.OrderStatusPending)
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.AppendNote(ctx, &models.OrderNote{
			ID:        uuid.New(),
			OrderID:   order.ID,
			Note:      fmt.Sprintf("note %d", i),
			ActorRole: enums.ActorRoleSystem,
			CreatedAt: time.Now().Add(time.Duration(i) * time.Second),
		}))
	}

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, found.Notes, 3)
	assert.Equal(t, "note 2", found.Notes[0].Note)
	assert.Equal(t, "note 0", found.Notes[2].Note)
}

func TestRepositoryListStalePending(t *testing.T) {
	db := setupOrderTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	stale := seedOrder(t, db, enums.OrderStatusPending)
	require.NoError(t, db.Model(&models.Order{}).
		Where("id = ?", stale.ID).
		Update("created_at", time.Now().Add(-2*time.Hour)).Error)

	fresh := seedOrder(t, db, enums.OrderStatusPending)
	confirmed := seedOrder(t, db, enums.OrderStatusConfirmed)
	require.NoError(t, db.Model(&models.Order{}).
		Where("id = ?", confirmed.ID).
		Update("created_at", time.Now().Add(-2*time.Hour)).Error)

	rows, err := repo.ListStalePending(ctx, time.Now().Add(-time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, stale.ID, rows[0].ID)
	assert.NotEqual(t, fresh.ID, rows[0].ID)
}
