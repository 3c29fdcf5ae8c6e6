package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/gourmetpress/gourmetpress-backend/internal/payments"
	"github.com/gourmetpress/gourmetpress-backend/pkg/db/models"
	"github.com/gourmetpress/gourmetpress-backend/pkg/enums"
	pkgerrors "github.com/gourmetpress/gourmetpress-backend/pkg/errors"
)

func setupOrderTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:orders_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Location{},
		&models.MenuItem{},
		&models.InventoryRecord{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderNote{},
		&models.OutboxEvent{},
	))
	return db
}

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func seedLocation(t *testing.T, db *gorm.DB) *models.Location {
	t.Helper()
	location := &models.Location{ID: uuid.New(), Name: "Main Street", Active: true}
	require.NoError(t, db.Create(location).Error)
	return location
}

func seedMenuItem(t *testing.T, db *gorm.DB, locationID uuid.UUID, name string, priceCents int64, stock int, tracked bool) *models.MenuItem {
	t.Helper()
	item := &models.MenuItem{
		ID:             uuid.New(),
		LocationID:     locationID,
		Name:           name,
		SKU:            "SKU-" + name,
		UnitPriceCents: priceCents,
		Available:      true,
	}
	require.NoError(t, db.Create(item).Error)
	require.NoError(t, db.Create(&models.InventoryRecord{
		MenuItemID: item.ID,
		StockQty:   stock,
		TrackStock: tracked,
	}).Error)
	return item
}

func seedOrder(t *testing.T, db *gorm.DB, status enums.OrderStatus) *models.Order {
	t.Helper()
	location := seedLocation(t, db)
	key, err := GenerateOrderKey()
	require.NoError(t, err)
	order := &models.Order{
		ID:            uuid.New(),
		OrderKey:      key,
		LocationID:    location.ID,
		Status:        status,
		PaymentMethod: enums.PaymentMethodCOD,
		PaymentStatus: enums.PaymentStatusPending,
		OrderType:     enums.OrderTypePickup,
		Currency:      "USD",
		SubtotalCents: 1000,
		TotalCents:    1000,
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

// fakeGateway stands in for a payment provider in orchestrator tests.
type fakeGateway struct {
	id          enums.PaymentMethod
	enabled     bool
	initiations int
	initiateErr error
	initiation  payments.Initiation
}

func (g *fakeGateway) ID() enums.PaymentMethod { return g.id }
func (g *fakeGateway) Enabled() bool           { return g.enabled }

func (g *fakeGateway) Initiate(ctx context.Context, snapshot payments.OrderSnapshot) (*payments.Initiation, error) {
	g.initiations++
	if g.initiateErr != nil {
		return nil, g.initiateErr
	}
	result := g.initiation
	return &result, nil
}

func (g *fakeGateway) VerifyCallback(payload []byte, signature string) bool { return true }

func (g *fakeGateway) HandleCallback(payload []byte) (*payments.Outcome, error) {
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "not used in tests")
}

type fakeRegistry struct {
	gateways map[enums.PaymentMethod]payments.Gateway
}

func (r *fakeRegistry) Get(method enums.PaymentMethod) (payments.Gateway, error) {
	gateway, ok := r.gateways[method]
	if !ok || !gateway.Enabled() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment method unavailable")
	}
	return gateway, nil
}
