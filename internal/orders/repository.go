package orders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gourmetpress/gourmetpress-backend/pkg/db"
	"github.com/gourmetpress/gourmetpress-backend/pkg/db/models"
	"github.com/gourmetpress/gourmetpress-backend/pkg/enums"
	pkgerrors "github.com/gourmetpress/gourmetpress-backend/pkg/errors"
	"github.com/gourmetpress/gourmetpress-backend/pkg/pagination"
)

// ListFilters narrows the order list query.
type ListFilters struct {
	Status     *enums.OrderStatus
	LocationID *uuid.UUID
	DriverID   *uuid.UUID
	DateFrom   *time.Time
	DateTo     *time.Time
}

// OrderList is one page of orders plus the cursor for the next page.
type OrderList struct {
	Orders     []models.Order
	NextCursor string
}

// Repository owns order aggregate persistence. All writes that must commit
// together run through WithTx so the caller controls the boundary.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByKey(ctx context.Context, orderKey string) (*models.Order, error)
	FindByTransactionID(ctx context.Context, transactionID string) (*models.Order, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*OrderList, error)
	AppendNote(ctx context.Context, note *models.OrderNote) error
	UpdateStatusGuarded(ctx context.Context, orderID uuid.UUID, from, to enums.OrderStatus, extra map[string]any) (bool, error)
	UpdatePaymentState(ctx context.Context, orderID uuid.UUID, status enums.PaymentStatus, transactionID *string) error
	ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]models.Order, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an order repository backed by the provided DB.
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

func (r *repository) Create(ctx context.Context, order *models.Order) error {
	if order == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order required")
	}
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "order key already exists")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "insert order")
	}
	return nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	return r.findOne(ctx, "id = ?", id)
}

func (r *repository) FindByKey(ctx context.Context, orderKey string) (*models.Order, error) {
	if orderKey == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order key required")
	}
	return r.findOne(ctx, "order_key = ?", orderKey)
}

func (r *repository) FindByTransactionID(ctx context.Context, transactionID string) (*models.Order, error) {
	if transactionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction id required")
	}
	return r.findOne(ctx, "transaction_id = ?", transactionID)
}

func (r *repository) findOne(ctx context.Context, query string, arg any) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("position ASC")
		}).
		Preload("Notes", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("created_at DESC")
		}).
		First(&order, query, arg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find order")
	}
	return &order, nil
}

func (r *repository) List(ctx context.Context, params pagination.Params, filters ListFilters) (*OrderList, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).Model(&models.Order{}).
		Preload("Items", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("position ASC")
		})

	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.LocationID != nil {
		query = query.Where("location_id = ?", *filters.LocationID)
	}
	if filters.DriverID != nil {
		query = query.Where("driver_id = ?", *filters.DriverID)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at < ?", *filters.DateTo)
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.Order
	err = query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}

	list := &OrderList{Orders: rows}
	if len(rows) > limit {
		list.Orders = rows[:limit]
		last := list.Orders[limit-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return list, nil
}

func (r *repository) AppendNote(ctx context.Context, note *models.OrderNote) error {
	if note == nil || note.OrderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "note with order id required")
	}
	if note.ID == uuid.Nil {
		note.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(note).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "append order note")
	}
	return nil
}

// UpdateStatusGuarded applies the transition only if the row still holds the
// expected current status. Zero rows affected means another writer got there
// first and the caller must treat the transition as lost.
func (r *repository) UpdateStatusGuarded(ctx context.Context, orderID uuid.UUID, from, to enums.OrderStatus, extra map[string]any) (bool, error) {
	updates := map[string]any{
		"status":     to,
		"updated_at": time.Now().UTC(),
	}
	for column, value := range extra {
		updates[column] = value
	}
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, from).
		Updates(updates)
	if result.Error != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, result.Error, "update order status")
	}
	return result.RowsAffected == 1, nil
}

func (r *repository) UpdatePaymentState(ctx context.Context, orderID uuid.UUID, status enums.PaymentStatus, transactionID *string) error {
	updates := map[string]any{
		"payment_status": status,
		"updated_at":     time.Now().UTC(),
	}
	if transactionID != nil {
		updates["transaction_id"] = *transactionID
	}
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(updates).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update payment state")
	}
	return nil
}

func (r *repository) ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]models.Order, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("status = ? AND payment_status = ? AND created_at < ?",
			enums.OrderStatusPending, enums.PaymentStatusPending, olderThan).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list stale pending orders")
	}
	return rows, nil
}
