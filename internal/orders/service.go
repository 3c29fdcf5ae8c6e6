package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/gourmetpress/gourmetpress-backend/internal/catalog"
	"github.com/gourmetpress/gourmetpress-backend/internal/inventory"
	"github.com/gourmetpress/gourmetpress-backend/internal/payments"
	"github.com/gourmetpress/gourmetpress-backend/pkg/config"
	"github.com/gourmetpress/gourmetpress-backend/pkg/db/models"
	"github.com/gourmetpress/gourmetpress-backend/pkg/enums"
	pkgerrors "github.com/gourmetpress/gourmetpress-backend/pkg/errors"
	"github.com/gourmetpress/gourmetpress-backend/pkg/logger"
	"github.com/gourmetpress/gourmetpress-backend/pkg/metrics"
	"github.com/gourmetpress/gourmetpress-backend/pkg/money"
	"github.com/gourmetpress/gourmetpress-backend/pkg/outbox"
	"github.com/gourmetpress/gourmetpress-backend/pkg/pagination"
)

const orderKeyRetries = 3

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type inventoryEngine interface {
	Reserve(ctx context.Context, tx *gorm.DB, requests []inventory.ReservationRequest, lowStockThreshold int) ([]inventory.ReservationResult, error)
	Release(ctx context.Context, tx *gorm.DB, requests []inventory.ReservationRequest) error
}

type gatewayResolver interface {
	Get(method enums.PaymentMethod) (payments.Gateway, error)
}

type ledgerEngine struct{}

func (ledgerEngine) Reserve(ctx context.Context, tx *gorm.DB, requests []inventory.ReservationRequest, lowStockThreshold int) ([]inventory.ReservationResult, error) {
	return inventory.Reserve(ctx, tx, requests, lowStockThreshold)
}

func (ledgerEngine) Release(ctx context.Context, tx *gorm.DB, requests []inventory.ReservationRequest) error {
	return inventory.Release(ctx, tx, requests)
}

// Service is the order orchestrator: it coordinates the order store,
// inventory ledger, state machine and payment gateways so every operation
// sees one consistent aggregate.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*CreateOrderResult, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetByKey(ctx context.Context, orderKey string) (*models.Order, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*OrderList, error)
	ChangeStatus(ctx context.Context, orderID uuid.UUID, target enums.OrderStatus, actor Actor) error
	AssignDriver(ctx context.Context, orderID, driverID uuid.UUID, actor Actor) error
	ConfirmPayment(ctx context.Context, outcome *payments.Outcome) error
	RetryPayment(ctx context.Context, orderID uuid.UUID) (*RetryPaymentResult, error)
	CancelStalePending(ctx context.Context, olderThan time.Time, limit int) (int, error)
}

type service struct {
	tx           txRunner
	repo         Repository
	catalogRepo  catalog.Repository
	stateMachine *StateMachine
	gateways     gatewayResolver
	ledger       inventoryEngine
	outbox       outboxPublisher
	logg         *logger.Logger
	orderMetrics *metrics.OrderMetrics
	cfg          config.OrdersConfig
}

// NewService builds the orchestrator. Dependencies are explicit; there is
// no process-wide registry to resolve them from.
func NewService(
	tx txRunner,
	repo Repository,
	catalogRepo catalog.Repository,
	stateMachine *StateMachine,
	gateways gatewayResolver,
	publisher outboxPublisher,
	logg *logger.Logger,
	orderMetrics *metrics.OrderMetrics,
	cfg config.OrdersConfig,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if catalogRepo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if stateMachine == nil {
		return nil, fmt.Errorf("state machine required")
	}
	if gateways == nil {
		return nil, fmt.Errorf("gateway registry required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		tx:           tx,
		repo:         repo,
		catalogRepo:  catalogRepo,
		stateMachine: stateMachine,
		gateways:     gateways,
		ledger:       ledgerEngine{},
		outbox:       publisher,
		logg:         logg,
		orderMetrics: orderMetrics,
		cfg:          cfg,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateOrderInput) (*CreateOrderResult, error) {
	if err := s.validateCreateInput(input); err != nil {
		return nil, err
	}
	gateway, err := s.gateways.Get(input.PaymentMethod)
	if err != nil {
		return nil, err
	}

	location, err := s.catalogRepo.FindLocation(ctx, input.LocationID)
	if err != nil {
		return nil, err
	}
	if !location.Active {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "location is not accepting orders")
	}

	itemIDs := make([]uuid.UUID, len(input.Items))
	for i, item := range input.Items {
		itemIDs[i] = item.MenuItemID
	}
	menuItems, err := s.catalogRepo.FindMenuItems(ctx, input.LocationID, itemIDs)
	if err != nil {
		return nil, err
	}
	menuByID := make(map[uuid.UUID]*models.MenuItem, len(menuItems))
	for i := range menuItems {
		menuByID[menuItems[i].ID] = &menuItems[i]
	}

	order, reservations, err := s.buildAggregate(input, menuByID)
	if err != nil {
		return nil, err
	}

	var warnings []StockWarning
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		results, rerr := s.ledger.Reserve(ctx, tx, reservations, s.cfg.LowStockNotice)
		if rerr != nil {
			return rerr
		}
		warnings = s.collectWarnings(results, menuByID)

		repo := s.repo.WithTx(tx)
		if cerr := s.createWithFreshKey(ctx, repo, order); cerr != nil {
			return cerr
		}

		note := &models.OrderNote{
			OrderID:   order.ID,
			Note:      "Order placed",
			ActorRole: enums.ActorRoleCustomer,
		}
		if input.CustomerID != nil {
			note.ActorID = input.CustomerID
		}
		if nerr := repo.AppendNote(ctx, note); nerr != nil {
			return nerr
		}

		for _, warning := range warnings {
			if !warning.Oversold && !warning.LowStock {
				continue
			}
			eerr := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventInventoryLowStock,
				AggregateType: enums.AggregateMenuItem,
				AggregateID:   warning.MenuItemID,
				Data: outbox.LowStockEvent{
					MenuItemID: warning.MenuItemID,
					Name:       warning.Name,
					LocationID: order.LocationID,
					NewStock:   warning.NewStock,
					Oversold:   warning.Oversold,
				},
			})
			if eerr != nil {
				return eerr
			}
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Data: outbox.OrderCreatedEvent{
				OrderID:    order.ID,
				OrderKey:   order.OrderKey,
				LocationID: order.LocationID,
				OrderType:  order.OrderType.String(),
				TotalCents: order.TotalCents,
				Currency:   order.Currency,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	s.orderMetrics.IncCreated(order.OrderType.String(), order.PaymentMethod.String())
	octx := s.logg.WithOrderKey(ctx, order.OrderKey)
	s.logg.Info(octx, "order created")
	for _, warning := range warnings {
		if warning.Oversold || warning.LowStock {
			wctx := s.logg.WithFields(octx, map[string]any{
				"menu_item_id": warning.MenuItemID,
				"new_stock":    warning.NewStock,
			})
			s.logg.Warn(wctx, "stock warning on order creation")
		}
	}

	result := &CreateOrderResult{
		OrderID:       order.ID,
		OrderKey:      order.OrderKey,
		Status:        order.Status.String(),
		TotalCents:    order.TotalCents,
		Currency:      order.Currency,
		StockWarnings: warnings,
	}

	// The order is committed before payment initiation on purpose: a
	// gateway outage must not destroy a placed order. On failure the order
	// stays pending and the customer retries.
	initiation, err := gateway.Initiate(ctx, payments.OrderSnapshot{
		OrderID:    order.ID,
		OrderKey:   order.OrderKey,
		TotalCents: order.TotalCents,
		Currency:   order.Currency,
		CustomerID: order.CustomerID,
	})
	if err != nil {
		s.logg.Error(octx, "payment initiation failed", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "payment initiation failed").
			WithDetails(map[string]any{
				"orderId":  order.ID,
				"orderKey": order.OrderKey,
			})
	}
	if initiation.TransactionID != "" {
		txnID := initiation.TransactionID
		if uerr := s.repo.UpdatePaymentState(ctx, order.ID, order.PaymentStatus, &txnID); uerr != nil {
			return nil, uerr
		}
	}
	result.ClientSecret = initiation.ClientSecret
	result.RedirectURL = initiation.RedirectURL
	return result, nil
}

func (s *service) validateCreateInput(input CreateOrderInput) error {
	if input.LocationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "location id required")
	}
	if len(input.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one item")
	}
	if !input.OrderType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid order type %q", input.OrderType))
	}
	if !input.PaymentMethod.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment method %q", input.PaymentMethod))
	}
	if input.OrderType == enums.OrderTypeDineIn && (input.TableID == nil || *input.TableID == "") {
		return pkgerrors.New(pkgerrors.CodeValidation, "dine-in orders require a table id")
	}
	if input.OrderType == enums.OrderTypeDelivery {
		if input.DeliveryAddress == nil || !input.DeliveryAddress.IsComplete() {
			return pkgerrors.New(pkgerrors.CodeValidation, "delivery orders require a complete address")
		}
	}
	if input.TipCents < 0 || input.DiscountCents < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "tip and discount must be non-negative")
	}
	for _, item := range input.Items {
		if item.MenuItemID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "menu item id required on every line")
		}
		if item.Qty <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive on every line")
		}
	}
	return nil
}

// buildAggregate snapshots menu items into order lines and computes the
// monetary fields so total == subtotal + tax + deliveryFee + tip - discount.
func (s *service) buildAggregate(input CreateOrderInput, menuByID map[uuid.UUID]*models.MenuItem) (*models.Order, []inventory.ReservationRequest, error) {
	subtotal := money.FromCents(0)
	items := make([]models.OrderItem, 0, len(input.Items))
	reservations := make([]inventory.ReservationRequest, 0, len(input.Items))

	for position, line := range input.Items {
		menuItem, ok := menuByID[line.MenuItemID]
		if !ok {
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("menu item %s not found at this location", line.MenuItemID))
		}
		if !menuItem.Available {
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("menu item %q is unavailable", menuItem.Name))
		}

		unit := money.FromCents(menuItem.UnitPriceCents)
		lineTotal := unit.MulQty(line.Qty)
		subtotal = subtotal.Add(lineTotal)

		menuItemID := menuItem.ID
		items = append(items, models.OrderItem{
			ID:                  uuid.New(),
			MenuItemID:          &menuItemID,
			Name:                menuItem.Name,
			SKU:                 menuItem.SKU,
			UnitPriceCents:      unit.Cents(),
			Qty:                 line.Qty,
			LineTotalCents:      lineTotal.Cents(),
			Addons:              line.Addons,
			SpecialInstructions: line.SpecialInstructions,
			Position:            position,
		})
		reservations = append(reservations, inventory.ReservationRequest{
			MenuItemID: menuItem.ID,
			Qty:        line.Qty,
		})
	}

	tax := subtotal.MulRateBps(s.cfg.TaxRateBps)
	deliveryFee := money.FromCents(0)
	if input.OrderType == enums.OrderTypeDelivery {
		deliveryFee = money.FromCents(s.cfg.DeliveryFeeCents)
	}
	tip := money.FromCents(input.TipCents)
	discount := money.FromCents(input.DiscountCents)

	total, err := subtotal.Add(tax).Add(deliveryFee).Add(tip).Sub(discount)
	if err != nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "discount exceeds order total")
	}

	order := &models.Order{
		ID:               uuid.New(),
		LocationID:       input.LocationID,
		CustomerID:       input.CustomerID,
		Status:           enums.OrderStatusPending,
		PaymentMethod:    input.PaymentMethod,
		PaymentStatus:    enums.PaymentStatusPending,
		OrderType:        input.OrderType,
		TableID:          input.TableID,
		Currency:         s.cfg.Currency,
		SubtotalCents:    subtotal.Cents(),
		TaxTotalCents:    tax.Cents(),
		DeliveryFeeCents: deliveryFee.Cents(),
		TipCents:         tip.Cents(),
		DiscountCents:    discount.Cents(),
		TotalCents:       total.Cents(),
		DeliveryAddress:  input.DeliveryAddress,
		CustomerNote:     input.CustomerNote,
		ScheduledFor:     input.ScheduledFor,
		Items:            items,
	}
	return order, reservations, nil
}

// createWithFreshKey inserts the order, regenerating the key on the rare
// collision with an existing one.
func (s *service) createWithFreshKey(ctx context.Context, repo Repository, order *models.Order) error {
	for attempt := 0; attempt < orderKeyRetries; attempt++ {
		key, err := GenerateOrderKey()
		if err != nil {
			return err
		}
		order.OrderKey = key
		err = repo.Create(ctx, order)
		if err == nil {
			return nil
		}
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeConflict {
			continue
		}
		return err
	}
	return pkgerrors.New(pkgerrors.CodeInternal, "could not allocate a unique order key")
}

func (s *service) collectWarnings(results []inventory.ReservationResult, menuByID map[uuid.UUID]*models.MenuItem) []StockWarning {
	var warnings []StockWarning
	for _, result := range results {
		if !result.Tracked || (!result.Oversold && !result.LowStock) {
			continue
		}
		name := ""
		if item, ok := menuByID[result.MenuItemID]; ok {
			name = item.Name
		}
		warnings = append(warnings, StockWarning{
			MenuItemID: result.MenuItemID,
			Name:       name,
			NewStock:   result.NewStock,
			Oversold:   result.Oversold,
			LowStock:   result.LowStock,
		})
	}
	return warnings
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) GetByKey(ctx context.Context, orderKey string) (*models.Order, error) {
	return s.repo.FindByKey(ctx, orderKey)
}

func (s *service) List(ctx context.Context, params pagination.Params, filters ListFilters) (*OrderList, error) {
	return s.repo.List(ctx, params, filters)
}

func (s *service) ChangeStatus(ctx context.Context, orderID uuid.UUID, target enums.OrderStatus, actor Actor) error {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	oldStatus := order.Status

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if terr := s.stateMachine.Transition(ctx, tx, order, target, actor); terr != nil {
			return terr
		}
		if target == enums.OrderStatusCancelled {
			return s.releaseOrderStock(ctx, tx, order)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.orderMetrics.IncTransition(oldStatus.String(), target.String())
	return nil
}

func (s *service) AssignDriver(ctx context.Context, orderID, driverID uuid.UUID, actor Actor) error {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	oldStatus := order.Status

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.stateMachine.AssignDriver(ctx, tx, order, driverID, actor)
	})
	if err != nil {
		return err
	}

	s.orderMetrics.IncTransition(oldStatus.String(), enums.OrderStatusOutForDelivery.String())
	return nil
}

// ConfirmPayment applies a verified gateway outcome. Settled payments no-op
// so duplicate webhook deliveries never re-apply a transition.
func (s *service) ConfirmPayment(ctx context.Context, outcome *payments.Outcome) error {
	if outcome == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment outcome required")
	}

	order, err := s.findOrderForOutcome(ctx, outcome)
	if err != nil {
		return err
	}

	// A replay reports the state already held. Captured is not terminal
	// for refunds, so it only blocks non-refund callbacks; refunded is.
	replay := order.PaymentStatus == outcome.Status
	superseded := order.PaymentStatus == enums.PaymentStatusRefunded ||
		(order.PaymentStatus == enums.PaymentStatusCaptured && outcome.Status != enums.PaymentStatusRefunded)
	if replay || superseded {
		octx := s.logg.WithOrderKey(ctx, order.OrderKey)
		s.logg.Info(octx, "duplicate payment callback ignored")
		s.orderMetrics.IncWebhook(outcome.Gateway.String(), "duplicate")
		return nil
	}

	oldStatus := order.Status
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var txnID *string
		if outcome.TransactionID != "" {
			txnID = &outcome.TransactionID
		}

		switch outcome.Status {
		case enums.PaymentStatusCaptured:
			if uerr := repo.UpdatePaymentState(ctx, order.ID, enums.PaymentStatusCaptured, txnID); uerr != nil {
				return uerr
			}
			order.PaymentStatus = enums.PaymentStatusCaptured
			if CanTransition(order.Status, enums.OrderStatusConfirmed) {
				return s.stateMachine.Transition(ctx, tx, order, enums.OrderStatusConfirmed, SystemActor)
			}
			return nil

		case enums.PaymentStatusFailed:
			if uerr := repo.UpdatePaymentState(ctx, order.ID, enums.PaymentStatusFailed, txnID); uerr != nil {
				return uerr
			}
			order.PaymentStatus = enums.PaymentStatusFailed
			reason := outcome.Reason
			if reason == "" {
				reason = "provider declined"
			}
			note := &models.OrderNote{
				OrderID:   order.ID,
				Note:      fmt.Sprintf("Payment failed: %s", reason),
				ActorRole: enums.ActorRoleSystem,
			}
			if nerr := repo.AppendNote(ctx, note); nerr != nil {
				return nerr
			}
			return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventPaymentFailed,
				AggregateType: enums.AggregateOrder,
				AggregateID:   order.ID,
				Data: outbox.PaymentFailedEvent{
					OrderID:    order.ID,
					OrderKey:   order.OrderKey,
					LocationID: order.LocationID,
					Gateway:    outcome.Gateway.String(),
					Reason:     outcome.Reason,
				},
			})

		case enums.PaymentStatusRefunded:
			if order.PaymentStatus != enums.PaymentStatusCaptured {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "refund callback without a captured payment")
			}
			if uerr := repo.UpdatePaymentState(ctx, order.ID, enums.PaymentStatusRefunded, txnID); uerr != nil {
				return uerr
			}
			order.PaymentStatus = enums.PaymentStatusRefunded
			if CanTransition(order.Status, enums.OrderStatusRefunded) {
				return s.stateMachine.Transition(ctx, tx, order, enums.OrderStatusRefunded, SystemActor)
			}
			return nil

		default:
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported payment outcome %q", outcome.Status))
		}
	})
	if err != nil {
		s.orderMetrics.IncWebhook(outcome.Gateway.String(), "failed")
		return err
	}

	s.orderMetrics.IncWebhook(outcome.Gateway.String(), "accepted")
	if order.Status != oldStatus {
		s.orderMetrics.IncTransition(oldStatus.String(), order.Status.String())
	}
	return nil
}

func (s *service) findOrderForOutcome(ctx context.Context, outcome *payments.Outcome) (*models.Order, error) {
	if outcome.TransactionID != "" {
		order, err := s.repo.FindByTransactionID(ctx, outcome.TransactionID)
		if err == nil {
			return order, nil
		}
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
			return nil, err
		}
	}
	if outcome.OrderKey != "" {
		return s.repo.FindByKey(ctx, outcome.OrderKey)
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found for callback")
}

// RetryPayment re-invokes the gateway for an order whose earlier initiation
// failed. The order itself is never duplicated.
func (s *service) RetryPayment(ctx context.Context, orderID uuid.UUID) (*RetryPaymentResult, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != enums.OrderStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only pending orders can retry payment")
	}
	if order.PaymentStatus.IsSettled() && order.PaymentStatus != enums.PaymentStatusFailed {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "payment already settled")
	}

	gateway, err := s.gateways.Get(order.PaymentMethod)
	if err != nil {
		return nil, err
	}
	initiation, err := gateway.Initiate(ctx, payments.OrderSnapshot{
		OrderID:    order.ID,
		OrderKey:   order.OrderKey,
		TotalCents: order.TotalCents,
		Currency:   order.Currency,
		CustomerID: order.CustomerID,
	})
	if err != nil {
		octx := s.logg.WithOrderKey(ctx, order.OrderKey)
		s.logg.Error(octx, "payment retry initiation failed", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "payment initiation failed")
	}

	if initiation.TransactionID != "" {
		txnID := initiation.TransactionID
		if uerr := s.repo.UpdatePaymentState(ctx, order.ID, enums.PaymentStatusPending, &txnID); uerr != nil {
			return nil, uerr
		}
	}
	return &RetryPaymentResult{
		OrderID:      order.ID,
		OrderKey:     order.OrderKey,
		ClientSecret: initiation.ClientSecret,
		RedirectURL:  initiation.RedirectURL,
	}, nil
}

// CancelStalePending cancels orders that sat unpaid past the configured
// TTL, restoring their tracked stock. Called from the cron worker.
func (s *service) CancelStalePending(ctx context.Context, olderThan time.Time, limit int) (int, error) {
	stale, err := s.repo.ListStalePending(ctx, olderThan, limit)
	if err != nil {
		return 0, err
	}

	cancelled := 0
	var errs []error
	for i := range stale {
		order := &stale[i]
		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			if terr := s.stateMachine.Transition(ctx, tx, order, enums.OrderStatusCancelled, SystemActor); terr != nil {
				return terr
			}
			return s.releaseOrderStock(ctx, tx, order)
		})
		if err != nil {
			// A concurrent payment or staff action won the race; skip.
			if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeStateConflict {
				continue
			}
			errs = append(errs, err)
			continue
		}
		cancelled++
		s.orderMetrics.IncTransition(enums.OrderStatusPending.String(), enums.OrderStatusCancelled.String())
	}
	return cancelled, multierr.Combine(errs...)
}

func (s *service) releaseOrderStock(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	var requests []inventory.ReservationRequest
	for _, item := range order.Items {
		if item.MenuItemID == nil {
			continue
		}
		requests = append(requests, inventory.ReservationRequest{
			MenuItemID: *item.MenuItemID,
			Qty:        item.Qty,
		})
	}
	if len(requests) == 0 {
		return nil
	}
	return s.ledger.Release(ctx, tx, requests)
}
