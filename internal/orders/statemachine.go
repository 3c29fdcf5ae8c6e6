package orders

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gourmetpress/gourmetpress-backend/pkg/db/models"
	"github.com/gourmetpress/gourmetpress-backend/pkg/enums"
	pkgerrors "github.com/gourmetpress/gourmetpress-backend/pkg/errors"
	"github.com/gourmetpress/gourmetpress-backend/pkg/outbox"
)

// allowedNext is the authoritative transition table. Cancellation is open
// from any non-terminal state; refund only leaves delivered or cancelled.
var allowedNext = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPending:        {enums.OrderStatusConfirmed, enums.OrderStatusCancelled},
	enums.OrderStatusConfirmed:      {enums.OrderStatusPreparing, enums.OrderStatusCancelled},
	enums.OrderStatusPreparing:      {enums.OrderStatusReady, enums.OrderStatusCancelled},
	enums.OrderStatusReady:          {enums.OrderStatusOutForDelivery, enums.OrderStatusDelivered, enums.OrderStatusCancelled},
	enums.OrderStatusOutForDelivery: {enums.OrderStatusDelivered, enums.OrderStatusCancelled},
	enums.OrderStatusDelivered:      {enums.OrderStatusRefunded},
	enums.OrderStatusCancelled:      {enums.OrderStatusRefunded},
	enums.OrderStatusRefunded:       {},
}

// CanTransition reports whether the state machine permits from → to.
func CanTransition(from, to enums.OrderStatus) bool {
	for _, candidate := range allowedNext[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

// AllowedNext returns the permitted targets for a status.
func AllowedNext(from enums.OrderStatus) []enums.OrderStatus {
	return append([]enums.OrderStatus{}, allowedNext[from]...)
}

// Actor identifies who asked for a transition, recorded on the note row.
type Actor struct {
	Role enums.ActorRole
	ID   *uuid.UUID
}

// SystemActor is used for transitions no human requested.
var SystemActor = Actor{Role: enums.ActorRoleSystem}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// StateMachine validates and applies status transitions. It is the only
// code path allowed to change an order's status field.
type StateMachine struct {
	repo   Repository
	outbox outboxPublisher
}

// NewStateMachine builds the transition engine.
func NewStateMachine(repo Repository, publisher outboxPublisher) (*StateMachine, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &StateMachine{repo: repo, outbox: publisher}, nil
}

// Transition applies order.Status → target inside the caller's transaction.
// The check-and-apply is a guarded UPDATE on the current status, so a racing
// writer makes this call fail with a state conflict instead of overwriting.
// On success the order struct is updated in place, a note row is appended,
// and a StatusChanged event is emitted through the outbox.
func (m *StateMachine) Transition(ctx context.Context, tx *gorm.DB, order *models.Order, target enums.OrderStatus, actor Actor) error {
	return m.transition(ctx, tx, order, target, actor, nil)
}

// AssignDriver is sugar for transitioning to out_for_delivery while setting
// the driver in the same guarded update.
func (m *StateMachine) AssignDriver(ctx context.Context, tx *gorm.DB, order *models.Order, driverID uuid.UUID, actor Actor) error {
	if driverID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "driver id required")
	}
	extra := map[string]any{"driver_id": driverID}
	if err := m.transition(ctx, tx, order, enums.OrderStatusOutForDelivery, actor, extra); err != nil {
		return err
	}
	order.DriverID = &driverID
	return nil
}

func (m *StateMachine) transition(ctx context.Context, tx *gorm.DB, order *models.Order, target enums.OrderStatus, actor Actor, extra map[string]any) error {
	if order == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order required")
	}
	if !target.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown order status %q", target))
	}
	if !CanTransition(order.Status, target) {
		return pkgerrors.New(
			pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot transition order from %s to %s", order.Status, target),
		).WithDetails(map[string]any{
			"current_status": order.Status,
			"target_status":  target,
		})
	}
	// A refund needs a capture to reverse. Without this, a delivered COD
	// order that was never collected could be marked refunded.
	if target == enums.OrderStatusRefunded &&
		order.PaymentStatus != enums.PaymentStatusCaptured &&
		order.PaymentStatus != enums.PaymentStatusRefunded {
		return pkgerrors.New(
			pkgerrors.CodeStateConflict,
			"cannot refund an order whose payment was never captured",
		).WithDetails(map[string]any{
			"payment_status": order.PaymentStatus,
		})
	}

	repo := m.repo.WithTx(tx)
	applied, err := repo.UpdateStatusGuarded(ctx, order.ID, order.Status, target, extra)
	if err != nil {
		return err
	}
	if !applied {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "order status changed concurrently")
	}

	note := &models.OrderNote{
		OrderID:   order.ID,
		Note:      fmt.Sprintf("Status changed to: %s", target.Label()),
		ActorRole: actor.Role,
		ActorID:   actor.ID,
	}
	if note.ActorRole == "" {
		note.ActorRole = enums.ActorRoleSystem
	}
	if err := repo.AppendNote(ctx, note); err != nil {
		return err
	}

	oldStatus := order.Status
	event := outbox.DomainEvent{
		EventType:     enums.EventOrderStatusChanged,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Actor:         actorRef(actor),
		Data: outbox.StatusChangedEvent{
			OrderID:    order.ID,
			OrderKey:   order.OrderKey,
			LocationID: order.LocationID,
			OldStatus:  oldStatus.String(),
			NewStatus:  target.String(),
		},
	}
	if err := m.outbox.Emit(ctx, tx, event); err != nil {
		return err
	}

	order.Status = target
	return nil
}

func actorRef(actor Actor) *outbox.ActorRef {
	ref := &outbox.ActorRef{Role: actor.Role.String()}
	if actor.ID != nil {
		ref.ActorID = actor.ID
	}
	return ref
}
