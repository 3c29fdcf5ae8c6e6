package orders

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gourmetpress/gourmetpress-backend/api/middleware"
	"github.com/gourmetpress/gourmetpress-backend/api/responses"
	"github.com/gourmetpress/gourmetpress-backend/api/validators"
	internalorders "github.com/gourmetpress/gourmetpress-backend/internal/orders"
	"github.com/gourmetpress/gourmetpress-backend/pkg/enums"
	pkgerrors "github.com/gourmetpress/gourmetpress-backend/pkg/errors"
	"github.com/gourmetpress/gourmetpress-backend/pkg/logger"
	"github.com/gourmetpress/gourmetpress-backend/pkg/pagination"
	"github.com/gourmetpress/gourmetpress-backend/pkg/types"
)

type createItemRequest struct {
	MenuItemID          string          `json:"menuItemId" validate:"required,uuid"`
	Qty                 int             `json:"qty" validate:"required,min=1"`
	Addons              json.RawMessage `json:"addons,omitempty"`
	SpecialInstructions *string         `json:"specialInstructions,omitempty"`
}

type createOrderRequest struct {
	LocationID      string              `json:"locationId" validate:"required,uuid"`
	OrderType       string              `json:"orderType" validate:"required,oneof=pickup delivery dinein"`
	PaymentMethod   string              `json:"paymentMethod" validate:"required,oneof=cod card"`
	TableID         *string             `json:"tableId,omitempty"`
	DeliveryAddress *types.Address      `json:"deliveryAddress,omitempty"`
	TipCents        int64               `json:"tipCents,omitempty" validate:"min=0"`
	DiscountCents   int64               `json:"discountCents,omitempty" validate:"min=0"`
	CustomerNote    *string             `json:"customerNote,omitempty"`
	ScheduledFor    *time.Time          `json:"scheduledFor,omitempty"`
	Items           []createItemRequest `json:"items" validate:"required,min=1,dive"`
}

// Create places an order and initiates payment.
func Create(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		var req createOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		locationID, err := uuid.Parse(req.LocationID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid location id"))
			return
		}

		input := internalorders.CreateOrderInput{
			LocationID:      locationID,
			OrderType:       enums.OrderType(req.OrderType),
			PaymentMethod:   enums.PaymentMethod(req.PaymentMethod),
			TableID:         req.TableID,
			DeliveryAddress: req.DeliveryAddress,
			TipCents:        req.TipCents,
			DiscountCents:   req.DiscountCents,
			CustomerNote:    req.CustomerNote,
			ScheduledFor:    req.ScheduledFor,
		}

		if actorID := middleware.ActorIDFromContext(r.Context()); actorID != "" {
			if id, err := uuid.Parse(actorID); err == nil {
				input.CustomerID = &id
			}
		}

		for _, item := range req.Items {
			menuItemID, err := uuid.Parse(item.MenuItemID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid menu item id"))
				return
			}
			line := internalorders.CreateOrderItemInput{
				MenuItemID:          menuItemID,
				Qty:                 item.Qty,
				SpecialInstructions: item.SpecialInstructions,
			}
			if len(item.Addons) > 0 {
				addons := string(item.Addons)
				line.Addons = &addons
			}
			input.Items = append(input.Items, line)
		}

		result, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// Detail returns the full order aggregate by id, or by order key when the
// id path segment carries the key prefix.
func Detail(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		raw := strings.TrimSpace(chi.URLParam(r, "orderId"))
		if raw == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "order id is required"))
			return
		}

		if strings.HasPrefix(raw, "GP-") {
			order, err := svc.GetByKey(r.Context(), raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, order)
			return
		}

		orderID, err := uuid.Parse(raw)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id"))
			return
		}
		order, err := svc.Get(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

type trackingView struct {
	OrderKey     string     `json:"orderKey"`
	Status       string     `json:"status"`
	StatusLabel  string     `json:"statusLabel"`
	OrderType    string     `json:"orderType"`
	TotalCents   int64      `json:"totalCents"`
	Currency     string     `json:"currency"`
	PlacedAt     time.Time  `json:"placedAt"`
	ScheduledFor *time.Time `json:"scheduledFor,omitempty"`
}

// Track is the public order-tracking lookup by order key. It returns a
// trimmed view only; addresses and internal ids stay behind auth.
func Track(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		key := strings.TrimSpace(chi.URLParam(r, "orderKey"))
		if key == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "order key is required"))
			return
		}

		order, err := svc.GetByKey(r.Context(), key)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, trackingView{
			OrderKey:     order.OrderKey,
			Status:       order.Status.String(),
			StatusLabel:  order.Status.Label(),
			OrderType:    order.OrderType.String(),
			TotalCents:   order.TotalCents,
			Currency:     order.Currency,
			PlacedAt:     order.CreatedAt,
			ScheduledFor: order.ScheduledFor,
		})
	}
}

// List returns a filtered, cursor-paginated order page.
func List(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params := pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		filters, err := buildListFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func buildListFilters(r *http.Request) (internalorders.ListFilters, error) {
	var filters internalorders.ListFilters

	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status := enums.OrderStatus(raw)
		if !status.IsValid() {
			return filters, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
		}
		filters.Status = &status
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("locationId")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid location filter")
		}
		filters.LocationID = &id
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("driverId")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid driver filter")
		}
		filters.DriverID = &id
	}

	from, err := validators.ParseQueryTime(r, "dateFrom")
	if err != nil {
		return filters, err
	}
	filters.DateFrom = from

	to, err := validators.ParseQueryTime(r, "dateTo")
	if err != nil {
		return filters, err
	}
	filters.DateTo = to

	return filters, nil
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// UpdateStatus transitions an order, recording who asked for it.
func UpdateStatus(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req updateStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		target := enums.OrderStatus(req.Status)
		if !target.IsValid() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid target status"))
			return
		}

		if err := svc.ChangeStatus(r.Context(), orderID, target, actorFromRequest(r)); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": target.String()})
	}
}

type assignDriverRequest struct {
	DriverID string `json:"driverId" validate:"required,uuid"`
}

// AssignDriver moves an order out for delivery with the given driver.
func AssignDriver(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req assignDriverRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		driverID, err := uuid.Parse(req.DriverID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid driver id"))
			return
		}

		if err := svc.AssignDriver(r.Context(), orderID, driverID, actorFromRequest(r)); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": enums.OrderStatusOutForDelivery.String()})
	}
}

// RetryPayment re-initiates payment for an order stuck in pending.
func RetryPayment(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.RetryPayment(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func parseOrderID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "orderId"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	orderID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id")
	}
	return orderID, nil
}

func actorFromRequest(r *http.Request) internalorders.Actor {
	actor := internalorders.Actor{Role: enums.ActorRole(middleware.RoleFromContext(r.Context()))}
	if raw := middleware.ActorIDFromContext(r.Context()); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			actor.ID = &id
		}
	}
	if actor.Role == "" || !actor.Role.IsValid() {
		actor.Role = enums.ActorRoleSystem
	}
	return actor
}
