package webhooks

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/gourmetpress/gourmetpress-backend/api/responses"
	"github.com/gourmetpress/gourmetpress-backend/internal/payments"
	"github.com/gourmetpress/gourmetpress-backend/pkg/enums"
	pkgerrors "github.com/gourmetpress/gourmetpress-backend/pkg/errors"
	"github.com/gourmetpress/gourmetpress-backend/pkg/logger"
	"github.com/gourmetpress/gourmetpress-backend/pkg/metrics"
)

const signatureHeader = "X-Payment-Signature"

type paymentConfirmer interface {
	ConfirmPayment(ctx context.Context, outcome *payments.Outcome) error
}

type gatewayResolver interface {
	Get(method enums.PaymentMethod) (payments.Gateway, error)
}

type webhookGuard interface {
	CheckAndMark(ctx context.Context, eventID string) (bool, error)
	Delete(ctx context.Context, eventID string) error
}

// PaymentWebhook verifies, dedupes and applies gateway callbacks. A bad
// signature is rejected before any state is read or written.
func PaymentWebhook(svc paymentConfirmer, gateways gatewayResolver, guard webhookGuard, orderMetrics *metrics.OrderMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil || gateways == nil || guard == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook handler unavailable"))
			return
		}

		method := enums.PaymentMethod(strings.TrimSpace(chi.URLParam(r, "gateway")))
		gateway, err := gateways.Get(method)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "unknown payment gateway"))
			return
		}

		payload, err := io.ReadAll(r.Body)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request body"))
			return
		}

		signature := r.Header.Get(signatureHeader)
		if !gateway.VerifyCallback(payload, signature) {
			orderMetrics.IncWebhook(method.String(), "rejected")
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid webhook signature"))
			return
		}

		outcome, err := gateway.HandleCallback(payload)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		eventID := outcome.TransactionID
		if eventID == "" {
			eventID = outcome.OrderKey
		}
		eventID = method.String() + ":" + eventID + ":" + outcome.Status.String()

		alreadyProcessed, err := guard.CheckAndMark(ctx, eventID)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency"))
			return
		}
		if alreadyProcessed {
			orderMetrics.IncWebhook(method.String(), "duplicate")
			responses.WriteSuccess(w, nil)
			return
		}

		if err := svc.ConfirmPayment(ctx, outcome); err != nil {
			_ = guard.Delete(ctx, eventID)
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if logg != nil {
			wctx := logg.WithGateway(ctx, method.String())
			logg.Info(wctx, "payment callback processed")
		}
		responses.WriteSuccess(w, nil)
	}
}
