package payments

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gourmetpress/gourmetpress-backend/pkg/config"
	"github.com/gourmetpress/gourmetpress-backend/pkg/enums"
	pkgerrors "github.com/gourmetpress/gourmetpress-backend/pkg/errors"
)

// cardGateway talks to the remote card processor. Initiation creates a
// payment intent and returns the client secret; the processor later posts a
// signed callback which must verify against the signing secret before its
// content is trusted.
type cardGateway struct {
	enabled       bool
	apiBase       string
	apiKey        string
	signingSecret string
	client        *http.Client
}

// NewCardGateway builds the card-processor gateway. The HTTP client carries
// the configured timeout so initiation never blocks indefinitely.
func NewCardGateway(cfg config.PaymentsConfig) Gateway {
	return &cardGateway{
		enabled:       cfg.CardEnabled,
		apiBase:       strings.TrimRight(cfg.CardAPIBase, "/"),
		apiKey:        cfg.CardAPIKey,
		signingSecret: cfg.CardSigningSecret,
		client:        &http.Client{Timeout: cfg.CardTimeout},
	}
}

func (g *cardGateway) ID() enums.PaymentMethod { return enums.PaymentMethodCard }

func (g *cardGateway) Enabled() bool { return g.enabled }

type cardIntentRequest struct {
	AmountCents int64             `json:"amount"`
	Currency    string            `json:"currency"`
	Metadata    map[string]string `json:"metadata"`
}

type cardIntentResponse struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Error        string `json:"error,omitempty"`
}

func (g *cardGateway) Initiate(ctx context.Context, snapshot OrderSnapshot) (*Initiation, error) {
	if snapshot.TotalCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment amount must be positive")
	}
	body, err := json.Marshal(cardIntentRequest{
		AmountCents: snapshot.TotalCents,
		Currency:    strings.ToLower(snapshot.Currency),
		Metadata: map[string]string{
			"order_id":  snapshot.OrderID.String(),
			"order_key": snapshot.OrderKey,
		},
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode intent request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.apiBase+"/v1/payment_intents", bytes.NewReader(body))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build intent request")
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "card processor unreachable")
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read intent response")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("card processor returned status %d", resp.StatusCode))
	}

	var decoded cardIntentResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode intent response")
	}
	if decoded.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "card processor returned no intent id")
	}

	return &Initiation{
		TransactionID: decoded.ID,
		ClientSecret:  decoded.ClientSecret,
	}, nil
}

// VerifyCallback compares the HMAC-SHA256 hex digest of the payload against
// the provided signature header in constant time.
func (g *cardGateway) VerifyCallback(payload []byte, signature string) bool {
	signature = strings.TrimSpace(strings.TrimPrefix(signature, "sha256="))
	if signature == "" || g.signingSecret == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(g.signingSecret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

type cardCallbackEvent struct {
	Type          string `json:"type"`
	TransactionID string `json:"transaction_id"`
	OrderKey      string `json:"order_key"`
	Reason        string `json:"reason,omitempty"`
}

// HandleCallback decodes a verified callback payload into an Outcome.
// Callers must have checked VerifyCallback first; this function only parses.
func (g *cardGateway) HandleCallback(payload []byte) (*Outcome, error) {
	var event cardCallbackEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode callback payload")
	}
	if event.TransactionID == "" && event.OrderKey == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "callback missing order reference")
	}

	outcome := &Outcome{
		Gateway:       enums.PaymentMethodCard,
		TransactionID: event.TransactionID,
		OrderKey:      event.OrderKey,
		Reason:        event.Reason,
	}
	switch event.Type {
	case "payment_intent.succeeded":
		outcome.Status = enums.PaymentStatusCaptured
	case "payment_intent.failed":
		outcome.Status = enums.PaymentStatusFailed
	case "payment_intent.refunded":
		outcome.Status = enums.PaymentStatusRefunded
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported callback type %q", event.Type))
	}
	return outcome, nil
}
