package webhooks

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gourmetpress/gourmetpress-backend/internal/payments"
	"github.com/gourmetpress/gourmetpress-backend/pkg/config"
	"github.com/gourmetpress/gourmetpress-backend/pkg/enums"
	gpredis "github.com/gourmetpress/gourmetpress-backend/pkg/redis"
)

type fakeConfirmer struct {
	calls int
	last  *payments.Outcome
	err   error
}

func (f *fakeConfirmer) ConfirmPayment(ctx context.Context, outcome *payments.Outcome) error {
	f.calls++
	f.last = outcome
	return f.err
}

type memoryStore struct {
	mu     sync.Mutex
	values map[string]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{values: map[string]string{}}
}

func (m *memoryStore) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.values[key]
	if !ok {
		return "", gpredis.Nil
	}
	return value, nil
}

func (m *memoryStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.values[key]; ok {
		return false, nil
	}
	m.values[key] = "1"
	return true, nil
}

func (m *memoryStore) IdempotencyKey(scope, id string) string {
	return "gp:idempotency:" + scope + ":" + id
}

func (m *memoryStore) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.values, key)
	}
	return nil
}

const testSigningSecret = "whsec_test"

func newWebhookHandler(t *testing.T, confirmer *fakeConfirmer) http.Handler {
	t.Helper()
	registry := payments.NewRegistry(config.PaymentsConfig{
		EnableCOD:         true,
		CardEnabled:       true,
		CardAPIKey:        "sk_test",
		CardSigningSecret: testSigningSecret,
		CardTimeout:       time.Second,
	}, config.OrdersConfig{OrderBaseURL: "http://localhost/order-received"})

	guard, err := payments.NewIdempotencyGuard(newMemoryStore(), time.Minute, "webhook")
	if err != nil {
		t.Fatalf("guard setup: %v", err)
	}

	r := chi.NewRouter()
	r.Post("/api/v1/payments/{gateway}/webhook", PaymentWebhook(confirmer, registry, guard, nil, nil))
	return r
}

func buildCardEvent(t *testing.T, eventType, transactionID string) []byte {
	t.Helper()
	payload, err := json.Marshal(map[string]any{
		"type":           eventType,
		"transaction_id": transactionID,
		"order_key":      "GP-TESTKEY1",
	})
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	return payload
}

func signPayload(payload []byte) string {
	mac := hmac.New(sha256.New, []byte(testSigningSecret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestPaymentWebhookSuccessAndIdempotent(t *testing.T) {
	confirmer := &fakeConfirmer{}
	handler := newWebhookHandler(t, confirmer)

	payload := buildCardEvent(t, "payment_intent.succeeded", "pi_123")
	signature := signPayload(payload)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/card/webhook", bytes.NewReader(payload))
	req.Header.Set("X-Payment-Signature", signature)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if confirmer.calls != 1 {
		t.Fatalf("expected one confirm call, got %d", confirmer.calls)
	}
	if confirmer.last.Status != enums.PaymentStatusCaptured {
		t.Fatalf("status = %s, want captured", confirmer.last.Status)
	}
	if confirmer.last.TransactionID != "pi_123" {
		t.Fatalf("transaction id = %s", confirmer.last.TransactionID)
	}

	// Replayed delivery short-circuits before the orchestrator.
	req2 := httptest.NewRequest(http.MethodPost, "/api/v1/payments/card/webhook", bytes.NewReader(payload))
	req2.Header.Set("X-Payment-Signature", signature)
	rec2 := httptest.NewRecorder()
	handler.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusOK {
		t.Fatalf("expected 200 on duplicate, got %d", rec2.Code)
	}
	if confirmer.calls != 1 {
		t.Fatalf("duplicate should not reach confirmer, got %d calls", confirmer.calls)
	}
}

func TestPaymentWebhookBadSignature(t *testing.T) {
	confirmer := &fakeConfirmer{}
	handler := newWebhookHandler(t, confirmer)

	payload := buildCardEvent(t, "payment_intent.succeeded", "pi_456")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/card/webhook", bytes.NewReader(payload))
	req.Header.Set("X-Payment-Signature", "deadbeef")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad signature, got %d", rec.Code)
	}
	if confirmer.calls != 0 {
		t.Fatalf("confirmer must not run on bad signature")
	}
}

func TestPaymentWebhookMissingSignature(t *testing.T) {
	confirmer := &fakeConfirmer{}
	handler := newWebhookHandler(t, confirmer)

	payload := buildCardEvent(t, "payment_intent.succeeded", "pi_789")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/card/webhook", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for missing signature, got %d", rec.Code)
	}
	if confirmer.calls != 0 {
		t.Fatalf("confirmer must not run without signature")
	}
}

func TestPaymentWebhookUnknownGateway(t *testing.T) {
	confirmer := &fakeConfirmer{}
	handler := newWebhookHandler(t, confirmer)

	payload := buildCardEvent(t, "payment_intent.succeeded", "pi_000")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/paypal/webhook", bytes.NewReader(payload))
	req.Header.Set("X-Payment-Signature", signPayload(payload))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown gateway, got %d", rec.Code)
	}
}

func TestPaymentWebhookRetriesAfterHandlerFailure(t *testing.T) {
	confirmer := &fakeConfirmer{err: context.DeadlineExceeded}
	handler := newWebhookHandler(t, confirmer)

	payload := buildCardEvent(t, "payment_intent.failed", "pi_retry")
	signature := signPayload(payload)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/card/webhook", bytes.NewReader(payload))
	req.Header.Set("X-Payment-Signature", signature)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code == http.StatusOK {
		t.Fatalf("expected error status, got 200")
	}

	// The idempotency mark is cleared on failure so a retry goes through.
	confirmer.err = nil
	req2 := httptest.NewRequest(http.MethodPost, "/api/v1/payments/card/webhook", bytes.NewReader(payload))
	req2.Header.Set("X-Payment-Signature", signature)
	rec2 := httptest.NewRecorder()
	handler.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusOK {
		t.Fatalf("expected 200 on retry, got %d", rec2.Code)
	}
	if confirmer.calls != 2 {
		t.Fatalf("expected two confirm attempts, got %d", confirmer.calls)
	}
}
