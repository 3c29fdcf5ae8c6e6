package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gourmetpress/gourmetpress-backend/pkg/config"
	"github.com/gourmetpress/gourmetpress-backend/pkg/enums"
	pkgerrors "github.com/gourmetpress/gourmetpress-backend/pkg/errors"
)

func TestCODInitiateAlwaysSucceeds(t *testing.T) {
	gateway := NewCODGateway(
		config.PaymentsConfig{EnableCOD: true},
		config.OrdersConfig{OrderBaseURL: "http://localhost:8080/order-received"},
	)

	require.True(t, gateway.Enabled())
	initiation, err := gateway.Initiate(context.Background(), OrderSnapshot{
		OrderID:    uuid.New(),
		OrderKey:   "GP-AB12CD34",
		TotalCents: 1500,
		Currency:   "USD",
	})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/order-received?key=GP-AB12CD34", initiation.RedirectURL)
	assert.Empty(t, initiation.ClientSecret)

	assert.False(t, gateway.VerifyCallback([]byte("{}"), "anything"))
	_, err = gateway.HandleCallback([]byte("{}"))
	require.Error(t, err)
}

func TestCardInitiateCreatesIntent(t *testing.T) {
	var gotAuth string
	var gotBody cardIntentRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(cardIntentResponse{
			ID:           "pi_123",
			ClientSecret: "pi_123_secret_xyz",
		})
	}))
	defer server.Close()

	gateway := NewCardGateway(config.PaymentsConfig{
		CardEnabled: true,
		CardAPIBase: server.URL,
		CardAPIKey:  "sk_test_abc",
		CardTimeout: 5 * time.Second,
	})

	initiation, err := gateway.Initiate(context.Background(), OrderSnapshot{
		OrderID:    uuid.New(),
		OrderKey:   "GP-XY98ZW76",
		TotalCents: 2599,
		Currency:   "USD",
	})
	require.NoError(t, err)
	assert.Equal(t, "pi_123", initiation.TransactionID)
	assert.Equal(t, "pi_123_secret_xyz", initiation.ClientSecret)
	assert.Equal(t, "Bearer sk_test_abc", gotAuth)
	assert.Equal(t, int64(2599), gotBody.AmountCents)
	assert.Equal(t, "usd", gotBody.Currency)
	assert.Equal(t, "GP-XY98ZW76", gotBody.Metadata["order_key"])
}

func TestCardInitiateProcessorFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	gateway := NewCardGateway(config.PaymentsConfig{
		CardEnabled: true,
		CardAPIBase: server.URL,
		CardAPIKey:  "sk_test_abc",
		CardTimeout: 5 * time.Second,
	})

	_, err := gateway.Initiate(context.Background(), OrderSnapshot{
		OrderID:    uuid.New(),
		OrderKey:   "GP-FAIL0000",
		TotalCents: 1000,
		Currency:   "USD",
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeDependency, typed.Code())
}

func signPayload(t *testing.T, secret string, payload []byte) string {
	t.Helper()
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestCardVerifyCallback(t *testing.T) {
	gateway := NewCardGateway(config.PaymentsConfig{
		CardEnabled:       true,
		CardSigningSecret: "whsec_test",
		CardTimeout:       time.Second,
	})

	payload := []byte(`{"type":"payment_intent.succeeded","transaction_id":"pi_1","order_key":"GP-AAAA1111"}`)
	signature := signPayload(t, "whsec_test", payload)

	assert.True(t, gateway.VerifyCallback(payload, signature))
	assert.True(t, gateway.VerifyCallback(payload, "sha256="+signature))
	assert.False(t, gateway.VerifyCallback(payload, "deadbeef"))
	assert.False(t, gateway.VerifyCallback([]byte(`tampered`), signature))
	assert.False(t, gateway.VerifyCallback(payload, ""))
}

func TestCardHandleCallbackOutcomes(t *testing.T) {
	gateway := NewCardGateway(config.PaymentsConfig{CardEnabled: true, CardTimeout: time.Second})

	outcome, err := gateway.HandleCallback([]byte(`{"type":"payment_intent.succeeded","transaction_id":"pi_1","order_key":"GP-AAAA1111"}`))
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStatusCaptured, outcome.Status)
	assert.Equal(t, "pi_1", outcome.TransactionID)
	assert.Equal(t, "GP-AAAA1111", outcome.OrderKey)

	outcome, err = gateway.HandleCallback([]byte(`{"type":"payment_intent.failed","transaction_id":"pi_2","reason":"card_declined"}`))
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStatusFailed, outcome.Status)
	assert.Equal(t, "card_declined", outcome.Reason)

	_, err = gateway.HandleCallback([]byte(`{"type":"payment_intent.succeeded"}`))
	require.Error(t, err)

	_, err = gateway.HandleCallback([]byte(`{"type":"mystery","transaction_id":"pi_3"}`))
	require.Error(t, err)
}

func TestRegistryClosedSet(t *testing.T) {
	reg := NewRegistry(
		config.PaymentsConfig{EnableCOD: true, CardEnabled: false, CardTimeout: time.Second},
		config.OrdersConfig{OrderBaseURL: "http://localhost/order-received"},
	)

	cod, err := reg.Get(enums.PaymentMethodCOD)
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentMethodCOD, cod.ID())

	_, err = reg.Get(enums.PaymentMethodCard)
	require.Error(t, err)

	_, err = reg.Get("paypal")
	require.Error(t, err)

	enabled := reg.Enabled()
	require.Len(t, enabled, 1)
	assert.Equal(t, enums.PaymentMethodCOD, enabled[0])
}
