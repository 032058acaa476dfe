package handler

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/webhook"
	"go.uber.org/zap"

	billingapp "github.com/cuentia/backend/internal/application/billing"
	infrabilling "github.com/cuentia/backend/internal/infrastructure/billing"
)

const webhookTestSecret = "whsec_handler_test"

type stubIdempotencyStore struct {
	fresh bool
}

func (s *stubIdempotencyStore) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	return s.fresh, nil
}

func (s *stubIdempotencyStore) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	return !s.fresh, nil
}

func (s *stubIdempotencyStore) Close() error {
	return nil
}

func newWebhookTestRouter(env *billingTestEnv) *gin.Engine {
	logger, _ := zap.NewDevelopment()

	service := billingapp.NewStripeWebhookService(billingapp.StripeWebhookServiceConfig{
		Config: &infrabilling.StripeConfig{
			SecretKey:       "sk_test_xxx",
			WebhookSecret:   webhookTestSecret,
			IsTestMode:      true,
			DefaultCurrency: "mxn",
			PriceCodes:      map[string]string{},
		},
		CustomerRepo: env.customerRepo,
		SubRepo:      env.subRepo,
		PaymentRepo:  env.paymentRepo,
		Accounts:     env.accounts,
		Reconciler:   billingapp.NewItemReconciler(env.itemRepo, handlerTestCatalog(), logger),
		Notifier:     &stubNotifier{},
		Idempotency:  &stubIdempotencyStore{fresh: true},
		Logger:       logger,
	})

	h := NewStripeWebhookHandler(service)

	engine := gin.New()
	h.RegisterRoutes(engine.Group("/api/v1"))
	return engine
}

// signWebhookPayload produces a valid Stripe-Signature header for the body
func signWebhookPayload(t *testing.T, body map[string]any) ([]byte, string) {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	ts := time.Now()
	sig := webhook.ComputeSignature(ts, payload, webhookTestSecret)
	return payload, fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(sig))
}

func postWebhook(engine *gin.Engine, payload []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/stripe", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("Stripe-Signature", signature)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestStripeWebhookHandler_MissingSignature(t *testing.T) {
	engine := newWebhookTestRouter(newBillingTestEnv())

	w := postWebhook(engine, []byte(`{"id":"evt_1"}`), "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var resp StripeWebhookResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Received)
}

func TestStripeWebhookHandler_InvalidSignature(t *testing.T) {
	engine := newWebhookTestRouter(newBillingTestEnv())

	w := postWebhook(engine, []byte(`{"id":"evt_1"}`), "t=1,v1=deadbeef")

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var resp StripeWebhookResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Received)
	assert.Equal(t, "Webhook signature verification failed", resp.Message)
}

func TestStripeWebhookHandler_UnhandledEventType(t *testing.T) {
	engine := newWebhookTestRouter(newBillingTestEnv())

	payload, signature := signWebhookPayload(t, map[string]any{
		"id":          "evt_unhandled",
		"type":        "customer.created",
		"api_version": stripe.APIVersion,
		"created":     time.Now().Unix(),
		"data":        map[string]any{"object": map[string]any{}},
	})

	w := postWebhook(engine, payload, signature)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp StripeWebhookResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Received)
	assert.Equal(t, "evt_unhandled", resp.EventID)
	assert.Equal(t, "customer.created", resp.EventType)
}

func TestStripeWebhookHandler_ProcessingFailureReturns500(t *testing.T) {
	env := newBillingTestEnv()
	env.paymentRepo.err = errors.New("db is down")
	engine := newWebhookTestRouter(env)

	payload, signature := signWebhookPayload(t, map[string]any{
		"id":          "evt_transient",
		"type":        "invoice.payment_succeeded",
		"api_version": stripe.APIVersion,
		"created":     time.Now().Unix(),
		"data": map[string]any{"object": map[string]any{
			"id":           "in_transient",
			"subscription": "sub_test123",
			"amount_paid":  49900,
			"currency":     "mxn",
		}},
	})

	w := postWebhook(engine, payload, signature)

	// Stripe redelivers on 5xx; a transient store failure must not be
	// acknowledged as processed.
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp StripeWebhookResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Received)
	assert.Equal(t, "evt_transient", resp.EventID)
}

func TestStripeWebhookHandler_PayloadTooLarge(t *testing.T) {
	engine := newWebhookTestRouter(newBillingTestEnv())

	oversized := bytes.Repeat([]byte("a"), maxWebhookPayloadSize+1)
	w := postWebhook(engine, oversized, "t=1,v1=deadbeef")

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
