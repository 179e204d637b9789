package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/tradehub/internal/config"
	"github.com/jcmexdev/tradehub/internal/pkg/apperr"
	"github.com/jcmexdev/tradehub/internal/pkg/cache"
	"github.com/jcmexdev/tradehub/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/tradehub/internal/storefront/core/ports"
	"github.com/jcmexdev/tradehub/internal/storefront/infra/adapters/memory"
)

type fakeGateway struct {
	calls []ports.GatewayInitRequest
	err   error
}

func (g *fakeGateway) Initialize(_ context.Context, req ports.GatewayInitRequest) (*entity.Checkout, error) {
	g.calls = append(g.calls, req)
	if g.err != nil {
		return nil, g.err
	}
	url := "https://pay.test/checkout/" + req.Reference
	return &entity.Checkout{Reference: req.Reference, CashierURL: url, CheckoutURL: url, Message: "ok"}, nil
}

type paymentFixture struct {
	svc      *PaymentService
	payments *memory.PaymentRepository
	logs     *memory.LogRepository
	gateway  *fakeGateway
}

func newPaymentFixture(cfg config.Payment, opts ...PaymentOption) *paymentFixture {
	f := &paymentFixture{
		payments: memory.NewPaymentRepository(),
		logs:     memory.NewLogRepository(),
		gateway:  &fakeGateway{},
	}
	f.svc = NewPaymentService(cfg, f.payments, f.logs, f.gateway, opts...)
	return f
}

func demoConfig() config.Payment {
	return config.Payment{Mode: config.ModeDemo, Currency: "NGN", Country: "NG"}
}

func productionConfig() config.Payment {
	return config.Payment{Mode: config.ModeProduction, SecretKey: "sk_test", Currency: "NGN", Country: "NG"}
}

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func initiate(t *testing.T, f *paymentFixture, reference string, amount float64) {
	t.Helper()
	_, err := f.svc.Initiate(context.Background(), InitiateRequest{
		Reference: reference,
		Amount:    amount,
		Payer:     &entity.PayerInfo{Email: "ada@example.com", Name: "Ada"},
	})
	require.NoError(t, err)
}

func TestPaymentInitiate(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture(demoConfig())

	checkout, err := f.svc.Initiate(ctx, InitiateRequest{
		Reference: "REF-1",
		Amount:    3188,
		Payer:     &entity.PayerInfo{Email: "ada@example.com", Name: "Ada"},
	})
	require.NoError(t, err)
	assert.Equal(t, "REF-1", checkout.Reference)

	require.Len(t, f.gateway.calls, 1)
	assert.Equal(t, int64(318800), f.gateway.calls[0].AmountMinor)
	assert.Equal(t, "NGN", f.gateway.calls[0].Currency)

	p, err := f.svc.Status(ctx, "REF-1")
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentPending, p.Status)
	assert.Equal(t, 3188.0, p.Amount)
	assert.Equal(t, checkout.CheckoutURL, p.CheckoutURL)
}

func TestPaymentInitiateValidationCreatesNoRecord(t *testing.T) {
	ctx := context.Background()
	payer := &entity.PayerInfo{Email: "ada@example.com"}

	tests := []struct {
		name string
		req  InitiateRequest
	}{
		{"missing reference", InitiateRequest{Amount: 10, Payer: payer}},
		{"zero amount", InitiateRequest{Reference: "R", Payer: payer}},
		{"negative amount", InitiateRequest{Reference: "R", Amount: -5, Payer: payer}},
		{"missing payer", InitiateRequest{Reference: "R", Amount: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPaymentFixture(demoConfig())
			_, err := f.svc.Initiate(ctx, tt.req)
			assert.True(t, apperr.Is(err, apperr.KindValidation))

			all, err := f.payments.List(ctx, entity.PaymentFilter{})
			require.NoError(t, err)
			assert.Empty(t, all)
			assert.Empty(t, f.gateway.calls)
		})
	}
}

func TestPaymentInitiateGatewayFailure(t *testing.T) {
	f := newPaymentFixture(productionConfig())
	f.gateway.err = errors.New("connection refused")

	_, err := f.svc.Initiate(context.Background(), InitiateRequest{
		Reference: "REF-1", Amount: 100, Payer: &entity.PayerInfo{Email: "a@b.c"},
	})
	require.Error(t, err)
	appErr := apperr.From(err)
	assert.Equal(t, apperr.KindPaymentInit, appErr.Kind)
	assert.Equal(t, "PAYMENT_INIT_ERROR", appErr.Code)

	// The pending record survives a gateway failure.
	p, err := f.svc.Status(context.Background(), "REF-1")
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentPending, p.Status)
}

func TestPaymentInitiateOverwritesSameReference(t *testing.T) {
	f := newPaymentFixture(demoConfig())
	initiate(t, f, "REF-1", 100)
	initiate(t, f, "REF-1", 250)

	p, err := f.svc.Status(context.Background(), "REF-1")
	require.NoError(t, err)
	assert.Equal(t, 250.0, p.Amount)
}

func TestPaymentCallbackDemoMode(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture(demoConfig())
	initiate(t, f, "REF-1", 100)

	body := []byte(`{"reference":"REF-1","status":"SUCCESS","amount":100,"timestamp":"2026-01-01T00:00:00Z","transactionId":"tx-9"}`)
	res, err := f.svc.HandleCallback(ctx, body, "ignored-in-demo")
	require.NoError(t, err)
	assert.Equal(t, "Webhook received and processed", res.Message)

	p, err := f.svc.Status(ctx, "REF-1")
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentSuccess, p.Status)
	assert.Equal(t, "tx-9", p.TransactionID)

	logs, _, err := f.svc.Webhooks(ctx, entity.WebhookFilter{})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.True(t, logs[0].Processed)
	assert.NotNil(t, logs[0].ProcessedAt)
}

func TestPaymentCallbackSignature(t *testing.T) {
	ctx := context.Background()
	body := []byte(`{"reference":"REF-1","status":"SUCCESS","amount":100,"timestamp":"2026-01-01T00:00:00Z"}`)

	t.Run("valid signature applies", func(t *testing.T) {
		f := newPaymentFixture(productionConfig())
		initiate(t, f, "REF-1", 100)

		_, err := f.svc.HandleCallback(ctx, body, sign("sk_test", body))
		require.NoError(t, err)
		p, err := f.svc.Status(ctx, "REF-1")
		require.NoError(t, err)
		assert.Equal(t, entity.PaymentSuccess, p.Status)
	})

	t.Run("bad signature leaves payment untouched", func(t *testing.T) {
		f := newPaymentFixture(productionConfig())
		initiate(t, f, "REF-1", 100)

		_, err := f.svc.HandleCallback(ctx, body, sign("wrong", body))
		require.Error(t, err)
		assert.True(t, apperr.Is(err, apperr.KindAuthentication))

		p, err := f.svc.Status(ctx, "REF-1")
		require.NoError(t, err)
		assert.Equal(t, entity.PaymentPending, p.Status)

		logs, _, err := f.svc.Webhooks(ctx, entity.WebhookFilter{})
		require.NoError(t, err)
		require.Len(t, logs, 1)
		assert.False(t, logs[0].SignatureValid)
		assert.False(t, logs[0].Processed)
	})

	t.Run("unsigned accepted by default", func(t *testing.T) {
		f := newPaymentFixture(productionConfig())
		initiate(t, f, "REF-1", 100)

		_, err := f.svc.HandleCallback(ctx, body, "")
		require.NoError(t, err)
		p, err := f.svc.Status(ctx, "REF-1")
		require.NoError(t, err)
		assert.Equal(t, entity.PaymentSuccess, p.Status)
	})

	t.Run("unsigned rejected when required", func(t *testing.T) {
		cfg := productionConfig()
		cfg.RequireSignature = true
		f := newPaymentFixture(cfg)
		initiate(t, f, "REF-1", 100)

		_, err := f.svc.HandleCallback(ctx, body, "")
		assert.True(t, apperr.Is(err, apperr.KindAuthentication))
	})
}

func TestPaymentCallbackUnknownReference(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture(demoConfig())

	body := []byte(`{"reference":"REF-ghost","status":"FAILED","amount":1,"timestamp":"x"}`)
	res, err := f.svc.HandleCallback(ctx, body, "")
	require.NoError(t, err)
	assert.Equal(t, "REF-ghost", res.Reference)

	_, err = f.svc.Status(ctx, "REF-ghost")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestPaymentCallbackInvalidPayload(t *testing.T) {
	f := newPaymentFixture(demoConfig())
	_, err := f.svc.HandleCallback(context.Background(), []byte(`{"reference":"R","status":"MAYBE"}`), "")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = f.svc.HandleCallback(context.Background(), []byte(`not json`), "")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestPaymentCallbackReplayGuard(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture(demoConfig(), WithReplayGuard(cache.NewMemoryCache("test"), time.Hour))
	initiate(t, f, "REF-1", 100)

	success := []byte(`{"reference":"REF-1","status":"SUCCESS","amount":100,"timestamp":"t"}`)
	failed := []byte(`{"reference":"REF-1","status":"FAILED","amount":100,"timestamp":"t"}`)

	_, err := f.svc.HandleCallback(ctx, success, "")
	require.NoError(t, err)
	_, err = f.svc.HandleCallback(ctx, failed, "")
	require.NoError(t, err)

	// A replay of the first callback must not flip the status back.
	res, err := f.svc.HandleCallback(ctx, success, "")
	require.NoError(t, err)
	assert.True(t, res.Duplicate)

	p, err := f.svc.Status(ctx, "REF-1")
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentFailed, p.Status)

	logs, _, err := f.svc.Webhooks(ctx, entity.WebhookFilter{})
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.False(t, logs[0].Processed)
	assert.Equal(t, "duplicate", logs[0].ErrorMessage)
}

func TestPaymentCallbackAfterRetryIsApplied(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture(demoConfig(), WithReplayGuard(cache.NewMemoryCache("test"), time.Hour))
	initiate(t, f, "REF-1", 100)
	failed := []byte(`{"reference":"REF-1","status":"FAILED","amount":100,"timestamp":"t"}`)

	_, err := f.svc.HandleCallback(ctx, failed, "")
	require.NoError(t, err)
	_, err = f.svc.Retry(ctx, "REF-1")
	require.NoError(t, err)

	// The second attempt fails with an identical payload.
	res, err := f.svc.HandleCallback(ctx, failed, "")
	require.NoError(t, err)
	assert.False(t, res.Duplicate)

	p, err := f.svc.Status(ctx, "REF-1")
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentFailed, p.Status)

	_, err = f.svc.Retry(ctx, "REF-1")
	require.NoError(t, err, "a payment failed twice can be retried again")

	// Each attempt gets its own key; redeliveries within one are dropped.
	res, err = f.svc.HandleCallback(ctx, failed, "")
	require.NoError(t, err)
	assert.False(t, res.Duplicate, "third attempt has its own key")
	res, err = f.svc.HandleCallback(ctx, failed, "")
	require.NoError(t, err)
	assert.True(t, res.Duplicate)
}

func TestPaymentCallbackBeforeInitiateIsRedelivered(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture(demoConfig(), WithReplayGuard(cache.NewMemoryCache("test"), time.Hour))
	success := []byte(`{"reference":"REF-9","status":"SUCCESS","amount":100,"timestamp":"t"}`)

	res, err := f.svc.HandleCallback(ctx, success, "")
	require.NoError(t, err)
	assert.False(t, res.Duplicate)

	initiate(t, f, "REF-9", 100)

	res, err = f.svc.HandleCallback(ctx, success, "")
	require.NoError(t, err)
	assert.False(t, res.Duplicate, "the early delivery must not claim the key")

	p, err := f.svc.Status(ctx, "REF-9")
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentSuccess, p.Status)
}

type failingUpdates struct {
	*memory.PaymentRepository
	err error
}

func (r failingUpdates) Update(context.Context, string, func(p *entity.Payment) error) (*entity.Payment, error) {
	return nil, r.err
}

func TestPaymentCallbackReleasesKeyOnStoreError(t *testing.T) {
	ctx := context.Background()
	guard := cache.NewMemoryCache("test")
	payments := memory.NewPaymentRepository()
	logs := memory.NewLogRepository()
	body := []byte(`{"reference":"REF-1","status":"SUCCESS","amount":100,"timestamp":"t"}`)

	require.NoError(t, payments.Put(ctx, &entity.Payment{Reference: "REF-1", Amount: 100, Status: entity.PaymentPending}))

	broken := NewPaymentService(demoConfig(), failingUpdates{payments, errors.New("disk full")}, logs, &fakeGateway{},
		WithReplayGuard(guard, time.Hour))
	_, err := broken.HandleCallback(ctx, body, "")
	assert.True(t, apperr.Is(err, apperr.KindInternal))

	healthy := NewPaymentService(demoConfig(), payments, logs, &fakeGateway{}, WithReplayGuard(guard, time.Hour))
	res, err := healthy.HandleCallback(ctx, body, "")
	require.NoError(t, err)
	assert.False(t, res.Duplicate)

	p, err := healthy.Status(ctx, "REF-1")
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentSuccess, p.Status)
}

type linkerFunc func(ctx context.Context, reference string) error

func (f linkerFunc) MarkPaid(ctx context.Context, reference string) error { return f(ctx, reference) }

func TestPaymentCallbackOrderLinking(t *testing.T) {
	ctx := context.Background()
	var linked []string
	linker := linkerFunc(func(_ context.Context, ref string) error {
		linked = append(linked, ref)
		return nil
	})
	body := []byte(`{"reference":"REF-1","status":"SUCCESS","amount":100,"timestamp":"t"}`)

	off := newPaymentFixture(demoConfig(), WithOrderLinker(linker))
	initiate(t, off, "REF-1", 100)
	_, err := off.svc.HandleCallback(ctx, body, "")
	require.NoError(t, err)
	assert.Empty(t, linked)

	cfg := demoConfig()
	cfg.LinkOrders = true
	on := newPaymentFixture(cfg, WithOrderLinker(linker))
	initiate(t, on, "REF-1", 100)
	_, err = on.svc.HandleCallback(ctx, body, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"REF-1"}, linked)
}

func TestPaymentRetry(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture(demoConfig())
	initiate(t, f, "REF-1", 100)

	_, err := f.svc.Retry(ctx, "REF-1")
	assert.True(t, apperr.Is(err, apperr.KindValidation), "pending payments cannot be retried")

	_, err = f.svc.HandleCallback(ctx, []byte(`{"reference":"REF-1","status":"FAILED","amount":100,"timestamp":"t"}`), "")
	require.NoError(t, err)

	checkout, err := f.svc.Retry(ctx, "REF-1")
	require.NoError(t, err)
	assert.NotEmpty(t, checkout.CheckoutURL)

	p, err := f.svc.Status(ctx, "REF-1")
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentPending, p.Status)
	assert.Equal(t, 1, p.RetryCount)
	assert.Len(t, f.gateway.calls, 2)

	_, err = f.svc.Retry(ctx, "REF-none")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestPaymentRetryGatewayFailureKeepsPaymentRetryable(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture(productionConfig())
	initiate(t, f, "REF-1", 100)
	_, err := f.svc.HandleCallback(ctx, []byte(`{"reference":"REF-1","status":"FAILED","amount":100,"timestamp":"t"}`), "")
	require.NoError(t, err)

	f.gateway.err = errors.New("connection refused")
	_, err = f.svc.Retry(ctx, "REF-1")
	assert.True(t, apperr.Is(err, apperr.KindPaymentInit))

	p, err := f.svc.Status(ctx, "REF-1")
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentFailed, p.Status)
	assert.Equal(t, 0, p.RetryCount)

	f.gateway.err = nil
	_, err = f.svc.Retry(ctx, "REF-1")
	require.NoError(t, err)

	p, err = f.svc.Status(ctx, "REF-1")
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentPending, p.Status)
	assert.Equal(t, 1, p.RetryCount)
}

func TestPaymentReferenceForTransaction(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture(demoConfig())
	initiate(t, f, "REF-1", 100)
	_, err := f.svc.HandleCallback(ctx, []byte(`{"reference":"REF-1","status":"FAILED","amount":100,"timestamp":"t","transactionId":"tx-77"}`), "")
	require.NoError(t, err)

	ref, err := f.svc.ReferenceForTransaction(ctx, "tx-77")
	require.NoError(t, err)
	assert.Equal(t, "REF-1", ref)

	_, err = f.svc.ReferenceForTransaction(ctx, "tx-unknown")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = f.svc.ReferenceForTransaction(ctx, "")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestPaymentRefund(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture(demoConfig())
	initiate(t, f, "REF-1", 100)

	_, err := f.svc.Refund(ctx, RefundRequest{Reference: "REF-1", Amount: 10})
	assert.True(t, apperr.Is(err, apperr.KindValidation), "pending payments cannot be refunded")

	_, err = f.svc.HandleCallback(ctx, []byte(`{"reference":"REF-1","status":"SUCCESS","amount":100,"timestamp":"t"}`), "")
	require.NoError(t, err)

	refund, err := f.svc.Refund(ctx, RefundRequest{Reference: "REF-1", OrderID: "order_1", Amount: 60, Reason: "damaged"})
	require.NoError(t, err)
	assert.Equal(t, "processed", refund.Status)
	assert.Contains(t, refund.ID, "refund-")

	_, err = f.svc.Refund(ctx, RefundRequest{Reference: "REF-1", Amount: 50})
	assert.True(t, apperr.Is(err, apperr.KindValidation), "exceeds remaining balance")

	_, err = f.svc.Refund(ctx, RefundRequest{Reference: "REF-1", Amount: 40})
	require.NoError(t, err)

	p, err := f.svc.Status(ctx, "REF-1")
	require.NoError(t, err)
	assert.Equal(t, 100.0, p.Refunded)

	_, err = f.svc.Refund(ctx, RefundRequest{Reference: "REF-1", Amount: 0})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestPaymentTransactionsFilter(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture(demoConfig())
	initiate(t, f, "REF-1", 100)
	initiate(t, f, "REF-2", 200)
	_, err := f.svc.HandleCallback(ctx, []byte(`{"reference":"REF-2","status":"FAILED","amount":200,"timestamp":"t"}`), "")
	require.NoError(t, err)

	failed, total, err := f.svc.Transactions(ctx, entity.PaymentFilter{Status: entity.PaymentFailed})
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "REF-2", failed[0].Reference)

	page, total, err := f.svc.Transactions(ctx, entity.PaymentFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, page, 1)
	assert.Equal(t, 2, total, "total counts every match, not the page")

	_, _, err = f.svc.Transactions(ctx, entity.PaymentFilter{Status: "LOST"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}
