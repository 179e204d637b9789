package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/tradehub/internal/pkg/apperr"
	"github.com/jcmexdev/tradehub/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/tradehub/internal/storefront/core/ports"
)

func sampleRequest() ports.GatewayInitRequest {
	return ports.GatewayInitRequest{
		Reference:   "REF-1",
		Amount:      3188.5,
		AmountMinor: 318850,
		Currency:    "NGN",
		Country:     "NG",
		CallbackURL: "https://shop.test/api/payment/callback",
		ReturnURL:   "https://shop.test/done",
		Payer:       entity.PayerInfo{Email: "ada+shop@example.com", Name: "Ada"},
	}
}

func TestDemoCashier(t *testing.T) {
	checkout, err := NewDemoCashier("https://sandbox.test/cashier").Initialize(context.Background(), sampleRequest())
	require.NoError(t, err)

	assert.Equal(t, "REF-1", checkout.Reference)
	assert.Equal(t, checkout.CashierURL, checkout.CheckoutURL)
	assert.Equal(t, "Payment initialization successful (Demo Mode)", checkout.Message)

	u, err := url.Parse(checkout.CheckoutURL)
	require.NoError(t, err)
	assert.Equal(t, "sandbox.test", u.Host)
	assert.Equal(t, "REF-1", u.Query().Get("reference"))
	assert.Equal(t, "3188.5", u.Query().Get("amount"))
	assert.Equal(t, "ada+shop@example.com", u.Query().Get("email"))
}

func TestOPayClientInitialize(t *testing.T) {
	var got opayInitRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, initializePath, r.URL.Path)
		assert.Equal(t, "Bearer sk_live", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"success","message":"ok","data":{"cashierUrl":"https://opay.test/c/1","reference":"REF-1"}}`))
	}))
	defer srv.Close()

	client := NewOPayClient(srv.URL+"/", "sk_live", 2*time.Second)
	checkout, err := client.Initialize(context.Background(), sampleRequest())
	require.NoError(t, err)

	assert.Equal(t, int64(318850), got.Amount)
	assert.Equal(t, "NGN", got.Currency)
	assert.Equal(t, "ada+shop@example.com", got.UserInfo.UserEmail)
	assert.Equal(t, "https://opay.test/c/1", checkout.CashierURL)
	assert.Equal(t, "https://opay.test/c/1", checkout.CheckoutURL)
}

func TestOPayClientNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "merchant disabled", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewOPayClient(srv.URL, "sk", time.Second).Initialize(context.Background(), sampleRequest())
	require.Error(t, err)

	appErr := apperr.From(err)
	assert.Equal(t, apperr.KindPaymentInit, appErr.Kind)
	assert.Equal(t, "Failed to initialize payment with OPay", appErr.Message)
	assert.Equal(t, map[string]any{"status": http.StatusBadGateway}, appErr.Details)
	assert.NotContains(t, err.Error(), "merchant disabled")
}

func TestOPayClientTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewOPayClient(srv.URL, "sk", 50*time.Millisecond).Initialize(context.Background(), sampleRequest())
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindPaymentInit))
}
