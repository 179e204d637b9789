// Package gateway implements ports.PaymentGateway against OPay and against
// the local demo cashier.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jcmexdev/tradehub/internal/pkg/apperr"
	"github.com/jcmexdev/tradehub/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/tradehub/internal/storefront/core/ports"
)

const initializePath = "/api/v1/international/transaction/initialize"

// maxErrorBody bounds how much of a failed response is kept for details.
const maxErrorBody = 4 << 10

var _ ports.PaymentGateway = (*OPayClient)(nil)

type OPayClient struct {
	baseURL   string
	secretKey string
	client    *http.Client
}

// NewOPayClient builds a client whose every call is bounded by timeout and
// traced as an outbound span.
func NewOPayClient(baseURL, secretKey string, timeout time.Duration) *OPayClient {
	return &OPayClient{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		secretKey: secretKey,
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

type opayUserInfo struct {
	UserEmail string `json:"userEmail"`
	UserName  string `json:"userName,omitempty"`
}

type opayInitRequest struct {
	Reference   string       `json:"reference"`
	Amount      int64        `json:"amount"`
	Currency    string       `json:"currency"`
	Country     string       `json:"country"`
	CallbackURL string       `json:"callbackUrl,omitempty"`
	ReturnURL   string       `json:"returnUrl,omitempty"`
	UserInfo    opayUserInfo `json:"userInfo"`
}

type opayInitResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		CashierURL  string `json:"cashierUrl"`
		CheckoutURL string `json:"checkoutUrl"`
		Reference   string `json:"reference"`
	} `json:"data"`
}

func (c *OPayClient) Initialize(ctx context.Context, req ports.GatewayInitRequest) (*entity.Checkout, error) {
	body, err := json.Marshal(opayInitRequest{
		Reference:   req.Reference,
		Amount:      req.AmountMinor,
		Currency:    req.Currency,
		Country:     req.Country,
		CallbackURL: req.CallbackURL,
		ReturnURL:   req.ReturnURL,
		UserInfo:    opayUserInfo{UserEmail: req.Payer.Email, UserName: req.Payer.Name},
	})
	if err != nil {
		return nil, fmt.Errorf("encode initialize request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+initializePath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build initialize request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.secretKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, apperr.PaymentInit("Failed to initialize payment with OPay", nil, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		slog.WarnContext(ctx, "opay initialize rejected",
			"reference", req.Reference,
			"status", resp.StatusCode,
			"body", string(raw),
		)
		return nil, apperr.PaymentInit("Failed to initialize payment with OPay", map[string]any{"status": resp.StatusCode}, nil)
	}

	var decoded opayInitResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, apperr.PaymentInit("Failed to initialize payment with OPay", nil, fmt.Errorf("decode response: %w", err))
	}

	checkout := &entity.Checkout{
		Reference:   decoded.Data.Reference,
		CashierURL:  decoded.Data.CashierURL,
		CheckoutURL: decoded.Data.CheckoutURL,
		Message:     decoded.Message,
	}
	if checkout.Reference == "" {
		checkout.Reference = req.Reference
	}
	if checkout.CheckoutURL == "" {
		checkout.CheckoutURL = checkout.CashierURL
	}
	return checkout, nil
}
