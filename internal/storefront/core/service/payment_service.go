package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/tradehub/internal/config"
	"github.com/jcmexdev/tradehub/internal/pkg/apperr"
	"github.com/jcmexdev/tradehub/internal/pkg/cache"
	"github.com/jcmexdev/tradehub/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/tradehub/internal/storefront/core/ports"
)

const msgCallbackProcessed = "Webhook received and processed"

// OrderLinker lets a confirmed payment advance its order.
type OrderLinker interface {
	MarkPaid(ctx context.Context, reference string) error
}

type InitiateRequest struct {
	Reference   string
	Amount      float64
	Payer       *entity.PayerInfo
	CallbackURL string
	ReturnURL   string
}

type RefundRequest struct {
	Reference string
	OrderID   string
	Amount    float64
	Reason    string
}

// CallbackResult is what the webhook acknowledges.
type CallbackResult struct {
	Reference string
	Message   string
	Duplicate bool
}

type PaymentService struct {
	cfg       config.Payment
	payments  ports.PaymentRepository
	webhooks  ports.WebhookLogRepository
	gateway   ports.PaymentGateway
	replay    cache.Cache
	replayTTL time.Duration
	orders    OrderLinker
	now       func() time.Time
}

type PaymentOption func(*PaymentService)

// WithReplayGuard suppresses identical callbacks seen within ttl.
func WithReplayGuard(c cache.Cache, ttl time.Duration) PaymentOption {
	return func(s *PaymentService) {
		s.replay = c
		s.replayTTL = ttl
	}
}

// WithOrderLinker advances orders on successful callbacks.
func WithOrderLinker(l OrderLinker) PaymentOption {
	return func(s *PaymentService) { s.orders = l }
}

func NewPaymentService(
	cfg config.Payment,
	payments ports.PaymentRepository,
	webhooks ports.WebhookLogRepository,
	gateway ports.PaymentGateway,
	opts ...PaymentOption,
) *PaymentService {
	s := &PaymentService{
		cfg:      cfg,
		payments: payments,
		webhooks: webhooks,
		gateway:  gateway,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initiate records a pending payment and asks the gateway for a checkout
// URL. A repeated reference overwrites the earlier record.
func (s *PaymentService) Initiate(ctx context.Context, req InitiateRequest) (*entity.Checkout, error) {
	if req.Reference == "" || req.Amount == 0 || req.Payer == nil {
		slog.WarnContext(ctx, "missing required payment fields",
			"has_reference", req.Reference != "",
			"has_amount", req.Amount != 0,
			"has_user_info", req.Payer != nil,
		)
		return nil, apperr.Validation("Missing required fields", nil)
	}
	if req.Amount <= 0 {
		slog.WarnContext(ctx, "invalid payment amount", "amount", req.Amount)
		return nil, apperr.Validation("Amount must be greater than 0", nil)
	}

	now := s.now()
	record := &entity.Payment{
		Reference: req.Reference,
		Amount:    req.Amount,
		Status:    entity.PaymentPending,
		Timestamp: now,
		UpdatedAt: now,
		Payer:     *req.Payer,
	}
	if err := s.payments.Put(ctx, record); err != nil {
		return nil, apperr.Internal("", fmt.Errorf("store payment: %w", err))
	}
	slog.InfoContext(ctx, "payment initialization started",
		"reference", req.Reference, "amount", req.Amount, "email", req.Payer.Email)

	checkout, err := s.gateway.Initialize(ctx, s.gatewayRequest(req.Reference, req.Amount, *req.Payer, req.CallbackURL, req.ReturnURL))
	if err != nil {
		slog.ErrorContext(ctx, "payment gateway error", "reference", req.Reference, "error", err)
		return nil, paymentInitError(err)
	}

	if _, err := s.payments.Update(ctx, req.Reference, func(p *entity.Payment) error {
		p.CheckoutURL = checkout.CheckoutURL
		return nil
	}); err != nil {
		return nil, apperr.Internal("", fmt.Errorf("store checkout url: %w", err))
	}

	slog.InfoContext(ctx, "payment checkout url generated", "reference", req.Reference)
	return checkout, nil
}

func (s *PaymentService) gatewayRequest(reference string, amount float64, payer entity.PayerInfo, callbackURL, returnURL string) ports.GatewayInitRequest {
	return ports.GatewayInitRequest{
		Reference:   reference,
		Amount:      amount,
		AmountMinor: entity.MinorUnits(amount),
		Currency:    s.cfg.Currency,
		Country:     s.cfg.Country,
		CallbackURL: callbackURL,
		ReturnURL:   returnURL,
		Payer:       payer,
	}
}

func paymentInitError(err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) && appErr.Kind == apperr.KindPaymentInit {
		return appErr
	}
	return apperr.PaymentInit("Failed to initialize payment with OPay", nil, err)
}

// HandleCallback applies a gateway webhook. rawBody is verified as received
// so re-encoding cannot change the signed bytes.
func (s *PaymentService) HandleCallback(ctx context.Context, rawBody []byte, signature string) (*CallbackResult, error) {
	var cb entity.PaymentCallback
	if err := json.Unmarshal(rawBody, &cb); err != nil {
		return nil, apperr.Validation("Invalid callback payload", map[string]any{"error": err.Error()})
	}
	if cb.Reference == "" || !cb.Status.Valid() {
		return nil, apperr.Validation("Callback requires a reference and a known status", nil)
	}

	slog.InfoContext(ctx, "payment callback received", "reference", cb.Reference, "status", cb.Status)

	now := s.now()
	entry := &entity.WebhookLog{
		ID:             newWebhookID(now),
		Reference:      cb.Reference,
		PaymentStatus:  cb.Status,
		Amount:         cb.Amount,
		SignatureValid: true,
		CreatedAt:      now,
	}

	if s.cfg.IsProduction() {
		switch {
		case signature != "":
			if !s.validSignature(rawBody, signature) {
				slog.WarnContext(ctx, "invalid webhook signature", "reference", cb.Reference)
				entry.SignatureValid = false
				entry.ErrorMessage = "invalid signature"
				s.saveWebhook(ctx, entry)
				return nil, apperr.Authentication("Invalid webhook signature")
			}
		case s.cfg.RequireSignature:
			slog.WarnContext(ctx, "unsigned webhook rejected", "reference", cb.Reference)
			entry.SignatureValid = false
			entry.ErrorMessage = "missing signature"
			s.saveWebhook(ctx, entry)
			return nil, apperr.Authentication("Missing webhook signature")
		default:
			entry.SignatureValid = false
		}
	}

	result := &CallbackResult{Reference: cb.Reference, Message: msgCallbackProcessed}

	// Nothing is claimed for an unknown reference, so a redelivery after
	// initiate still applies.
	current, err := s.payments.Get(ctx, cb.Reference)
	switch {
	case errors.Is(err, ports.ErrNotFound):
		slog.WarnContext(ctx, "payment record not found for callback", "reference", cb.Reference)
		entry.ErrorMessage = "payment record not found"
		s.saveWebhook(ctx, entry)
		return result, nil
	case err != nil:
		entry.ErrorMessage = err.Error()
		s.saveWebhook(ctx, entry)
		return nil, apperr.Internal("Webhook processing failed", err)
	}

	claim, fresh := s.claimCallback(ctx, cb, current.RetryCount)
	if !fresh {
		slog.InfoContext(ctx, "duplicate callback ignored", "reference", cb.Reference, "attempt", current.RetryCount)
		entry.ErrorMessage = "duplicate"
		s.saveWebhook(ctx, entry)
		result.Duplicate = true
		return result, nil
	}

	_, err = s.payments.Update(ctx, cb.Reference, func(p *entity.Payment) error {
		p.Status = cb.Status
		if cb.TransactionID != "" {
			p.TransactionID = cb.TransactionID
		}
		p.UpdatedAt = now
		return nil
	})
	switch {
	case errors.Is(err, ports.ErrNotFound):
		s.releaseCallback(ctx, claim)
		slog.WarnContext(ctx, "payment record not found for callback", "reference", cb.Reference)
		entry.ErrorMessage = "payment record not found"
		s.saveWebhook(ctx, entry)
		return result, nil
	case err != nil:
		s.releaseCallback(ctx, claim)
		entry.ErrorMessage = err.Error()
		s.saveWebhook(ctx, entry)
		return nil, apperr.Internal("Webhook processing failed", err)
	}
	slog.InfoContext(ctx, "payment record updated", "reference", cb.Reference, "status", cb.Status)

	if s.orders != nil && s.cfg.LinkOrders && cb.Status == entity.PaymentSuccess {
		if err := s.orders.MarkPaid(ctx, cb.Reference); err != nil {
			slog.WarnContext(ctx, "order not advanced after payment", "reference", cb.Reference, "error", err)
		}
	}

	processedAt := now
	entry.Processed = true
	entry.ProcessedAt = &processedAt
	s.saveWebhook(ctx, entry)
	return result, nil
}

// claimCallback takes the replay key for one delivery of one payment
// attempt. A retry starts a new attempt, so its callbacks claim fresh keys.
// Without a guard, or when the guard fails, every delivery is fresh.
func (s *PaymentService) claimCallback(ctx context.Context, cb entity.PaymentCallback, attempt int) (string, bool) {
	if s.replay == nil {
		return "", true
	}
	key := s.replay.GenerateKey("callback",
		fmt.Sprintf("%s|%d|%s|%s", cb.Reference, attempt, cb.Status, cb.TransactionID))
	fresh, err := s.replay.SetIfAbsent(ctx, key, s.now().Format(time.RFC3339), s.replayTTL)
	if err != nil {
		slog.WarnContext(ctx, "replay guard unavailable, applying callback", "error", err)
		return "", true
	}
	return key, fresh
}

// releaseCallback frees a claim whose callback was not applied so the
// gateway's redelivery is not mistaken for a duplicate.
func (s *PaymentService) releaseCallback(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.replay.Release(ctx, key); err != nil {
		slog.WarnContext(ctx, "failed to release replay key", "key", key, "error", err)
	}
}

func (s *PaymentService) validSignature(body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(s.cfg.SecretKey))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// saveWebhook never fails the callback; the audit trail is best effort.
func (s *PaymentService) saveWebhook(ctx context.Context, entry *entity.WebhookLog) {
	if s.webhooks == nil {
		return
	}
	if err := s.webhooks.SaveWebhook(ctx, entry); err != nil {
		slog.ErrorContext(ctx, "failed to save webhook log", "reference", entry.Reference, "error", err)
	}
}

func (s *PaymentService) Status(ctx context.Context, reference string) (*entity.Payment, error) {
	if reference == "" {
		return nil, apperr.Validation("Reference is required", nil)
	}
	p, err := s.payments.Get(ctx, reference)
	if errors.Is(err, ports.ErrNotFound) {
		slog.WarnContext(ctx, "payment record not found", "reference", reference)
		return nil, apperr.NotFound("Payment record not found")
	}
	if err != nil {
		return nil, apperr.Internal("", err)
	}
	return p, nil
}

// Transactions lists payment records; total counts every match.
func (s *PaymentService) Transactions(ctx context.Context, filter entity.PaymentFilter) ([]*entity.Payment, int, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, apperr.Validation("Invalid payment status", map[string]any{"status": filter.Status})
	}
	out, err := s.payments.List(ctx, filter)
	if err != nil {
		return nil, 0, apperr.Internal("", err)
	}
	total, err := s.payments.Count(ctx, filter)
	if err != nil {
		return nil, 0, apperr.Internal("", err)
	}
	return out, total, nil
}

func (s *PaymentService) Webhooks(ctx context.Context, filter entity.WebhookFilter) ([]entity.WebhookLog, int, error) {
	if s.webhooks == nil {
		return []entity.WebhookLog{}, 0, nil
	}
	out, err := s.webhooks.ListWebhooks(ctx, filter)
	if err != nil {
		return nil, 0, apperr.Internal("", err)
	}
	total, err := s.webhooks.CountWebhooks(ctx, filter)
	if err != nil {
		return nil, 0, apperr.Internal("", err)
	}
	return out, total, nil
}

// Retry reopens a failed payment with a fresh checkout URL. The record
// only moves back to PENDING once the gateway has issued the new session.
func (s *PaymentService) Retry(ctx context.Context, reference string) (*entity.Checkout, error) {
	if reference == "" {
		return nil, apperr.Validation("Reference is required", nil)
	}

	current, err := s.payments.Get(ctx, reference)
	if err != nil {
		return nil, paymentLookupError(err)
	}
	if err := retryable(current); err != nil {
		return nil, err
	}

	checkout, err := s.gateway.Initialize(ctx, s.gatewayRequest(current.Reference, current.Amount, current.Payer, "", ""))
	if err != nil {
		slog.ErrorContext(ctx, "payment retry gateway error", "reference", reference, "error", err)
		return nil, paymentInitError(err)
	}

	now := s.now()
	p, err := s.payments.Update(ctx, reference, func(p *entity.Payment) error {
		if err := retryable(p); err != nil {
			return err
		}
		p.Status = entity.PaymentPending
		p.RetryCount++
		p.CheckoutURL = checkout.CheckoutURL
		p.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, paymentLookupError(err)
	}

	slog.InfoContext(ctx, "payment retry initiated", "reference", reference, "retry_count", p.RetryCount)
	return checkout, nil
}

func retryable(p *entity.Payment) error {
	if p.Status != entity.PaymentFailed {
		return apperr.Validation(fmt.Sprintf("Only failed payments can be retried, current status: %s", p.Status), nil)
	}
	return nil
}

// ReferenceForTransaction resolves a gateway transaction id to the payment
// reference it was reported against.
func (s *PaymentService) ReferenceForTransaction(ctx context.Context, transactionID string) (string, error) {
	if transactionID == "" {
		return "", apperr.Validation("Transaction id is required", nil)
	}
	p, err := s.payments.FindByTransactionID(ctx, transactionID)
	if err != nil {
		return "", paymentLookupError(err)
	}
	return p.Reference, nil
}

// Refund records a refund against a successful payment. The gateway is not
// contacted.
func (s *PaymentService) Refund(ctx context.Context, req RefundRequest) (*entity.Refund, error) {
	if req.Reference == "" {
		return nil, apperr.Validation("Reference is required", nil)
	}
	if req.Amount <= 0 {
		return nil, apperr.Validation("Refund amount must be greater than 0", nil)
	}

	now := s.now()
	_, err := s.payments.Update(ctx, req.Reference, func(p *entity.Payment) error {
		if p.Status != entity.PaymentSuccess {
			return apperr.Validation(fmt.Sprintf("Only successful payments can be refunded, current status: %s", p.Status), nil)
		}
		remaining := decimal.NewFromFloat(p.Amount).Sub(decimal.NewFromFloat(p.Refunded))
		if decimal.NewFromFloat(req.Amount).GreaterThan(remaining) {
			return apperr.Validation("Refund amount exceeds refundable balance",
				map[string]any{"refundable": remaining.InexactFloat64()})
		}
		p.Refunded = decimal.NewFromFloat(p.Refunded).Add(decimal.NewFromFloat(req.Amount)).InexactFloat64()
		p.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, paymentLookupError(err)
	}

	refund := &entity.Refund{
		ID:        newRefundID(now),
		Reference: req.Reference,
		OrderID:   req.OrderID,
		Amount:    req.Amount,
		Reason:    req.Reason,
		Status:    "processed",
		CreatedAt: now,
	}
	slog.InfoContext(ctx, "refund processed", "reference", req.Reference, "refund_id", refund.ID, "amount", req.Amount)
	return refund, nil
}

func paymentLookupError(err error) error {
	var appErr *apperr.Error
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, ports.ErrNotFound):
		return apperr.NotFound("Payment record not found")
	default:
		return apperr.Internal("", err)
	}
}
