package checkout

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/jcmexdev/tradehub/internal/pkg/apperr"
	"github.com/jcmexdev/tradehub/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/tradehub/internal/storefront/core/ports"
)

type Request struct {
	Draft       entity.OrderDraft
	CallbackURL string
	ReturnURL   string
}

type Result struct {
	CheckoutID string
	Order      *entity.Order
	Checkout   *entity.Checkout
}

type Service struct {
	orders   OrderPlacer
	payments PaymentInitiator
	log      ports.CheckoutLogRepository
}

func NewService(orders OrderPlacer, payments PaymentInitiator, log ports.CheckoutLogRepository) *Service {
	return &Service{orders: orders, payments: payments, log: log}
}

// Checkout places the order and starts its payment in one call.
func (s *Service) Checkout(ctx context.Context, req Request) (*Result, error) {
	checkoutID := "chk_" + uuid.NewString()
	state := &run{}

	orch := NewOrchestrator(s.log,
		&createOrderStep{orders: s.orders, draft: req.Draft, run: state},
		&initiatePaymentStep{payments: s.payments, callbackURL: req.CallbackURL, returnURL: req.ReturnURL, run: state},
	)

	payload, err := json.Marshal(req.Draft)
	if err != nil {
		return nil, apperr.Internal("", fmt.Errorf("encode checkout payload: %w", err))
	}
	if err := orch.Start(ctx, checkoutID, string(payload)); err != nil {
		return nil, err
	}

	return &Result{CheckoutID: checkoutID, Order: state.order, Checkout: state.checkout}, nil
}

// History returns the log rows of one checkout run.
func (s *Service) History(ctx context.Context, checkoutID string) ([]entity.CheckoutLog, error) {
	if s.log == nil {
		return nil, apperr.NotFound("Checkout not found")
	}
	rows, err := s.log.CheckoutHistory(ctx, checkoutID)
	if err != nil {
		return nil, apperr.Internal("", err)
	}
	if len(rows) == 0 {
		return nil, apperr.NotFound("Checkout not found")
	}
	return rows, nil
}
