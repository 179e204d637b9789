package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/jcmexdev/tradehub/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/tradehub/internal/storefront/core/service"
)

const compensationReason = "Checkout aborted: payment initialization failed"

// OrderPlacer is the slice of the order service a checkout needs.
type OrderPlacer interface {
	Create(ctx context.Context, draft entity.OrderDraft) (*entity.Order, error)
	Cancel(ctx context.Context, id, reason string) (*entity.Order, error)
}

type PaymentInitiator interface {
	Initiate(ctx context.Context, req service.InitiateRequest) (*entity.Checkout, error)
}

// run carries state between the steps of one checkout.
type run struct {
	order    *entity.Order
	checkout *entity.Checkout
}

// --- create_order ---

type createOrderStep struct {
	orders OrderPlacer
	draft  entity.OrderDraft
	run    *run
}

func (s *createOrderStep) Name() string { return "create_order" }

func (s *createOrderStep) Execute(ctx context.Context) error {
	order, err := s.orders.Create(ctx, s.draft)
	if err != nil {
		return err
	}
	s.run.order = order
	return nil
}

func (s *createOrderStep) Compensate(ctx context.Context) error {
	if s.run.order == nil {
		return nil
	}
	if _, err := s.orders.Cancel(ctx, s.run.order.ID, compensationReason); err != nil {
		return fmt.Errorf("cancel order %s: %w", s.run.order.ID, err)
	}
	return nil
}

// --- initiate_payment ---

type initiatePaymentStep struct {
	payments    PaymentInitiator
	callbackURL string
	returnURL   string
	run         *run
}

func (s *initiatePaymentStep) Name() string { return "initiate_payment" }

func (s *initiatePaymentStep) Execute(ctx context.Context) error {
	order := s.run.order
	if order == nil {
		return errors.New("no order to pay for")
	}
	addr := order.ShippingAddress
	checkout, err := s.payments.Initiate(ctx, service.InitiateRequest{
		Reference:   order.ReferenceID,
		Amount:      order.Total,
		Payer:       &entity.PayerInfo{Email: addr.Email, Name: addr.FullName()},
		CallbackURL: s.callbackURL,
		ReturnURL:   s.returnURL,
	})
	if err != nil {
		return err
	}
	s.run.checkout = checkout
	return nil
}

// Compensate is a no-op: the pending payment record is kept for audit and
// is never charged without a callback.
func (s *initiatePaymentStep) Compensate(context.Context) error { return nil }
