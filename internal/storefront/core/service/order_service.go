// Package service holds the storefront use cases. Each service validates
// its input, applies the domain rules and talks to storage only through
// the ports.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jcmexdev/tradehub/internal/pkg/apperr"
	"github.com/jcmexdev/tradehub/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/tradehub/internal/storefront/core/ports"
)

const (
	msgOrderCreated   = "Order created and awaiting payment"
	msgOrderCancelled = "Order cancelled by user"

	// DefaultAdminOrderLimit caps admin listings that pass no limit.
	DefaultAdminOrderLimit = 50
)

type OrderService struct {
	orders ports.OrderRepository
	now    func() time.Time
}

func NewOrderService(orders ports.OrderRepository) *OrderService {
	return &OrderService{orders: orders, now: time.Now}
}

// Create validates the draft, prices it and stores a pending order.
func (s *OrderService) Create(ctx context.Context, draft entity.OrderDraft) (*entity.Order, error) {
	if err := validateDraft(draft); err != nil {
		return nil, err
	}
	method := draft.ShippingMethod
	if method == "" {
		method = entity.ShippingStandard
	}

	now := s.now()
	ids := newOrderIDs(now)
	totals := entity.Quote(draft.Items, method, draft.Discount)

	order := &entity.Order{
		ID:                ids.ID,
		OrderNumber:       ids.OrderNumber,
		ReferenceID:       ids.ReferenceID,
		TrackingNumber:    ids.TrackingNumber,
		Items:             append([]entity.LineItem(nil), draft.Items...),
		Subtotal:          totals.Subtotal,
		Shipping:          totals.Shipping,
		Tax:               totals.Tax,
		Total:             totals.Total,
		CreatedAt:         now,
		EstimatedDelivery: entity.EstimatedDelivery(method, now),
		ShippingAddress:   *draft.ShippingAddress,
		ShippingMethod:    method,
	}
	if draft.Discount != nil && totals.Discount > 0 {
		d := *draft.Discount
		d.Amount = totals.Discount
		order.Discount = &d
	}
	order.Transition(entity.OrderPending, msgOrderCreated, now)

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, apperr.Internal("", fmt.Errorf("create order: %w", err))
	}

	slog.InfoContext(ctx, "order created",
		"order_id", order.ID,
		"order_number", order.OrderNumber,
		"reference", order.ReferenceID,
		"total", order.Total,
	)
	return order, nil
}

func validateDraft(draft entity.OrderDraft) error {
	if len(draft.Items) == 0 || draft.ShippingAddress == nil {
		return apperr.Validation("Items and shipping address are required", nil)
	}
	for i, it := range draft.Items {
		if it.Quantity <= 0 {
			return apperr.Validation("Item quantity must be greater than 0", map[string]any{"item": i})
		}
		if it.Price < 0 {
			return apperr.Validation("Item price cannot be negative", map[string]any{"item": i})
		}
	}
	if draft.ShippingMethod != "" && !draft.ShippingMethod.Valid() {
		return apperr.Validation("Invalid shipping method", map[string]any{"shippingMethod": draft.ShippingMethod})
	}
	if d := draft.Discount; d != nil {
		if d.Amount < 0 {
			return apperr.Validation("Discount amount cannot be negative", nil)
		}
		if d.Type != "" && d.Type != entity.DiscountPercentage && d.Type != entity.DiscountFixed {
			return apperr.Validation("Invalid discount type", map[string]any{"discountType": d.Type})
		}
	}
	return nil
}

func (s *OrderService) Get(ctx context.Context, id string) (*entity.Order, error) {
	order, err := s.orders.Get(ctx, id)
	if err != nil {
		return nil, orderLookupError(err)
	}
	return order, nil
}

func (s *OrderService) FindByReference(ctx context.Context, reference string) (*entity.Order, error) {
	order, err := s.orders.FindByReference(ctx, reference)
	if err != nil {
		return nil, orderLookupError(err)
	}
	return order, nil
}

// List returns every order. It is not scoped to a customer.
func (s *OrderService) List(ctx context.Context) ([]*entity.Order, error) {
	orders, _, err := s.ListFiltered(ctx, entity.OrderFilter{})
	return orders, err
}

// ListFiltered backs the admin listing. total counts every match, not just
// the returned page.
func (s *OrderService) ListFiltered(ctx context.Context, filter entity.OrderFilter) ([]*entity.Order, int, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, apperr.Validation("Invalid status", map[string]any{"status": filter.Status})
	}
	orders, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, 0, apperr.Internal("", fmt.Errorf("list orders: %w", err))
	}
	total, err := s.orders.Count(ctx, filter)
	if err != nil {
		return nil, 0, apperr.Internal("", fmt.Errorf("count orders: %w", err))
	}
	return orders, total, nil
}

// UpdateStatus records a status change. Any known status is accepted from
// any other; only cancellation is guarded.
func (s *OrderService) UpdateStatus(ctx context.Context, id string, status entity.OrderStatus, message string) (*entity.Order, error) {
	if !status.Valid() {
		return nil, apperr.Validation("Invalid status", map[string]any{"status": status})
	}
	if message == "" {
		message = fmt.Sprintf("Order status updated to %s", status)
	}

	now := s.now()
	order, err := s.orders.Update(ctx, id, func(o *entity.Order) error {
		o.Transition(status, message, now)
		return nil
	})
	if err != nil {
		return nil, orderLookupError(err)
	}

	slog.InfoContext(ctx, "order status updated", "order_id", id, "status", status)
	return order, nil
}

// Cancel moves a pending or processing order to cancelled. Any other status
// is rejected and the order is left untouched.
func (s *OrderService) Cancel(ctx context.Context, id, reason string) (*entity.Order, error) {
	if reason == "" {
		reason = msgOrderCancelled
	}

	now := s.now()
	order, err := s.orders.Update(ctx, id, func(o *entity.Order) error {
		if !o.Status.Cancellable() {
			return apperr.Validation(fmt.Sprintf("Cannot cancel order with status: %s", o.Status), nil)
		}
		o.Transition(entity.OrderCancelled, reason, now)
		return nil
	})
	if err != nil {
		return nil, orderLookupError(err)
	}

	slog.InfoContext(ctx, "order cancelled", "order_id", id, "reason", reason)
	return order, nil
}

// MarkPaid moves the order carrying reference from pending to processing.
// Orders in any other status are left alone.
func (s *OrderService) MarkPaid(ctx context.Context, reference string) error {
	order, err := s.orders.FindByReference(ctx, reference)
	if err != nil {
		return orderLookupError(err)
	}

	now := s.now()
	_, err = s.orders.Update(ctx, order.ID, func(o *entity.Order) error {
		if o.Status != entity.OrderPending {
			return nil
		}
		o.Transition(entity.OrderProcessing, "Payment confirmed", now)
		return nil
	})
	if err != nil {
		return orderLookupError(err)
	}
	return nil
}

func orderLookupError(err error) error {
	var appErr *apperr.Error
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, ports.ErrNotFound):
		return apperr.NotFound("Order not found")
	default:
		return apperr.Internal("", err)
	}
}
