package httpx

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jcmexdev/tradehub/internal/storefront/core/domain/entity"
)

// ParseOrder decodes an order as served by GET /api/orders/{id}, either
// the bare order or the whole response envelope.
func ParseOrder(raw []byte) (*entity.Order, error) {
	var wrapped struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("parse order: %w", err)
	}
	if len(wrapped.Data) > 0 && string(wrapped.Data) != "null" {
		raw = wrapped.Data
	}

	var dto OrderResponse
	if err := json.Unmarshal(raw, &dto); err != nil {
		return nil, fmt.Errorf("parse order: %w", err)
	}
	if dto.OrderNumber == "" {
		return nil, fmt.Errorf("parse order: orderNumber is missing")
	}
	return dto.toEntity()
}

func (o OrderResponse) toEntity() (*entity.Order, error) {
	created, err := parseTime(o.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse order: createdAt: %w", err)
	}
	delivery, err := parseTime(o.EstimatedDelivery)
	if err != nil {
		return nil, fmt.Errorf("parse order: estimatedDelivery: %w", err)
	}

	order := &entity.Order{
		ID:                o.ID,
		OrderNumber:       o.OrderNumber,
		ReferenceID:       o.ReferenceID,
		TrackingNumber:    o.TrackingNumber,
		Subtotal:          o.Subtotal,
		Shipping:          o.Shipping,
		Tax:               o.Tax,
		Total:             o.Total,
		Status:            entity.OrderStatus(o.Status),
		CreatedAt:         created,
		EstimatedDelivery: delivery,
		ShippingAddress:   entity.Address(o.ShippingAddress),
		ShippingMethod:    entity.ShippingMethod(o.ShippingMethod),
	}
	for _, it := range o.Items {
		order.Items = append(order.Items, entity.LineItem{
			ProductID: it.ID,
			Name:      it.Name,
			Price:     it.Price,
			Quantity:  it.Quantity,
			Category:  it.Category,
		})
	}
	if d := o.Discount; d != nil {
		order.Discount = &entity.Discount{Code: d.Code, Type: entity.DiscountType(d.DiscountType), Amount: d.DiscountAmount}
	}
	for _, ev := range o.StatusHistory {
		ts, err := parseTime(ev.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("parse order: statusHistory: %w", err)
		}
		order.StatusHistory = append(order.StatusHistory, entity.StatusEvent{
			Status:    entity.OrderStatus(ev.Status),
			Timestamp: ts,
			Message:   ev.Message,
		})
	}
	return order, nil
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}
