package httpx

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/tradehub/internal/storefront/core/domain/entity"
)

func TestParseOrderRoundTripsResponse(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	order := &entity.Order{
		ID:          "order_1",
		OrderNumber: "ORD-1",
		Items:       []entity.LineItem{{ProductID: 3, Name: "Dress", Price: 12500, Quantity: 1}},
		Total:       13938,
		Status:      entity.OrderPending,
		CreatedAt:   created,
		Discount:    &entity.Discount{Code: "X", Type: entity.DiscountFixed, Amount: 100},
	}
	order.Transition(entity.OrderPending, "Order created and awaiting payment", created)

	raw, err := json.Marshal(map[string]any{"status": "success", "data": mapOrderToResponse(order)})
	require.NoError(t, err)

	got, err := ParseOrder(raw)
	require.NoError(t, err)
	assert.Equal(t, "ORD-1", got.OrderNumber)
	assert.True(t, created.Equal(got.CreatedAt))
	assert.Equal(t, 3, got.Items[0].ProductID)
	assert.Equal(t, 100.0, got.Discount.Amount)
	require.Len(t, got.StatusHistory, 1)

	bare, err := json.Marshal(mapOrderToResponse(order))
	require.NoError(t, err)
	got, err = ParseOrder(bare)
	require.NoError(t, err)
	assert.Equal(t, "order_1", got.ID)
}

func TestParseOrderRejectsGarbage(t *testing.T) {
	_, err := ParseOrder([]byte(`{"status":"success"}`))
	assert.Error(t, err)

	_, err = ParseOrder([]byte(`[1,2]`))
	assert.Error(t, err)
}
