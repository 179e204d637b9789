package invoice

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/tradehub/internal/storefront/core/domain/entity"
)

func sampleOrder() *entity.Order {
	return &entity.Order{
		ID:          "order_1",
		OrderNumber: "ORD-1700000000000-abc123",
		Items: []entity.LineItem{
			{ProductID: 1, Name: "Wireless Earbuds", Price: 15000, Quantity: 2},
			{ProductID: 2, Name: "<script>alert(1)</script>", Price: 500, Quantity: 1},
		},
		Subtotal:  30500,
		Shipping:  1500,
		Tax:       2288,
		Total:     34288,
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		ShippingAddress: entity.Address{
			FirstName: "Ada", LastName: "Obi", Email: "ada@example.com", Phone: "0800",
			Address: "1 Marina", City: "Lagos", State: "LA", ZipCode: "100001",
		},
	}
}

func TestMoney(t *testing.T) {
	tests := map[float64]string{
		0:         "₦0",
		500:       "₦500",
		3188:      "₦3,188",
		1234567.5: "₦1,234,567.50",
		19.999:    "₦20",
		-2500:     "-₦2,500",
	}
	for in, want := range tests {
		assert.Equal(t, want, Money(in), "amount %v", in)
	}
}

func TestHTML(t *testing.T) {
	out, err := HTML(sampleOrder(), "")
	require.NoError(t, err)

	assert.Contains(t, out, "TradeHub")
	assert.Contains(t, out, "Invoice #ORD-1700000000000-abc123")
	assert.Contains(t, out, "Invoice Date: Mar 1, 2026")
	assert.Contains(t, out, "Due Date: Mar 31, 2026")
	assert.Contains(t, out, "Ada Obi")
	assert.Contains(t, out, "₦30,000")
	assert.Contains(t, out, "Tax (7.5%):")
	assert.Contains(t, out, "₦34,288")
	assert.Contains(t, out, "<strong>Payment Status:</strong> Pending")
	assert.Contains(t, out, "OPay")
	assert.NotContains(t, out, "<script>alert(1)</script>")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.NotContains(t, out, "Subtotal after discount")
}

func TestHTMLWithDiscount(t *testing.T) {
	order := sampleOrder()
	order.Discount = &entity.Discount{Code: "SAVE10", Type: entity.DiscountFixed, Amount: 3050}

	out, err := HTML(order, "SUCCESS")
	require.NoError(t, err)
	assert.Contains(t, out, "SAVE10 Discount:")
	assert.Contains(t, out, "-₦3,050")
	assert.Contains(t, out, "₦27,450")
	assert.Contains(t, out, "<strong>Payment Status:</strong> SUCCESS")
}

func TestText(t *testing.T) {
	order := sampleOrder()
	order.Discount = &entity.Discount{Code: "save10", Amount: 3050}

	out, err := Text(order, "")
	require.NoError(t, err)

	assert.Contains(t, out, "INVOICE #ORD-1700000000000-abc123")
	assert.Contains(t, out, "DUE DATE: Mar 31, 2026")
	assert.Contains(t, out, "SAVE10 DISCOUNT:")
	assert.Contains(t, out, "SUBTOTAL AFTER DISCOUNT:")
	assert.Contains(t, out, "TAX (7.5%):")
	assert.Contains(t, out, "PAYMENT STATUS: Pending")
	assert.Contains(t, out, "PAYMENT METHOD: OPay")

	for _, l := range strings.Split(out, "\n") {
		if strings.HasPrefix(l, "Wireless Earbuds") {
			assert.Contains(t, l, "₦15,000")
			assert.Contains(t, l, "₦30,000")
			return
		}
	}
	t.Fatal("item line not found")
}

func TestNilOrder(t *testing.T) {
	_, err := HTML(nil, "")
	assert.ErrorIs(t, err, ErrNilOrder)
	_, err = Text(nil, "")
	assert.ErrorIs(t, err, ErrNilOrder)
}
