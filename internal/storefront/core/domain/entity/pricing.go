package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TaxRate is the VAT applied to the discounted subtotal.
var TaxRate = decimal.RequireFromString("0.075")

var shippingFees = map[ShippingMethod]decimal.Decimal{
	ShippingStandard:  decimal.NewFromInt(500),
	ShippingExpress:   decimal.NewFromInt(1500),
	ShippingOvernight: decimal.NewFromInt(3000),
}

var deliveryWindows = map[ShippingMethod]time.Duration{
	ShippingStandard:  7 * 24 * time.Hour,
	ShippingExpress:   3 * 24 * time.Hour,
	ShippingOvernight: 24 * time.Hour,
}

type Totals struct {
	Subtotal float64
	Discount float64
	Shipping float64
	Tax      float64
	Total    float64
}

// Quote prices a basket. The discount is capped at the subtotal and tax is
// rounded to whole currency units.
func Quote(items []LineItem, method ShippingMethod, discount *Discount) Totals {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Quantity))))
	}

	off := decimal.Zero
	if discount != nil && discount.Amount > 0 {
		off = decimal.Min(decimal.NewFromFloat(discount.Amount), subtotal)
	}

	shipping, ok := shippingFees[method]
	if !ok {
		shipping = shippingFees[ShippingStandard]
	}

	taxable := subtotal.Sub(off)
	tax := taxable.Mul(TaxRate).Round(0)
	total := taxable.Add(shipping).Add(tax)

	return Totals{
		Subtotal: subtotal.InexactFloat64(),
		Discount: off.InexactFloat64(),
		Shipping: shipping.InexactFloat64(),
		Tax:      tax.InexactFloat64(),
		Total:    total.InexactFloat64(),
	}
}

// EstimatedDelivery returns the promised delivery time for an order placed
// at createdAt.
func EstimatedDelivery(method ShippingMethod, createdAt time.Time) time.Time {
	window, ok := deliveryWindows[method]
	if !ok {
		window = deliveryWindows[ShippingStandard]
	}
	return createdAt.Add(window)
}

// MinorUnits converts a major-unit amount to the gateway's integer minor
// units (kobo, cents).
func MinorUnits(amount float64) int64 {
	return decimal.NewFromFloat(amount).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
