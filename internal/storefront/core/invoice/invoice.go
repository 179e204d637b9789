// Package invoice renders customer invoices for an order as HTML or plain
// text. Rendering is pure: the same order and payment status always give
// the same document.
package invoice

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/tradehub/internal/storefront/core/domain/entity"
)

// DueAfter is the payment term counted from the order date.
const DueAfter = 30 * 24 * time.Hour

const (
	currencySymbol = "₦"
	paymentMethod  = "OPay"
	dateLayout     = "Jan 2, 2006"
)

var ErrNilOrder = errors.New("invoice: order is required")

//go:embed invoice.html.tmpl
var htmlSource string

var htmlTemplate = template.Must(template.New("invoice").Funcs(template.FuncMap{
	"money": Money,
}).Parse(htmlSource))

type line struct {
	Name     string
	Quantity int
	Price    float64
	Amount   float64
}

type view struct {
	OrderNumber   string
	InvoiceDate   string
	DueDate       string
	Address       entity.Address
	Items         []line
	Subtotal      float64
	Discount      *entity.Discount
	AfterDiscount float64
	Shipping      float64
	Tax           float64
	Total         float64
	PaymentStatus string
	PaymentMethod string
}

func newView(order *entity.Order, paymentStatus string) view {
	if paymentStatus == "" {
		paymentStatus = "Pending"
	}
	v := view{
		OrderNumber:   order.OrderNumber,
		InvoiceDate:   order.CreatedAt.Format(dateLayout),
		DueDate:       order.CreatedAt.Add(DueAfter).Format(dateLayout),
		Address:       order.ShippingAddress,
		Subtotal:      order.Subtotal,
		AfterDiscount: order.Subtotal,
		Shipping:      order.Shipping,
		Tax:           order.Tax,
		Total:         order.Total,
		PaymentStatus: paymentStatus,
		PaymentMethod: paymentMethod,
	}
	for _, it := range order.Items {
		amount := decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Quantity)))
		v.Items = append(v.Items, line{Name: it.Name, Quantity: it.Quantity, Price: it.Price, Amount: amount.InexactFloat64()})
	}
	if order.Discount != nil {
		d := *order.Discount
		v.Discount = &d
		v.AfterDiscount = decimal.NewFromFloat(order.Subtotal).Sub(decimal.NewFromFloat(d.Amount)).InexactFloat64()
	}
	return v
}

// HTML renders the printable invoice. Customer-provided text is escaped.
func HTML(order *entity.Order, paymentStatus string) (string, error) {
	if order == nil {
		return "", ErrNilOrder
	}
	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, newView(order, paymentStatus)); err != nil {
		return "", fmt.Errorf("invoice: render html: %w", err)
	}
	return buf.String(), nil
}

const textWidth = 80

// Text renders the plain-text invoice used in emails.
func Text(order *entity.Order, paymentStatus string) (string, error) {
	if order == nil {
		return "", ErrNilOrder
	}
	v := newView(order, paymentStatus)
	sep := strings.Repeat("-", textWidth)

	var b strings.Builder
	fmt.Fprintf(&b, "%s\nINVOICE #%s\n%s\n\n", sep, v.OrderNumber, sep)
	fmt.Fprintf(&b, "INVOICE DATE: %s\nDUE DATE: %s\nORDER NUMBER: %s\n\n", v.InvoiceDate, v.DueDate, v.OrderNumber)

	fmt.Fprintf(&b, "%s\nBILL TO:\n%s\n", sep, sep)
	fmt.Fprintf(&b, "%s\n%s\n%s, %s %s\nEmail: %s\nPhone: %s\n\n",
		v.Address.FullName(), v.Address.Address, v.Address.City, v.Address.State, v.Address.ZipCode,
		v.Address.Email, v.Address.Phone)

	fmt.Fprintf(&b, "%s\nORDER ITEMS:\n%s\n", sep, sep)
	fmt.Fprintf(&b, "%-36s %5s %15s %15s\n%s\n", "Description", "Qty", "Price", "Amount", sep)
	for _, it := range v.Items {
		fmt.Fprintf(&b, "%-36s %5d %15s %15s\n", truncate(it.Name, 36), it.Quantity, Money(it.Price), Money(it.Amount))
	}

	fmt.Fprintf(&b, "\n%s\n", sep)
	total := func(label, value string) {
		fmt.Fprintf(&b, "%-56s %16s\n", label, value)
	}
	total("SUBTOTAL:", Money(v.Subtotal))
	if v.Discount != nil {
		total(strings.ToUpper(v.Discount.Code)+" DISCOUNT:", "-"+Money(v.Discount.Amount))
		total("SUBTOTAL AFTER DISCOUNT:", Money(v.AfterDiscount))
	}
	total("SHIPPING:", Money(v.Shipping))
	total("TAX (7.5%):", Money(v.Tax))
	b.WriteString(sep + "\n")
	total("TOTAL DUE:", Money(v.Total))
	b.WriteString(sep + "\n\n")

	fmt.Fprintf(&b, "PAYMENT STATUS: %s\nPAYMENT METHOD: %s\n\n", v.PaymentStatus, v.PaymentMethod)
	b.WriteString("Thank you for your order!\nFor questions, contact support@tradehub.com\n\n")
	b.WriteString("This is an automatically generated invoice.\n")
	return b.String(), nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// Money formats an amount in naira with thousands separators. Fractions
// are shown to two places only when present.
func Money(amount float64) string {
	d := decimal.NewFromFloat(amount).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}

	whole := d.Truncate(0)
	frac := d.Sub(whole)

	digits := whole.String()
	var grouped strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			grouped.WriteByte(',')
		}
		grouped.WriteRune(r)
	}

	out := sign + currencySymbol + grouped.String()
	if !frac.IsZero() {
		out += strings.TrimPrefix(frac.StringFixed(2), "0")
	}
	return out
}
