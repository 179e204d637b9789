package entity

import "time"

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// Cancellable reports whether an order in this status may still be
// cancelled.
func (s OrderStatus) Cancellable() bool {
	return s == OrderPending || s == OrderProcessing
}

type ShippingMethod string

const (
	ShippingStandard  ShippingMethod = "standard"
	ShippingExpress   ShippingMethod = "express"
	ShippingOvernight ShippingMethod = "overnight"
)

func (m ShippingMethod) Valid() bool {
	switch m {
	case ShippingStandard, ShippingExpress, ShippingOvernight:
		return true
	}
	return false
}

type LineItem struct {
	ProductID int
	Name      string
	Price     float64
	Quantity  int
	Category  string
}

type Address struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Address   string
	City      string
	State     string
	ZipCode   string
}

func (a Address) FullName() string {
	switch {
	case a.FirstName == "":
		return a.LastName
	case a.LastName == "":
		return a.FirstName
	}
	return a.FirstName + " " + a.LastName
}

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

type Discount struct {
	Code   string
	Type   DiscountType
	Amount float64
}

type StatusEvent struct {
	Status    OrderStatus
	Timestamp time.Time
	Message   string
}

type Order struct {
	ID                string
	OrderNumber       string
	ReferenceID       string
	TrackingNumber    string
	Items             []LineItem
	Subtotal          float64
	Shipping          float64
	Tax               float64
	Total             float64
	Status            OrderStatus
	CreatedAt         time.Time
	EstimatedDelivery time.Time
	ShippingAddress   Address
	ShippingMethod    ShippingMethod
	Discount          *Discount
	StatusHistory     []StatusEvent
}

// Transition sets the status and appends the history entry. History is
// never rewritten.
func (o *Order) Transition(status OrderStatus, message string, at time.Time) {
	o.Status = status
	o.StatusHistory = append(o.StatusHistory, StatusEvent{
		Status:    status,
		Timestamp: at,
		Message:   message,
	})
}

// Clone returns a deep copy safe to hand outside a store.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	c := *o
	c.Items = append([]LineItem(nil), o.Items...)
	c.StatusHistory = append([]StatusEvent(nil), o.StatusHistory...)
	if o.Discount != nil {
		d := *o.Discount
		c.Discount = &d
	}
	return &c
}

// OrderDraft is the checkout submission before identifiers and totals are
// assigned.
type OrderDraft struct {
	Items           []LineItem
	ShippingAddress *Address
	ShippingMethod  ShippingMethod
	Discount        *Discount
}

type OrderFilter struct {
	Status OrderStatus
	Limit  int
	Offset int
}
