package entity

import "time"

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentSuccess PaymentStatus = "SUCCESS"
	PaymentFailed  PaymentStatus = "FAILED"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentSuccess, PaymentFailed:
		return true
	}
	return false
}

type PayerInfo struct {
	Email string
	Name  string
}

// Payment is keyed by Reference. A repeated initiation with the same
// reference replaces the record.
type Payment struct {
	Reference     string
	Amount        float64
	Status        PaymentStatus
	Timestamp     time.Time
	UpdatedAt     time.Time
	Payer         PayerInfo
	TransactionID string
	CheckoutURL   string
	RetryCount    int
	Refunded      float64
}

func (p *Payment) Clone() *Payment {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

type PaymentFilter struct {
	Status PaymentStatus
	Limit  int
	Offset int
}

// PaymentCallback is the gateway webhook body.
type PaymentCallback struct {
	Reference     string        `json:"reference"`
	Status        PaymentStatus `json:"status"`
	Amount        float64       `json:"amount"`
	Timestamp     string        `json:"timestamp"`
	TransactionID string        `json:"transactionId,omitempty"`
	Message       string        `json:"message,omitempty"`
}

// Checkout is what a customer is redirected to after initiation.
type Checkout struct {
	Reference   string
	CashierURL  string
	CheckoutURL string
	Message     string
}

type Refund struct {
	ID        string
	Reference string
	OrderID   string
	Amount    float64
	Reason    string
	Status    string
	CreatedAt time.Time
}
