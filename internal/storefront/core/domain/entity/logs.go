package entity

import "time"

// WebhookLog records one received payment callback, whether or not it was
// applied.
type WebhookLog struct {
	ID             string
	Reference      string
	PaymentStatus  PaymentStatus
	Amount         float64
	SignatureValid bool
	Processed      bool
	ProcessedAt    *time.Time
	ErrorMessage   string
	CreatedAt      time.Time
}

type WebhookFilter struct {
	Status PaymentStatus
	Limit  int
	Offset int
}

type CheckoutStatus string

const (
	CheckoutStarted      CheckoutStatus = "STARTED"
	CheckoutStepDone     CheckoutStatus = "STEP_DONE"
	CheckoutCompleted    CheckoutStatus = "COMPLETED"
	CheckoutCompensating CheckoutStatus = "COMPENSATING"
	CheckoutFailed       CheckoutStatus = "FAILED"
)

// CheckoutLog is one append-only row of a checkout run's history.
type CheckoutLog struct {
	CheckoutID string
	Status     CheckoutStatus
	// CurrentStep is the step just executed, compensated or failed.
	CurrentStep string
	// Payload is the JSON request that started the run; only set on STARTED.
	Payload string
	// ErrorMessages is a JSON array of failure details.
	ErrorMessages string
	TraceID       string
	SpanID        string
	UpdatedAt     time.Time
}
