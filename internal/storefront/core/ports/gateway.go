package ports

import (
	"context"

	"github.com/jcmexdev/tradehub/internal/storefront/core/domain/entity"
)

// GatewayInitRequest is the outbound initialize call. Amount is in major
// units; AmountMinor is what the gateway API expects.
type GatewayInitRequest struct {
	Reference   string
	Amount      float64
	AmountMinor int64
	Currency    string
	Country     string
	CallbackURL string
	ReturnURL   string
	Payer       entity.PayerInfo
}

// PaymentGateway talks to the real payment provider.
type PaymentGateway interface {
	Initialize(ctx context.Context, req GatewayInitRequest) (*entity.Checkout, error)
}
