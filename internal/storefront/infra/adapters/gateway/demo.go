package gateway

import (
	"context"
	"net/url"
	"strconv"

	"github.com/jcmexdev/tradehub/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/tradehub/internal/storefront/core/ports"
)

var _ ports.PaymentGateway = (*DemoCashier)(nil)

// DemoCashier builds sandbox checkout URLs locally. It never touches the
// network.
type DemoCashier struct {
	cashierURL string
}

func NewDemoCashier(cashierURL string) *DemoCashier {
	return &DemoCashier{cashierURL: cashierURL}
}

func (d *DemoCashier) Initialize(_ context.Context, req ports.GatewayInitRequest) (*entity.Checkout, error) {
	q := url.Values{}
	q.Set("reference", req.Reference)
	q.Set("amount", strconv.FormatFloat(req.Amount, 'f', -1, 64))
	q.Set("email", req.Payer.Email)

	checkoutURL := d.cashierURL + "?" + q.Encode()
	return &entity.Checkout{
		Reference:   req.Reference,
		CashierURL:  checkoutURL,
		CheckoutURL: checkoutURL,
		Message:     "Payment initialization successful (Demo Mode)",
	}, nil
}
