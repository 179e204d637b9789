package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// randomToken returns n lowercase hex characters drawn from a v4 UUID.
func randomToken(n int) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:n]
}

type orderIDs struct {
	ID             string
	OrderNumber    string
	ReferenceID    string
	TrackingNumber string
}

func newOrderIDs(at time.Time) orderIDs {
	ms := at.UnixMilli()
	return orderIDs{
		ID:             fmt.Sprintf("order_%d_%s", ms, randomToken(9)),
		OrderNumber:    fmt.Sprintf("ORD-%d-%s", ms, randomToken(6)),
		ReferenceID:    fmt.Sprintf("REF-%d-%s", ms, randomToken(9)),
		TrackingNumber: fmt.Sprintf("TRK-%d-%s", ms, strings.ToUpper(randomToken(8))),
	}
}

func newRefundID(at time.Time) string {
	return fmt.Sprintf("refund-%d", at.UnixMilli())
}

func newWebhookID(at time.Time) string {
	return fmt.Sprintf("wh_%d_%s", at.UnixMilli(), randomToken(6))
}

func newCarouselID(at time.Time) string {
	return fmt.Sprintf("carousel-%d-%s", at.UnixMilli(), randomToken(4))
}
