package checkout

import (
	"context"
	"encoding/json"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/jcmexdev/tradehub/internal/storefront/core/domain/entity"
)

type traceInfo struct {
	TraceID string
	SpanID  string
}

// extractTraceInfo returns the W3C ids of the active span, or empty
// strings when ctx carries none.
func extractTraceInfo(ctx context.Context) traceInfo {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return traceInfo{}
	}
	return traceInfo{
		TraceID: sc.TraceID().String(),
		SpanID:  sc.SpanID().String(),
	}
}

func newEntry(ctx context.Context, checkoutID string, status entity.CheckoutStatus, step, payload string, errs []string) *entity.CheckoutLog {
	ti := extractTraceInfo(ctx)

	errJSON := "[]"
	if len(errs) > 0 {
		if b, err := json.Marshal(errs); err == nil {
			errJSON = string(b)
		}
	}

	return &entity.CheckoutLog{
		CheckoutID:    checkoutID,
		Status:        status,
		CurrentStep:   step,
		Payload:       payload,
		ErrorMessages: errJSON,
		TraceID:       ti.TraceID,
		SpanID:        ti.SpanID,
		UpdatedAt:     time.Now().UTC(),
	}
}
