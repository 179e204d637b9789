package memory

import (
	"context"
	"sync"

	"github.com/jcmexdev/tradehub/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/tradehub/internal/storefront/core/ports"
)

var (
	_ ports.WebhookLogRepository  = (*LogRepository)(nil)
	_ ports.CheckoutLogRepository = (*LogRepository)(nil)
)

// LogRepository is the non-durable fallback for the audit logs when no
// SQLite path is configured.
type LogRepository struct {
	mu        sync.RWMutex
	webhooks  []entity.WebhookLog
	checkouts []entity.CheckoutLog
}

func NewLogRepository() *LogRepository {
	return &LogRepository{}
}

func (r *LogRepository) SaveWebhook(_ context.Context, entry *entity.WebhookLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.webhooks = append(r.webhooks, *entry)
	return nil
}

// ListWebhooks returns newest first.
func (r *LogRepository) ListWebhooks(_ context.Context, filter entity.WebhookFilter) ([]entity.WebhookLog, error) {
	return page(r.matchingWebhooks(filter), filter.Offset, filter.Limit), nil
}

func (r *LogRepository) CountWebhooks(_ context.Context, filter entity.WebhookFilter) (int, error) {
	return len(r.matchingWebhooks(filter)), nil
}

func (r *LogRepository) matchingWebhooks(filter entity.WebhookFilter) []entity.WebhookLog {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]entity.WebhookLog, 0, len(r.webhooks))
	for i := len(r.webhooks) - 1; i >= 0; i-- {
		w := r.webhooks[i]
		if filter.Status != "" && w.PaymentStatus != filter.Status {
			continue
		}
		out = append(out, w)
	}
	return out
}

func (r *LogRepository) AppendCheckout(_ context.Context, entry *entity.CheckoutLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkouts = append(r.checkouts, *entry)
	return nil
}

func (r *LogRepository) CheckoutHistory(_ context.Context, checkoutID string) ([]entity.CheckoutLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []entity.CheckoutLog
	for _, c := range r.checkouts {
		if c.CheckoutID == checkoutID {
			out = append(out, c)
		}
	}
	return out, nil
}
