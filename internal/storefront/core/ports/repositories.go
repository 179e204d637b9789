package ports

import (
	"context"
	"errors"

	"github.com/jcmexdev/tradehub/internal/storefront/core/domain/entity"
)

// ErrNotFound is returned by repositories when the key is absent.
var ErrNotFound = errors.New("not found")

// OrderRepository stores orders. Implementations hand out copies; mutation
// goes through Update.
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	Get(ctx context.Context, id string) (*entity.Order, error)
	FindByReference(ctx context.Context, reference string) (*entity.Order, error)
	List(ctx context.Context, filter entity.OrderFilter) ([]*entity.Order, error)
	// Count reports how many orders match filter, ignoring its paging.
	Count(ctx context.Context, filter entity.OrderFilter) (int, error)
	// Update loads the order, applies fn and stores the result atomically.
	// An error from fn aborts the update.
	Update(ctx context.Context, id string, fn func(o *entity.Order) error) (*entity.Order, error)
}

// PaymentRepository stores payment records keyed by reference.
type PaymentRepository interface {
	Put(ctx context.Context, p *entity.Payment) error
	Get(ctx context.Context, reference string) (*entity.Payment, error)
	FindByTransactionID(ctx context.Context, transactionID string) (*entity.Payment, error)
	List(ctx context.Context, filter entity.PaymentFilter) ([]*entity.Payment, error)
	Count(ctx context.Context, filter entity.PaymentFilter) (int, error)
	Update(ctx context.Context, reference string, fn func(p *entity.Payment) error) (*entity.Payment, error)
}

type CatalogRepository interface {
	Products(ctx context.Context, filter entity.ProductFilter) ([]entity.Product, error)
	UpdateProduct(ctx context.Context, id int, upd entity.ProductUpdate) (*entity.Product, error)
	Carousel(ctx context.Context) ([]entity.CarouselItem, error)
	ReplaceCarousel(ctx context.Context, items []entity.CarouselItem) error
}

type AdminDirectory interface {
	FindByEmail(ctx context.Context, email string) (*entity.AdminUser, string, error)
	FindByID(ctx context.Context, id string) (*entity.AdminUser, error)
	List(ctx context.Context, filter entity.UserFilter) ([]*entity.AdminUser, error)
	Update(ctx context.Context, id string, fn func(u *entity.AdminUser) error) (*entity.AdminUser, error)
}

// WebhookLogRepository keeps the audit trail of received callbacks.
type WebhookLogRepository interface {
	SaveWebhook(ctx context.Context, entry *entity.WebhookLog) error
	ListWebhooks(ctx context.Context, filter entity.WebhookFilter) ([]entity.WebhookLog, error)
	CountWebhooks(ctx context.Context, filter entity.WebhookFilter) (int, error)
}

// CheckoutLogRepository is the append-only history of checkout runs.
type CheckoutLogRepository interface {
	AppendCheckout(ctx context.Context, entry *entity.CheckoutLog) error
	CheckoutHistory(ctx context.Context, checkoutID string) ([]entity.CheckoutLog, error)
}
