package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jcmexdev/tradehub/internal/pkg/apperr"
	"github.com/jcmexdev/tradehub/internal/storefront/core/auth"
	"github.com/jcmexdev/tradehub/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/tradehub/internal/storefront/infra/adapters/memory"
)

type adminFixture struct {
	svc      *AdminService
	orders   *OrderService
	payments *memory.PaymentRepository
}

func newAdminFixture(t *testing.T) *adminFixture {
	t.Helper()
	orderRepo := memory.NewOrderRepository()
	payments := memory.NewPaymentRepository()
	dir := memory.NewDirectory()
	policy := auth.DefaultPolicy()
	require.NoError(t, auth.SeedAccounts(dir, policy, "pw", bcrypt.MinCost, time.Now()))

	return &adminFixture{
		svc:      NewAdminService(orderRepo, payments, memory.NewCatalogRepository(time.Now()), dir, policy),
		orders:   NewOrderService(orderRepo),
		payments: payments,
	}
}

func TestAdminStats(t *testing.T) {
	ctx := context.Background()
	f := newAdminFixture(t)

	first, err := f.orders.Create(ctx, sampleDraft())
	require.NoError(t, err)
	second, err := f.orders.Create(ctx, sampleDraft())
	require.NoError(t, err)
	other := sampleDraft()
	other.ShippingAddress.Email = "bola@example.com"
	_, err = f.orders.Create(ctx, other)
	require.NoError(t, err)

	_, err = f.orders.Cancel(ctx, second.ID, "")
	require.NoError(t, err)
	_, err = f.orders.UpdateStatus(ctx, first.ID, entity.OrderShipped, "")
	require.NoError(t, err)
	require.NoError(t, f.payments.Put(ctx, &entity.Payment{Reference: "R", Status: entity.PaymentFailed}))

	stats, err := f.svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalOrders)
	assert.Equal(t, 2*3188.0, stats.TotalRevenue)
	assert.Equal(t, 2, stats.TotalUsers)
	assert.Equal(t, 1, stats.PendingOrders)
	assert.Equal(t, 1, stats.FailedPayments)
	assert.Equal(t, 2, stats.InventoryAlerts)
}

func TestAdminUpdateProduct(t *testing.T) {
	ctx := context.Background()
	f := newAdminFixture(t)

	featured := true
	p, err := f.svc.UpdateProduct(ctx, 2, entity.ProductUpdate{Featured: &featured})
	require.NoError(t, err)
	assert.True(t, p.Featured)

	_, err = f.svc.UpdateProduct(ctx, 404, entity.ProductUpdate{Featured: &featured})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	negative := -1.0
	_, err = f.svc.UpdateProduct(ctx, 2, entity.ProductUpdate{Price: &negative})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestAdminReplaceCarousel(t *testing.T) {
	ctx := context.Background()
	f := newAdminFixture(t)

	items, err := f.svc.ReplaceCarousel(ctx, []entity.CarouselItem{
		{Type: entity.CarouselBanner, Title: "Second", Position: 1},
		{ID: "keep", Type: entity.CarouselCategory, Title: "First", Position: 0},
	})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "keep", items[0].ID)
	assert.NotEmpty(t, items[1].ID)
	assert.False(t, items[1].CreatedAt.IsZero())

	_, err = f.svc.ReplaceCarousel(ctx, []entity.CarouselItem{{Type: "popup", Title: "x"}})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	_, err = f.svc.ReplaceCarousel(ctx, []entity.CarouselItem{{Type: entity.CarouselBanner}})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	current, err := f.svc.Carousel(ctx)
	require.NoError(t, err)
	assert.Len(t, current, 2, "failed replacements leave the carousel alone")
}

func TestAdminAnalytics(t *testing.T) {
	ctx := context.Background()
	f := newAdminFixture(t)

	draft := sampleDraft()
	draft.Items = append(draft.Items, entity.LineItem{ProductID: 3, Name: "Dress", Price: 100, Quantity: 3, Category: "Fashion"})
	_, err := f.orders.Create(ctx, draft)
	require.NoError(t, err)

	sales, err := f.svc.Analytics(ctx, MetricSales, entity.PeriodMonthly)
	require.NoError(t, err)
	require.Len(t, sales, 2)
	assert.Equal(t, "Electronics", sales[0].Category)
	assert.Equal(t, 2500.0, sales[0].Value)
	assert.Equal(t, "Fashion", sales[1].Category)
	assert.Equal(t, 300.0, sales[1].Value)

	all, err := f.svc.Analytics(ctx, "", "")
	require.NoError(t, err)
	assert.Len(t, all, 4)

	_, err = f.svc.Analytics(ctx, MetricSales, "yearly")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	_, err = f.svc.Analytics(ctx, "returns", entity.PeriodDaily)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestAnalyticsWeeklyBucketStartsOnMonday(t *testing.T) {
	sunday := time.Date(2026, 3, 8, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-03-02", bucket(sunday, entity.PeriodWeekly))
	assert.Equal(t, "2026-03", bucket(sunday, entity.PeriodMonthly))
	assert.Equal(t, "2026-03-08", bucket(sunday, entity.PeriodDaily))
}

func TestAdminUsers(t *testing.T) {
	ctx := context.Background()
	f := newAdminFixture(t)

	support, _, err := f.svc.Users(ctx, entity.UserFilter{Role: entity.RoleSupport})
	require.NoError(t, err)
	require.Len(t, support, 1)

	role := entity.RoleOrderManager
	u, err := f.svc.UpdateUser(ctx, support[0].ID, entity.UserUpdate{Role: &role})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleOrderManager, u.Role)
	assert.Contains(t, u.Permissions, auth.PermOrdersRefund)

	bogus := entity.Role("owner")
	_, err = f.svc.UpdateUser(ctx, support[0].ID, entity.UserUpdate{Role: &bogus})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	inactive := entity.UserInactive
	_, err = f.svc.UpdateUser(ctx, "admin-999", entity.UserUpdate{Status: &inactive})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestAdminListTotalsIgnoreLimit(t *testing.T) {
	ctx := context.Background()
	f := newAdminFixture(t)

	users, total, err := f.svc.Users(ctx, entity.UserFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, users, 2)
	assert.Equal(t, 5, total)

	products, total, err := f.svc.Products(ctx, entity.ProductFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, products, 2)
	assert.Greater(t, total, 2)

	all, _, err := f.svc.Products(ctx, entity.ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, all, total)
}
