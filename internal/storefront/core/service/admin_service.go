package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/tradehub/internal/pkg/apperr"
	"github.com/jcmexdev/tradehub/internal/storefront/core/auth"
	"github.com/jcmexdev/tradehub/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/tradehub/internal/storefront/core/ports"
)

// Analytics metrics.
const (
	MetricSales  = "sales"
	MetricOrders = "orders"
	MetricUsers  = "users"
)

// AdminService backs the back-office console. Figures are derived from the
// live stores on every call.
type AdminService struct {
	orders    ports.OrderRepository
	payments  ports.PaymentRepository
	catalog   ports.CatalogRepository
	directory ports.AdminDirectory
	policy    auth.Policy
	now       func() time.Time
}

func NewAdminService(
	orders ports.OrderRepository,
	payments ports.PaymentRepository,
	catalog ports.CatalogRepository,
	directory ports.AdminDirectory,
	policy auth.Policy,
) *AdminService {
	return &AdminService{
		orders:    orders,
		payments:  payments,
		catalog:   catalog,
		directory: directory,
		policy:    policy,
		now:       time.Now,
	}
}

func (s *AdminService) Stats(ctx context.Context) (*entity.DashboardStats, error) {
	orders, err := s.orders.List(ctx, entity.OrderFilter{})
	if err != nil {
		return nil, apperr.Internal("", fmt.Errorf("list orders: %w", err))
	}
	failed, err := s.payments.List(ctx, entity.PaymentFilter{Status: entity.PaymentFailed})
	if err != nil {
		return nil, apperr.Internal("", fmt.Errorf("list payments: %w", err))
	}
	outOfStock := false
	alerts, err := s.catalog.Products(ctx, entity.ProductFilter{InStock: &outOfStock})
	if err != nil {
		return nil, apperr.Internal("", fmt.Errorf("list products: %w", err))
	}

	stats := &entity.DashboardStats{
		TotalOrders:     len(orders),
		FailedPayments:  len(failed),
		InventoryAlerts: len(alerts),
	}
	revenue := decimal.Zero
	customers := make(map[string]struct{})
	for _, o := range orders {
		if o.Status == entity.OrderPending {
			stats.PendingOrders++
		}
		if o.Status != entity.OrderCancelled {
			revenue = revenue.Add(decimal.NewFromFloat(o.Total))
		}
		if email := strings.ToLower(o.ShippingAddress.Email); email != "" {
			customers[email] = struct{}{}
		}
	}
	stats.TotalRevenue = revenue.InexactFloat64()
	stats.TotalUsers = len(customers)
	return stats, nil
}

// Products lists the catalog; total counts every match before the limit.
func (s *AdminService) Products(ctx context.Context, filter entity.ProductFilter) ([]entity.Product, int, error) {
	limit := filter.Limit
	filter.Limit = 0
	out, err := s.catalog.Products(ctx, filter)
	if err != nil {
		return nil, 0, apperr.Internal("", err)
	}
	return truncate(out, limit), len(out), nil
}

func (s *AdminService) UpdateProduct(ctx context.Context, id int, upd entity.ProductUpdate) (*entity.Product, error) {
	if upd.Name != nil && strings.TrimSpace(*upd.Name) == "" {
		return nil, apperr.Validation("Product name cannot be empty", nil)
	}
	if upd.Price != nil && *upd.Price < 0 {
		return nil, apperr.Validation("Product price cannot be negative", nil)
	}

	p, err := s.catalog.UpdateProduct(ctx, id, upd)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, apperr.NotFound("Product not found")
	}
	if err != nil {
		return nil, apperr.Internal("", err)
	}
	slog.InfoContext(ctx, "product updated", "product_id", id)
	return p, nil
}

func (s *AdminService) Carousel(ctx context.Context) ([]entity.CarouselItem, error) {
	out, err := s.catalog.Carousel(ctx)
	if err != nil {
		return nil, apperr.Internal("", err)
	}
	return out, nil
}

// ReplaceCarousel swaps the whole carousel. Items without an id or creation
// time get one.
func (s *AdminService) ReplaceCarousel(ctx context.Context, items []entity.CarouselItem) ([]entity.CarouselItem, error) {
	now := s.now()
	out := make([]entity.CarouselItem, len(items))
	for i, it := range items {
		if strings.TrimSpace(it.Title) == "" {
			return nil, apperr.Validation("Carousel item title is required", map[string]any{"index": i})
		}
		if !it.Type.Valid() {
			return nil, apperr.Validation("Invalid carousel item type", map[string]any{"index": i, "type": it.Type})
		}
		if it.ID == "" {
			it.ID = newCarouselID(now)
		}
		if it.CreatedAt.IsZero() {
			it.CreatedAt = now
		}
		out[i] = it
	}

	if err := s.catalog.ReplaceCarousel(ctx, out); err != nil {
		return nil, apperr.Internal("", err)
	}
	slog.InfoContext(ctx, "carousel replaced", "items", len(out))
	return s.Carousel(ctx)
}

// Analytics buckets order activity by period. An empty metric returns all
// of them.
func (s *AdminService) Analytics(ctx context.Context, metric string, period entity.Period) ([]entity.AnalyticsPoint, error) {
	if period == "" {
		period = entity.PeriodDaily
	}
	if !period.Valid() {
		return nil, apperr.Validation("Invalid period", map[string]any{"period": period})
	}
	switch metric {
	case "", MetricSales, MetricOrders, MetricUsers:
	default:
		return nil, apperr.Validation("Invalid metric", map[string]any{"metric": metric})
	}

	orders, err := s.orders.List(ctx, entity.OrderFilter{})
	if err != nil {
		return nil, apperr.Internal("", err)
	}

	var points []entity.AnalyticsPoint
	if metric == "" || metric == MetricSales {
		points = append(points, salesByCategory(orders, period)...)
	}
	if metric == "" || metric == MetricOrders {
		points = append(points, ordersPerBucket(orders, period)...)
	}
	if metric == "" || metric == MetricUsers {
		points = append(points, usersPerBucket(orders, period)...)
	}
	return points, nil
}

func bucket(t time.Time, period entity.Period) string {
	t = t.UTC()
	switch period {
	case entity.PeriodWeekly:
		offset := (int(t.Weekday()) + 6) % 7
		return t.AddDate(0, 0, -offset).Format(time.DateOnly)
	case entity.PeriodMonthly:
		return t.Format("2006-01")
	default:
		return t.Format(time.DateOnly)
	}
}

func salesByCategory(orders []*entity.Order, period entity.Period) []entity.AnalyticsPoint {
	type key struct{ date, category string }
	sums := make(map[key]decimal.Decimal)
	for _, o := range orders {
		if o.Status == entity.OrderCancelled {
			continue
		}
		date := bucket(o.CreatedAt, period)
		for _, it := range o.Items {
			category := it.Category
			if category == "" {
				category = "Uncategorized"
			}
			k := key{date, category}
			line := decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Quantity)))
			sums[k] = sums[k].Add(line)
		}
	}

	out := make([]entity.AnalyticsPoint, 0, len(sums))
	for k, v := range sums {
		out = append(out, entity.AnalyticsPoint{
			Metric: MetricSales, Value: v.InexactFloat64(), Category: k.category, Period: period, Date: k.date,
		})
	}
	sortPoints(out)
	return out
}

func ordersPerBucket(orders []*entity.Order, period entity.Period) []entity.AnalyticsPoint {
	counts := make(map[string]int)
	for _, o := range orders {
		counts[bucket(o.CreatedAt, period)]++
	}
	out := make([]entity.AnalyticsPoint, 0, len(counts))
	for date, n := range counts {
		out = append(out, entity.AnalyticsPoint{Metric: MetricOrders, Value: float64(n), Period: period, Date: date})
	}
	sortPoints(out)
	return out
}

func usersPerBucket(orders []*entity.Order, period entity.Period) []entity.AnalyticsPoint {
	seen := make(map[string]map[string]struct{})
	for _, o := range orders {
		email := strings.ToLower(o.ShippingAddress.Email)
		if email == "" {
			continue
		}
		date := bucket(o.CreatedAt, period)
		if seen[date] == nil {
			seen[date] = make(map[string]struct{})
		}
		seen[date][email] = struct{}{}
	}
	out := make([]entity.AnalyticsPoint, 0, len(seen))
	for date, users := range seen {
		out = append(out, entity.AnalyticsPoint{Metric: MetricUsers, Value: float64(len(users)), Period: period, Date: date})
	}
	sortPoints(out)
	return out
}

func sortPoints(points []entity.AnalyticsPoint) {
	sort.Slice(points, func(i, j int) bool {
		if points[i].Date != points[j].Date {
			return points[i].Date < points[j].Date
		}
		return points[i].Category < points[j].Category
	})
}

func (s *AdminService) Users(ctx context.Context, filter entity.UserFilter) ([]*entity.AdminUser, int, error) {
	limit := filter.Limit
	filter.Limit = 0
	out, err := s.directory.List(ctx, filter)
	if err != nil {
		return nil, 0, apperr.Internal("", err)
	}
	return truncate(out, limit), len(out), nil
}

// truncate keeps the first limit items; a non-positive limit keeps all.
func truncate[T any](items []T, limit int) []T {
	if limit > 0 && limit < len(items) {
		return items[:limit]
	}
	return items
}

// UpdateUser changes role or status. A role change replaces the granted
// permissions with the new role's.
func (s *AdminService) UpdateUser(ctx context.Context, id string, upd entity.UserUpdate) (*entity.AdminUser, error) {
	if upd.Role != nil && !s.policy.KnownRole(*upd.Role) {
		return nil, apperr.Validation("Invalid role", map[string]any{"role": *upd.Role})
	}
	if upd.Status != nil && *upd.Status != entity.UserActive && *upd.Status != entity.UserInactive {
		return nil, apperr.Validation("Invalid user status", map[string]any{"status": *upd.Status})
	}

	u, err := s.directory.Update(ctx, id, func(u *entity.AdminUser) error {
		if upd.Role != nil {
			u.Role = *upd.Role
			u.Permissions = s.policy.Permissions(*upd.Role)
		}
		if upd.Status != nil {
			u.Status = *upd.Status
		}
		return nil
	})
	if errors.Is(err, ports.ErrNotFound) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, apperr.Internal("", err)
	}
	slog.InfoContext(ctx, "admin user updated", "user_id", id, "role", u.Role, "status", u.Status)
	return u, nil
}
