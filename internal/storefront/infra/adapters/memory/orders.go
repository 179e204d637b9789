// Package memory holds the process-local repositories. Every store guards
// its map with a mutex and returns clones, so callers never share mutable
// state with the store.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jcmexdev/tradehub/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/tradehub/internal/storefront/core/ports"
)

var _ ports.OrderRepository = (*OrderRepository)(nil)

type OrderRepository struct {
	mu     sync.RWMutex
	orders map[string]*entity.Order
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{
		orders: make(map[string]*entity.Order),
	}
}

func (r *OrderRepository) Create(_ context.Context, order *entity.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.orders[order.ID]; exists {
		return fmt.Errorf("memory: order %s already exists", order.ID)
	}
	r.orders[order.ID] = order.Clone()
	return nil
}

func (r *OrderRepository) Get(_ context.Context, id string) (*entity.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("memory: order %s: %w", id, ports.ErrNotFound)
	}
	return order.Clone(), nil
}

func (r *OrderRepository) FindByReference(_ context.Context, reference string) (*entity.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, order := range r.orders {
		if order.ReferenceID == reference {
			return order.Clone(), nil
		}
	}
	return nil, fmt.Errorf("memory: order with reference %s: %w", reference, ports.ErrNotFound)
}

// List returns orders oldest first.
func (r *OrderRepository) List(_ context.Context, filter entity.OrderFilter) ([]*entity.Order, error) {
	out := r.matching(filter)
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return page(out, filter.Offset, filter.Limit), nil
}

func (r *OrderRepository) Count(_ context.Context, filter entity.OrderFilter) (int, error) {
	return len(r.matching(filter)), nil
}

func (r *OrderRepository) matching(filter entity.OrderFilter) []*entity.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entity.Order, 0, len(r.orders))
	for _, order := range r.orders {
		if filter.Status != "" && order.Status != filter.Status {
			continue
		}
		out = append(out, order.Clone())
	}
	return out
}

func (r *OrderRepository) Update(_ context.Context, id string, fn func(o *entity.Order) error) (*entity.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("memory: order %s: %w", id, ports.ErrNotFound)
	}

	next := current.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	r.orders[id] = next
	return next.Clone(), nil
}

// page applies offset/limit; a non-positive limit means no limit.
func page[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
