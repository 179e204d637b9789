package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jcmexdev/tradehub/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/tradehub/internal/storefront/core/ports"
)

var _ ports.PaymentRepository = (*PaymentRepository)(nil)

type PaymentRepository struct {
	mu       sync.RWMutex
	payments map[string]*entity.Payment
}

func NewPaymentRepository() *PaymentRepository {
	return &PaymentRepository{
		payments: make(map[string]*entity.Payment),
	}
}

// Put inserts or replaces the record for p.Reference.
func (r *PaymentRepository) Put(_ context.Context, p *entity.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payments[p.Reference] = p.Clone()
	return nil
}

func (r *PaymentRepository) Get(_ context.Context, reference string) (*entity.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.payments[reference]
	if !ok {
		return nil, fmt.Errorf("memory: payment %s: %w", reference, ports.ErrNotFound)
	}
	return p.Clone(), nil
}

func (r *PaymentRepository) FindByTransactionID(_ context.Context, transactionID string) (*entity.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.payments {
		if transactionID != "" && p.TransactionID == transactionID {
			return p.Clone(), nil
		}
	}
	return nil, fmt.Errorf("memory: payment with transaction %s: %w", transactionID, ports.ErrNotFound)
}

// List returns newest first.
func (r *PaymentRepository) List(_ context.Context, filter entity.PaymentFilter) ([]*entity.Payment, error) {
	out := r.matching(filter)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Reference < out[j].Reference
		}
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return page(out, filter.Offset, filter.Limit), nil
}

func (r *PaymentRepository) Count(_ context.Context, filter entity.PaymentFilter) (int, error) {
	return len(r.matching(filter)), nil
}

func (r *PaymentRepository) matching(filter entity.PaymentFilter) []*entity.Payment {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entity.Payment, 0, len(r.payments))
	for _, p := range r.payments {
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		out = append(out, p.Clone())
	}
	return out
}

func (r *PaymentRepository) Update(_ context.Context, reference string, fn func(p *entity.Payment) error) (*entity.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.payments[reference]
	if !ok {
		return nil, fmt.Errorf("memory: payment %s: %w", reference, ports.ErrNotFound)
	}

	next := current.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	r.payments[reference] = next
	return next.Clone(), nil
}
