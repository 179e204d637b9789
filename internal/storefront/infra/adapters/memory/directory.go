package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/jcmexdev/tradehub/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/tradehub/internal/storefront/core/ports"
)

var _ ports.AdminDirectory = (*Directory)(nil)

type account struct {
	user         *entity.AdminUser
	passwordHash string
}

// Directory is the fixed set of back-office accounts, keyed by email.
type Directory struct {
	mu       sync.RWMutex
	accounts map[string]*account
}

func NewDirectory() *Directory {
	return &Directory{accounts: make(map[string]*account)}
}

// Add registers an account. It is meant for seeding at startup.
func (d *Directory) Add(u *entity.AdminUser, passwordHash string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.accounts[strings.ToLower(u.Email)] = &account{user: u.Clone(), passwordHash: passwordHash}
}

func (d *Directory) FindByEmail(_ context.Context, email string) (*entity.AdminUser, string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	a, ok := d.accounts[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, "", fmt.Errorf("memory: admin %s: %w", email, ports.ErrNotFound)
	}
	return a.user.Clone(), a.passwordHash, nil
}

func (d *Directory) FindByID(_ context.Context, id string) (*entity.AdminUser, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if a := d.byID(id); a != nil {
		return a.user.Clone(), nil
	}
	return nil, fmt.Errorf("memory: admin %s: %w", id, ports.ErrNotFound)
}

func (d *Directory) List(_ context.Context, filter entity.UserFilter) ([]*entity.AdminUser, error) {
	d.mu.RLock()
	out := make([]*entity.AdminUser, 0, len(d.accounts))
	for _, a := range d.accounts {
		if filter.Role != "" && a.user.Role != filter.Role {
			continue
		}
		if filter.Status != "" && a.user.Status != filter.Status {
			continue
		}
		out = append(out, a.user.Clone())
	}
	d.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, 0, filter.Limit), nil
}

func (d *Directory) Update(_ context.Context, id string, fn func(u *entity.AdminUser) error) (*entity.AdminUser, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	a := d.byID(id)
	if a == nil {
		return nil, fmt.Errorf("memory: admin %s: %w", id, ports.ErrNotFound)
	}
	next := a.user.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	a.user = next
	return next.Clone(), nil
}

func (d *Directory) byID(id string) *account {
	for _, a := range d.accounts {
		if a.user.ID == id {
			return a
		}
	}
	return nil
}
