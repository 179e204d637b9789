package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jcmexdev/tradehub/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/tradehub/internal/storefront/core/ports"
)

var _ ports.CatalogRepository = (*CatalogRepository)(nil)

type CatalogRepository struct {
	mu       sync.RWMutex
	products map[int]entity.Product
	carousel []entity.CarouselItem
}

// NewCatalogRepository seeds the catalog the admin console starts with.
func NewCatalogRepository(now time.Time) *CatalogRepository {
	featured := 1
	products := []entity.Product{
		{ID: 1, Name: "Wireless Earbuds", Price: 15000, Category: "Electronics", InStock: true, Featured: true, Sold: 245},
		{ID: 2, Name: "Smart Watch", Price: 45000, Category: "Electronics", InStock: true, Sold: 120},
		{ID: 3, Name: "Ankara Print Dress", Price: 12500, Category: "Fashion", InStock: true, Sold: 310},
		{ID: 4, Name: "Leather Sandals", Price: 8000, Category: "Fashion", InStock: false, Sold: 95},
		{ID: 5, Name: "Blender 1.5L", Price: 22000, Category: "Home", InStock: true, Sold: 64},
		{ID: 6, Name: "Non-stick Pot Set", Price: 18500, Category: "Home", InStock: false, Sold: 41},
	}

	r := &CatalogRepository{products: make(map[int]entity.Product, len(products))}
	for _, p := range products {
		r.products[p.ID] = p
	}
	r.carousel = []entity.CarouselItem{
		{
			ID:              "carousel-1",
			Type:            entity.CarouselProduct,
			Title:           "Featured Product",
			ImageURL:        "/images/carousel-1.jpg",
			LinkedProductID: &featured,
			Position:        0,
			IsActive:        true,
			CreatedAt:       now,
		},
		{
			ID:        "carousel-2",
			Type:      entity.CarouselBanner,
			Title:     "Free delivery on orders over ₦50,000",
			ImageURL:  "/images/carousel-2.jpg",
			LinkURL:   "/shipping",
			Position:  1,
			IsActive:  true,
			CreatedAt: now,
		},
	}
	return r
}

func (r *CatalogRepository) Products(_ context.Context, filter entity.ProductFilter) ([]entity.Product, error) {
	r.mu.RLock()
	out := make([]entity.Product, 0, len(r.products))
	for _, p := range r.products {
		if filter.Category != "" && !strings.EqualFold(p.Category, filter.Category) {
			continue
		}
		if filter.InStock != nil && p.InStock != *filter.InStock {
			continue
		}
		out = append(out, p)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, 0, filter.Limit), nil
}

func (r *CatalogRepository) UpdateProduct(_ context.Context, id int, upd entity.ProductUpdate) (*entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("memory: product %d: %w", id, ports.ErrNotFound)
	}
	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.Price != nil {
		p.Price = *upd.Price
	}
	if upd.Category != nil {
		p.Category = *upd.Category
	}
	if upd.InStock != nil {
		p.InStock = *upd.InStock
	}
	if upd.Featured != nil {
		p.Featured = *upd.Featured
	}
	r.products[id] = p
	return &p, nil
}

func (r *CatalogRepository) Carousel(_ context.Context) ([]entity.CarouselItem, error) {
	r.mu.RLock()
	out := append([]entity.CarouselItem(nil), r.carousel...)
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r *CatalogRepository) ReplaceCarousel(_ context.Context, items []entity.CarouselItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.carousel = append([]entity.CarouselItem(nil), items...)
	return nil
}
