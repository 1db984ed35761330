package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dejobratic/storefront/internal/catalog/domain"
	"github.com/dejobratic/storefront/internal/catalog/ports"
)

// Repository provides an in-memory catalog useful for local development and tests.
type Repository struct {
	mu       sync.RWMutex
	products map[string]domain.Product
}

// NewRepository constructs a new in-memory repository.
func NewRepository() *Repository {
	return &Repository{products: make(map[string]domain.Product)}
}

// Create stores a new product.
func (r *Repository) Create(_ context.Context, product domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[product.ID] = product
	return nil
}

// GetByID fetches a single product by identifier.
func (r *Repository) GetByID(_ context.Context, id string) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	product, ok := r.products[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	copy := product
	return &copy, nil
}

// List returns products respecting the provided filter. Pagination is 1-based.
func (r *Repository) List(_ context.Context, filter ports.ListFilter) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []domain.Product
	for _, product := range r.products {
		if filter.ActiveOnly && !product.Active {
			continue
		}
		result = append(result, product)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	start := (page - 1) * pageSize
	if start >= len(result) {
		return []domain.Product{}, nil
	}

	end := start + pageSize
	if end > len(result) {
		end = len(result)
	}

	slice := make([]domain.Product, end-start)
	copy(slice, result[start:end])

	return slice, nil
}

// UpdateStock replaces the stock level for a product.
func (r *Repository) UpdateStock(_ context.Context, id string, stockQuantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return ports.ErrNotFound
	}

	product.StockQuantity = stockQuantity
	product.UpdatedAt = time.Now().UTC()
	r.products[id] = product
	return nil
}

// DecrementStock atomically reduces the stock level, reporting the remaining
// quantity. It never lets stock go negative; the checkout store relies on
// that to reject over-committed orders.
func (r *Repository) DecrementStock(_ context.Context, id string, quantity int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return 0, ports.ErrNotFound
	}

	if quantity > product.StockQuantity {
		return product.StockQuantity, ErrInsufficientStock
	}

	product.StockQuantity -= quantity
	product.UpdatedAt = time.Now().UTC()
	r.products[id] = product
	return product.StockQuantity, nil
}

// RestoreStock adds units back after a failed multi-product commit.
func (r *Repository) RestoreStock(_ context.Context, id string, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return ports.ErrNotFound
	}

	product.StockQuantity += quantity
	product.UpdatedAt = time.Now().UTC()
	r.products[id] = product
	return nil
}
