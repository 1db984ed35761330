package ports

import (
	"context"
	"errors"

	"github.com/dejobratic/storefront/internal/catalog/domain"
)

// ProductRepository exposes catalog persistence required by the application layer.
// Stock decrements are not here: they happen inside the checkout store's
// transaction so they stay atomic with order creation.
type ProductRepository interface {
	Create(ctx context.Context, product domain.Product) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Product, error)
	UpdateStock(ctx context.Context, id string, stockQuantity int) error
}

// ListFilter narrows list queries to active products and paginates them.
type ListFilter struct {
	ActiveOnly bool
	Page       int
	PageSize   int
}

var (
	// ErrNotFound is returned when the requested product does not exist.
	ErrNotFound = errors.New("product not found")
)
