package memory

import (
	"context"
	"errors"
	"sync"

	cartmemory "github.com/dejobratic/storefront/internal/cart/adapters/memory"
	cartdomain "github.com/dejobratic/storefront/internal/cart/domain"
	catalogmemory "github.com/dejobratic/storefront/internal/catalog/adapters/memory"
	catalogports "github.com/dejobratic/storefront/internal/catalog/ports"
	"github.com/dejobratic/storefront/internal/orders/domain"
)

// CheckoutStore is the in-memory counterpart of the postgres checkout
// transaction. A single mutex serializes commits, which gives the same
// per-product linearization the database achieves with row locks: of two
// racing checkouts for the last units, exactly one wins.
type CheckoutStore struct {
	mu      sync.Mutex
	orders  *Repository
	catalog *catalogmemory.Repository
	carts   *cartmemory.Repository
}

// NewCheckoutStore composes the three in-memory stores the commit spans.
func NewCheckoutStore(orders *Repository, catalog *catalogmemory.Repository, carts *cartmemory.Repository) *CheckoutStore {
	return &CheckoutStore{orders: orders, catalog: catalog, carts: carts}
}

// Commit applies the checkout unit all-or-nothing. Decrements applied before
// a failing line are restored, so a failed commit leaves stock, orders, and
// the cart exactly as they were.
func (s *CheckoutStore) Commit(ctx context.Context, order domain.Order, owner cartdomain.Owner) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	applied := make([]domain.OrderItem, 0, len(order.Items))

	restore := func() {
		for _, item := range applied {
			_ = s.catalog.RestoreStock(ctx, item.ProductID, item.Quantity)
		}
	}

	for _, item := range order.Items {
		_, err := s.catalog.DecrementStock(ctx, item.ProductID, item.Quantity)
		if err != nil {
			restore()
			if errors.Is(err, catalogports.ErrNotFound) {
				return &domain.ProductUnavailableError{ProductID: item.ProductID}
			}
			if errors.Is(err, catalogmemory.ErrInsufficientStock) {
				product, lookupErr := s.catalog.GetByID(ctx, item.ProductID)
				available := 0
				name := item.ProductName
				if lookupErr == nil {
					available = product.StockQuantity
					name = product.Name
				}
				return &domain.InsufficientStockError{
					ProductID:   item.ProductID,
					ProductName: name,
					Requested:   item.Quantity,
					Available:   available,
				}
			}
			return &domain.CommitError{Err: err}
		}
		applied = append(applied, item)
	}

	if err := s.carts.Clear(ctx, owner); err != nil {
		restore()
		return &domain.CommitError{Err: err}
	}

	s.orders.put(order)
	return nil
}
