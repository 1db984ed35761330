package ports

import (
	"context"

	cartdomain "github.com/dejobratic/storefront/internal/cart/domain"
	"github.com/dejobratic/storefront/internal/orders/domain"
)

// CheckoutStore applies the atomic checkout unit: create the order and its
// items, decrement each product's stock, and clear the owner's cart — all or
// nothing. Implementations must re-read stock under an exclusive lock before
// decrementing, so that concurrent checkouts of the same product are
// linearized and at most one can win the last units.
//
// On failure the store reports *domain.InsufficientStockError when a
// re-checked stock level no longer covers an item, or *domain.CommitError
// for any storage fault; in both cases no partial writes remain.
type CheckoutStore interface {
	Commit(ctx context.Context, order domain.Order, owner cartdomain.Owner) error
}
