package ports

import (
	"context"
	"errors"

	"github.com/dejobratic/storefront/internal/cart/domain"
)

// CartRepository exposes per-owner cart persistence. Carts are created lazily:
// an owner's cart exists as soon as it has lines and disappears when cleared.
type CartRepository interface {
	// Lines returns the owner's cart lines, oldest first.
	Lines(ctx context.Context, owner domain.Owner) ([]domain.Line, error)
	// Add inserts a line or increments the quantity of an existing one.
	Add(ctx context.Context, owner domain.Owner, productID string, quantity int) error
	// SetQuantity replaces a line's quantity; zero removes the line.
	SetQuantity(ctx context.Context, owner domain.Owner, productID string, quantity int) error
	// Remove deletes a single line.
	Remove(ctx context.Context, owner domain.Owner, productID string) error
	// Clear deletes every line for the owner.
	Clear(ctx context.Context, owner domain.Owner) error
	// Count returns the total quantity across the owner's lines.
	Count(ctx context.Context, owner domain.Owner) (int, error)
}

var (
	// ErrLineNotFound is returned when the addressed cart line does not exist.
	ErrLineNotFound = errors.New("cart line not found")
)
