package ports

import (
	"context"
	"errors"

	"github.com/dejobratic/storefront/internal/orders/domain"
	"github.com/shopspring/decimal"
)

// OrderRepository exposes read and back-office operations over committed
// orders. Orders only come into existence through the CheckoutStore.
type OrderRepository interface {
	// GetByNumber returns the order plus its items when the order exists and
	// belongs to userID; ErrNotFound otherwise, including on owner mismatch.
	GetByNumber(ctx context.Context, orderNumber, userID string) (*domain.Order, error)
	// ListByUser returns the user's orders, newest first.
	ListByUser(ctx context.Context, userID string, filter ListFilter) ([]domain.Order, error)
	// UpdateStatus advances the fulfilment lifecycle.
	UpdateStatus(ctx context.Context, orderNumber string, status domain.OrderStatus) error
	// UpdatePaymentStatus records the outcome of an out-of-band payment.
	UpdatePaymentStatus(ctx context.Context, orderNumber string, status domain.PaymentStatus) error
	// TotalSpentByUser sums total_amount over the user's orders whose payment
	// has not failed. A user with no orders gets a zero sum, not an error.
	TotalSpentByUser(ctx context.Context, userID string) (decimal.Decimal, error)
	// CountByUser returns how many orders the user has placed.
	CountByUser(ctx context.Context, userID string) (int, error)
}

// ListFilter narrows list queries by status and pagination.
type ListFilter struct {
	Status   *domain.OrderStatus
	Page     int
	PageSize int
}

var (
	// ErrNotFound is returned when the requested order does not exist or is
	// owned by someone else.
	ErrNotFound = errors.New("order not found")
)
