package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dejobratic/storefront/internal/orders/domain"
	"github.com/dejobratic/storefront/internal/orders/ports"
	"github.com/shopspring/decimal"
)

// Repository provides an in-memory order store useful for local development and tests.
type Repository struct {
	mu     sync.RWMutex
	orders map[string]domain.Order
}

// NewRepository constructs a new in-memory repository.
func NewRepository() *Repository {
	return &Repository{orders: make(map[string]domain.Order)}
}

// put stores an order; used by the checkout store during commit.
func (r *Repository) put(order domain.Order) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[order.ID] = order
}

// GetByNumber fetches an order by number, scoped to its owner.
func (r *Repository) GetByNumber(_ context.Context, orderNumber, userID string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[orderNumber]
	if !ok || order.UserID != userID {
		return nil, ports.ErrNotFound
	}

	copy := order
	copy.Items = append([]domain.OrderItem(nil), order.Items...)
	return &copy, nil
}

// ListByUser returns the user's orders, newest first. Pagination is 1-based.
func (r *Repository) ListByUser(_ context.Context, userID string, filter ports.ListFilter) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []domain.Order
	for _, order := range r.orders {
		if order.UserID != userID {
			continue
		}
		if filter.Status != nil && order.Status != *filter.Status {
			continue
		}
		result = append(result, order)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
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
		return []domain.Order{}, nil
	}

	end := start + pageSize
	if end > len(result) {
		end = len(result)
	}

	slice := make([]domain.Order, end-start)
	copy(slice, result[start:end])

	return slice, nil
}

// UpdateStatus sets the status and updatedAt timestamp for an order.
func (r *Repository) UpdateStatus(_ context.Context, orderNumber string, status domain.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[orderNumber]
	if !ok {
		return ports.ErrNotFound
	}

	order.Status = status
	order.UpdatedAt = time.Now().UTC()
	r.orders[orderNumber] = order
	return nil
}

// UpdatePaymentStatus records the payment outcome for an order.
func (r *Repository) UpdatePaymentStatus(_ context.Context, orderNumber string, status domain.PaymentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[orderNumber]
	if !ok {
		return ports.ErrNotFound
	}

	order.PaymentStatus = status
	order.UpdatedAt = time.Now().UTC()
	r.orders[orderNumber] = order
	return nil
}

// TotalSpentByUser sums totals over orders whose payment has not failed.
func (r *Repository) TotalSpentByUser(_ context.Context, userID string) (decimal.Decimal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := decimal.Zero
	for _, order := range r.orders {
		if order.UserID != userID {
			continue
		}
		if order.PaymentStatus == domain.PaymentFailed {
			continue
		}
		total = total.Add(order.TotalAmount)
	}

	return domain.RoundMoney(total), nil
}

// CountByUser returns how many orders the user has placed.
func (r *Repository) CountByUser(_ context.Context, userID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, order := range r.orders {
		if order.UserID == userID {
			count++
		}
	}

	return count, nil
}
