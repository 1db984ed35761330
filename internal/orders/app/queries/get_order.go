package queries

import (
	"context"
	"strings"

	"github.com/dejobratic/storefront/internal/orders/domain"
	"github.com/dejobratic/storefront/internal/orders/ports"
)

// GetOrderQuery requests one order by number on behalf of its owner. Lookups
// by anyone else resolve to not-found, never to someone else's order.
type GetOrderQuery struct {
	OrderNumber string
	UserID      string
}

// Validate ensures the query has valid parameters.
func (q GetOrderQuery) Validate() error {
	if strings.TrimSpace(q.OrderNumber) == "" {
		return &domain.ValidationError{Field: "order_number"}
	}
	if strings.TrimSpace(q.UserID) == "" {
		return &domain.ValidationError{Field: "user_id"}
	}
	return nil
}

// GetOrderQueryHandler executes GetOrderQuery and returns the order if found.
type GetOrderQueryHandler struct {
	repo ports.OrderRepository
}

// NewGetOrderQueryHandler constructs a GetOrderQueryHandler.
func NewGetOrderQueryHandler(repo ports.OrderRepository) *GetOrderQueryHandler {
	return &GetOrderQueryHandler{repo: repo}
}

// Handle executes the query and retrieves the order with its items.
func (h *GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (*domain.Order, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	return h.repo.GetByNumber(ctx, query.OrderNumber, query.UserID)
}
