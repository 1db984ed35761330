package app

import (
	"context"
	"fmt"
	"log/slog"

	cartdomain "github.com/dejobratic/storefront/internal/cart/domain"
	cartports "github.com/dejobratic/storefront/internal/cart/ports"
	catalogports "github.com/dejobratic/storefront/internal/catalog/ports"
	"github.com/dejobratic/storefront/internal/orders/app/commands"
	"github.com/dejobratic/storefront/internal/orders/app/queries"
	"github.com/dejobratic/storefront/internal/orders/domain"
	"github.com/dejobratic/storefront/internal/orders/metrics"
	"github.com/dejobratic/storefront/internal/orders/ports"
	"github.com/shopspring/decimal"
)

// Service bundles the checkout and order use cases exposed over the API.
type Service struct {
	repo            ports.OrderRepository
	events          ports.EventBus
	idemStore       ports.IdempotencyStore
	checkoutHandler commands.CommandHandler
	getOrderHandler *queries.GetOrderQueryHandler
}

// Deps collects the collaborators the service needs.
type Deps struct {
	Orders       ports.OrderRepository
	Checkout     ports.CheckoutStore
	Carts        cartports.CartRepository
	Catalog      catalogports.ProductRepository
	Events       ports.EventBus
	Idempotency  ports.IdempotencyStore
	Logger       *slog.Logger
	Metrics      *metrics.Metrics
	TaxRate      decimal.Decimal
	ShippingCost decimal.Decimal
}

// NewService wires required dependencies.
func NewService(deps Deps) *Service {
	coreHandler := commands.NewSubmitCheckoutCommandHandler(
		deps.Carts,
		deps.Catalog,
		deps.Checkout,
		deps.Events,
		deps.TaxRate,
		deps.ShippingCost,
	)
	observableHandler := commands.NewObservableCommandHandler(coreHandler, deps.Logger, deps.Metrics)

	return &Service{
		repo:            deps.Orders,
		events:          deps.Events,
		idemStore:       deps.Idempotency,
		checkoutHandler: observableHandler,
		getOrderHandler: queries.NewGetOrderQueryHandler(deps.Orders),
	}
}

// CheckoutInput captures the payload for submitting a checkout.
type CheckoutInput struct {
	Owner    cartdomain.Owner
	UserID   string
	Shipping domain.ShippingInfo
}

// SubmitCheckout converts the owner's cart into an order.
func (s *Service) SubmitCheckout(ctx context.Context, input CheckoutInput) (*domain.Order, error) {
	cmd := commands.SubmitCheckoutCommand{
		Owner:    input.Owner,
		UserID:   input.UserID,
		Shipping: input.Shipping,
	}
	return s.checkoutHandler.Handle(ctx, cmd)
}

// GetOrder retrieves an order by number for its owner.
func (s *Service) GetOrder(ctx context.Context, orderNumber, userID string) (*domain.Order, error) {
	return s.getOrderHandler.Handle(ctx, queries.GetOrderQuery{OrderNumber: orderNumber, UserID: userID})
}

// ListOrders returns the user's orders using a filter.
func (s *Service) ListOrders(ctx context.Context, userID string, filter ports.ListFilter) ([]domain.Order, error) {
	return s.repo.ListByUser(ctx, userID, filter)
}

// CancelOrder attempts to cancel an order that has not shipped yet.
func (s *Service) CancelOrder(ctx context.Context, orderNumber, userID string) (*domain.Order, error) {
	order, err := s.repo.GetByNumber(ctx, orderNumber, userID)
	if err != nil {
		return nil, err
	}

	if !order.Status.CanTransitionTo(domain.StatusCanceled) {
		return nil, fmt.Errorf("cannot cancel order in status %s", order.Status)
	}

	if err := s.repo.UpdateStatus(ctx, orderNumber, domain.StatusCanceled); err != nil {
		return nil, err
	}

	_ = s.events.PublishOrderStatusChanged(ctx, orderNumber, string(domain.StatusCanceled))

	order.Status = domain.StatusCanceled
	return order, nil
}

// SaveIdempotentResponse writes response details for a key.
func (s *Service) SaveIdempotentResponse(ctx context.Context, key string, response ports.StoredResponse) error {
	return s.idemStore.Save(ctx, key, response)
}

// GetIdempotentResponse retrieves previously stored response data.
func (s *Service) GetIdempotentResponse(ctx context.Context, key string) (*ports.StoredResponse, error) {
	return s.idemStore.Get(ctx, key)
}
