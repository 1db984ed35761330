package commands

import (
	"context"
	"errors"
	"time"

	cartdomain "github.com/dejobratic/storefront/internal/cart/domain"
	cartports "github.com/dejobratic/storefront/internal/cart/ports"
	catalogports "github.com/dejobratic/storefront/internal/catalog/ports"
	"github.com/dejobratic/storefront/internal/orders/domain"
	"github.com/dejobratic/storefront/internal/orders/ports"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SubmitCheckoutCommand converts the owner's cart into an order using the
// shipping form submitted with it.
type SubmitCheckoutCommand struct {
	Owner    cartdomain.Owner
	UserID   string
	Shipping domain.ShippingInfo
}

func (c SubmitCheckoutCommand) Validate() error {
	if c.UserID == "" {
		return &domain.ValidationError{Field: "user_id"}
	}
	if err := c.Owner.Validate(); err != nil {
		return &domain.ValidationError{Field: "owner"}
	}
	return c.Shipping.Validate()
}

// CommandHandler is the checkout entry point used by the application service.
type CommandHandler interface {
	Handle(ctx context.Context, cmd SubmitCheckoutCommand) (*domain.Order, error)
}

// SubmitCheckoutCommandHandler runs the cart-to-order transition.
//
// Steps 1-3 (empty-cart check, shipping validation, stock/price pre-read) are
// pure: they touch no store. The commit itself is delegated to the checkout
// store, which re-checks stock under lock and applies order creation, item
// creation, stock decrement, and cart clearing as one unit.
type SubmitCheckoutCommandHandler struct {
	carts        cartports.CartRepository
	catalog      catalogports.ProductRepository
	checkout     ports.CheckoutStore
	events       ports.EventBus
	taxRate      decimal.Decimal
	shippingCost decimal.Decimal
}

func NewSubmitCheckoutCommandHandler(
	carts cartports.CartRepository,
	catalog catalogports.ProductRepository,
	checkout ports.CheckoutStore,
	events ports.EventBus,
	taxRate decimal.Decimal,
	shippingCost decimal.Decimal,
) *SubmitCheckoutCommandHandler {
	return &SubmitCheckoutCommandHandler{
		carts:        carts,
		catalog:      catalog,
		checkout:     checkout,
		events:       events,
		taxRate:      taxRate,
		shippingCost: shippingCost,
	}
}

func (h *SubmitCheckoutCommandHandler) Handle(ctx context.Context, cmd SubmitCheckoutCommand) (*domain.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	lines, err := h.carts.Lines(ctx, cmd.Owner)
	if err != nil {
		return nil, &domain.CommitError{Err: err}
	}
	if len(lines) == 0 {
		return nil, domain.ErrEmptyCart
	}

	items, subtotal, err := h.priceLines(ctx, lines)
	if err != nil {
		return nil, err
	}

	taxAmount := domain.RoundMoney(subtotal.Mul(h.taxRate))
	totalAmount := domain.RoundMoney(subtotal.Add(taxAmount).Add(h.shippingCost))

	shipping := cmd.Shipping.Trimmed()
	now := time.Now().UTC()

	order := domain.Order{
		ID:            uuid.NewString(),
		UserID:        cmd.UserID,
		FirstName:     shipping.FirstName,
		LastName:      shipping.LastName,
		Email:         shipping.Email,
		Phone:         shipping.Phone,
		AddressLine1:  shipping.AddressLine1,
		AddressLine2:  shipping.AddressLine2,
		City:          shipping.City,
		State:         shipping.State,
		PostalCode:    shipping.PostalCode,
		Country:       shipping.Country,
		Subtotal:      subtotal,
		TaxAmount:     taxAmount,
		ShippingCost:  h.shippingCost,
		TotalAmount:   totalAmount,
		Status:        domain.StatusPending,
		PaymentStatus: domain.PaymentPending,
		Notes:         shipping.Notes,
		Items:         items,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := order.Validate(); err != nil {
		return nil, err
	}

	if err := h.checkout.Commit(ctx, order, cmd.Owner); err != nil {
		return nil, err
	}

	// The order is durable at this point; a lost event is a telemetry gap,
	// not a reason to fail the checkout.
	_ = h.events.PublishOrderPlaced(ctx, order.ID)

	return &order, nil
}

// priceLines re-reads every product's current stock and effective price and
// freezes them into order items. It fails without side effects when a product
// is gone, inactive, or short on stock.
func (h *SubmitCheckoutCommandHandler) priceLines(ctx context.Context, lines []cartdomain.Line) ([]domain.OrderItem, decimal.Decimal, error) {
	items := make([]domain.OrderItem, 0, len(lines))
	subtotal := decimal.Zero

	for _, line := range lines {
		product, err := h.catalog.GetByID(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, catalogports.ErrNotFound) {
				return nil, decimal.Zero, &domain.ProductUnavailableError{ProductID: line.ProductID}
			}
			return nil, decimal.Zero, &domain.CommitError{Err: err}
		}

		if !product.Active {
			return nil, decimal.Zero, &domain.ProductUnavailableError{ProductID: line.ProductID}
		}

		if line.Quantity > product.StockQuantity {
			return nil, decimal.Zero, &domain.InsufficientStockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Requested:   line.Quantity,
				Available:   product.StockQuantity,
			}
		}

		unitPrice := product.EffectivePrice()
		lineTotal := unitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))

		items = append(items, domain.OrderItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    line.Quantity,
			UnitPrice:   unitPrice,
			LineTotal:   lineTotal,
		})

		subtotal = subtotal.Add(lineTotal)
	}

	return items, subtotal, nil
}
