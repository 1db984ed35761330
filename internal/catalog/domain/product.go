package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Product is a sellable catalog entry. Prices carry two fractional digits.
type Product struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	Price         decimal.Decimal  `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discount_price,omitempty"`
	StockQuantity int              `json:"stock_quantity"`
	Active        bool             `json:"active"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// Validate ensures the product adheres to catalog constraints.
func (p Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("name is required")
	}
	if p.Price.IsNegative() {
		return errors.New("price must not be negative")
	}
	if p.DiscountPrice != nil && p.DiscountPrice.IsNegative() {
		return errors.New("discount_price must not be negative")
	}
	if p.StockQuantity < 0 {
		return errors.New("stock_quantity must not be negative")
	}
	return nil
}

// OnSale reports whether the discount price undercuts the base price.
func (p Product) OnSale() bool {
	return p.DiscountPrice != nil && p.DiscountPrice.LessThan(p.Price)
}

// EffectivePrice is the price a buyer pays right now: the discount price when
// it is strictly below the base price, the base price otherwise.
func (p Product) EffectivePrice() decimal.Decimal {
	if p.OnSale() {
		return *p.DiscountPrice
	}
	return p.Price
}

// InStock reports whether the requested quantity can currently be fulfilled.
func (p Product) InStock(quantity int) bool {
	return quantity > 0 && quantity <= p.StockQuantity
}
