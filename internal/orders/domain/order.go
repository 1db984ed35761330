package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus captures the fulfilment lifecycle of an order.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCanceled   OrderStatus = "canceled"
)

// PaymentStatus tracks whether payment for an order settled. No gateway is
// integrated; back-office processes flip this after the fact.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

// CanTransitionTo reports whether the fulfilment lifecycle permits the move.
// Orders advance pending → processing → shipped → delivered; cancellation is
// allowed until the order ships.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusProcessing || next == StatusCanceled
	case StatusProcessing:
		return next == StatusShipped || next == StatusCanceled
	case StatusShipped:
		return next == StatusDelivered
	default:
		return false
	}
}

// Order is the immutable record of a committed purchase. Its monetary fields
// and items are frozen at checkout time, decoupled from later catalog edits;
// only status and payment_status change afterwards.
type Order struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	FirstName     string          `json:"first_name"`
	LastName      string          `json:"last_name"`
	Email         string          `json:"email"`
	Phone         string          `json:"phone"`
	AddressLine1  string          `json:"address_line_1"`
	AddressLine2  string          `json:"address_line_2,omitempty"`
	City          string          `json:"city"`
	State         string          `json:"state"`
	PostalCode    string          `json:"postal_code"`
	Country       string          `json:"country"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	TaxAmount     decimal.Decimal `json:"tax_amount"`
	ShippingCost  decimal.Decimal `json:"shipping_cost"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Status        OrderStatus     `json:"status"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
	Notes         string          `json:"notes,omitempty"`
	Items         []OrderItem     `json:"items"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// OrderItem freezes one cart line at checkout time. UnitPrice is the
// effective price at the moment of commit, not the product's current price.
type OrderItem struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// Validate checks the order's internal consistency: items present, item sums
// matching the subtotal, and the rounded total identity holding.
func (o Order) Validate() error {
	if o.UserID == "" {
		return &ValidationError{Field: "user_id"}
	}
	if len(o.Items) == 0 {
		return ErrEmptyCart
	}

	itemSum := decimal.Zero
	for _, item := range o.Items {
		if item.Quantity <= 0 {
			return &ValidationError{Field: "quantity"}
		}
		if !item.LineTotal.Equal(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))) {
			return &ValidationError{Field: "line_total"}
		}
		itemSum = itemSum.Add(item.LineTotal)
	}

	if !itemSum.Equal(o.Subtotal) {
		return &ValidationError{Field: "subtotal"}
	}

	if !o.TotalAmount.Equal(RoundMoney(o.Subtotal.Add(o.TaxAmount).Add(o.ShippingCost))) {
		return &ValidationError{Field: "total_amount"}
	}

	return nil
}

// ShippingInfo is the contact and destination form submitted at checkout.
type ShippingInfo struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	AddressLine1 string `json:"address_line_1"`
	AddressLine2 string `json:"address_line_2"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postal_code"`
	Country      string `json:"country"`
	Notes        string `json:"notes"`
}

// requiredShippingFields fixes the validation order so the first missing
// field reported is deterministic.
var requiredShippingFields = []struct {
	name  string
	value func(ShippingInfo) string
}{
	{"first_name", func(s ShippingInfo) string { return s.FirstName }},
	{"last_name", func(s ShippingInfo) string { return s.LastName }},
	{"email", func(s ShippingInfo) string { return s.Email }},
	{"phone", func(s ShippingInfo) string { return s.Phone }},
	{"address_line_1", func(s ShippingInfo) string { return s.AddressLine1 }},
	{"city", func(s ShippingInfo) string { return s.City }},
	{"state", func(s ShippingInfo) string { return s.State }},
	{"postal_code", func(s ShippingInfo) string { return s.PostalCode }},
	{"country", func(s ShippingInfo) string { return s.Country }},
}

// Validate reports the first required field that is blank after trimming.
func (s ShippingInfo) Validate() error {
	for _, field := range requiredShippingFields {
		if strings.TrimSpace(field.value(s)) == "" {
			return &ValidationError{Field: field.name}
		}
	}
	if !strings.Contains(s.Email, "@") {
		return &ValidationError{Field: "email"}
	}
	return nil
}

// Trimmed returns a copy with every field whitespace-trimmed, the form the
// order records.
func (s ShippingInfo) Trimmed() ShippingInfo {
	return ShippingInfo{
		FirstName:    strings.TrimSpace(s.FirstName),
		LastName:     strings.TrimSpace(s.LastName),
		Email:        strings.TrimSpace(s.Email),
		Phone:        strings.TrimSpace(s.Phone),
		AddressLine1: strings.TrimSpace(s.AddressLine1),
		AddressLine2: strings.TrimSpace(s.AddressLine2),
		City:         strings.TrimSpace(s.City),
		State:        strings.TrimSpace(s.State),
		PostalCode:   strings.TrimSpace(s.PostalCode),
		Country:      strings.TrimSpace(s.Country),
		Notes:        strings.TrimSpace(s.Notes),
	}
}

// RoundMoney applies the single rounding rule used everywhere money is
// rounded: two fractional digits, half away from zero.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
