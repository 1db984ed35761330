package domain_test

import (
	"errors"
	"testing"

	"github.com/dejobratic/storefront/internal/orders/domain"
	"github.com/shopspring/decimal"
)

func TestOrderStatusTransitions(t *testing.T) {
	cases := []struct {
		from    domain.OrderStatus
		to      domain.OrderStatus
		allowed bool
	}{
		{domain.StatusPending, domain.StatusProcessing, true},
		{domain.StatusPending, domain.StatusCanceled, true},
		{domain.StatusPending, domain.StatusShipped, false},
		{domain.StatusProcessing, domain.StatusShipped, true},
		{domain.StatusProcessing, domain.StatusCanceled, true},
		{domain.StatusShipped, domain.StatusDelivered, true},
		{domain.StatusShipped, domain.StatusCanceled, false},
		{domain.StatusDelivered, domain.StatusCanceled, false},
		{domain.StatusCanceled, domain.StatusProcessing, false},
	}

	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.allowed {
			t.Errorf("%s -> %s: expected %v, got %v", tc.from, tc.to, tc.allowed, got)
		}
	}
}

func validOrder() domain.Order {
	return domain.Order{
		ID:     "ord-1",
		UserID: "u1",
		Items: []domain.OrderItem{
			{
				ProductID:   "p1",
				ProductName: "Widget",
				Quantity:    2,
				UnitPrice:   decimal.RequireFromString("100.00"),
				LineTotal:   decimal.RequireFromString("200.00"),
			},
		},
		Subtotal:     decimal.RequireFromString("200.00"),
		TaxAmount:    decimal.RequireFromString("26.00"),
		ShippingCost: decimal.Zero,
		TotalAmount:  decimal.RequireFromString("226.00"),
	}
}

func TestOrderValidate(t *testing.T) {
	t.Run("accepts consistent order", func(t *testing.T) {
		if err := validOrder().Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("rejects missing user", func(t *testing.T) {
		order := validOrder()
		order.UserID = ""
		assertValidationField(t, order.Validate(), "user_id")
	})

	t.Run("rejects no items", func(t *testing.T) {
		order := validOrder()
		order.Items = nil
		if err := order.Validate(); !errors.Is(err, domain.ErrEmptyCart) {
			t.Errorf("expected ErrEmptyCart, got %v", err)
		}
	})

	t.Run("rejects line total that does not match unit price times quantity", func(t *testing.T) {
		order := validOrder()
		order.Items[0].LineTotal = decimal.RequireFromString("199.00")
		assertValidationField(t, order.Validate(), "line_total")
	})

	t.Run("rejects subtotal that does not match item sum", func(t *testing.T) {
		order := validOrder()
		order.Subtotal = decimal.RequireFromString("150.00")
		assertValidationField(t, order.Validate(), "subtotal")
	})

	t.Run("rejects broken total identity", func(t *testing.T) {
		order := validOrder()
		order.TotalAmount = decimal.RequireFromString("230.00")
		assertValidationField(t, order.Validate(), "total_amount")
	})
}

func assertValidationField(t *testing.T, err error, field string) {
	t.Helper()
	var validationErr *domain.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if validationErr.Field != field {
		t.Errorf("expected field %s, got %s", field, validationErr.Field)
	}
}

func TestShippingInfoValidate(t *testing.T) {
	valid := domain.ShippingInfo{
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Email:        "ada@example.com",
		Phone:        "555-0100",
		AddressLine1: "12 Analytical Way",
		City:         "London",
		State:        "LDN",
		PostalCode:   "SW1A",
		Country:      "UK",
	}

	t.Run("accepts complete form", func(t *testing.T) {
		if err := valid.Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("address line 2 and notes are optional", func(t *testing.T) {
		form := valid
		form.AddressLine2 = ""
		form.Notes = ""
		if err := form.Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("reports the first blank field in declaration order", func(t *testing.T) {
		form := valid
		form.LastName = " "
		form.PostalCode = ""
		assertValidationField(t, form.Validate(), "last_name")
	})

	t.Run("whitespace-only counts as blank", func(t *testing.T) {
		form := valid
		form.Country = "   "
		assertValidationField(t, form.Validate(), "country")
	})

	t.Run("rejects email without at sign", func(t *testing.T) {
		form := valid
		form.Email = "ada.example.com"
		assertValidationField(t, form.Validate(), "email")
	})
}

func TestRoundMoney(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"26.00", "26"},
		{"26.005", "26.01"},
		{"26.004", "26"},
		{"-26.005", "-26.01"},
		{"0.125", "0.13"},
	}

	for _, tc := range cases {
		got := domain.RoundMoney(decimal.RequireFromString(tc.in))
		if !got.Equal(decimal.RequireFromString(tc.want)) {
			t.Errorf("RoundMoney(%s): expected %s, got %s", tc.in, tc.want, got)
		}
	}
}
