package domain

import (
	"errors"
	"fmt"
)

// ErrEmptyCart rejects a checkout with nothing in the cart.
var ErrEmptyCart = errors.New("cart is empty")

// ValidationError reports a required checkout field that is missing or blank.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

// InsufficientStockError reports a cart line that asks for more units than
// the catalog currently holds. It carries enough detail for the caller to
// reduce the quantity or drop the line.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d",
		e.ProductName, e.Requested, e.Available)
}

// ProductUnavailableError reports a cart line whose product no longer exists
// or has been deactivated since it was added.
type ProductUnavailableError struct {
	ProductID string
}

func (e *ProductUnavailableError) Error() string {
	return fmt.Sprintf("product %s is no longer available", e.ProductID)
}

// CommitError wraps a storage fault that prevented the atomic checkout unit
// from applying. Nothing was written; the caller may resubmit.
type CommitError struct {
	Err error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("checkout commit failed: %v", e.Err)
}

func (e *CommitError) Unwrap() error {
	return e.Err
}
