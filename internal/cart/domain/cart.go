package domain

import (
	"errors"
	"fmt"
	"time"
)

// Owner identifies who a cart belongs to: an authenticated user or an
// anonymous browsing session. Exactly one side is set. Cart and checkout
// operations always receive the owner explicitly instead of reading it from
// ambient request state.
type Owner struct {
	UserID    string `json:"user_id,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

// UserOwner keys a cart by an authenticated user ID.
func UserOwner(userID string) Owner {
	return Owner{UserID: userID}
}

// SessionOwner keys a cart by an anonymous session token.
func SessionOwner(sessionID string) Owner {
	return Owner{SessionID: sessionID}
}

// Validate ensures exactly one identity side is present.
func (o Owner) Validate() error {
	if o.UserID == "" && o.SessionID == "" {
		return errors.New("cart owner is required")
	}
	if o.UserID != "" && o.SessionID != "" {
		return errors.New("cart owner must be a user or a session, not both")
	}
	return nil
}

// Key is the stable storage key for this owner.
func (o Owner) Key() string {
	if o.UserID != "" {
		return fmt.Sprintf("user:%s", o.UserID)
	}
	return fmt.Sprintf("session:%s", o.SessionID)
}

// Line is one pending purchase intention. A cart holds at most one line per
// product; adding the same product again increments the quantity.
type Line struct {
	ProductID string    `json:"product_id"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate ensures the line adheres to cart constraints.
func (l Line) Validate() error {
	if l.ProductID == "" {
		return errors.New("product_id is required")
	}
	if l.Quantity <= 0 {
		return errors.New("quantity must be positive")
	}
	return nil
}
