package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dejobratic/storefront/internal/accounts/domain"
	"github.com/dejobratic/storefront/internal/accounts/ports"
	cartdomain "github.com/dejobratic/storefront/internal/cart/domain"
	cartports "github.com/dejobratic/storefront/internal/cart/ports"
	ordersports "github.com/dejobratic/storefront/internal/orders/ports"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// SessionTTL is how long a login session stays valid.
const SessionTTL = 30 * 24 * time.Hour

// DeleteConfirmation is the string a user must submit to delete their account.
const DeleteConfirmation = "DELETE"

// Service implements registration, authentication, and profile use cases.
type Service struct {
	users    ports.UserRepository
	sessions ports.SessionRepository
	orders   ordersports.OrderRepository
	carts    cartports.CartRepository
}

// NewService wires required dependencies.
func NewService(
	users ports.UserRepository,
	sessions ports.SessionRepository,
	orders ordersports.OrderRepository,
	carts cartports.CartRepository,
) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		orders:   orders,
		carts:    carts,
	}
}

// RegisterInput carries the registration form.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Register creates an account in one validated step: the user value is built
// complete and checked before anything is stored.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	email := domain.NormalizeEmail(input.Email)
	if err := domain.ValidateEmail(email); err != nil {
		return nil, err
	}
	if len(input.Password) < domain.MinPasswordLength {
		return nil, fmt.Errorf("password must be at least %d characters", domain.MinPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	return &user, nil
}

// Login checks the password and issues a session token.
func (s *Service) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	user, err := s.users.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	now := time.Now().UTC()
	session := domain.Session{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: now.Add(SessionTTL),
		CreatedAt: now,
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	return &session, nil
}

// Logout invalidates a session token. An unknown token is not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	err := s.sessions.Delete(ctx, token)
	if err != nil && !errors.Is(err, ports.ErrNotFound) {
		return err
	}
	return nil
}

// Authenticate resolves a bearer token to its user. Expired sessions are
// dropped on the way out.
func (s *Service) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	session, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	if session.Expired(time.Now().UTC()) {
		_ = s.sessions.Delete(ctx, token)
		return nil, ports.ErrNotFound
	}

	return s.users.GetByID(ctx, session.UserID)
}

// ProfileView aggregates the account with its order history and cart state.
type ProfileView struct {
	User       domain.User     `json:"user"`
	OrderCount int             `json:"order_count"`
	TotalSpent decimal.Decimal `json:"total_spent"`
	CartItems  int             `json:"cart_items"`
}

// Profile returns the user together with order count, total spent, and the
// number of items currently in their cart.
func (s *Service) Profile(ctx context.Context, userID string) (*ProfileView, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	orderCount, err := s.orders.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	totalSpent, err := s.orders.TotalSpentByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	cartItems, err := s.carts.Count(ctx, cartdomain.UserOwner(userID))
	if err != nil {
		return nil, err
	}

	return &ProfileView{
		User:       *user,
		OrderCount: orderCount,
		TotalSpent: totalSpent,
		CartItems:  cartItems,
	}, nil
}

// UpdateProfileInput carries the editable profile fields.
type UpdateProfileInput struct {
	FirstName string
	LastName  string
}

// UpdateProfile updates the user's name fields.
func (s *Service) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.FirstName = input.FirstName
	user.LastName = input.LastName
	user.UpdatedAt = time.Now().UTC()

	if err := s.users.Update(ctx, *user); err != nil {
		return nil, err
	}

	return user, nil
}

// DeleteAccount removes the account and all its sessions. The caller must
// submit the exact confirmation string; anything else aborts.
func (s *Service) DeleteAccount(ctx context.Context, userID, confirmation string) error {
	if confirmation != DeleteConfirmation {
		return fmt.Errorf("confirmation must be %q", DeleteConfirmation)
	}

	if err := s.sessions.DeleteByUser(ctx, userID); err != nil && !errors.Is(err, ports.ErrNotFound) {
		return err
	}

	return s.users.Delete(ctx, userID)
}
