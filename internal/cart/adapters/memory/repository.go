package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dejobratic/storefront/internal/cart/domain"
	"github.com/dejobratic/storefront/internal/cart/ports"
)

// Repository provides an in-memory cart store useful for local development and tests.
type Repository struct {
	mu    sync.RWMutex
	carts map[string]map[string]domain.Line
}

// NewRepository constructs a new in-memory repository.
func NewRepository() *Repository {
	return &Repository{carts: make(map[string]map[string]domain.Line)}
}

// Lines returns the owner's cart lines, oldest first.
func (r *Repository) Lines(_ context.Context, owner domain.Owner) ([]domain.Line, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cart, ok := r.carts[owner.Key()]
	if !ok {
		return nil, nil
	}

	lines := make([]domain.Line, 0, len(cart))
	for _, line := range cart {
		lines = append(lines, line)
	}

	sort.Slice(lines, func(i, j int) bool {
		return lines[i].CreatedAt.Before(lines[j].CreatedAt)
	})

	return lines, nil
}

// Add inserts a line or increments the quantity of an existing one.
func (r *Repository) Add(_ context.Context, owner domain.Owner, productID string, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	cart, ok := r.carts[owner.Key()]
	if !ok {
		cart = make(map[string]domain.Line)
		r.carts[owner.Key()] = cart
	}

	line, ok := cart[productID]
	if !ok {
		cart[productID] = domain.Line{ProductID: productID, Quantity: quantity, CreatedAt: now, UpdatedAt: now}
		return nil
	}

	line.Quantity += quantity
	line.UpdatedAt = now
	cart[productID] = line
	return nil
}

// SetQuantity replaces a line's quantity; zero removes the line.
func (r *Repository) SetQuantity(_ context.Context, owner domain.Owner, productID string, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, ok := r.carts[owner.Key()]
	if !ok {
		return ports.ErrLineNotFound
	}

	line, ok := cart[productID]
	if !ok {
		return ports.ErrLineNotFound
	}

	if quantity <= 0 {
		delete(cart, productID)
		return nil
	}

	line.Quantity = quantity
	line.UpdatedAt = time.Now().UTC()
	cart[productID] = line
	return nil
}

// Remove deletes a single line.
func (r *Repository) Remove(_ context.Context, owner domain.Owner, productID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, ok := r.carts[owner.Key()]
	if !ok {
		return ports.ErrLineNotFound
	}

	if _, ok := cart[productID]; !ok {
		return ports.ErrLineNotFound
	}

	delete(cart, productID)
	return nil
}

// Clear deletes every line for the owner.
func (r *Repository) Clear(_ context.Context, owner domain.Owner) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.carts, owner.Key())
	return nil
}

// Count returns the total quantity across the owner's lines.
func (r *Repository) Count(_ context.Context, owner domain.Owner) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := 0
	for _, line := range r.carts[owner.Key()] {
		total += line.Quantity
	}

	return total, nil
}
