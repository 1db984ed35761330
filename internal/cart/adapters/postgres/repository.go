package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/dejobratic/storefront/internal/cart/domain"
	"github.com/dejobratic/storefront/internal/cart/ports"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Lines(ctx context.Context, owner domain.Owner) ([]domain.Line, error) {
	query := `
		SELECT product_id, quantity, created_at, updated_at
		FROM cart_lines
		WHERE owner_key = $1
		ORDER BY created_at
	`

	rows, err := r.pool.Query(ctx, query, owner.Key())
	if err != nil {
		return nil, fmt.Errorf("query cart lines: %w", err)
	}
	defer rows.Close()

	var lines []domain.Line
	for rows.Next() {
		var line domain.Line
		if err := rows.Scan(&line.ProductID, &line.Quantity, &line.CreatedAt, &line.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cart lines: %w", err)
	}

	return lines, nil
}

func (r *Repository) Add(ctx context.Context, owner domain.Owner, productID string, quantity int) error {
	now := time.Now().UTC()
	query := `
		INSERT INTO cart_lines (owner_key, product_id, quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (owner_key, product_id)
		DO UPDATE SET quantity = cart_lines.quantity + EXCLUDED.quantity, updated_at = EXCLUDED.updated_at
	`

	if _, err := r.pool.Exec(ctx, query, owner.Key(), productID, quantity, now); err != nil {
		return fmt.Errorf("upsert cart line: %w", err)
	}

	return nil
}

func (r *Repository) SetQuantity(ctx context.Context, owner domain.Owner, productID string, quantity int) error {
	if quantity <= 0 {
		return r.Remove(ctx, owner, productID)
	}

	query := `
		UPDATE cart_lines
		SET quantity = $1, updated_at = $2
		WHERE owner_key = $3 AND product_id = $4
	`

	result, err := r.pool.Exec(ctx, query, quantity, time.Now().UTC(), owner.Key(), productID)
	if err != nil {
		return fmt.Errorf("update cart line: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ports.ErrLineNotFound
	}

	return nil
}

func (r *Repository) Remove(ctx context.Context, owner domain.Owner, productID string) error {
	query := `
		DELETE FROM cart_lines
		WHERE owner_key = $1 AND product_id = $2
	`

	result, err := r.pool.Exec(ctx, query, owner.Key(), productID)
	if err != nil {
		return fmt.Errorf("delete cart line: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ports.ErrLineNotFound
	}

	return nil
}

func (r *Repository) Clear(ctx context.Context, owner domain.Owner) error {
	query := `
		DELETE FROM cart_lines
		WHERE owner_key = $1
	`

	if _, err := r.pool.Exec(ctx, query, owner.Key()); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}

	return nil
}

func (r *Repository) Count(ctx context.Context, owner domain.Owner) (int, error) {
	query := `
		SELECT COALESCE(SUM(quantity), 0)
		FROM cart_lines
		WHERE owner_key = $1
	`

	var count int
	if err := r.pool.QueryRow(ctx, query, owner.Key()).Scan(&count); err != nil {
		return 0, fmt.Errorf("count cart lines: %w", err)
	}

	return count, nil
}
