package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	cartdomain "github.com/dejobratic/storefront/internal/cart/domain"
	"github.com/dejobratic/storefront/internal/orders/domain"
	"github.com/dejobratic/storefront/internal/orders/ports"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Commit applies the whole checkout unit in one transaction: order insert,
// item inserts, stock decrements, cart clear. Stock rows are locked with
// SELECT ... FOR UPDATE and re-checked before decrementing, so two checkouts
// racing for the last units serialize and the loser fails cleanly. Any error
// rolls the transaction back; no partial rows survive.
func (r *Repository) Commit(ctx context.Context, order domain.Order, owner cartdomain.Owner) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return &domain.CommitError{Err: fmt.Errorf("begin checkout: %w", err)}
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, item := range order.Items {
		var name string
		var stock int
		err := tx.QueryRow(ctx,
			`SELECT name, stock_quantity FROM products WHERE id = $1 AND active FOR UPDATE`,
			item.ProductID,
		).Scan(&name, &stock)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return &domain.ProductUnavailableError{ProductID: item.ProductID}
			}
			return &domain.CommitError{Err: fmt.Errorf("lock product %s: %w", item.ProductID, err)}
		}

		if item.Quantity > stock {
			return &domain.InsufficientStockError{
				ProductID:   item.ProductID,
				ProductName: name,
				Requested:   item.Quantity,
				Available:   stock,
			}
		}

		if _, err := tx.Exec(ctx,
			`UPDATE products SET stock_quantity = stock_quantity - $1, updated_at = $2 WHERE id = $3`,
			item.Quantity, time.Now().UTC(), item.ProductID,
		); err != nil {
			return &domain.CommitError{Err: fmt.Errorf("decrement stock for %s: %w", item.ProductID, err)}
		}
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO orders (
			id, user_id, first_name, last_name, email, phone,
			address_line_1, address_line_2, city, state, postal_code, country,
			subtotal, tax_amount, shipping_cost, total_amount,
			status, payment_status, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`,
		order.ID, order.UserID, order.FirstName, order.LastName, order.Email, order.Phone,
		order.AddressLine1, order.AddressLine2, order.City, order.State, order.PostalCode, order.Country,
		order.Subtotal, order.TaxAmount, order.ShippingCost, order.TotalAmount,
		order.Status, order.PaymentStatus, order.Notes, order.CreatedAt, order.UpdatedAt,
	); err != nil {
		return &domain.CommitError{Err: fmt.Errorf("insert order: %w", err)}
	}

	for _, item := range order.Items {
		if _, err := tx.Exec(ctx,
			`INSERT INTO order_items (order_id, product_id, product_name, quantity, unit_price, line_total)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			order.ID, item.ProductID, item.ProductName, item.Quantity, item.UnitPrice, item.LineTotal,
		); err != nil {
			return &domain.CommitError{Err: fmt.Errorf("insert order item: %w", err)}
		}
	}

	if _, err := tx.Exec(ctx,
		`DELETE FROM cart_lines WHERE owner_key = $1`,
		owner.Key(),
	); err != nil {
		return &domain.CommitError{Err: fmt.Errorf("clear cart: %w", err)}
	}

	if err := tx.Commit(ctx); err != nil {
		return &domain.CommitError{Err: fmt.Errorf("commit checkout: %w", err)}
	}

	return nil
}

func (r *Repository) GetByNumber(ctx context.Context, orderNumber, userID string) (*domain.Order, error) {
	query := `
		SELECT id, user_id, first_name, last_name, email, phone,
		       address_line_1, address_line_2, city, state, postal_code, country,
		       subtotal, tax_amount, shipping_cost, total_amount,
		       status, payment_status, notes, created_at, updated_at
		FROM orders
		WHERE id = $1 AND user_id = $2
	`

	var order domain.Order
	err := r.pool.QueryRow(ctx, query, orderNumber, userID).Scan(
		&order.ID, &order.UserID, &order.FirstName, &order.LastName, &order.Email, &order.Phone,
		&order.AddressLine1, &order.AddressLine2, &order.City, &order.State, &order.PostalCode, &order.Country,
		&order.Subtotal, &order.TaxAmount, &order.ShippingCost, &order.TotalAmount,
		&order.Status, &order.PaymentStatus, &order.Notes, &order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ports.ErrNotFound
		}
		return nil, fmt.Errorf("select order: %w", err)
	}

	items, err := r.itemsFor(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return &order, nil
}

func (r *Repository) itemsFor(ctx context.Context, orderNumber string) ([]domain.OrderItem, error) {
	query := `
		SELECT product_id, product_name, quantity, unit_price, line_total
		FROM order_items
		WHERE order_id = $1
		ORDER BY product_id
	`

	rows, err := r.pool.Query(ctx, query, orderNumber)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ProductID, &item.ProductName, &item.Quantity, &item.UnitPrice, &item.LineTotal); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}

	return items, nil
}

func (r *Repository) ListByUser(ctx context.Context, userID string, filter ports.ListFilter) ([]domain.Order, error) {
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	query := `
		SELECT id, user_id, first_name, last_name, email, phone,
		       address_line_1, address_line_2, city, state, postal_code, country,
		       subtotal, tax_amount, shipping_cost, total_amount,
		       status, payment_status, notes, created_at, updated_at
		FROM orders
		WHERE user_id = $1 AND ($2::text IS NULL OR status = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`

	var statusFilter *string
	if filter.Status != nil {
		s := string(*filter.Status)
		statusFilter = &s
	}

	offset := (page - 1) * pageSize

	rows, err := r.pool.Query(ctx, query, userID, statusFilter, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(
			&order.ID, &order.UserID, &order.FirstName, &order.LastName, &order.Email, &order.Phone,
			&order.AddressLine1, &order.AddressLine2, &order.City, &order.State, &order.PostalCode, &order.Country,
			&order.Subtotal, &order.TaxAmount, &order.ShippingCost, &order.TotalAmount,
			&order.Status, &order.PaymentStatus, &order.Notes, &order.CreatedAt, &order.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	return orders, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, orderNumber string, status domain.OrderStatus) error {
	query := `
		UPDATE orders
		SET status = $1, updated_at = $2
		WHERE id = $3
	`

	result, err := r.pool.Exec(ctx, query, status, time.Now().UTC(), orderNumber)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ports.ErrNotFound
	}

	return nil
}

func (r *Repository) UpdatePaymentStatus(ctx context.Context, orderNumber string, status domain.PaymentStatus) error {
	query := `
		UPDATE orders
		SET payment_status = $1, updated_at = $2
		WHERE id = $3
	`

	result, err := r.pool.Exec(ctx, query, status, time.Now().UTC(), orderNumber)
	if err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ports.ErrNotFound
	}

	return nil
}

// TotalSpentByUser sums totals across the user's orders whose payment has not
// failed, rounded with the same rule checkout uses so the aggregate matches
// the individually displayed totals.
func (r *Repository) TotalSpentByUser(ctx context.Context, userID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(total_amount), 0)
		FROM orders
		WHERE user_id = $1 AND payment_status IN ('pending', 'completed')
	`

	var total decimal.Decimal
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("sum order totals: %w", err)
	}

	return domain.RoundMoney(total), nil
}

func (r *Repository) CountByUser(ctx context.Context, userID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM orders
		WHERE user_id = $1
	`

	var count int
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}

	return count, nil
}
