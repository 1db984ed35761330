//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	cartdomain "github.com/dejobratic/storefront/internal/cart/domain"
	"github.com/dejobratic/storefront/internal/database"
	"github.com/dejobratic/storefront/internal/orders/adapters/postgres"
	"github.com/dejobratic/storefront/internal/orders/domain"
	"github.com/dejobratic/storefront/internal/orders/ports"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	testpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := testpostgres.Run(ctx,
		"postgres:16-alpine",
		testpostgres.WithDatabase("test"),
		testpostgres.WithUsername("test"),
		testpostgres.WithPassword("test"),
		testpostgres.BasicWaitStrategies(),
		testpostgres.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").WithOccurrence(2)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	projectRoot := findProjectRoot(t)
	migrationsPath := filepath.Join(projectRoot, "migrations")

	if err := database.RunMigrations(connStr, migrationsPath); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	pool, err := database.NewPool(ctx, connStr)
	if err != nil {
		t.Fatalf("failed to create pool: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
	})

	return pool
}

func findProjectRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

func seedProduct(t *testing.T, pool *pgxpool.Pool, id, name, price string, stock int) {
	t.Helper()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO products (id, name, description, price, stock_quantity, active, created_at, updated_at)
		 VALUES ($1, $2, '', $3, $4, TRUE, now(), now())`,
		id, name, price, stock,
	)
	if err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}
}

func seedCartLine(t *testing.T, pool *pgxpool.Pool, ownerKey, productID string, quantity int) {
	t.Helper()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO cart_lines (owner_key, product_id, quantity, created_at, updated_at)
		 VALUES ($1, $2, $3, now(), now())`,
		ownerKey, productID, quantity,
	)
	if err != nil {
		t.Fatalf("failed to seed cart line: %v", err)
	}
}

func productStock(t *testing.T, pool *pgxpool.Pool, id string) int {
	t.Helper()
	var stock int
	err := pool.QueryRow(context.Background(),
		`SELECT stock_quantity FROM products WHERE id = $1`, id,
	).Scan(&stock)
	if err != nil {
		t.Fatalf("failed to read stock: %v", err)
	}
	return stock
}

func cartLineCount(t *testing.T, pool *pgxpool.Pool, ownerKey string) int {
	t.Helper()
	var count int
	err := pool.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM cart_lines WHERE owner_key = $1`, ownerKey,
	).Scan(&count)
	if err != nil {
		t.Fatalf("failed to count cart lines: %v", err)
	}
	return count
}

func testOrder(id, userID string, items []domain.OrderItem) domain.Order {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.LineTotal)
	}
	tax := domain.RoundMoney(subtotal.Mul(decimal.RequireFromString("0.13")))
	now := time.Now().UTC()

	return domain.Order{
		ID:            id,
		UserID:        userID,
		FirstName:     "Ada",
		LastName:      "Lovelace",
		Email:         "ada@example.com",
		Phone:         "555-0100",
		AddressLine1:  "12 Analytical Way",
		City:          "London",
		State:         "LDN",
		PostalCode:    "SW1A",
		Country:       "UK",
		Subtotal:      subtotal,
		TaxAmount:     tax,
		ShippingCost:  decimal.Zero,
		TotalAmount:   domain.RoundMoney(subtotal.Add(tax)),
		Status:        domain.StatusPending,
		PaymentStatus: domain.PaymentPending,
		Items:         items,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestCommit(t *testing.T) {
	pool := setupTestDB(t)
	repo := postgres.NewRepository(pool)
	ctx := context.Background()

	seedProduct(t, pool, "p1", "Widget", "100.00", 5)
	owner := cartdomain.UserOwner("u1")
	seedCartLine(t, pool, owner.Key(), "p1", 2)

	order := testOrder("ord-1", "u1", []domain.OrderItem{
		{
			ProductID:   "p1",
			ProductName: "Widget",
			Quantity:    2,
			UnitPrice:   decimal.RequireFromString("100.00"),
			LineTotal:   decimal.RequireFromString("200.00"),
		},
	})

	if err := repo.Commit(ctx, order, owner); err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	if stock := productStock(t, pool, "p1"); stock != 3 {
		t.Errorf("expected stock 3 after commit, got %d", stock)
	}
	if count := cartLineCount(t, pool, owner.Key()); count != 0 {
		t.Errorf("expected cart cleared, got %d lines", count)
	}

	retrieved, err := repo.GetByNumber(ctx, "ord-1", "u1")
	if err != nil {
		t.Fatalf("failed to retrieve order: %v", err)
	}
	if !retrieved.TotalAmount.Equal(decimal.RequireFromString("226.00")) {
		t.Errorf("expected total 226.00, got %s", retrieved.TotalAmount)
	}
	if len(retrieved.Items) != 1 || retrieved.Items[0].Quantity != 2 {
		t.Errorf("expected one item with quantity 2, got %+v", retrieved.Items)
	}
}

func TestCommit_InsufficientStockRollsBack(t *testing.T) {
	pool := setupTestDB(t)
	repo := postgres.NewRepository(pool)
	ctx := context.Background()

	seedProduct(t, pool, "p1", "Widget", "10.00", 10)
	seedProduct(t, pool, "p2", "Gadget", "20.00", 1)
	owner := cartdomain.UserOwner("u1")
	seedCartLine(t, pool, owner.Key(), "p1", 2)
	seedCartLine(t, pool, owner.Key(), "p2", 5)

	order := testOrder("ord-1", "u1", []domain.OrderItem{
		{ProductID: "p1", ProductName: "Widget", Quantity: 2, UnitPrice: decimal.RequireFromString("10.00"), LineTotal: decimal.RequireFromString("20.00")},
		{ProductID: "p2", ProductName: "Gadget", Quantity: 5, UnitPrice: decimal.RequireFromString("20.00"), LineTotal: decimal.RequireFromString("100.00")},
	})

	err := repo.Commit(ctx, order, owner)

	var stockErr *domain.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected insufficient stock error, got %v", err)
	}
	if stockErr.ProductID != "p2" || stockErr.Requested != 5 || stockErr.Available != 1 {
		t.Errorf("unexpected error detail: %+v", stockErr)
	}

	// The whole unit rolled back: p1's decrement did not survive.
	if stock := productStock(t, pool, "p1"); stock != 10 {
		t.Errorf("expected p1 stock 10 after rollback, got %d", stock)
	}
	if stock := productStock(t, pool, "p2"); stock != 1 {
		t.Errorf("expected p2 stock 1 after rollback, got %d", stock)
	}
	if count := cartLineCount(t, pool, owner.Key()); count != 2 {
		t.Errorf("expected cart untouched, got %d lines", count)
	}
	if _, err := repo.GetByNumber(ctx, "ord-1", "u1"); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("expected no order row, got %v", err)
	}
}

func TestCommit_MissingProduct(t *testing.T) {
	pool := setupTestDB(t)
	repo := postgres.NewRepository(pool)
	ctx := context.Background()

	owner := cartdomain.UserOwner("u1")
	order := testOrder("ord-1", "u1", []domain.OrderItem{
		{ProductID: "ghost", ProductName: "Ghost", Quantity: 1, UnitPrice: decimal.RequireFromString("10.00"), LineTotal: decimal.RequireFromString("10.00")},
	})

	err := repo.Commit(ctx, order, owner)

	var unavailableErr *domain.ProductUnavailableError
	if !errors.As(err, &unavailableErr) || unavailableErr.ProductID != "ghost" {
		t.Errorf("expected product unavailable error for ghost, got %v", err)
	}
}

func TestCommit_ConcurrentLastUnit(t *testing.T) {
	pool := setupTestDB(t)
	repo := postgres.NewRepository(pool)
	ctx := context.Background()

	seedProduct(t, pool, "p1", "Widget", "100.00", 1)
	ownerA := cartdomain.UserOwner("uA")
	ownerB := cartdomain.UserOwner("uB")
	seedCartLine(t, pool, ownerA.Key(), "p1", 1)
	seedCartLine(t, pool, ownerB.Key(), "p1", 1)

	item := domain.OrderItem{
		ProductID:   "p1",
		ProductName: "Widget",
		Quantity:    1,
		UnitPrice:   decimal.RequireFromString("100.00"),
		LineTotal:   decimal.RequireFromString("100.00"),
	}

	var wg sync.WaitGroup
	results := make([]error, 2)
	commit := func(i int, orderID, userID string, owner cartdomain.Owner) {
		defer wg.Done()
		results[i] = repo.Commit(ctx, testOrder(orderID, userID, []domain.OrderItem{item}), owner)
	}

	wg.Add(2)
	go commit(0, "ord-A", "uA", ownerA)
	go commit(1, "ord-B", "uB", ownerB)
	wg.Wait()

	var successes, stockFailures int
	for _, err := range results {
		if err == nil {
			successes++
			continue
		}
		var stockErr *domain.InsufficientStockError
		if errors.As(err, &stockErr) {
			stockFailures++
		} else {
			t.Errorf("unexpected error: %v", err)
		}
	}

	if successes != 1 || stockFailures != 1 {
		t.Errorf("expected exactly one winner, got %d successes and %d stock failures", successes, stockFailures)
	}
	if stock := productStock(t, pool, "p1"); stock != 0 {
		t.Errorf("expected stock 0 after the race, got %d", stock)
	}
}

func TestGetByNumber_ScopedToOwner(t *testing.T) {
	pool := setupTestDB(t)
	repo := postgres.NewRepository(pool)
	ctx := context.Background()

	seedProduct(t, pool, "p1", "Widget", "100.00", 5)
	owner := cartdomain.UserOwner("u1")
	seedCartLine(t, pool, owner.Key(), "p1", 1)

	order := testOrder("ord-1", "u1", []domain.OrderItem{
		{ProductID: "p1", ProductName: "Widget", Quantity: 1, UnitPrice: decimal.RequireFromString("100.00"), LineTotal: decimal.RequireFromString("100.00")},
	})
	if err := repo.Commit(ctx, order, owner); err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	if _, err := repo.GetByNumber(ctx, "ord-1", "someone-else"); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("expected ErrNotFound for foreign user, got %v", err)
	}
}

func TestUpdateStatus(t *testing.T) {
	pool := setupTestDB(t)
	repo := postgres.NewRepository(pool)
	ctx := context.Background()

	seedProduct(t, pool, "p1", "Widget", "100.00", 5)
	owner := cartdomain.UserOwner("u1")
	seedCartLine(t, pool, owner.Key(), "p1", 1)

	order := testOrder("ord-1", "u1", []domain.OrderItem{
		{ProductID: "p1", ProductName: "Widget", Quantity: 1, UnitPrice: decimal.RequireFromString("100.00"), LineTotal: decimal.RequireFromString("100.00")},
	})
	if err := repo.Commit(ctx, order, owner); err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	if err := repo.UpdateStatus(ctx, "ord-1", domain.StatusProcessing); err != nil {
		t.Fatalf("update status failed: %v", err)
	}

	retrieved, err := repo.GetByNumber(ctx, "ord-1", "u1")
	if err != nil {
		t.Fatalf("failed to retrieve order: %v", err)
	}
	if retrieved.Status != domain.StatusProcessing {
		t.Errorf("expected status processing, got %s", retrieved.Status)
	}

	if err := repo.UpdateStatus(ctx, "nonexistent", domain.StatusProcessing); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown order, got %v", err)
	}
}

func TestTotalSpentByUser(t *testing.T) {
	pool := setupTestDB(t)
	repo := postgres.NewRepository(pool)
	ctx := context.Background()

	seedProduct(t, pool, "p1", "Widget", "100.00", 10)
	owner := cartdomain.UserOwner("u1")

	item := domain.OrderItem{
		ProductID:   "p1",
		ProductName: "Widget",
		Quantity:    1,
		UnitPrice:   decimal.RequireFromString("100.00"),
		LineTotal:   decimal.RequireFromString("100.00"),
	}

	for _, id := range []string{"ord-1", "ord-2"} {
		seedCartLine(t, pool, owner.Key(), "p1", 1)
		if err := repo.Commit(ctx, testOrder(id, "u1", []domain.OrderItem{item}), owner); err != nil {
			t.Fatalf("commit %s failed: %v", id, err)
		}
	}

	// Failed payments do not count toward the total.
	if err := repo.UpdatePaymentStatus(ctx, "ord-2", domain.PaymentFailed); err != nil {
		t.Fatalf("update payment status failed: %v", err)
	}

	total, err := repo.TotalSpentByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("total spent failed: %v", err)
	}
	if !total.Equal(decimal.RequireFromString("113.00")) {
		t.Errorf("expected total 113.00, got %s", total)
	}

	count, err := repo.CountByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 orders, got %d", count)
	}
}
