package adapters

import (
	"context"
	"time"

	cartdomain "github.com/dejobratic/storefront/internal/cart/domain"
	"github.com/dejobratic/storefront/internal/database"
	"github.com/dejobratic/storefront/internal/orders/domain"
	"github.com/dejobratic/storefront/internal/orders/ports"
	"github.com/dejobratic/storefront/internal/telemetry"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

// ObservableRepository wraps an order repository with spans and query metrics.
type ObservableRepository struct {
	repo    ports.OrderRepository
	metrics *database.Metrics
}

func NewObservableRepository(repo ports.OrderRepository, metrics *database.Metrics) *ObservableRepository {
	return &ObservableRepository{
		repo:    repo,
		metrics: metrics,
	}
}

func (r *ObservableRepository) GetByNumber(ctx context.Context, orderNumber, userID string) (*domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository.GetByNumber")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", orderNumber),
		attribute.String("operation", "get_by_number"),
	)

	start := time.Now()
	order, err := r.repo.GetByNumber(ctx, orderNumber, userID)
	r.metrics.RecordQuery(ctx, "get_order_by_number", time.Since(start).Seconds())

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return nil, err
	}

	telemetry.SetSpanSuccess(span)
	return order, nil
}

func (r *ObservableRepository) ListByUser(ctx context.Context, userID string, filter ports.ListFilter) ([]domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository.ListByUser")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("operation", "list_by_user"),
		attribute.Int("page", filter.Page),
		attribute.Int("page_size", filter.PageSize),
	)

	start := time.Now()
	orders, err := r.repo.ListByUser(ctx, userID, filter)
	r.metrics.RecordQuery(ctx, "list_orders_by_user", time.Since(start).Seconds())

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return nil, err
	}

	telemetry.SetSpanSuccess(span)
	return orders, nil
}

func (r *ObservableRepository) UpdateStatus(ctx context.Context, orderNumber string, status domain.OrderStatus) error {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository.UpdateStatus")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", orderNumber),
		attribute.String("order.status", string(status)),
		attribute.String("operation", "update_status"),
	)

	start := time.Now()
	err := r.repo.UpdateStatus(ctx, orderNumber, status)
	r.metrics.RecordQuery(ctx, "update_order_status", time.Since(start).Seconds())

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return err
	}

	telemetry.SetSpanSuccess(span)
	return nil
}

func (r *ObservableRepository) UpdatePaymentStatus(ctx context.Context, orderNumber string, status domain.PaymentStatus) error {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository.UpdatePaymentStatus")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", orderNumber),
		attribute.String("order.payment_status", string(status)),
		attribute.String("operation", "update_payment_status"),
	)

	start := time.Now()
	err := r.repo.UpdatePaymentStatus(ctx, orderNumber, status)
	r.metrics.RecordQuery(ctx, "update_payment_status", time.Since(start).Seconds())

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return err
	}

	telemetry.SetSpanSuccess(span)
	return nil
}

func (r *ObservableRepository) TotalSpentByUser(ctx context.Context, userID string) (decimal.Decimal, error) {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository.TotalSpentByUser")
	defer span.End()

	telemetry.AddSpanAttributes(span, attribute.String("operation", "total_spent_by_user"))

	start := time.Now()
	total, err := r.repo.TotalSpentByUser(ctx, userID)
	r.metrics.RecordQuery(ctx, "total_spent_by_user", time.Since(start).Seconds())

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return decimal.Zero, err
	}

	telemetry.SetSpanSuccess(span)
	return total, nil
}

func (r *ObservableRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository.CountByUser")
	defer span.End()

	telemetry.AddSpanAttributes(span, attribute.String("operation", "count_by_user"))

	start := time.Now()
	count, err := r.repo.CountByUser(ctx, userID)
	r.metrics.RecordQuery(ctx, "count_orders_by_user", time.Since(start).Seconds())

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return 0, err
	}

	telemetry.SetSpanSuccess(span)
	return count, nil
}

// ObservableCheckoutStore traces the atomic commit itself.
type ObservableCheckoutStore struct {
	store   ports.CheckoutStore
	metrics *database.Metrics
}

func NewObservableCheckoutStore(store ports.CheckoutStore, metrics *database.Metrics) *ObservableCheckoutStore {
	return &ObservableCheckoutStore{
		store:   store,
		metrics: metrics,
	}
}

func (s *ObservableCheckoutStore) Commit(ctx context.Context, order domain.Order, owner cartdomain.Owner) error {
	ctx, span := telemetry.StartSpan(ctx, "CheckoutStore.Commit")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", order.ID),
		attribute.Int("order.item_count", len(order.Items)),
		attribute.String("operation", "checkout_commit"),
	)

	start := time.Now()
	err := s.store.Commit(ctx, order, owner)
	s.metrics.RecordQuery(ctx, "checkout_commit", time.Since(start).Seconds())

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return err
	}

	telemetry.SetSpanSuccess(span)
	return nil
}
