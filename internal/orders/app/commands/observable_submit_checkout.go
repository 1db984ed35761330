package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dejobratic/storefront/internal/orders/domain"
	"github.com/dejobratic/storefront/internal/orders/metrics"
	"github.com/dejobratic/storefront/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

type ObservableCommandHandler struct {
	handler CommandHandler
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewObservableCommandHandler(handler CommandHandler, logger *slog.Logger, metrics *metrics.Metrics) *ObservableCommandHandler {
	return &ObservableCommandHandler{
		handler: handler,
		logger:  logger,
		metrics: metrics,
	}
}

func (o *ObservableCommandHandler) Handle(ctx context.Context, cmd SubmitCheckoutCommand) (*domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "SubmitCheckoutCommand.Handle")
	defer span.End()

	start := time.Now()
	var success bool
	var failureReason string
	defer func() {
		duration := time.Since(start).Seconds()
		o.metrics.RecordCheckoutDuration(ctx, duration)
		o.metrics.RecordCheckout(ctx, success, failureReason)
	}()

	o.logger.InfoContext(ctx, "submitting checkout",
		"owner", cmd.Owner.Key(),
		"user_id", cmd.UserID,
	)

	order, err := o.handler.Handle(ctx, cmd)

	if err != nil {
		failureReason = classifyCheckoutFailure(err)
		telemetry.RecordSpanError(span, err)
		o.logger.ErrorContext(ctx, "checkout failed",
			"error", err,
			"reason", failureReason,
			"owner", cmd.Owner.Key(),
		)
		return nil, err
	}

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", order.ID),
		attribute.String("order.user_id", order.UserID),
		attribute.String("order.total_amount", order.TotalAmount.String()),
		attribute.Int("order.item_count", len(order.Items)),
	)

	o.logger.InfoContext(ctx, "checkout committed",
		"order_id", order.ID,
		"user_id", order.UserID,
		"total_amount", order.TotalAmount.String(),
	)

	success = true
	telemetry.SetSpanSuccess(span)

	return order, nil
}

func classifyCheckoutFailure(err error) string {
	var validationErr *domain.ValidationError
	var stockErr *domain.InsufficientStockError
	var unavailableErr *domain.ProductUnavailableError
	var commitErr *domain.CommitError

	switch {
	case errors.Is(err, domain.ErrEmptyCart):
		return "empty_cart"
	case errors.As(err, &validationErr):
		return "validation"
	case errors.As(err, &stockErr):
		return "insufficient_stock"
	case errors.As(err, &unavailableErr):
		return "product_unavailable"
	case errors.As(err, &commitErr):
		return "commit"
	default:
		return "unknown"
	}
}
