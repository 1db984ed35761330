package adapters

import (
	"context"
	"time"

	"github.com/dejobratic/storefront/internal/kafka"
	"github.com/dejobratic/storefront/internal/orders/ports"
	"github.com/dejobratic/storefront/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

type ObservableEventBus struct {
	bus     ports.EventBus
	metrics *kafka.Metrics
}

func NewObservableEventBus(bus ports.EventBus, metrics *kafka.Metrics) *ObservableEventBus {
	return &ObservableEventBus{
		bus:     bus,
		metrics: metrics,
	}
}

func (e *ObservableEventBus) PublishOrderPlaced(ctx context.Context, orderNumber string) error {
	ctx, span := telemetry.StartSpan(ctx, "EventBus.PublishOrderPlaced")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", orderNumber),
		attribute.String("event.type", "order_placed"),
	)

	start := time.Now()
	err := e.bus.PublishOrderPlaced(ctx, orderNumber)
	duration := time.Since(start).Seconds()

	e.metrics.RecordPublish(ctx, "order_placed", duration, err == nil)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return err
	}

	telemetry.SetSpanSuccess(span)
	return nil
}

func (e *ObservableEventBus) PublishOrderStatusChanged(ctx context.Context, orderNumber string, status string) error {
	ctx, span := telemetry.StartSpan(ctx, "EventBus.PublishOrderStatusChanged")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", orderNumber),
		attribute.String("event.type", "order_status_changed"),
		attribute.String("order.status", status),
	)

	start := time.Now()
	err := e.bus.PublishOrderStatusChanged(ctx, orderNumber, status)
	duration := time.Since(start).Seconds()

	e.metrics.RecordPublish(ctx, "order_status_changed", duration, err == nil)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return err
	}

	telemetry.SetSpanSuccess(span)
	return nil
}

func (e *ObservableEventBus) PublishPaymentStatusChanged(ctx context.Context, orderNumber string, status string) error {
	ctx, span := telemetry.StartSpan(ctx, "EventBus.PublishPaymentStatusChanged")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", orderNumber),
		attribute.String("event.type", "payment_status_changed"),
		attribute.String("payment.status", status),
	)

	start := time.Now()
	err := e.bus.PublishPaymentStatusChanged(ctx, orderNumber, status)
	duration := time.Since(start).Seconds()

	e.metrics.RecordPublish(ctx, "payment_status_changed", duration, err == nil)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return err
	}

	telemetry.SetSpanSuccess(span)
	return nil
}
