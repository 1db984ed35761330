package kafka

import (
	"context"
	"log/slog"
)

// NoopEventBus logs events without sending them to Kafka. Useful for local dev before wiring Kafka.
type NoopEventBus struct{}

// NewNoopEventBus returns a new no-op event publisher.
func NewNoopEventBus() *NoopEventBus {
	return &NoopEventBus{}
}

func (n *NoopEventBus) PublishOrderPlaced(_ context.Context, orderNumber string) error {
	slog.Debug("event::order_placed", "order_number", orderNumber)
	return nil
}

func (n *NoopEventBus) PublishOrderStatusChanged(_ context.Context, orderNumber string, status string) error {
	slog.Debug("event::order_status_changed", "order_number", orderNumber, "status", status)
	return nil
}

func (n *NoopEventBus) PublishPaymentStatusChanged(_ context.Context, orderNumber string, status string) error {
	slog.Debug("event::payment_status_changed", "order_number", orderNumber, "status", status)
	return nil
}
