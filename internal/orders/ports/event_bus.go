package ports

import "context"

// EventBus defines the contract for publishing order lifecycle events.
type EventBus interface {
	PublishOrderPlaced(ctx context.Context, orderNumber string) error
	PublishOrderStatusChanged(ctx context.Context, orderNumber string, status string) error
	PublishPaymentStatusChanged(ctx context.Context, orderNumber string, status string) error
}
