package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// Event is the envelope written to the order events topic. Key is the order
// number so all events for one order land on the same partition, in order.
type Event struct {
	Type        string    `json:"type"`
	OrderNumber string    `json:"order_number"`
	Status      string    `json:"status,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// EventBus publishes order lifecycle events to a Kafka topic.
type EventBus struct {
	writer *kafka.Writer
}

// NewEventBus creates a Kafka-backed event publisher.
func NewEventBus(brokers []string, topic string) *EventBus {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 10 * time.Millisecond,
	}
	return &EventBus{writer: writer}
}

// Close flushes pending messages and releases the underlying connections.
func (b *EventBus) Close() error {
	return b.writer.Close()
}

func (b *EventBus) PublishOrderPlaced(ctx context.Context, orderNumber string) error {
	return b.publish(ctx, Event{
		Type:        "order_placed",
		OrderNumber: orderNumber,
		OccurredAt:  time.Now().UTC(),
	})
}

func (b *EventBus) PublishOrderStatusChanged(ctx context.Context, orderNumber string, status string) error {
	return b.publish(ctx, Event{
		Type:        "order_status_changed",
		OrderNumber: orderNumber,
		Status:      status,
		OccurredAt:  time.Now().UTC(),
	})
}

func (b *EventBus) PublishPaymentStatusChanged(ctx context.Context, orderNumber string, status string) error {
	return b.publish(ctx, Event{
		Type:        "payment_status_changed",
		OrderNumber: orderNumber,
		Status:      status,
		OccurredAt:  time.Now().UTC(),
	})
}

func (b *EventBus) publish(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", event.Type, err)
	}

	err = b.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.OrderNumber),
		Value: body,
	})
	if err != nil {
		return fmt.Errorf("publish %s event: %w", event.Type, err)
	}

	return nil
}
