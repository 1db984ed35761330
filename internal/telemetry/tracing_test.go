package telemetry

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

func TestStartSpan(t *testing.T) {
	t.Run("creates span with correct name", func(t *testing.T) {
		exp, cleanup := setupTracerProvider(t)
		defer cleanup()

		ctx := context.Background()
		_, span := StartSpan(ctx, "CheckoutStore.Commit")
		span.End()

		spans := exp.GetSpans()
		if len(spans) != 1 {
			t.Fatalf("expected 1 span, got %d", len(spans))
		}

		if spans[0].Name != "CheckoutStore.Commit" {
			t.Errorf("expected span name 'CheckoutStore.Commit', got %s", spans[0].Name)
		}
	})

	t.Run("creates nested spans correctly", func(t *testing.T) {
		exp, cleanup := setupTracerProvider(t)
		defer cleanup()

		ctx := context.Background()
		ctx1, span1 := StartSpan(ctx, "parent-operation")
		_, span2 := StartSpan(ctx1, "child-operation")
		span2.End()
		span1.End()

		spans := exp.GetSpans()
		if len(spans) != 2 {
			t.Fatalf("expected 2 spans, got %d", len(spans))
		}

		childSpan := spans[0]
		parentSpan := spans[1]

		if childSpan.Parent.SpanID() != parentSpan.SpanContext.SpanID() {
			t.Error("expected child span to have parent span ID")
		}
	})
}

func TestAddSpanAttributes(t *testing.T) {
	t.Run("adds attributes to span", func(t *testing.T) {
		exp, cleanup := setupTracerProvider(t)
		defer cleanup()

		ctx := context.Background()
		_, span := StartSpan(ctx, "test-operation")

		AddSpanAttributes(span,
			attribute.String("order_number", "ORD-123"),
			attribute.Int("item_count", 2),
			attribute.Bool("success", true),
		)

		span.End()

		spans := exp.GetSpans()
		if len(spans) != 1 {
			t.Fatalf("expected 1 span, got %d", len(spans))
		}

		attrs := spans[0].Attributes
		expectedAttrs := map[string]interface{}{
			"order_number": "ORD-123",
			"item_count":   int64(2),
			"success":      true,
		}

		for key, expectedValue := range expectedAttrs {
			found := false
			for _, attr := range attrs {
				if string(attr.Key) == key {
					found = true
					if attr.Value.AsInterface() != expectedValue {
						t.Errorf("expected %s to be %v, got %v", key, expectedValue, attr.Value.AsInterface())
					}
					break
				}
			}
			if !found {
				t.Errorf("expected attribute %s not found", key)
			}
		}
	})

	t.Run("handles nil span gracefully", func(t *testing.T) {
		AddSpanAttributes(nil, attribute.String("key", "value"))
	})
}

func TestAddSpanEvent(t *testing.T) {
	t.Run("adds event to span", func(t *testing.T) {
		exp, cleanup := setupTracerProvider(t)
		defer cleanup()

		ctx := context.Background()
		_, span := StartSpan(ctx, "test-operation")

		AddSpanEvent(span, "stock.reserved",
			attribute.String("product_id", "p1"),
		)

		span.End()

		spans := exp.GetSpans()
		if len(spans) != 1 {
			t.Fatalf("expected 1 span, got %d", len(spans))
		}

		events := spans[0].Events
		if len(events) != 1 {
			t.Fatalf("expected 1 event, got %d", len(events))
		}

		if events[0].Name != "stock.reserved" {
			t.Errorf("expected event name 'stock.reserved', got %s", events[0].Name)
		}
	})

	t.Run("handles nil span gracefully", func(t *testing.T) {
		AddSpanEvent(nil, "test-event")
	})
}

func TestRecordSpanError(t *testing.T) {
	t.Run("records error and sets error status", func(t *testing.T) {
		exp, cleanup := setupTracerProvider(t)
		defer cleanup()

		ctx := context.Background()
		_, span := StartSpan(ctx, "test-operation")

		testErr := errors.New("insufficient stock")
		RecordSpanError(span, testErr)

		span.End()

		spans := exp.GetSpans()
		if len(spans) != 1 {
			t.Fatalf("expected 1 span, got %d", len(spans))
		}

		if spans[0].Status.Code != codes.Error {
			t.Errorf("expected status code Error, got %v", spans[0].Status.Code)
		}

		if spans[0].Status.Description != "insufficient stock" {
			t.Errorf("expected status description 'insufficient stock', got %s", spans[0].Status.Description)
		}

		if len(spans[0].Events) == 0 {
			t.Error("expected error event to be recorded")
		}
	})

	t.Run("handles nil span gracefully", func(t *testing.T) {
		RecordSpanError(nil, errors.New("test error"))
	})

	t.Run("handles nil error gracefully", func(t *testing.T) {
		exp, cleanup := setupTracerProvider(t)
		defer cleanup()

		ctx := context.Background()
		_, span := StartSpan(ctx, "test-operation")

		RecordSpanError(span, nil)
		span.End()

		spans := exp.GetSpans()
		if spans[0].Status.Code == codes.Error {
			t.Error("expected status not to be Error when nil error is recorded")
		}
	})
}

func TestSetSpanSuccess(t *testing.T) {
	t.Run("sets span status to OK", func(t *testing.T) {
		exp, cleanup := setupTracerProvider(t)
		defer cleanup()

		ctx := context.Background()
		_, span := StartSpan(ctx, "test-operation")

		SetSpanSuccess(span)
		span.End()

		spans := exp.GetSpans()
		if len(spans) != 1 {
			t.Fatalf("expected 1 span, got %d", len(spans))
		}

		if spans[0].Status.Code != codes.Ok {
			t.Errorf("expected status code Ok, got %v", spans[0].Status.Code)
		}
	})

	t.Run("handles nil span gracefully", func(t *testing.T) {
		SetSpanSuccess(nil)
	})
}

func TestTraceID(t *testing.T) {
	t.Run("extracts trace ID from context with span", func(t *testing.T) {
		_, cleanup := setupTracerProvider(t)
		defer cleanup()

		ctx := context.Background()
		ctx, span := StartSpan(ctx, "test-operation")
		defer span.End()

		traceID := TraceID(ctx)

		if len(traceID) != 32 {
			t.Errorf("expected trace ID length 32, got %d", len(traceID))
		}

		expectedTraceID := span.SpanContext().TraceID().String()
		if traceID != expectedTraceID {
			t.Errorf("expected trace ID %s, got %s", expectedTraceID, traceID)
		}
	})

	t.Run("returns empty string for context without span", func(t *testing.T) {
		if traceID := TraceID(context.Background()); traceID != "" {
			t.Errorf("expected empty trace ID, got %s", traceID)
		}
	})

	t.Run("extracts same trace ID from nested spans", func(t *testing.T) {
		_, cleanup := setupTracerProvider(t)
		defer cleanup()

		ctx := context.Background()
		ctx1, span1 := StartSpan(ctx, "parent")
		ctx2, span2 := StartSpan(ctx1, "child")

		if TraceID(ctx1) != TraceID(ctx2) {
			t.Errorf("expected same trace ID for nested spans, got %s and %s", TraceID(ctx1), TraceID(ctx2))
		}

		span2.End()
		span1.End()
	})
}

func TestSpanID(t *testing.T) {
	t.Run("extracts span ID from context with span", func(t *testing.T) {
		_, cleanup := setupTracerProvider(t)
		defer cleanup()

		ctx := context.Background()
		ctx, span := StartSpan(ctx, "test-operation")
		defer span.End()

		spanID := SpanID(ctx)

		if len(spanID) != 16 {
			t.Errorf("expected span ID length 16, got %d", len(spanID))
		}

		expectedSpanID := span.SpanContext().SpanID().String()
		if spanID != expectedSpanID {
			t.Errorf("expected span ID %s, got %s", expectedSpanID, spanID)
		}
	})

	t.Run("returns empty string for context without span", func(t *testing.T) {
		if spanID := SpanID(context.Background()); spanID != "" {
			t.Errorf("expected empty span ID, got %s", spanID)
		}
	})

	t.Run("extracts different span IDs from nested spans", func(t *testing.T) {
		_, cleanup := setupTracerProvider(t)
		defer cleanup()

		ctx := context.Background()
		ctx1, span1 := StartSpan(ctx, "parent")
		ctx2, span2 := StartSpan(ctx1, "child")

		if SpanID(ctx1) == SpanID(ctx2) {
			t.Error("expected different span IDs for nested spans")
		}

		span2.End()
		span1.End()
	})
}
