package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTestLogger(buf *bytes.Buffer, level slog.Level) *slog.Logger {
	baseHandler := slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: level})
	return slog.New(&traceHandler{baseHandler: baseHandler})
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run("parses "+tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, expected %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFilterLogsByLevel(t *testing.T) {
	tests := []struct {
		name      string
		level     slog.Level
		logFunc   func(*slog.Logger, context.Context)
		shouldLog bool
	}{
		{
			name:  "debug level logs debug",
			level: slog.LevelDebug,
			logFunc: func(l *slog.Logger, ctx context.Context) {
				l.DebugContext(ctx, "debug message")
			},
			shouldLog: true,
		},
		{
			name:  "info level filters debug",
			level: slog.LevelInfo,
			logFunc: func(l *slog.Logger, ctx context.Context) {
				l.DebugContext(ctx, "debug message")
			},
			shouldLog: false,
		},
		{
			name:  "warn level filters info",
			level: slog.LevelWarn,
			logFunc: func(l *slog.Logger, ctx context.Context) {
				l.InfoContext(ctx, "info message")
			},
			shouldLog: false,
		},
		{
			name:  "error level logs error",
			level: slog.LevelError,
			logFunc: func(l *slog.Logger, ctx context.Context) {
				l.ErrorContext(ctx, "error message")
			},
			shouldLog: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := newTestLogger(&buf, tt.level)

			tt.logFunc(logger, context.Background())

			if tt.shouldLog && buf.Len() == 0 {
				t.Error("expected log output but got none")
			}
			if !tt.shouldLog && buf.Len() > 0 {
				t.Errorf("expected no log output but got: %s", buf.String())
			}
		})
	}
}

func TestTraceAndSpanIDInclusion(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf, slog.LevelInfo)

	exp := tracetest.NewInMemoryExporter()
	tp := trace.NewTracerProvider(trace.WithSyncer(exp))
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(nil)

	ctx := context.Background()
	tracer := otel.Tracer("test")
	ctx, span := tracer.Start(ctx, "test-span")
	defer span.End()

	logger.InfoContext(ctx, "checkout submitted", "order_number", "ORD-123")

	var logEntry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}

	traceID, ok := logEntry["trace_id"].(string)
	if !ok || traceID == "" {
		t.Error("expected trace_id to be present and non-empty")
	}

	spanID, ok := logEntry["span_id"].(string)
	if !ok || spanID == "" {
		t.Error("expected span_id to be present and non-empty")
	}

	if logEntry["msg"] != "checkout submitted" {
		t.Errorf("expected msg to be 'checkout submitted', got %v", logEntry["msg"])
	}

	if logEntry["order_number"] != "ORD-123" {
		t.Errorf("expected order_number to be 'ORD-123', got %v", logEntry["order_number"])
	}
}

func TestLogWithoutTraceIDs(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf, slog.LevelInfo)

	logger.InfoContext(context.Background(), "test message")

	var logEntry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}

	if _, exists := logEntry["trace_id"]; exists {
		t.Error("expected trace_id to not be present")
	}

	if _, exists := logEntry["span_id"]; exists {
		t.Error("expected span_id to not be present")
	}
}

func TestLogWithAttributesAndGroups(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf, slog.LevelInfo)

	exp := tracetest.NewInMemoryExporter()
	tp := trace.NewTracerProvider(trace.WithSyncer(exp))
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(nil)

	ctx := context.Background()
	tracer := otel.Tracer("test")
	ctx, span := tracer.Start(ctx, "test-span")
	defer span.End()

	logger.With("request_id", "req-123").WithGroup("http").InfoContext(ctx, "request", "method", "GET", "path", "/v1/orders")

	var logEntry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}

	if logEntry["request_id"] != "req-123" {
		t.Errorf("expected request_id at root level, got %v", logEntry["request_id"])
	}

	if _, ok := logEntry["trace_id"].(string); !ok {
		t.Error("expected trace_id to be present at root level")
	}

	httpGroup, ok := logEntry["http"].(map[string]interface{})
	if !ok {
		t.Fatal("expected http group to be present")
	}

	if httpGroup["method"] != "GET" {
		t.Errorf("expected method in http group, got %v", httpGroup["method"])
	}

	if httpGroup["path"] != "/v1/orders" {
		t.Errorf("expected path in http group, got %v", httpGroup["path"])
	}

	if _, exists := httpGroup["trace_id"]; exists {
		t.Error("trace_id should not be nested inside the http group")
	}
}

func TestLogLevelEnabled(t *testing.T) {
	tests := []struct {
		name            string
		handlerLevel    slog.Level
		checkLevel      slog.Level
		shouldBeEnabled bool
	}{
		{"debug handler enables debug", slog.LevelDebug, slog.LevelDebug, true},
		{"info handler disables debug", slog.LevelInfo, slog.LevelDebug, false},
		{"info handler enables warn", slog.LevelInfo, slog.LevelWarn, true},
		{"error handler disables warn", slog.LevelError, slog.LevelWarn, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{
				Level: tt.handlerLevel,
			})
			traceHandler := &traceHandler{baseHandler: handler}

			enabled := traceHandler.Enabled(context.Background(), tt.checkLevel)

			if enabled != tt.shouldBeEnabled {
				t.Errorf("expected Enabled() to be %v, got %v", tt.shouldBeEnabled, enabled)
			}
		})
	}
}
