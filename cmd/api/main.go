package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	accountshttp "github.com/dejobratic/storefront/internal/accounts/adapters/http"
	accountspostgres "github.com/dejobratic/storefront/internal/accounts/adapters/postgres"
	accountsapp "github.com/dejobratic/storefront/internal/accounts/app"
	carthttp "github.com/dejobratic/storefront/internal/cart/adapters/http"
	cartpostgres "github.com/dejobratic/storefront/internal/cart/adapters/postgres"
	cataloghttp "github.com/dejobratic/storefront/internal/catalog/adapters/http"
	catalogpostgres "github.com/dejobratic/storefront/internal/catalog/adapters/postgres"
	"github.com/dejobratic/storefront/internal/config"
	"github.com/dejobratic/storefront/internal/database"
	idempostgres "github.com/dejobratic/storefront/internal/idempotency/postgres"
	idemredis "github.com/dejobratic/storefront/internal/idempotency/redis"
	"github.com/dejobratic/storefront/internal/kafka"
	ordersadapters "github.com/dejobratic/storefront/internal/orders/adapters"
	ordershttp "github.com/dejobratic/storefront/internal/orders/adapters/http"
	orderspostgres "github.com/dejobratic/storefront/internal/orders/adapters/postgres"
	ordersapp "github.com/dejobratic/storefront/internal/orders/app"
	ordersmetrics "github.com/dejobratic/storefront/internal/orders/metrics"
	"github.com/dejobratic/storefront/internal/orders/ports"
	"github.com/dejobratic/storefront/internal/telemetry"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
)

const meterName = "github.com/dejobratic/storefront"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := telemetry.NewLogger(telemetry.ParseLevel(cfg.Telemetry.LogLevel))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tel, err := telemetry.Initialize(ctx, telemetry.Config{
		ServiceName:    cfg.Service.Name,
		ServiceVersion: cfg.Service.Version,
		Environment:    cfg.Service.Environment,
		OTLPEndpoint:   cfg.Telemetry.OTelEndpoint,
		EnableTracing:  cfg.Telemetry.EnableTracing,
		EnableMetrics:  cfg.Telemetry.EnableMetrics,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		logger.Error("failed to initialize telemetry", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown failed", "error", err)
		}
	}()

	pool, err := database.NewPool(ctx, cfg.Database.URL)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if cfg.Database.AutoMigrate {
		logger.Info("running database migrations", "path", cfg.Database.MigrationsPath)
		if err := database.RunMigrations(cfg.Database.URL, cfg.Database.MigrationsPath); err != nil {
			logger.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		logger.Info("migrations completed successfully")
	}

	meter := otel.Meter(meterName)

	dbMetrics, err := database.NewMetrics(meter)
	if err != nil {
		logger.Error("failed to create database metrics", "error", err)
		os.Exit(1)
	}
	httpMetrics, err := ordershttp.NewMetrics(meter)
	if err != nil {
		logger.Error("failed to create http metrics", "error", err)
		os.Exit(1)
	}
	kafkaMetrics, err := kafka.NewMetrics(meter)
	if err != nil {
		logger.Error("failed to create kafka metrics", "error", err)
		os.Exit(1)
	}
	checkoutMetrics, err := ordersmetrics.NewMetrics(meter)
	if err != nil {
		logger.Error("failed to create checkout metrics", "error", err)
		os.Exit(1)
	}

	catalogRepo := catalogpostgres.NewRepository(pool)
	cartRepo := cartpostgres.NewRepository(pool)
	ordersRepoRaw := orderspostgres.NewRepository(pool)
	ordersRepo := ordersadapters.NewObservableRepository(ordersRepoRaw, dbMetrics)
	checkoutStore := ordersadapters.NewObservableCheckoutStore(ordersRepoRaw, dbMetrics)
	usersRepo := accountspostgres.NewUserRepository(pool)
	sessionsRepo := accountspostgres.NewSessionRepository(pool)

	var eventBus ports.EventBus
	if len(cfg.Kafka.Brokers) > 0 {
		producer := kafka.NewEventBus(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer func() {
			if err := producer.Close(); err != nil {
				logger.Error("kafka producer close failed", "error", err)
			}
		}()
		eventBus = ordersadapters.NewObservableEventBus(producer, kafkaMetrics)
		logger.Info("kafka event bus enabled", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	} else {
		eventBus = kafka.NewNoopEventBus()
		logger.Info("kafka brokers not configured, events are logged only")
	}

	var idemStore ports.IdempotencyStore
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		defer func() { _ = client.Close() }()
		idemStore = idemredis.NewStore(client)
		logger.Info("redis idempotency store enabled", "addr", cfg.Redis.Addr)
	} else {
		idemStore = idempostgres.NewStore(pool)
	}

	accountsService := accountsapp.NewService(usersRepo, sessionsRepo, ordersRepo, cartRepo)

	ordersService := ordersapp.NewService(ordersapp.Deps{
		Orders:       ordersRepo,
		Checkout:     checkoutStore,
		Carts:        cartRepo,
		Catalog:      catalogRepo,
		Events:       eventBus,
		Idempotency:  idemStore,
		Logger:       logger,
		Metrics:      checkoutMetrics,
		TaxRate:      cfg.Checkout.TaxRate,
		ShippingCost: cfg.Checkout.ShippingCost,
	})

	catalogHandler := cataloghttp.NewHandler(catalogRepo)
	cartHandler := carthttp.NewHandler(cartRepo, catalogRepo, accountshttp.CurrentUser)
	ordersHandler := ordershttp.NewHandler(ordersService, accountshttp.CurrentUser)
	accountsHandler := accountshttp.NewHandler(accountsService)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := database.CheckHealth(r.Context(), pool); err != nil {
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready", "error": err.Error()})
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})
	mux.HandleFunc(cfg.HTTP.MetricsPath, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("# metrics are exported over OTLP\n"))
	})

	catalogHandler.Register(mux)
	cartHandler.Register(mux)
	ordersHandler.Register(mux)
	accountsHandler.Register(mux)

	handler := withRecovery(withLogging(
		ordershttp.WithMetrics(
			accountshttp.WithAuth(mux, accountsService),
			httpMetrics,
		),
	))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "port", cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownGrace)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	} else {
		logger.Info("http server stopped")
	}
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		slog.Info("http request", "method", r.Method, "path", r.URL.Path, "status", rw.status, "duration", time.Since(start))
	})
}

func withRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("panic recovered", "error", rec)
				respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (w *responseWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
