package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	catalogapp "github.com/opsconsole/backend/internal/application/catalog"
	"github.com/opsconsole/backend/internal/application/console"
	"github.com/opsconsole/backend/internal/application/consolidation"
	"github.com/opsconsole/backend/internal/application/report"
	tradeapp "github.com/opsconsole/backend/internal/application/trade"
	"github.com/opsconsole/backend/internal/domain/selection"
	"github.com/opsconsole/backend/internal/infrastructure/cache"
	"github.com/opsconsole/backend/internal/infrastructure/config"
	"github.com/opsconsole/backend/internal/infrastructure/ledger"
	"github.com/opsconsole/backend/internal/infrastructure/logger"
	"github.com/opsconsole/backend/internal/infrastructure/persistence"
	"github.com/opsconsole/backend/internal/infrastructure/scheduler"
	"github.com/opsconsole/backend/internal/infrastructure/telemetry"
	"github.com/opsconsole/backend/internal/interfaces/http/handler"
	"github.com/opsconsole/backend/internal/interfaces/http/middleware"
	"github.com/opsconsole/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	ctx := context.Background()
	telemetryCfg := telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}

	// Telemetry providers; each is a no-op when telemetry is disabled
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetryCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetryCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telemetryCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	log = loggerProvider.Bridge(log, zapcore.InfoLevel)

	log.Info("Starting operator console",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	// Run history database
	db, err := persistence.NewDatabase(&cfg.Database,
		persistence.WithLogger(log),
		persistence.WithTracing(telemetry.DBTracingConfig{
			Enabled:    cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
			LogFullSQL: cfg.Telemetry.DBLogFullSQL,
			DBName:     cfg.Database.DBName,
		}),
	)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if cfg.App.Env != "production" {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate database", zap.Error(err))
		}
	}
	log.Info("Database connected successfully")
	runRepo := persistence.NewGormRunRepository(db.DB)

	// Selection snapshots
	selectionStore, err := cache.NewSelectionStoreFactory(cfg.Selection, cfg.Redis, cache.WithLogger(log)).CreateStore()
	if err != nil {
		log.Fatal("Failed to create selection store", zap.Error(err))
	}
	defer func() {
		if err := selectionStore.Close(); err != nil {
			log.Error("Error closing selection store", zap.Error(err))
		}
	}()

	// Ledger backend
	ledgerClient, err := ledger.NewClient(ledger.Config{
		BaseURL: cfg.Ledger.BaseURL,
		APIKey:  cfg.Ledger.APIKey,
		Timeout: cfg.Ledger.Timeout,
	}, ledger.WithLogger(log))
	if err != nil {
		log.Fatal("Failed to create ledger client", zap.Error(err))
	}

	consolidationMetrics, err := telemetry.NewConsolidationMetrics(meterProvider.Meter("console.consolidation"))
	if err != nil {
		log.Fatal("Failed to create consolidation metrics", zap.Error(err))
	}

	// Application services
	reporter := report.NewReporter()
	deps := &consolidation.Dependencies{
		Checkouts: ledgerClient,
		Members:   ledgerClient,
		Records:   ledgerClient,
		Runs:      runRepo,
		Reporter:  reporter,
		Metrics:   consolidationMetrics,
		Logger:    log,
	}
	registry := console.NewRegistry(ledgerClient, selectionStore, deps, log)
	productService := catalogapp.NewProductService(ledgerClient, ledgerClient, reporter, log)
	orderItemService := tradeapp.NewOrderItemService(ledgerClient, reporter, log)

	handlers := router.Handlers{
		System: handler.NewSystemHandler(cfg.App.Name, version, map[string]handler.Pinger{
			"database":  handler.PingFunc(func(context.Context) error { return db.Ping() }),
			"selection": selectionStore,
		}),
		Products:         handler.NewProductHandler(registry, productService),
		ProductSelection: handler.NewSelectionHandler(registry, selection.KindProducts),
		Orders:           handler.NewOrderHandler(registry, orderItemService),
		OrderSelection:   handler.NewSelectionHandler(registry, selection.KindOrderItems),
		Consolidation:    handler.NewConsolidationHandler(registry, runRepo),
	}

	housekeeping := scheduler.NewScheduler(scheduler.DefaultSchedulerConfig(), log)
	idleTTL := cfg.Session.IdleTTL
	if err := housekeeping.Register(scheduler.Task{
		Name:     "session-eviction",
		Interval: cfg.Session.SweepInterval,
		Run:      scheduler.TaskFunc(func() { registry.EvictIdle(idleTTL) }),
	}); err != nil {
		log.Fatal("Failed to register session eviction", zap.Error(err))
	}

	var rateLimiter *middleware.RateLimiter
	if cfg.HTTP.RateLimit > 0 {
		rateLimiter = middleware.NewRateLimiter(cfg.HTTP.RateLimit, cfg.HTTP.RateLimitBurst, 10*time.Minute)
		if err := housekeeping.Register(scheduler.Task{
			Name:     "rate-limit-sweep",
			Interval: time.Minute,
			Run:      scheduler.TaskFunc(func() { rateLimiter.Sweep() }),
		}); err != nil {
			log.Fatal("Failed to register rate limit sweep", zap.Error(err))
		}
		log.Info("Rate limiting enabled",
			zap.Float64("per_second", cfg.HTTP.RateLimit),
			zap.Int("burst", cfg.HTTP.RateLimitBurst),
		)
	}

	engine := router.NewEngine(router.EngineConfig{
		Logger: log,
		HTTP:   cfg.HTTP,
		Tracing: middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     tracerProvider.IsEnabled(),
		},
		Metrics: middleware.HTTPMetricsConfig{
			MeterProvider: meterProvider,
			Enabled:       meterProvider.IsEnabled(),
			Logger:        log,
		},
		RateLimiter: rateLimiter,
	}, handlers)

	if err := housekeeping.Start(ctx); err != nil {
		log.Fatal("Failed to start housekeeping scheduler", zap.Error(err))
	}

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := housekeeping.Stop(shutdownCtx); err != nil {
		log.Warn("Housekeeping scheduler stop failed", zap.Error(err))
	}

	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Meter provider shutdown failed", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Tracer provider shutdown failed", zap.Error(err))
	}
	if err := loggerProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Logger provider shutdown failed", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
