package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	syncapp "github.com/erplink/bridge/internal/application/sync"
	"github.com/erplink/bridge/internal/domain/erp"
	syncdomain "github.com/erplink/bridge/internal/domain/sync"
	"github.com/erplink/bridge/internal/infrastructure/archive"
	"github.com/erplink/bridge/internal/infrastructure/auth"
	"github.com/erplink/bridge/internal/infrastructure/cache"
	"github.com/erplink/bridge/internal/infrastructure/config"
	"github.com/erplink/bridge/internal/infrastructure/erpclient"
	"github.com/erplink/bridge/internal/infrastructure/logger"
	"github.com/erplink/bridge/internal/infrastructure/persistence"
	"github.com/erplink/bridge/internal/infrastructure/scheduler"
	"github.com/erplink/bridge/internal/infrastructure/telemetry"
	"github.com/erplink/bridge/internal/interfaces/http/handler"
	"github.com/erplink/bridge/internal/interfaces/http/middleware"
	"github.com/erplink/bridge/internal/interfaces/http/router"
)

// shutdownTimeout bounds the whole graceful shutdown: draining HTTP,
// stopping the scheduler and flushing telemetry all share it.
const shutdownTimeout = 30 * time.Second

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

	log.Info("Starting bridge",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// A termination signal during boot cancels in-flight initialization the
	// same way it interrupts the serving loop later.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize telemetry. An unreachable collector downgrades to no-op
	// providers; the bridge must keep relaying webhooks without observability.
	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Warn("Tracer provider init failed, continuing without traces", zap.Error(err))
		tracerProvider, _ = telemetry.NewTracerProvider(ctx, disabledTelemetry(cfg.Telemetry), log)
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Warn("Meter provider init failed, continuing without metrics export", zap.Error(err))
		meterProvider, _ = telemetry.NewMeterProvider(ctx, disabledTelemetry(cfg.Telemetry), log)
	}
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Warn("Logger provider init failed, continuing without log export", zap.Error(err))
		loggerProvider, _ = telemetry.NewLoggerProvider(ctx, disabledTelemetry(cfg.Telemetry), log)
	}

	// Tee zap output into the OTLP log exporter when enabled
	if loggerProvider.IsEnabled() {
		otelLevel, parseErr := zapcore.ParseLevel(cfg.Log.Level)
		if parseErr != nil {
			otelLevel = zapcore.InfoLevel
		}
		otelCore := telemetry.NewZapOTELCore(telemetry.ZapBridgeConfig{
			ServiceName:    cfg.Telemetry.ServiceName,
			LoggerProvider: loggerProvider,
			Level:          otelLevel,
		})
		log = telemetry.NewBridgedLogger(log.Core(), otelCore,
			zap.AddCaller(),
			zap.AddStacktrace(zapcore.ErrorLevel),
		)
	}

	// Start the continuous profiler and hook it into the tracer so CPU
	// profiles can be filtered by span
	profiler, err := telemetry.NewProfiler(cfg.Telemetry, log)
	if err != nil {
		log.Warn("Profiler init failed, continuing without profiling", zap.Error(err))
		profiler = nil
	}
	if profiler != nil && profiler.IsEnabled() {
		if err := tracerProvider.EnableSpanProfiles(); err != nil {
			log.Warn("Failed to enable span profiles", zap.Error(err))
		}
	}

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Register query tracing on the connection
	dbTracing := telemetry.NewDBTracingPlugin(cfg.Telemetry, log)
	if err := dbTracing.Register(db.DB); err != nil {
		log.Warn("Failed to register database tracing", zap.Error(err))
	}

	syncRecordRepo := persistence.NewGormSyncRecordRepository(db.DB)

	// Idempotency store: Redis when configured, in-memory otherwise
	storeFactory := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log))
	dedupStore, err := storeFactory.CreateStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}

	// Payload archive, disabled deployments keep the no-op archiver
	var archiver archive.PayloadArchiver = archive.NewNopArchiver()
	if cfg.Archive.Enabled {
		s3Archive, err := archive.NewS3PayloadArchive(&cfg.Archive, archive.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to create payload archive", zap.Error(err))
		}
		ensureCtx, ensureCancel := context.WithTimeout(ctx, 15*time.Second)
		if err := s3Archive.EnsureBucket(ensureCtx); err != nil {
			log.Warn("Could not ensure archive bucket, first writes may fail", zap.Error(err))
		}
		ensureCancel()
		archiver = s3Archive
		log.Info("Payload archive enabled", zap.String("bucket", s3Archive.Bucket()))
	}

	// Bridge metrics ride on the meter provider; without them the sync
	// services simply skip recording
	bridgeMetrics, err := telemetry.NewBridgeMetrics(telemetry.BridgeMetricsConfig{
		Meter:  meterProvider.Meter("erplink-bridge"),
		Logger: log,
	})
	if err != nil {
		log.Warn("Failed to create bridge metrics", zap.Error(err))
		bridgeMetrics = nil
	}

	// ERP gateway with its credential cache
	erpConfig := &erpclient.Config{
		BaseURL:       cfg.ERP.BaseURL,
		TokenPath:     cfg.ERP.TokenPath,
		DataPath:      cfg.ERP.DataPath,
		Username:      cfg.ERP.Username,
		Password:      cfg.ERP.Password,
		StoreCode:     cfg.ERP.StoreCode,
		SourceChannel: cfg.ERP.SourceChannel,
		TokenLifetime: cfg.ERP.TokenLifetime,
		RefreshBuffer: cfg.ERP.RefreshBuffer,
		Timeout:       cfg.ERP.Timeout,
	}
	erpOpts := []erpclient.Option{erpclient.WithLogger(log)}
	if bridgeMetrics != nil {
		erpOpts = append(erpOpts, erpclient.WithRefreshObserver(func(success bool) {
			bridgeMetrics.RecordCredentialRefresh(context.Background(), success)
		}))
	}
	erpClient, err := erpclient.NewClient(erpConfig, erpOpts...)
	if err != nil {
		log.Fatal("Failed to create ERP client", zap.Error(err))
	}

	// Initialize sync services
	recordDefaults := erp.RecordDefaults{
		StoreCode:     cfg.ERP.StoreCode,
		SourceChannel: cfg.ERP.SourceChannel,
	}
	deps := syncapp.Deps{
		Gateway: erpClient,
		Records: syncRecordRepo,
		Metrics: bridgeMetrics,
		Logger:  log,
	}
	customerSync := syncapp.NewCustomerSyncService(deps)
	orderSync := syncapp.NewOrderSyncService(deps, customerSync, recordDefaults, cfg.Sync.FetchOrderDetail)
	refundSync := syncapp.NewRefundSyncService(deps, recordDefaults)
	inventoryService := syncapp.NewInventoryService(deps)
	probeService := syncapp.NewProbeService(erpClient, log)

	jwtService := auth.NewJWTService(cfg.Auth)

	// Start the periodic inventory pull
	inventoryScheduler := scheduler.NewInventoryScheduler(cfg.Sync, inventoryService, log)
	if err := inventoryScheduler.Start(ctx); err != nil {
		log.Fatal("Failed to start inventory scheduler", zap.Error(err))
	}

	// Initialize HTTP handlers
	webhookHandler := handler.NewWebhookHandler(handler.WebhookHandlerConfig{
		Orders:    orderSync,
		Customers: customerSync,
		Refunds:   refundSync,
		Dedup:     dedupStore,
		DedupConfig: syncdomain.IdempotencyConfig{
			Enabled: cfg.Webhook.IdempotencyEnabled,
			TTL:     cfg.Webhook.IdempotencyTTL,
		},
		Secret:   cfg.Webhook.Secret,
		Archiver: archiver,
		Metrics:  bridgeMetrics,
		Logger:   log,
	})
	authHandler := handler.NewAuthHandler(jwtService, log)
	systemHandler := handler.NewSystemHandler(
		handler.DependencyCheck{Name: "database", Check: func(ctx context.Context) error {
			return db.Ping()
		}},
		handler.DependencyCheck{Name: "idempotency_store", Check: func(ctx context.Context) error {
			_, err := dedupStore.IsProcessed(ctx, "health-probe")
			return err
		}},
		handler.DependencyCheck{Name: "erp", Check: func(ctx context.Context) error {
			if ok, detail := erpClient.Probe(ctx); !ok {
				return errors.New(detail)
			}
			return nil
		}},
	)
	probeHandler := handler.NewERPProbeHandler(probeService)
	inventoryHandler := handler.NewInventoryHandler(inventoryService)
	recordsHandler := handler.NewSyncRecordHandler(syncRecordRepo)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. Recovery - Catch panics
	// 2. RequestID - Generate/propagate request ID
	// 3. CORS - Handle cross-origin requests
	// 4. Security - Add security headers
	// 5. Tracing - Open one span per request, enrich it with the request ID
	// 6. Logger - Log requests with trace context
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.RequestID())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.Secure())
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.TraceAttributes())
	engine.Use(logger.GinMiddleware(log))

	// Three surfaces: public ops API, JWT-protected ops API, and the HMAC
	// authenticated webhook intake. The body limit guards only the webhook
	// surface; operator requests are never that large.
	r := router.NewRouter(engine,
		router.WithAPIVersion("v1"),
		router.WithAuthMiddleware(middleware.JWTAuth(jwtService, log)),
		router.WithWebhookMiddleware(middleware.BodyLimit(cfg.Webhook.MaxBodyBytes)),
	)
	r.Register(systemHandler).Register(authHandler)
	r.RegisterProtected(probeHandler).
		RegisterProtected(inventoryHandler).
		RegisterProtected(recordsHandler)
	r.RegisterWebhooks(webhookHandler)
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM. A second signal after stop()
	// kills the process immediately.
	<-ctx.Done()
	stop()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := inventoryScheduler.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping inventory scheduler", zap.Error(err))
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := dedupStore.Close(); err != nil {
		log.Error("Error closing idempotency store", zap.Error(err))
	}

	// Flush telemetry last so the shutdown itself is still observable
	if err := loggerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down logger provider", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}
	if profiler != nil {
		if err := profiler.Stop(); err != nil {
			log.Error("Error stopping profiler", zap.Error(err))
		}
	}

	log.Info("Server exited gracefully")
}

// disabledTelemetry returns a copy of the telemetry configuration with every
// export switched off, used to build no-op providers after an init failure.
func disabledTelemetry(cfg config.TelemetryConfig) config.TelemetryConfig {
	cfg.Enabled = false
	cfg.LogsEnabled = false
	cfg.ProfilingEnabled = false
	return cfg
}
