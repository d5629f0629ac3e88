package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/salon-crm/backend/internal/application/identity"
	"github.com/salon-crm/backend/internal/infrastructure/auth"
	"github.com/salon-crm/backend/internal/infrastructure/cache"
	"github.com/salon-crm/backend/internal/infrastructure/config"
	"github.com/salon-crm/backend/internal/infrastructure/logger"
	"github.com/salon-crm/backend/internal/infrastructure/persistence"
	"github.com/salon-crm/backend/internal/infrastructure/persistence/guard"
	"github.com/salon-crm/backend/internal/infrastructure/persistence/store"
	"github.com/salon-crm/backend/internal/infrastructure/scheduler"
	"github.com/salon-crm/backend/internal/infrastructure/telemetry"
	"github.com/salon-crm/backend/internal/interfaces/http/handler"
	"github.com/salon-crm/backend/internal/interfaces/http/middleware"
	"github.com/salon-crm/backend/internal/interfaces/http/router"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	_ "time/tzdata"
)

const version = "1.0.0"

func main() {
	startedAt := time.Now()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}
	production := cfg.App.IsProduction()

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Output:  cfg.Log.Output,
		Service: cfg.App.Name,
		Env:     cfg.App.Env,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()
	for _, w := range cfg.Warnings {
		log.Warn("Configuration warning", zap.String("warning", w))
	}

	log.Info("Starting salon CRM backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("db_driver", cfg.Database.Driver),
	)

	ctx := context.Background()

	// Telemetry
	telemetryCfg := telemetry.ConfigFrom(cfg.Telemetry)
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetryCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfigFrom(telemetryCfg), log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	meter := meterProvider.Meter(telemetry.TracerName)
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telemetryCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	log = loggerProvider.Bridge(log, logger.ParseLevel(cfg.Log.Level))
	profiler, err := telemetry.NewProfiler(telemetryCfg, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if telemetryCfg.SpanProfiles && profiler.IsEnabled() {
		tracerProvider.EnableSpanProfiles()
	}

	// Stores
	gormLog := logger.NewGormLogger(log, logger.ParseGormLevel(cfg.Database.LogLevel), cfg.Database.SlowThreshold)
	opener, err := persistence.NewOpener(cfg.Database, persistence.GormConfig(gormLog))
	if err != nil {
		log.Fatal("Invalid database configuration", zap.Error(err))
	}
	storeOpts := []store.Option{
		store.WithOpenHook(guard.OpenHook),
		store.WithOpenTimeout(cfg.Database.OpenTimeout),
		store.WithOpenHook(telemetry.StoreTracingHook(telemetryCfg, otel.GetTracerProvider())),
	}
	var storeMetrics *telemetry.StoreMetrics
	if meterProvider.IsEnabled() {
		storeMetrics, err = telemetry.NewStoreMetrics(meter, store.MainStoreName(cfg.Database.StorePrefix))
		if err != nil {
			log.Fatal("Failed to register store metrics", zap.Error(err))
		}
		storeOpts = append(storeOpts, store.WithObserver(storeMetrics))
	}
	registry := store.NewRegistry(cfg.Database.StorePrefix, opener, storeOpts...)
	var binds persistence.BindObserver
	if storeMetrics != nil {
		binds = storeMetrics
	}
	manager := persistence.NewStoreManager(registry, persistence.NewModelFactory(binds))

	// Open the main store eagerly.
	if _, err := manager.MainRepositories(ctx); err != nil {
		log.Fatal("Failed to open main store", zap.Error(err))
	}
	log.Info("Main store ready", zap.String("store", registry.MainStoreName()))

	// Token revocation and business status cache
	blacklist, err := auth.NewTokenBlacklist(ctx, cfg.Redis)
	if err != nil {
		log.Fatal("Failed to initialize token blacklist", zap.Error(err))
	}
	if !cfg.Redis.Enabled {
		log.Warn("Redis disabled, token revocation is process-local")
	}
	statusCache, err := cache.NewBusinessStatusCache(cfg.Tenant.StatusCacheSize, cfg.Tenant.StatusCacheTTL)
	if err != nil {
		log.Fatal("Failed to initialize business status cache", zap.Error(err))
	}

	// Application services
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identity.NewAuthService(manager, jwtService, blacklist, identity.AuthServiceConfig{
		ResetTokenTTL:    cfg.Auth.ResetTokenTTL,
		ExposeResetToken: !production,
	}, log.Named("auth"))
	provisioning := identity.NewProvisioningService(manager, statusCache, log.Named("provisioning"))

	created, err := provisioning.EnsureAdmin(ctx, identity.AdminBootstrap{
		Name:     cfg.Admin.BootstrapName,
		Email:    cfg.Admin.BootstrapEmail,
		Password: cfg.Admin.BootstrapPassword,
	})
	if err != nil {
		log.Fatal("Failed to bootstrap platform admin", zap.Error(err))
	}
	if created {
		log.Info("Platform admin bootstrapped", zap.String("email", cfg.Admin.BootstrapEmail))
	}

	// Maintenance jobs
	maintenance := scheduler.NewScheduler(log.Named("scheduler"))
	if cfg.Auth.PruneInterval > 0 {
		if err := maintenance.Register(scheduler.Job{
			Name:       "prune-reset-tokens",
			Interval:   cfg.Auth.PruneInterval,
			RunOnStart: true,
			Run: func(ctx context.Context) error {
				_, err := authService.PruneResetTokens(ctx)
				return err
			},
		}); err != nil {
			log.Fatal("Failed to register maintenance job", zap.Error(err))
		}
	}
	if err := maintenance.Start(ctx); err != nil {
		log.Fatal("Failed to start maintenance scheduler", zap.Error(err))
	}

	// HTTP
	if production {
		gin.SetMode(gin.ReleaseMode)
	}
	handler.SetupValidator()

	base := handler.NewBaseHandler(production)
	handlers := router.NewHandlers(base)
	handlers.System = handler.NewSystemHandler(base, cfg.App.Name, version, registry)
	handlers.Auth = handler.NewAuthHandler(base, authService)
	handlers.Businesses = handler.NewBusinessHandler(base, provisioning)

	var loginLimiter *middleware.RateLimiter
	if cfg.HTTP.LoginRate > 0 {
		loginLimiter = middleware.NewRateLimiter(cfg.HTTP.LoginRate, cfg.HTTP.LoginBurst)
	}

	httpMeter := meter
	if !meterProvider.IsEnabled() {
		httpMeter = nil
	}
	engine, err := router.New(router.Config{
		Production: production,
		HTTP:       cfg.HTTP,
		Tracing: middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     tracerProvider.IsEnabled(),
		},
		Meter: httpMeter,
		Auth: middleware.JWTMiddlewareConfig{
			JWTService:     jwtService,
			TokenBlacklist: blacklist,
			Logger:         log,
		},
		Tenant: middleware.TenantMiddlewareConfig{
			Resolver:      manager,
			EnforceStatus: cfg.Tenant.EnforceStatus,
			StatusCache:   statusCache,
			Production:    production,
			Logger:        log,
		},
		LoginLimiter: loginLimiter,
		Logger:       log,
	}, handlers)
	if err != nil {
		log.Fatal("Failed to build router", zap.Error(err))
	}

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := maintenance.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping maintenance scheduler", zap.Error(err))
	}
	if loginLimiter != nil {
		loginLimiter.Stop()
	}
	statusCache.Close()
	if err := blacklist.Close(); err != nil {
		log.Error("Error closing token blacklist", zap.Error(err))
	}
	if err := manager.Close(); err != nil {
		log.Error("Error closing stores", zap.Error(err))
	}
	if closer, ok := opener.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			log.Error("Error closing store opener", zap.Error(err))
		}
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Error("Error stopping profiler", zap.Error(err))
	}

	log.Info("Server exited", zap.Duration("uptime", time.Since(startedAt)))
	if err := loggerProvider.Shutdown(context.Background()); err != nil {
		log.Error("Error shutting down logger provider", zap.Error(err))
	}
}
