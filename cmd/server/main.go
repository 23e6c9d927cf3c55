package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Dradcheenko/weblarek/internal/domain/shared"
	"github.com/Dradcheenko/weblarek/internal/infrastructure/api"
	"github.com/Dradcheenko/weblarek/internal/infrastructure/cache"
	"github.com/Dradcheenko/weblarek/internal/infrastructure/config"
	"github.com/Dradcheenko/weblarek/internal/infrastructure/logger"
	"github.com/Dradcheenko/weblarek/internal/infrastructure/telemetry"
	"github.com/Dradcheenko/weblarek/internal/interfaces/headless"
	"github.com/Dradcheenko/weblarek/internal/interfaces/http/handler"
	"github.com/Dradcheenko/weblarek/internal/interfaces/http/middleware"
	"github.com/Dradcheenko/weblarek/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telemetry: traces, metrics and the log bridge share one config
	telCfg := telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
		MetricsInterval:   cfg.Telemetry.MetricsInterval,
	}
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	log = loggerProvider.Bridge(log, zapcore.InfoLevel)

	metrics, err := telemetry.NewStorefrontMetrics(meterProvider.Meter("weblarek.storefront"))
	if err != nil {
		log.Fatal("Failed to register storefront metrics", zap.Error(err))
	}

	log.Info("Starting web-larek storefront",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("api", cfg.API.BaseURL),
	)

	// Store API client with a cached catalog fallback
	client, err := api.NewClient(api.Config{BaseURL: cfg.API.BaseURL, Timeout: cfg.API.Timeout}, log)
	if err != nil {
		log.Fatal("Failed to create store API client", zap.Error(err))
	}
	productCache, err := cache.NewProductCacheFactory(cfg.Cache, cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(!cfg.IsProduction()),
	).CreateCache(ctx)
	if err != nil {
		log.Fatal("Failed to create product cache", zap.Error(err))
	}
	source := cache.NewCachedSource(client, productCache, log, cache.WithLoadRecorder(metrics))

	session, err := headless.NewSession(headless.Config{
		CDNURL:          cfg.API.CDNURL,
		ValidationDelay: cfg.Checkout.ValidationDelay,
	}, headless.Deps{
		Source:  source,
		Gateway: client,
		Logger:  log,
		Metrics: metrics,
		ErrorReporter: func(name shared.EventName, _ error) {
			metrics.RecordHandlerError(context.Background(), string(name))
		},
	})
	if err != nil {
		log.Fatal("Failed to create storefront session", zap.Error(err))
	}
	if err := session.Start(ctx); err != nil {
		log.Fatal("Failed to start storefront session", zap.Error(err))
	}

	engine, err := newEngine(cfg, log, meterProvider, session)
	if err != nil {
		log.Fatal("Failed to set up HTTP engine", zap.Error(err))
	}

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	session.Close()
	if closer, ok := productCache.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			log.Warn("Failed to close product cache", zap.Error(err))
		}
	}
	for name, shutdown := range map[string]func(context.Context) error{
		"tracer": tracerProvider.Shutdown,
		"meter":  meterProvider.Shutdown,
		"logger": loggerProvider.Shutdown,
	} {
		if err := shutdown(shutdownCtx); err != nil {
			log.Warn("Telemetry shutdown failed", zap.String("provider", name), zap.Error(err))
		}
	}

	log.Info("Server exited gracefully")
}

// newEngine builds the gin engine with the middleware chain and API routes
func newEngine(cfg *config.Config, log *zap.Logger, meterProvider *telemetry.MeterProvider, session *headless.Session) (*gin.Engine, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			return nil, err
		}
	}

	httpMetrics, err := middleware.HTTPMetrics(meterProvider.Meter("http.server"))
	if err != nil {
		return nil, err
	}

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSOrigins

	engine.Use(middleware.RequestID())
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.SpanAttributes())
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(httpMetrics)
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(corsConfig))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	router.NewRouter(engine).Register(
		router.SystemRoutes(handler.NewSystemHandler(cfg.App.Name, session)),
		router.StorefrontRoutes(handler.NewStorefrontHandler(session)),
	).Setup()

	return engine, nil
}
