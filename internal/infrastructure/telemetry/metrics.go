package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"
)

// MeterProvider wraps the OpenTelemetry MeterProvider with lifecycle management.
type MeterProvider struct {
	provider *sdkmetric.MeterProvider
	logger   *zap.Logger
	config   Config
}

// NewMeterProvider creates and configures a new MeterProvider.
// If telemetry is disabled, Meter falls back to the global no-op meter.
func NewMeterProvider(ctx context.Context, cfg Config, logger *zap.Logger) (*MeterProvider, error) {
	mp := &MeterProvider{
		logger: logger,
		config: cfg,
	}

	if !cfg.Enabled {
		logger.Info("Metrics disabled, using no-op meter provider")
		return mp, nil
	}

	interval := cfg.MetricsInterval
	if interval == 0 {
		interval = 60 * time.Second
	}

	exporterOpts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.CollectorEndpoint),
	}
	if cfg.Insecure {
		exporterOpts = append(exporterOpts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, exporterOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
	}

	res, err := newResource(cfg)
	if err != nil {
		return nil, err
	}

	mp.provider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval)),
		),
	)
	otel.SetMeterProvider(mp.provider)

	logger.Info("OpenTelemetry MeterProvider initialized",
		zap.String("collector_endpoint", cfg.CollectorEndpoint),
		zap.Duration("export_interval", interval),
	)

	return mp, nil
}

// Shutdown flushes pending metrics and stops the provider.
func (mp *MeterProvider) Shutdown(ctx context.Context) error {
	if mp.provider == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := mp.provider.Shutdown(shutdownCtx); err != nil {
		mp.logger.Error("Error shutting down meter provider", zap.Error(err))
		return fmt.Errorf("failed to shutdown meter provider: %w", err)
	}
	return nil
}

// Meter returns a named meter from the provider.
func (mp *MeterProvider) Meter(name string, opts ...metric.MeterOption) metric.Meter {
	if mp.provider == nil {
		return otel.GetMeterProvider().Meter(name, opts...)
	}
	return mp.provider.Meter(name, opts...)
}

// IsEnabled returns whether metrics are exported.
func (mp *MeterProvider) IsEnabled() bool {
	return mp.config.Enabled && mp.provider != nil
}

// Metric attribute keys
var (
	AttrSource = attribute.Key("source")
	AttrResult = attribute.Key("result")
	AttrEvent  = attribute.Key("event")
)

// Catalog load sources
const (
	SourceRemote = "remote"
	SourceCache  = "cache"
	SourceNone   = "none"
)

// Order results
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// StorefrontMetrics records storefront counters
type StorefrontMetrics struct {
	catalogLoads  metric.Int64Counter
	orders        metric.Int64Counter
	orderTotal    metric.Float64Histogram
	handlerErrors metric.Int64Counter
}

// NewStorefrontMetrics registers the storefront instruments on meter
func NewStorefrontMetrics(meter metric.Meter) (*StorefrontMetrics, error) {
	catalogLoads, err := meter.Int64Counter("weblarek_catalog_loads_total",
		metric.WithDescription("Catalog loads by source"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog loads counter: %w", err)
	}
	orders, err := meter.Int64Counter("weblarek_orders_total",
		metric.WithDescription("Order submissions by result"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create orders counter: %w", err)
	}
	orderTotal, err := meter.Float64Histogram("weblarek_order_total",
		metric.WithDescription("Accepted order totals"),
		metric.WithUnit("{synapse}"),
		metric.WithExplicitBucketBoundaries(100, 500, 1000, 5000, 10000, 50000),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create order total histogram: %w", err)
	}
	handlerErrors, err := meter.Int64Counter("weblarek_event_handler_errors_total",
		metric.WithDescription("Event handlers that failed or panicked"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create handler errors counter: %w", err)
	}

	return &StorefrontMetrics{
		catalogLoads:  catalogLoads,
		orders:        orders,
		orderTotal:    orderTotal,
		handlerErrors: handlerErrors,
	}, nil
}

// RecordCatalogLoad counts a catalog load from source
func (m *StorefrontMetrics) RecordCatalogLoad(ctx context.Context, source string) {
	m.catalogLoads.Add(ctx, 1, metric.WithAttributes(AttrSource.String(source)))
}

// RecordOrder counts an order submission; total is recorded only on success
func (m *StorefrontMetrics) RecordOrder(ctx context.Context, result string, total float64) {
	m.orders.Add(ctx, 1, metric.WithAttributes(AttrResult.String(result)))
	if result == ResultSuccess {
		m.orderTotal.Record(ctx, total)
	}
}

// RecordHandlerError counts a failed event handler
func (m *StorefrontMetrics) RecordHandlerError(ctx context.Context, event string) {
	m.handlerErrors.Add(ctx, 1, metric.WithAttributes(AttrEvent.String(event)))
}
