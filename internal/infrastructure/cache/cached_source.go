package cache

import (
	"context"

	"go.uber.org/zap"

	"github.com/Dradcheenko/weblarek/internal/domain/catalog"
	"github.com/Dradcheenko/weblarek/internal/infrastructure/logger"
	"github.com/Dradcheenko/weblarek/internal/infrastructure/telemetry"
)

// LoadRecorder counts catalog loads by source
type LoadRecorder interface {
	RecordCatalogLoad(ctx context.Context, source string)
}

// CachedSource refreshes the cache after every successful fetch and serves
// the cached list when the upstream source fails.
type CachedSource struct {
	source   catalog.Source
	cache    ProductCache
	logger   *zap.Logger
	recorder LoadRecorder
}

// CachedSourceOption configures a CachedSource
type CachedSourceOption func(*CachedSource)

// WithLoadRecorder records which source served each load
func WithLoadRecorder(r LoadRecorder) CachedSourceOption {
	return func(s *CachedSource) {
		s.recorder = r
	}
}

// NewCachedSource decorates source with cache
func NewCachedSource(source catalog.Source, cache ProductCache, log *zap.Logger, opts ...CachedSourceOption) *CachedSource {
	s := &CachedSource{
		source: source,
		cache:  cache,
		logger: logger.Named(log, "catalog_cache"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FetchProductList fetches from the source, falling back to the cache
func (s *CachedSource) FetchProductList(ctx context.Context) (catalog.ProductList, error) {
	log := logger.WithLogger(ctx, s.logger)

	list, err := s.source.FetchProductList(ctx)
	if err == nil {
		if storeErr := s.cache.Store(ctx, list); storeErr != nil {
			log.Warn("Failed to refresh product cache", zap.Error(storeErr))
		}
		s.record(ctx, telemetry.SourceRemote)
		return list, nil
	}

	cached, ok, loadErr := s.cache.Load(ctx)
	if loadErr != nil {
		log.Warn("Failed to read product cache", zap.Error(loadErr))
	}
	if !ok || loadErr != nil {
		s.record(ctx, telemetry.SourceNone)
		return catalog.ProductList{}, err
	}

	log.Warn("Product fetch failed, falling back to cached list",
		zap.Error(err),
		zap.Int("items", len(cached.Items)),
	)
	s.record(ctx, telemetry.SourceCache)
	return cached, nil
}

func (s *CachedSource) record(ctx context.Context, source string) {
	if s.recorder != nil {
		s.recorder.RecordCatalogLoad(ctx, source)
	}
}

var _ catalog.Source = (*CachedSource)(nil)
