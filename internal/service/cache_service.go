package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/sma-linebot/pkg/errors"
)

// CacheRepository abstracts persistence for cached payloads.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// CacheOptions configures a CacheService.
type CacheOptions struct {
	Enabled    bool
	Namespace  string
	DefaultTTL time.Duration
}

// CacheService wraps the cache repository with key namespacing and metrics.
// Every failure is logged and degrades to a miss, so callers can always fall
// back to the source of truth.
type CacheService struct {
	repo    CacheRepository
	metrics *MetricsService
	opts    CacheOptions
	logger  *zap.Logger
}

// NewCacheService constructs a cache service. A nil repo disables caching.
func NewCacheService(repo CacheRepository, metrics *MetricsService, opts CacheOptions, logger *zap.Logger) *CacheService {
	if opts.DefaultTTL <= 0 {
		opts.DefaultTTL = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{repo: repo, metrics: metrics, opts: opts, logger: logger}
}

// Enabled indicates whether caching is active.
func (s *CacheService) Enabled() bool {
	return s != nil && s.opts.Enabled && s.repo != nil
}

func (s *CacheService) key(key string) string {
	if s.opts.Namespace == "" {
		return key
	}
	return s.opts.Namespace + ":" + key
}

// Get reports whether key was found and decoded into dest.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) bool {
	if !s.Enabled() {
		return false
	}
	start := time.Now()
	err := s.repo.Get(ctx, s.key(key), dest)
	s.metrics.RecordCacheOperation(err == nil, time.Since(start))
	if err != nil && !errors.Is(err, appErrors.ErrCacheMiss) {
		s.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
	}
	return err == nil
}

// Set stores value under key. A non-positive ttl uses the default.
func (s *CacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if !s.Enabled() {
		return
	}
	if ttl <= 0 {
		ttl = s.opts.DefaultTTL
	}
	start := time.Now()
	err := s.repo.Set(ctx, s.key(key), value, ttl)
	s.metrics.ObserveCacheWrite(time.Since(start))
	if err != nil {
		s.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// RememberString returns the cached string for key, or calls load and caches
// its result. Results load marks as not cacheable are returned as-is.
func (s *CacheService) RememberString(ctx context.Context, key string, ttl time.Duration, load func(context.Context) (value string, cacheable bool)) string {
	var cached string
	if s.Get(ctx, key, &cached) && cached != "" {
		return cached
	}
	value, cacheable := load(ctx)
	if cacheable {
		s.Set(ctx, key, value, ttl)
	}
	return value
}
