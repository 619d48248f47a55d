package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

const profileCacheKeyPrefix = "display_name:"

type displayNameFetcher interface {
	DisplayName(ctx context.Context, lineUserID string) (string, error)
}

// ProfileService resolves display names, caching successful lookups.
type ProfileService struct {
	fetcher  displayNameFetcher
	cache    *CacheService
	ttl      time.Duration
	fallback string
	logger   *zap.Logger
}

// NewProfileService constructs a profile service. cache may be nil.
func NewProfileService(fetcher displayNameFetcher, cache *CacheService, ttl time.Duration, fallback string, logger *zap.Logger) *ProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if fallback == "" {
		fallback = "ゲスト"
	}
	return &ProfileService{fetcher: fetcher, cache: cache, ttl: ttl, fallback: fallback, logger: logger}
}

// DisplayName never fails: lookup errors yield the fallback name, which is
// not cached.
func (s *ProfileService) DisplayName(ctx context.Context, lineUserID string) string {
	return s.cache.RememberString(ctx, profileCacheKeyPrefix+lineUserID, s.ttl, func(ctx context.Context) (string, bool) {
		name, err := s.fetcher.DisplayName(ctx, lineUserID)
		name = strings.TrimSpace(name)
		if err != nil || name == "" {
			s.logger.Warn("profile lookup failed, using fallback name", zap.String("line_user_id", lineUserID), zap.Error(err))
			return s.fallback, false
		}
		return name, true
	})
}
