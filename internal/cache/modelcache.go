package cache

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/quotapilot/gateway/types"
)

// ModelCache is a fail-soft wrapper around Manager for caching one
// provider's Models() result. A nil Manager (Redis unconfigured) makes
// every call a no-op so the Router falls back to querying the adapter
// directly, per the gateway's "Redis optional" design.
type ModelCache struct {
	mgr    *Manager
	ttl    time.Duration
	logger *zap.Logger
}

// NewModelCache wraps mgr. mgr may be nil.
func NewModelCache(mgr *Manager, ttl time.Duration, logger *zap.Logger) *ModelCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ModelCache{mgr: mgr, ttl: ttl, logger: logger}
}

func (c *ModelCache) key(provider string) string {
	return "gateway:models:" + provider
}

// Get returns the cached model list for provider, or (nil, false) on a miss
// or when caching is disabled.
func (c *ModelCache) Get(ctx context.Context, provider string) ([]types.ModelDescriptor, bool) {
	if c.mgr == nil {
		return nil, false
	}
	var models []types.ModelDescriptor
	if err := c.mgr.GetJSON(ctx, c.key(provider), &models); err != nil {
		if !IsCacheMiss(err) {
			c.logger.Warn("model cache read failed", zap.String("provider", provider), zap.Error(err))
		}
		return nil, false
	}
	return models, true
}

// Set stores provider's model list with the cache's configured TTL. Errors
// are logged, never returned: a cache write failure must not fail the
// request path.
func (c *ModelCache) Set(ctx context.Context, provider string, models []types.ModelDescriptor) {
	if c.mgr == nil {
		return
	}
	if err := c.mgr.SetJSON(ctx, c.key(provider), models, c.ttl); err != nil {
		c.logger.Warn("model cache write failed", zap.String("provider", provider), zap.Error(err))
	}
}
