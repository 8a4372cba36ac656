package main

import (
	"context"

	"github.com/quotapilot/gateway/internal/cache"
	"github.com/quotapilot/gateway/llm"
	"github.com/quotapilot/gateway/types"
)

// cachedModelsProvider wraps an llm.Provider, serving Models() from the
// model-list cache when present and falling through to the underlying
// adapter on a miss. With an unconfigured cache (nil Manager), every call
// is a pass-through to the adapter.
type cachedModelsProvider struct {
	llm.Provider
	cache *cache.ModelCache
}

// wrapWithModelCache decorates p with c. c may wrap a nil Manager, in which
// case the decoration has no effect beyond an extra Get/Set no-op.
func wrapWithModelCache(p llm.Provider, c *cache.ModelCache) llm.Provider {
	return &cachedModelsProvider{Provider: p, cache: c}
}

func (c *cachedModelsProvider) Models(ctx context.Context) []types.ModelDescriptor {
	if models, ok := c.cache.Get(ctx, c.Name()); ok {
		return models
	}
	models := c.Provider.Models(ctx)
	if len(models) > 0 {
		c.cache.Set(ctx, c.Name(), models)
	}
	return models
}
