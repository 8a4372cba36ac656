package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quotapilot/gateway/types"
)

func TestModelCache_NilManagerAlwaysMisses(t *testing.T) {
	c := NewModelCache(nil, 0, nil)
	c.Set(context.Background(), "cerebras", []types.ModelDescriptor{{Name: "a"}})

	_, ok := c.Get(context.Background(), "cerebras")
	assert.False(t, ok)
}

func TestModelCache_SetThenGet(t *testing.T) {
	mr, manager := setupTestRedis(t)
	defer mr.Close()
	defer manager.Close()

	c := NewModelCache(manager, 0, nil)
	models := []types.ModelDescriptor{{Name: "llama3.1-8b", SupportsTools: true}}
	c.Set(context.Background(), "cerebras", models)

	got, ok := c.Get(context.Background(), "cerebras")
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "llama3.1-8b", got[0].Name)
	assert.True(t, got[0].SupportsTools)
}

func TestModelCache_GetMissOnUnknownProvider(t *testing.T) {
	mr, manager := setupTestRedis(t)
	defer mr.Close()
	defer manager.Close()

	c := NewModelCache(manager, 0, nil)
	_, ok := c.Get(context.Background(), "unknown")
	assert.False(t, ok)
}
