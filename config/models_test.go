package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModelEntryConfig_Resolve_AppliesDefaults(t *testing.T) {
	e := ModelEntryConfig{Name: "m1", ContextWindow: 4096}
	d := e.Resolve()

	assert.Equal(t, "m1", d.Name)
	assert.Equal(t, 4096, d.ContextWindow)
	assert.True(t, d.SupportsJSON)
	assert.False(t, d.SupportsTools)
	assert.True(t, d.SupportsStream)
}

func TestModelEntryConfig_Resolve_HonorsExplicitOverrides(t *testing.T) {
	f := false
	e := ModelEntryConfig{Name: "m1", SupportsJSON: &f, SupportsTools: &f, SupportsStream: &f}
	d := e.Resolve()

	assert.False(t, d.SupportsJSON)
	assert.False(t, d.SupportsTools)
	assert.False(t, d.SupportsStream)
}

func TestProviderModelsConfig_ResolveModels(t *testing.T) {
	p := ProviderModelsConfig{Models: []ModelEntryConfig{{Name: "a"}, {Name: "b"}}}
	out := p.ResolveModels()
	assert.Len(t, out, 2)
	assert.Equal(t, "a", out[0].Name)
	assert.Equal(t, "b", out[1].Name)
}
