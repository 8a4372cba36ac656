package config

import "github.com/quotapilot/gateway/types"

// Resolve converts a configured model entry into a types.ModelDescriptor,
// applying the OpenAI-compatible base's conservative defaults (JSON true,
// tools false, stream true) to any capability flag left unset.
func (m ModelEntryConfig) Resolve() types.ModelDescriptor {
	d := types.ModelDescriptor{
		Name:           m.Name,
		ContextWindow:  m.ContextWindow,
		SupportsJSON:   true,
		SupportsTools:  false,
		SupportsStream: true,
	}
	if m.SupportsJSON != nil {
		d.SupportsJSON = *m.SupportsJSON
	}
	if m.SupportsTools != nil {
		d.SupportsTools = *m.SupportsTools
	}
	if m.SupportsStream != nil {
		d.SupportsStream = *m.SupportsStream
	}
	return d
}

// ResolveModels converts a provider's configured model list.
func (p ProviderModelsConfig) ResolveModels() []types.ModelDescriptor {
	out := make([]types.ModelDescriptor, len(p.Models))
	for i, m := range p.Models {
		out[i] = m.Resolve()
	}
	return out
}
