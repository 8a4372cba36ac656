package budget

import "github.com/quotapilot/gateway/types"

// defaultModelKey is the limits-table entry consulted when a specific model
// has no entry of its own.
const defaultModelKey = "default"

// Limits is the provider -> model-or-"default" -> ProviderLimits table, read
// once at startup from the configured *Provider limits* table.
type Limits map[string]map[string]types.ProviderLimits

// Lookup resolves the limits for (provider, model): an exact model entry if
// present, else the provider's "default" entry, else nil (unbounded).
func (l Limits) Lookup(provider, model string) *types.ProviderLimits {
	byModel, ok := l[provider]
	if !ok {
		return nil
	}
	if lim, ok := byModel[model]; ok {
		return &lim
	}
	if lim, ok := byModel[defaultModelKey]; ok {
		return &lim
	}
	return nil
}
