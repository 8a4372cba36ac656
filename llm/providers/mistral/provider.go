// Package mistral adapts Mistral's OpenAI-compatible API to the llm.Provider
// contract. Its model list is a live query, narrowed to a free-tier
// allowlist so the gateway never quotes a model the operator's Mistral plan
// cannot actually serve.
package mistral

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/quotapilot/gateway/llm"
	"github.com/quotapilot/gateway/llm/providers/openaicompat"
	"github.com/quotapilot/gateway/types"
)

const (
	defaultBaseURL = "https://api.mistral.ai"
	providerName   = "mistral"
)

// preferredModels is the built-in fallback allowlist used when the operator
// hasn't configured MISTRAL_FREE_MODELS: Mistral's smallest, broadly
// available free-tier models.
var preferredModels = []string{"mistral-small-latest", "open-mistral-nemo"}

// Config configures the Mistral adapter.
type Config struct {
	APIKey    string
	BaseURL   string // defaults to https://api.mistral.ai
	Timeout   time.Duration
	Allowlist []string // from MISTRAL_FREE_MODELS; empty falls back to preferredModels
}

// adapter wraps the OpenAI-compatible base, overriding Models to apply the
// free-tier allowlist to the live list.
type adapter struct {
	*openaicompat.Provider
	allow []string
}

// New builds the Mistral adapter.
func New(cfg Config, logger *zap.Logger) llm.Provider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	allow := cfg.Allowlist
	if len(allow) == 0 {
		allow = preferredModels
	}

	base := openaicompat.New(openaicompat.Config{
		ProviderName: providerName,
		APIKey:       cfg.APIKey,
		BaseURL:      baseURL,
		Timeout:      cfg.Timeout,
	}, logger)

	return &adapter{Provider: base, allow: allow}
}

// Models fetches the live list and intersects it with the free-tier
// allowlist, never returning a model the configured plan doesn't cover.
func (a *adapter) Models(ctx context.Context) []types.ModelDescriptor {
	live := a.Provider.Models(ctx)
	return openaicompat.FilterAllowlist(live, a.allow)
}
