// Package cerebras adapts Cerebras's OpenAI-compatible inference API to the
// llm.Provider contract. Its model list is configured, never queried live:
// Cerebras's /models endpoint does not reliably report the capability flags
// the router needs, so the operator's *Provider models* table (§6) is the
// single source of truth.
package cerebras

import (
	"time"

	"go.uber.org/zap"

	"github.com/quotapilot/gateway/llm"
	"github.com/quotapilot/gateway/llm/providers/openaicompat"
	"github.com/quotapilot/gateway/types"
)

const (
	defaultBaseURL = "https://api.cerebras.ai"
	providerName   = "cerebras"
)

// Config configures the Cerebras adapter.
type Config struct {
	APIKey  string
	BaseURL string // defaults to https://api.cerebras.ai
	Timeout time.Duration
	Models  []types.ModelDescriptor // the operator's configured model table
}

// New builds the Cerebras adapter. Models() always returns cfg.Models,
// optionally narrowed by allow; it never issues a network call.
func New(cfg Config, allow []string, logger *zap.Logger) llm.Provider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	resolved := openaicompat.FilterAllowlist(cfg.Models, allow)

	return openaicompat.New(openaicompat.Config{
		ProviderName: providerName,
		APIKey:       cfg.APIKey,
		BaseURL:      baseURL,
		Timeout:      cfg.Timeout,
		ModelSource:  openaicompat.NewModelTable(resolved),
	}, logger)
}
