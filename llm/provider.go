// Package llm defines the normalized provider contract, the registry of
// live adapters, and the router that drives capability filtering,
// quota-aware candidate selection, and retry/failover across them.
package llm

import (
	"context"
	"net/http"

	"github.com/quotapilot/gateway/types"
)

// HealthStatus is the coarse health signal an adapter reports from State().
type HealthStatus string

const (
	HealthOK        HealthStatus = "ok"
	HealthDegraded  HealthStatus = "degraded"
	HealthUnknown   HealthStatus = "unknown"
)

// RateLimitState is the most recently observed rate-limit counters parsed
// from upstream response headers.
type RateLimitState struct {
	LimitRequests     *int64
	RemainingRequests *int64
	LimitTokens       *int64
	RemainingTokens   *int64
	ResetRequests     *int64
	ResetTokens       *int64
}

// ProviderState is the result of probing an adapter's health.
type ProviderState struct {
	Status    HealthStatus
	RateLimit RateLimitState
}

// Provider is the normalized interface every upstream driver honors. Adapters
// are constructed at startup with immutable configuration and an injected
// *http.Client, and live for the process lifetime.
type Provider interface {
	// Name is the provider's registry key.
	Name() string

	// Models returns the provider's currently offered models with capability
	// flags. Must fail soft: return an empty slice on error so the Router can
	// simply skip the provider, never return an error itself.
	Models(ctx context.Context) []types.ModelDescriptor

	// State probes health and surfaces the most recent rate-limit counters
	// observed from the upstream.
	State(ctx context.Context) ProviderState

	// Chat executes a non-streaming completion. On a 429 response it returns
	// a *RateLimitError; on any other non-2xx response it returns an
	// *HTTPError; transport failures propagate unwrapped.
	Chat(ctx context.Context, req *types.ChatRequest) (*types.ChatResponse, error)
}

// HTTPClientConfig is shared by every OpenAI-compatible adapter: the
// upstream base URL, API key, and HTTP client.
type HTTPClientConfig struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}
