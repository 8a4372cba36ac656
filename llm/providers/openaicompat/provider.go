package openaicompat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/quotapilot/gateway/internal/tlsutil"
	"github.com/quotapilot/gateway/llm"
	"github.com/quotapilot/gateway/types"
)

// ModelsProvider is implemented by a ModelTable (or any custom source) that
// can resolve the provider's model list without necessarily hitting the
// network -- concrete adapters that load models from a static config table
// (Cerebras) plug one in via Config.ModelSource instead of the default
// live-fetch-and-cache path.
type ModelsProvider interface {
	Models(ctx context.Context) []types.ModelDescriptor
}

// Config configures one OpenAI-compatible adapter instance.
type Config struct {
	ProviderName string
	APIKey       string
	BaseURL      string
	Timeout      time.Duration

	EndpointPath   string // defaults to /v1/chat/completions
	ModelsEndpoint string // defaults to /v1/models

	// ModelSource, when set, overrides the default live GET /models fetch.
	// Used by adapters whose model table is configured rather than queried.
	ModelSource ModelsProvider

	// DefaultCapabilities are applied to every model returned by the live
	// /models endpoint, since that endpoint reports names only, not
	// capability flags. Per §6: JSON true, tools false, stream true.
	DefaultCapabilities types.ModelDescriptor
}

// Provider is the OpenAI-compatible adapter base (C2). Concrete adapters
// either use it directly (configured per-provider) or embed it and override
// Models.
type Provider struct {
	cfg    Config
	client *http.Client
	logger *zap.Logger

	lastRateLimit llm.RateLimitState
}

// New constructs a Provider, applying the component design's defaults.
func New(cfg Config, logger *zap.Logger) *Provider {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	if cfg.EndpointPath == "" {
		cfg.EndpointPath = "/v1/chat/completions"
	}
	if cfg.ModelsEndpoint == "" {
		cfg.ModelsEndpoint = "/v1/models"
	}
	if cfg.DefaultCapabilities == (types.ModelDescriptor{}) {
		cfg.DefaultCapabilities = types.ModelDescriptor{SupportsJSON: true, SupportsTools: false, SupportsStream: true}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{
		cfg:    cfg,
		client: tlsutil.SecureHTTPClient(timeout),
		logger: logger,
	}
}

func (p *Provider) Name() string { return p.cfg.ProviderName }

func (p *Provider) endpoint(path string) string {
	return strings.TrimRight(p.cfg.BaseURL, "/") + path
}

func (p *Provider) authHeader(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
}

// Models returns the provider's current model list. Delegates to
// cfg.ModelSource when configured (Cerebras's static table); otherwise
// issues a live GET /models call. Always fails soft to an empty slice.
func (p *Provider) Models(ctx context.Context) []types.ModelDescriptor {
	if p.cfg.ModelSource != nil {
		return p.cfg.ModelSource.Models(ctx)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint(p.cfg.ModelsEndpoint), nil)
	if err != nil {
		p.logger.Warn("models request build failed", zap.String("provider", p.Name()), zap.Error(err))
		return nil
	}
	p.authHeader(httpReq)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		p.logger.Warn("models request failed", zap.String("provider", p.Name()), zap.Error(err))
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		p.logger.Warn("models request returned error status",
			zap.String("provider", p.Name()), zap.Int("status", resp.StatusCode))
		return nil
	}

	var list wireModelList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		p.logger.Warn("models response decode failed", zap.String("provider", p.Name()), zap.Error(err))
		return nil
	}

	out := make([]types.ModelDescriptor, 0, len(list.Data))
	for _, m := range list.Data {
		d := p.cfg.DefaultCapabilities
		d.Name = m.ID
		out = append(out, d)
	}
	return out
}

// State probes health with a models-list call and parses the most recent
// rate-limit headers observed.
func (p *Provider) State(ctx context.Context) llm.ProviderState {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint(p.cfg.ModelsEndpoint), nil)
	if err != nil {
		return llm.ProviderState{Status: llm.HealthUnknown}
	}
	p.authHeader(httpReq)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return llm.ProviderState{Status: llm.HealthUnknown, RateLimit: p.lastRateLimit}
	}
	defer resp.Body.Close()

	rl := parseRateLimitHeaders(resp.Header)
	p.lastRateLimit = rl

	status := llm.HealthOK
	if resp.StatusCode >= 500 {
		status = llm.HealthDegraded
	} else if resp.StatusCode >= 400 {
		status = llm.HealthUnknown
	}
	return llm.ProviderState{Status: status, RateLimit: rl}
}

// parseRateLimitHeaders implements the header-parsing rule from §4.2:
// x-ratelimit-{limit,remaining}-{requests,tokens} and their reset variant,
// falling back to ratelimit-limit/ratelimit-remaining/ratelimit-reset.
func parseRateLimitHeaders(h http.Header) llm.RateLimitState {
	get := func(primary, fallback string) *int64 {
		if v := h.Get(primary); v != "" {
			return parseHeaderInt64(v)
		}
		if fallback != "" {
			return parseHeaderInt64(h.Get(fallback))
		}
		return nil
	}

	return llm.RateLimitState{
		LimitRequests:     get("x-ratelimit-limit-requests", "ratelimit-limit"),
		RemainingRequests: get("x-ratelimit-remaining-requests", "ratelimit-remaining"),
		LimitTokens:       get("x-ratelimit-limit-tokens", ""),
		RemainingTokens:   get("x-ratelimit-remaining-tokens", ""),
		ResetRequests:     get("x-ratelimit-reset-requests", "ratelimit-reset"),
		ResetTokens:       get("x-ratelimit-reset-tokens", ""),
	}
}

// Chat executes a non-streaming completion against the upstream, mapping
// failures per §4.2: 429 -> *llm.RateLimitError, other non-2xx ->
// *llm.HTTPError, transport errors propagate unwrapped.
func (p *Provider) Chat(ctx context.Context, req *types.ChatRequest) (*types.ChatResponse, error) {
	body := buildWireRequest(req)
	body.Stream = false

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint(p.cfg.EndpointPath), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build chat request: %w", err)
	}
	p.authHeader(httpReq)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		msg := readErrorMessage(resp.Body)
		return nil, &llm.RateLimitError{
			Provider:   p.Name(),
			StatusCode: resp.StatusCode,
			Headers:    resp.Header,
			Message:    msg,
		}
	}
	if resp.StatusCode >= 300 {
		msg := readErrorMessage(resp.Body)
		return nil, &llm.HTTPError{
			Provider:   p.Name(),
			StatusCode: resp.StatusCode,
			Headers:    resp.Header,
			Message:    msg,
		}
	}

	var wr wireResponse
	if err := json.NewDecoder(resp.Body).Decode(&wr); err != nil {
		return nil, fmt.Errorf("decode chat response: %w", err)
	}
	return toChatResponse(wr, req.Model), nil
}
