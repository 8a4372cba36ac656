package llm

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/quotapilot/gateway/llm/budget"
	"github.com/quotapilot/gateway/llm/retry"
	"github.com/quotapilot/gateway/types"
)

const (
	maxCandidateProviders = 3
	maxAttemptsPerCandidate = 2
)

// NoCapableProviderError is raised when every candidate is exhausted (or
// none existed in the first place). It is indistinguishable at the HTTP
// boundary from a pure capability shortfall and a pure budget exhaustion --
// both collapse into this one error kind.
type NoCapableProviderError struct {
	Reason   string
	LastErr  error
}

func (e *NoCapableProviderError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	return "no capable provider"
}

func (e *NoCapableProviderError) Unwrap() error { return e.LastErr }

// candidate is a (adapter, model) pair surviving capability and headroom
// filtering.
type candidate struct {
	adapter Provider
	model   string
}

// Observer receives best-effort notifications of router decisions, for
// metrics. All methods must return promptly; a nil Observer is valid and
// every call site guards against it.
type Observer interface {
	CandidateCount(n int)
	Failover(fromProvider, reason string)
	HeadroomRejected(provider, model string)
	NoCapableProvider()
}

// Router is the Router (C5): it holds no mutable state of its own (besides
// an optional Observer set once at startup), so Route is safe for
// concurrent invocation by construction.
type Router struct {
	registry *Registry
	budget   *budget.Manager
	logger   *zap.Logger
	observer Observer
}

// NewRouter builds a Router over registry, using budget for headroom checks
// and usage recording.
func NewRouter(registry *Registry, budgetMgr *budget.Manager, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{registry: registry, budget: budgetMgr, logger: logger}
}

// SetObserver attaches o to receive decision notifications. Not safe to call
// concurrently with Route; intended for one-time wiring at startup.
func (r *Router) SetObserver(o Observer) {
	r.observer = o
}

// Route implements the full capability-filter + quota-aware candidate
// selection + retry/failover algorithm of the Router component.
func (r *Router) Route(ctx context.Context, req *types.ChatRequest) (*types.ChatResponse, error) {
	providerHint, modelHint := ParseModelHint(req.Model)

	requiresJSON := req.RequiresJSON()
	requiresTools := req.RequiresTools()
	requiresStream := req.Stream

	estPrompt := budget.EstimatePromptTokens(messageContents(req.Messages))
	estCompletion := req.CompletionEstimate()

	candidates := r.enumerateCandidates(ctx, providerHint, modelHint, requiresJSON, requiresTools, requiresStream, estPrompt, estCompletion)
	candidates = dedupeAndBound(candidates, maxCandidateProviders)

	if r.observer != nil {
		r.observer.CandidateCount(len(candidates))
	}

	if len(candidates) == 0 {
		if r.observer != nil {
			r.observer.NoCapableProvider()
		}
		return nil, &NoCapableProviderError{Reason: "no provider offers a model meeting the request's requirements and quota"}
	}

	var lastErr error
	for _, c := range candidates {
		resp, err := r.runCandidate(ctx, c, req, estPrompt)
		if err == nil {
			return resp, nil
		}

		statusCode, hasStatus := StatusCode(err)
		action := retry.Classify(statusCode, hasStatus)
		if action == retry.NoRetry {
			return nil, err
		}
		if r.observer != nil {
			r.observer.Failover(c.adapter.Name(), errorCodeFor(action, statusCode))
		}
		lastErr = err
	}

	if r.observer != nil {
		r.observer.NoCapableProvider()
	}
	return nil, &NoCapableProviderError{Reason: "all providers exhausted", LastErr: lastErr}
}

// enumerateCandidates is Phase 3: for each adapter in Registry order, fetch
// its models (fanned out concurrently, reassembled by Registry position so
// result order stays deterministic) and filter by hint/capability/headroom.
func (r *Router) enumerateCandidates(ctx context.Context, providerHint, modelHint string, requiresJSON, requiresTools, requiresStream bool, estPrompt, estCompletion int) []candidate {
	adapters := r.registry.List()

	type modelsResult struct {
		models []types.ModelDescriptor
	}
	results := make([]modelsResult, len(adapters))

	g, gctx := errgroup.WithContext(ctx)
	for i, adapter := range adapters {
		i, adapter := i, adapter
		if providerHint != "" && adapter.Name() != providerHint {
			continue
		}
		g.Go(func() error {
			results[i] = modelsResult{models: adapter.Models(gctx)}
			return nil
		})
	}
	_ = g.Wait() // Models() never returns an error; it fails soft to empty.

	var out []candidate
	for i, adapter := range adapters {
		if providerHint != "" && adapter.Name() != providerHint {
			continue
		}
		for _, m := range results[i].models {
			if modelHint != "" && m.Name != modelHint {
				continue
			}
			if requiresJSON && !m.SupportsJSON {
				continue
			}
			if requiresTools && !m.SupportsTools {
				continue
			}
			if requiresStream && !m.SupportsStream {
				continue
			}
			headroom := r.budget.CheckHeadroom(ctx, adapter.Name(), m.Name, estPrompt, estCompletion)
			if !headroom.CanProceed {
				if r.observer != nil {
					r.observer.HeadroomRejected(adapter.Name(), m.Name)
				}
				continue
			}
			out = append(out, candidate{adapter: adapter, model: m.Name})
		}
	}
	return out
}

// dedupeAndBound is Phase 4: keep only the first model seen per provider,
// preserving order, then truncate to maxProviders.
func dedupeAndBound(candidates []candidate, maxProviders int) []candidate {
	seen := make(map[string]bool, maxProviders)
	var out []candidate
	for _, c := range candidates {
		name := c.adapter.Name()
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, c)
		if len(out) >= maxProviders {
			break
		}
	}
	return out
}

// runCandidate is Phase 5 for a single candidate: up to maxAttemptsPerCandidate
// in-provider attempts, classifying failures via C1 and recording usage on
// every attempt.
func (r *Router) runCandidate(ctx context.Context, c candidate, req *types.ChatRequest, estPrompt int) (*types.ChatResponse, error) {
	cloned := req.Clone()
	cloned.Model = c.model
	cloned.Stream = false

	// Usage rows are written with a context that is not cancelled with the
	// request, so the last attempt is still recorded after a disconnect.
	recCtx := context.WithoutCancel(ctx)

	var lastErr error
	for attempt := 1; attempt <= maxAttemptsPerCandidate; attempt++ {
		resp, err := c.adapter.Chat(ctx, cloned)
		if err == nil {
			r.budget.RecordUsage(recCtx, c.adapter.Name(), c.model, resp.Usage.PromptTokens, resp.Usage.CompletionTokens, true, "")
			return resp, nil
		}

		lastErr = err
		statusCode, hasStatus := StatusCode(err)
		action := retry.Classify(statusCode, hasStatus)
		errorCode := errorCodeFor(action, statusCode)

		switch action {
		case retry.RetrySame:
			r.budget.RecordUsage(recCtx, c.adapter.Name(), c.model, 0, 0, false, errorCode)
			if attempt >= maxAttemptsPerCandidate {
				return nil, lastErr
			}
			retryAfter, _ := RetryAfterHeader(err)
			delay := retry.Backoff(attempt, retryAfter)
			if err := sleepCancellable(ctx, delay); err != nil {
				return nil, err
			}
			continue
		case retry.NoRetry:
			r.budget.RecordUsage(recCtx, c.adapter.Name(), c.model, 0, 0, false, errorCode)
			return nil, lastErr
		default: // SwitchProvider
			r.budget.RecordUsage(recCtx, c.adapter.Name(), c.model, 0, 0, false, errorCode)
			return nil, lastErr
		}
	}
	return nil, lastErr
}

func errorCodeFor(action retry.Action, statusCode int) string {
	switch {
	case statusCode == 429:
		return string(types.ErrRateLimited)
	case statusCode >= 500:
		return string(types.ErrUpstreamError)
	case statusCode != 0:
		return string(types.ErrInvalidRequest)
	default:
		return string(types.ErrUpstreamError)
	}
}

func sleepCancellable(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func messageContents(messages []types.Message) []string {
	out := make([]string, 0, len(messages))
	for _, m := range messages {
		out = append(out, m.Content)
	}
	return out
}
