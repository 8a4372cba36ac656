package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/quotapilot/gateway/config"
	"github.com/quotapilot/gateway/internal/metrics"
	"github.com/quotapilot/gateway/llm"
	"github.com/quotapilot/gateway/llm/budget"
	"github.com/quotapilot/gateway/types"
)

// fakeProvider is a minimal llm.Provider for exercising the HTTP layer
// without a real upstream.
type fakeProvider struct {
	name   string
	models []types.ModelDescriptor
	chatFn func(req *types.ChatRequest) (*types.ChatResponse, error)
}

func (p *fakeProvider) Name() string { return p.name }
func (p *fakeProvider) Models(ctx context.Context) []types.ModelDescriptor { return p.models }
func (p *fakeProvider) State(ctx context.Context) llm.ProviderState {
	return llm.ProviderState{Status: llm.HealthOK}
}
func (p *fakeProvider) Chat(ctx context.Context, req *types.ChatRequest) (*types.ChatResponse, error) {
	return p.chatFn(req)
}

// sanitizeMetricName makes t.Name() safe as a Prometheus metric namespace,
// so each test registers its collector under a distinct, valid name.
func sanitizeMetricName(name string) string {
	return "gatewayd_test_" + strings.NewReplacer("/", "_", "-", "_").Replace(name)
}

func testServer(t *testing.T, provider *fakeProvider) *Server {
	t.Helper()
	registry := llm.NewRegistry()
	if provider != nil {
		registry.Register(provider)
	}
	budgetMgr := budget.NewManager(budget.NewMemStore(), budget.Limits{}, zap.NewNop())
	router := llm.NewRouter(registry, budgetMgr, zap.NewNop())

	cfg := config.DefaultConfig()
	cfg.Server.HTTPPort = 0
	cfg.Server.ShutdownTimeout = 0

	collector := metrics.NewCollector(sanitizeMetricName(t.Name()), zap.NewNop())
	return NewServer(cfg, router, registry, budgetMgr, collector, zap.NewNop())
}

func TestHandleHealth(t *testing.T) {
	s := testServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	s.httpSrv.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestHandleChatCompletions_Success(t *testing.T) {
	provider := &fakeProvider{
		name: "cerebras",
		models: []types.ModelDescriptor{
			{Name: "llama3.1-8b", SupportsJSON: true, SupportsStream: true},
		},
		chatFn: func(req *types.ChatRequest) (*types.ChatResponse, error) {
			return &types.ChatResponse{
				ID:    "chatcmpl-1",
				Model: req.Model,
				Choices: []types.ChatChoice{
					{Index: 0, Message: types.NewMessage(types.RoleAssistant, "hi there")},
				},
				Usage: types.ChatUsage{PromptTokens: 5, CompletionTokens: 3, TotalTokens: 8},
			}, nil
		},
	}
	s := testServer(t, provider)

	body := `{"model":"llama3.1-8b","messages":[{"role":"user","content":"hello"}],"temperature":0.7}`
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()

	s.httpSrv.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp types.ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "chatcmpl-1", resp.ID)
	assert.Equal(t, 8, resp.Usage.TotalTokens)
}

func TestHandleChatCompletions_MissingModel(t *testing.T) {
	s := testServer(t, nil)
	body := `{"messages":[{"role":"user","content":"hello"}]}`
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()

	s.httpSrv.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleChatCompletions_NoCapableProvider(t *testing.T) {
	s := testServer(t, nil)
	body := `{"model":"gpt-4","messages":[{"role":"user","content":"hello"}]}`
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()

	s.httpSrv.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandleRouterState(t *testing.T) {
	provider := &fakeProvider{
		name:   "cerebras",
		models: []types.ModelDescriptor{{Name: "llama3.1-8b", SupportsJSON: true}},
	}
	s := testServer(t, provider)

	req := httptest.NewRequest(http.MethodGet, "/v1/router/state", nil)
	rec := httptest.NewRecorder()

	s.httpSrv.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Providers []routerStateEntry `json:"providers"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Providers, 1)
	assert.Equal(t, "cerebras", body.Providers[0].Provider)
	require.Len(t, body.Providers[0].Models, 1)
	assert.Equal(t, "llama3.1-8b", body.Providers[0].Models[0].Name)
	assert.Equal(t, int64(0), body.Providers[0].Models[0].Usage.Minute.Requests)
	assert.Equal(t, int64(0), body.Providers[0].Models[0].Usage.Day.Requests)
}
