package openaicompat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/quotapilot/gateway/llm"
	"github.com/quotapilot/gateway/types"
)

func TestNew_Defaults(t *testing.T) {
	p := New(Config{ProviderName: "test"}, nil)
	require.NotNil(t, p)
	assert.Equal(t, "/v1/chat/completions", p.cfg.EndpointPath)
	assert.Equal(t, "/v1/models", p.cfg.ModelsEndpoint)
	assert.Equal(t, "test", p.Name())
	assert.True(t, p.cfg.DefaultCapabilities.SupportsJSON)
	assert.False(t, p.cfg.DefaultCapabilities.SupportsTools)
	assert.True(t, p.cfg.DefaultCapabilities.SupportsStream)
}

func TestChat_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var body wireRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "llama-3.3-70b", body.Model)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(wireResponse{
			ID: "chatcmpl-1", Model: "llama-3.3-70b",
			Choices: []struct {
				Index        int         `json:"index"`
				Message      wireMessage `json:"message"`
				FinishReason string      `json:"finish_reason"`
			}{{Index: 0, Message: wireMessage{Role: "assistant", Content: "hi there"}, FinishReason: "stop"}},
		})
	}))
	defer srv.Close()

	p := New(Config{ProviderName: "cerebras", APIKey: "secret", BaseURL: srv.URL}, zap.NewNop())
	resp, err := p.Chat(context.Background(), &types.ChatRequest{
		Model:    "llama-3.3-70b",
		Messages: []types.Message{types.NewMessage(types.RoleUser, "hello")},
	})
	require.NoError(t, err)
	assert.Equal(t, "llama-3.3-70b", resp.Model)
	assert.Equal(t, "hi there", resp.Choices[0].Message.Content)
}

func TestChat_429RaisesRateLimitError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "3")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer srv.Close()

	p := New(Config{ProviderName: "cerebras", APIKey: "k", BaseURL: srv.URL}, zap.NewNop())
	_, err := p.Chat(context.Background(), &types.ChatRequest{Model: "m", Messages: []types.Message{types.NewMessage(types.RoleUser, "hi")}})

	require.Error(t, err)
	rlErr, ok := err.(*llm.RateLimitError)
	require.True(t, ok, "expected *llm.RateLimitError, got %T", err)
	assert.Equal(t, 429, rlErr.StatusCode)
	assert.Equal(t, "3", rlErr.Headers.Get("Retry-After"))
	assert.Equal(t, "rate limited", rlErr.Message)
}

func TestChat_503RaisesHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`upstream down`))
	}))
	defer srv.Close()

	p := New(Config{ProviderName: "cerebras", APIKey: "k", BaseURL: srv.URL}, zap.NewNop())
	_, err := p.Chat(context.Background(), &types.ChatRequest{Model: "m", Messages: []types.Message{types.NewMessage(types.RoleUser, "hi")}})

	require.Error(t, err)
	httpErr, ok := err.(*llm.HTTPError)
	require.True(t, ok, "expected *llm.HTTPError, got %T", err)
	assert.Equal(t, 503, httpErr.StatusCode)
}

func TestChat_JSONModeOverridesResponseFormat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		rf, ok := body["response_format"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "json_object", rf["type"])

		json.NewEncoder(w).Encode(wireResponse{ID: "x", Model: "m"})
	}))
	defer srv.Close()

	p := New(Config{ProviderName: "p", APIKey: "k", BaseURL: srv.URL}, zap.NewNop())
	req := &types.ChatRequest{
		Model:          "m",
		Messages:       []types.Message{types.NewMessage(types.RoleUser, "hi")},
		JSON:           true,
		ResponseFormat: map[string]any{"type": "text"},
	}
	_, err := p.Chat(context.Background(), req)
	require.NoError(t, err)
}

func TestModels_FailsSoftOnTransportError(t *testing.T) {
	p := New(Config{ProviderName: "unreachable", APIKey: "k", BaseURL: "http://127.0.0.1:0"}, zap.NewNop())
	models := p.Models(context.Background())
	assert.Empty(t, models)
}

func TestModels_AppliesDefaultCapabilities(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(wireModelList{Data: []struct {
			ID string `json:"id"`
		}{{ID: "model-a"}, {ID: "model-b"}}})
	}))
	defer srv.Close()

	p := New(Config{ProviderName: "p", APIKey: "k", BaseURL: srv.URL}, zap.NewNop())
	models := p.Models(context.Background())
	require.Len(t, models, 2)
	assert.Equal(t, "model-a", models[0].Name)
	assert.True(t, models[0].SupportsJSON)
	assert.False(t, models[0].SupportsTools)
	assert.True(t, models[0].SupportsStream)
}

func TestParseRateLimitHeaders_PrimaryAndFallback(t *testing.T) {
	h := http.Header{}
	h.Set("x-ratelimit-limit-requests", "100")
	h.Set("ratelimit-remaining", "42")

	rl := parseRateLimitHeaders(h)
	require.NotNil(t, rl.LimitRequests)
	assert.Equal(t, int64(100), *rl.LimitRequests)
	require.NotNil(t, rl.RemainingRequests)
	assert.Equal(t, int64(42), *rl.RemainingRequests)
	assert.Nil(t, rl.LimitTokens)
}
