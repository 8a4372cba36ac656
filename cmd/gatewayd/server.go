package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/quotapilot/gateway/config"
	"github.com/quotapilot/gateway/internal/metrics"
	"github.com/quotapilot/gateway/llm"
	"github.com/quotapilot/gateway/llm/budget"
	"github.com/quotapilot/gateway/types"
)

// knownChatRequestFields are the top-level JSON keys ChatRequest decodes
// itself; everything else in the request body rides through as Extra.
var knownChatRequestFields = map[string]struct{}{
	"model":           {},
	"messages":        {},
	"json":            {},
	"response_format": {},
	"tools":           {},
	"stream":          {},
	"max_tokens":      {},
}

// Server owns the gateway's HTTP surface: chat completions, router state,
// health, metrics, and the configuration admin API.
type Server struct {
	cfg       *config.Config
	router    *llm.Router
	registry  *llm.Registry
	budget    *budget.Manager
	collector *metrics.Collector
	logger    *zap.Logger
	httpSrv   *http.Server
}

// NewServer wires the routes and middleware chain for the gateway.
func NewServer(cfg *config.Config, router *llm.Router, registry *llm.Registry, budgetMgr *budget.Manager, collector *metrics.Collector, logger *zap.Logger) *Server {
	s := &Server{cfg: cfg, router: router, registry: registry, budget: budgetMgr, collector: collector, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /v1/chat/completions", s.handleChatCompletions)
	mux.HandleFunc("GET /v1/router/state", s.handleRouterState)
	mux.Handle("GET /metrics", promhttp.Handler())

	hotReload := config.NewHotReloadManager(cfg, config.WithHotReloadLogger(logger))
	configAPI := config.NewConfigAPIHandler(hotReload)
	configAPI.RegisterRoutes(mux)

	chained := Chain(mux,
		Recovery(logger),
		RequestID(),
		SecurityHeaders(),
		CORS(nil),
		RateLimiter(context.Background(), cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst),
		MetricsMiddleware(collector),
		RequestLogger(logger),
	)

	s.httpSrv = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:      chained,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return s
}

// Run starts the HTTP server and blocks until ctx is cancelled, then drains
// in-flight requests within the configured shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("gateway listening", zap.String("addr", s.httpSrv.Addr))
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
		defer cancel()
		return s.httpSrv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleChatCompletions decodes the request body twice: once into a typed
// ChatRequest for the fields the router inspects, once into a generic map
// so unrecognized fields survive as passthrough Extra.
func (s *Server) handleChatCompletions(w http.ResponseWriter, r *http.Request) {
	body, err := decodeJSONBody(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req types.ChatRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "malformed request body: "+err.Error())
		return
	}
	if req.Model == "" {
		writeJSONError(w, http.StatusBadRequest, "model is required")
		return
	}
	if len(req.Messages) == 0 {
		writeJSONError(w, http.StatusBadRequest, "messages must be non-empty")
		return
	}

	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		writeJSONError(w, http.StatusBadRequest, "malformed request body: "+err.Error())
		return
	}
	extra := make(map[string]any, len(raw))
	for k, v := range raw {
		if _, known := knownChatRequestFields[k]; known {
			continue
		}
		extra[k] = v
	}
	if len(extra) > 0 {
		req.Extra = extra
	}

	resp, err := s.router.Route(r.Context(), &req)
	if err != nil {
		s.writeRouteError(w, err)
		return
	}

	if req.Stream {
		s.writeSSEResponse(w, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// writeSSEResponse emits resp as a single data frame followed by the
// terminal [DONE] frame. The router itself never streams token-by-token;
// this adapts one complete response to the client's expected SSE framing.
func (s *Server) writeSSEResponse(w http.ResponseWriter, resp *types.ChatResponse) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	frame, err := resp.MarshalSSE()
	if err != nil {
		s.logger.Error("failed to marshal SSE response", zap.Error(err))
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", frame)
	fmt.Fprint(w, "data: [DONE]\n\n")
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

// routerStateEntry is one provider's reported state in the /v1/router/state
// response.
type routerStateEntry struct {
	Provider string            `json:"provider"`
	Status   llm.HealthStatus  `json:"status"`
	Models   []modelStateEntry `json:"models"`
}

type modelStateEntry struct {
	types.ModelDescriptor
	Usage    types.UsageStats     `json:"usage"`
	Headroom types.HeadroomResult `json:"headroom"`
}

func (s *Server) handleRouterState(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	adapters := s.registry.List()
	entries := make([]routerStateEntry, 0, len(adapters))

	for _, adapter := range adapters {
		state := adapter.State(ctx)
		models := adapter.Models(ctx)
		modelEntries := make([]modelStateEntry, 0, len(models))
		for _, m := range models {
			usage := s.budget.GetUsageStats(ctx, adapter.Name(), m.Name)
			headroom := s.budget.CheckHeadroom(ctx, adapter.Name(), m.Name, 0, 0)
			modelEntries = append(modelEntries, modelStateEntry{ModelDescriptor: m, Usage: usage, Headroom: headroom})
		}
		entries = append(entries, routerStateEntry{Provider: adapter.Name(), Status: state.Status, Models: modelEntries})
	}

	writeJSON(w, http.StatusOK, map[string]any{"providers": entries})
}

// writeRouteError maps a Router error to an HTTP status: NoCapableProviderError
// maps to 503, any error carrying an upstream status code maps to that
// status, everything else maps to 500.
func (s *Server) writeRouteError(w http.ResponseWriter, err error) {
	var noCapable *llm.NoCapableProviderError
	if errors.As(err, &noCapable) {
		writeJSONError(w, http.StatusServiceUnavailable, noCapable.Error())
		return
	}
	if status, ok := llm.StatusCode(err); ok && status > 0 {
		writeJSONError(w, status, err.Error())
		return
	}
	s.logger.Error("router returned unmapped error", zap.Error(err))
	writeJSONError(w, http.StatusInternalServerError, "internal server error")
}

func decodeJSONBody(r *http.Request) ([]byte, error) {
	defer r.Body.Close()
	buf, err := io.ReadAll(io.LimitReader(r.Body, 10<<20)) // 10 MiB
	if err != nil {
		return nil, fmt.Errorf("read request body: %w", err)
	}
	if len(buf) == 0 {
		return nil, fmt.Errorf("empty request body")
	}
	return buf, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
