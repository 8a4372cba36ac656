// Command gatewayd runs the LLM gateway: an OpenAI-compatible HTTP front
// door that routes chat-completion requests across configured upstream
// providers with capability filtering, quota-aware candidate selection, and
// retry/failover.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/quotapilot/gateway/config"
	"github.com/quotapilot/gateway/internal/cache"
	"github.com/quotapilot/gateway/internal/metrics"
	"github.com/quotapilot/gateway/llm"
	"github.com/quotapilot/gateway/llm/budget"
	"github.com/quotapilot/gateway/llm/providers/cerebras"
	"github.com/quotapilot/gateway/llm/providers/mistral"
	"github.com/quotapilot/gateway/store/mongostore"
)

const (
	version        = "0.1.0"
	metricsNS      = "gateway"
	defaultTimeout = 30 * time.Second
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		runServe()
	case "version":
		printVersion()
	case "health":
		runHealthCheck()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`gatewayd - LLM gateway

Usage:
  gatewayd serve     run the HTTP gateway
  gatewayd health     check a running gateway's /health endpoint
  gatewayd version    print the build version
  gatewayd help       show this message

Environment:
  GATEWAY_CONFIG_PATH  path to a YAML config file (optional; env vars and
                       defaults apply regardless)
  CEREBRAS_API_KEY     registers the Cerebras adapter when present
  MISTRAL_API_KEY      registers the Mistral adapter when present`)
}

func printVersion() {
	fmt.Println("gatewayd " + version)
}

// runHealthCheck probes a running instance's /health endpoint, defaulting
// to the local port the HTTP_PORT config controls.
func runHealthCheck() {
	url := os.Getenv("GATEWAY_HEALTH_URL")
	if url == "" {
		port := os.Getenv("GATEWAY_SERVER_HTTP_PORT")
		if port == "" {
			port = "8080"
		}
		url = "http://127.0.0.1:" + port + "/health"
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		fmt.Fprintf(os.Stderr, "health check failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "health check returned status %d\n", resp.StatusCode)
		os.Exit(1)
	}
	fmt.Println("ok")
}

// initLogger builds the process-wide zap.Logger from LogConfig: console
// encoding for local development, JSON for production deployments.
func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := level.Set(cfg.Level); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	zapCfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    encoderCfg,
		OutputPaths:      cfg.OutputPaths,
		ErrorOutputPaths: []string{"stderr"},
	}
	if len(zapCfg.OutputPaths) == 0 {
		zapCfg.OutputPaths = []string{"stdout"}
	}
	if cfg.Format == "console" {
		zapCfg.Encoding = "console"
		encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zapCfg.DisableCaller = !cfg.EnableCaller
	zapCfg.DisableStacktrace = !cfg.EnableStacktrace

	return zapCfg.Build()
}

func runServe() {
	loader := config.NewLoader().WithEnvPrefix("GATEWAY")
	if path := os.Getenv("GATEWAY_CONFIG_PATH"); path != "" {
		loader = loader.WithConfigPath(path)
	}
	loader = loader.WithValidator(func(c *config.Config) error { return c.Validate() })

	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	usageStore, err := mongostore.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.Collection, cfg.Mongo.Timeout, logger)
	if err != nil {
		logger.Fatal("mongo connect failed", zap.Error(err))
	}
	defer usageStore.Close(context.Background()) //nolint:errcheck

	var cacheMgr *cache.Manager
	if cfg.Redis.Addr != "" {
		cacheMgr, err = cache.NewManager(cache.Config{
			Addr:         cfg.Redis.Addr,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			DefaultTTL:   cfg.Redis.TTL,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		}, logger)
		if err != nil {
			logger.Warn("redis cache unavailable, continuing without it", zap.Error(err))
			cacheMgr = nil
		}
	}
	modelCache := cache.NewModelCache(cacheMgr, cfg.Redis.TTL, logger)

	collector := metrics.NewCollector(metricsNS, logger)

	budgetLimits := budget.Limits(cfg.Providers.Limits)
	budgetMgr := budget.NewManager(usageStore, budgetLimits, logger)

	registry := llm.NewRegistry()
	registerProviders(registry, cfg, modelCache, logger)

	router := llm.NewRouter(registry, budgetMgr, logger)
	router.SetObserver(&metricsObserver{collector: collector})

	srv := NewServer(cfg, router, registry, budgetMgr, collector, logger)
	if err := srv.Run(ctx); err != nil {
		logger.Fatal("server exited with error", zap.Error(err))
	}
}

// registerProviders constructs and registers every adapter whose enablement
// flag is set and whose API key environment variable is present. Each
// adapter is wrapped so its Models() calls go through the model-list cache
// first.
func registerProviders(registry *llm.Registry, cfg *config.Config, modelCache *cache.ModelCache, logger *zap.Logger) {
	httpTimeout := defaultTimeout

	if cfg.Providers.CerebrasEnabled {
		if key := os.Getenv("CEREBRAS_API_KEY"); key != "" {
			models := cfg.Providers.Models["cerebras"].ResolveModels()
			adapter := cerebras.New(cerebras.Config{
				APIKey:  key,
				Timeout: httpTimeout,
				Models:  models,
			}, nil, logger)
			registry.Register(wrapWithModelCache(adapter, modelCache))
			logger.Info("registered provider", zap.String("provider", "cerebras"), zap.Int("models", len(models)))
		} else {
			logger.Info("cerebras enabled but CEREBRAS_API_KEY not set, skipping registration")
		}
	}

	if cfg.Providers.MistralEnabled {
		if key := os.Getenv("MISTRAL_API_KEY"); key != "" {
			var allow []string
			if m, ok := cfg.Providers.Models["mistral"]; ok {
				for _, d := range m.ResolveModels() {
					allow = append(allow, d.Name)
				}
			}
			adapter := mistral.New(mistral.Config{
				APIKey:    key,
				Timeout:   httpTimeout,
				Allowlist: allow,
			}, logger)
			registry.Register(wrapWithModelCache(adapter, modelCache))
			logger.Info("registered provider", zap.String("provider", "mistral"))
		} else {
			logger.Info("mistral enabled but MISTRAL_API_KEY not set, skipping registration")
		}
	}

	if registry.Len() == 0 {
		logger.Warn("no providers registered at startup; every request will fail with no capable provider")
	}
}

// metricsObserver adapts *metrics.Collector to llm.Observer. It lives here,
// not in package llm, so llm never depends on internal/metrics.
type metricsObserver struct {
	collector *metrics.Collector
}

func (o *metricsObserver) CandidateCount(n int) { o.collector.RecordCandidateCount(n) }
func (o *metricsObserver) Failover(fromProvider, reason string) {
	o.collector.RecordFailover(fromProvider, reason)
}
func (o *metricsObserver) HeadroomRejected(provider, model string) {
	o.collector.RecordHeadroomRejected(provider, model)
}
func (o *metricsObserver) NoCapableProvider() { o.collector.RecordNoCapableProvider() }
