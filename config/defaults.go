// =============================================================================
// Gateway default configuration
// =============================================================================
package config

import (
	"time"

	"github.com/quotapilot/gateway/types"
)

// DefaultConfig returns the gateway's baseline configuration.
func DefaultConfig() *Config {
	return &Config{
		Server:    DefaultServerConfig(),
		Mongo:     DefaultMongoConfig(),
		Redis:     DefaultRedisConfig(),
		Providers: DefaultProvidersConfig(),
		Log:       DefaultLogConfig(),
	}
}

func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		HTTPPort:        8080,
		MetricsPort:     9091,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    2 * time.Minute,
		ShutdownTimeout: 15 * time.Second,
		RateLimitRPS:    50,
		RateLimitBurst:  100,
	}
}

func DefaultMongoConfig() MongoConfig {
	return MongoConfig{
		URI:        "mongodb://localhost:27017",
		Database:   "gateway",
		Collection: "usage_logs",
		Timeout:    10 * time.Second,
	}
}

func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:         "localhost:6379",
		Password:     "",
		DB:           0,
		PoolSize:     10,
		MinIdleConns: 2,
		TTL:          5 * time.Minute,
	}
}

func int64ptr(v int64) *int64 { return &v }
func boolptr(v bool) *bool    { return &v }

// DefaultProvidersConfig enables both shipped adapters; actual registration
// still gates on the corresponding <PROVIDER>_API_KEY environment variable
// being present at startup. Cerebras carries a default static model table
// since that adapter never queries /models live.
func DefaultProvidersConfig() ProvidersConfig {
	return ProvidersConfig{
		CerebrasEnabled: true,
		MistralEnabled:  true,
		Models: map[string]ProviderModelsConfig{
			"cerebras": {
				Models: []ModelEntryConfig{
					{Name: "llama3.1-8b", ContextWindow: 8192, SupportsTools: boolptr(true)},
					{Name: "llama-3.3-70b", ContextWindow: 8192, SupportsTools: boolptr(true)},
					{Name: "qwen-3-32b", ContextWindow: 16384},
				},
			},
		},
		Limits: map[string]map[string]types.ProviderLimits{
			"cerebras": {
				"default": {RPM: int64ptr(30), TPM: int64ptr(60000)},
			},
			"mistral": {
				"default": {RPM: int64ptr(1), RPD: int64ptr(500)},
			},
		},
	}
}

func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:            "info",
		Format:           "json",
		OutputPaths:      []string{"stdout"},
		EnableCaller:     true,
		EnableStacktrace: false,
	}
}
