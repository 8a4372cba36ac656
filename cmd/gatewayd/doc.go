// Command gatewayd is the process entry point for the LLM gateway.
//
// It loads configuration (YAML file plus GATEWAY_-prefixed environment
// overrides), connects the Mongo-backed usage store and optional Redis
// model cache, registers whichever provider adapters have an API key
// present in the environment, and serves an OpenAI-compatible HTTP API:
//
//	POST /v1/chat/completions   routed chat completion
//	GET  /v1/router/state       per-provider health, models, and headroom
//	GET  /health                liveness probe
//	GET  /metrics               Prometheus exposition
//	...  /api/v1/config*        configuration hot-reload admin API
package main
