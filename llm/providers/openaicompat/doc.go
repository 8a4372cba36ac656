// Package openaicompat provides the shared OpenAI-compatible adapter base
// (C2): one implementation of llm.Provider that every concrete upstream
// (Cerebras, Mistral, ...) configures rather than reimplements.
//
// Providers share the same wire format (OpenAI chat completions). Instead
// of duplicating HTTP handling, message conversion, and error mapping in
// each one, they configure or embed *openaicompat.Provider and change only
// what differs: base URL, API key, and optionally the model source or
// Models().
//
// Usage:
//
//	p := openaicompat.New(openaicompat.Config{
//	    ProviderName: "cerebras",
//	    APIKey:       os.Getenv("CEREBRAS_API_KEY"),
//	    BaseURL:      "https://api.cerebras.ai",
//	}, logger)
package openaicompat
