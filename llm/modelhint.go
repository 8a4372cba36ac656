package llm

import "strings"

// ParseModelHint splits a client-supplied model string into an optional
// provider hint and an optional model hint.
//
//   - "" or "auto"      -> (none, none)
//   - "provider:model"  -> (provider, model), split on the first colon
//   - anything else     -> (none, model)
func ParseModelHint(s string) (providerHint, modelHint string) {
	if s == "" || s == "auto" {
		return "", ""
	}
	if idx := strings.Index(s, ":"); idx >= 0 {
		return s[:idx], s[idx+1:]
	}
	return "", s
}
