package openaicompat

import (
	"context"

	"github.com/quotapilot/gateway/types"
)

// ModelTable is a static ModelsProvider: a fixed list of models configured
// at startup rather than fetched live. Used by adapters whose upstream has
// no reliable /models endpoint (Cerebras).
type ModelTable struct {
	models []types.ModelDescriptor
}

// NewModelTable builds a ModelTable from a fixed, fully-resolved model list.
func NewModelTable(models []types.ModelDescriptor) *ModelTable {
	cp := make([]types.ModelDescriptor, len(models))
	copy(cp, models)
	return &ModelTable{models: cp}
}

// Models returns a copy of every configured model; any allowlist filtering
// is applied (with FilterAllowlist) before the table is built.
func (t *ModelTable) Models(ctx context.Context) []types.ModelDescriptor {
	out := make([]types.ModelDescriptor, len(t.models))
	copy(out, t.models)
	return out
}

// FilterAllowlist returns the subset of models whose Name appears in allow.
// An empty allow is treated as "no filter" and returns models unchanged.
func FilterAllowlist(models []types.ModelDescriptor, allow []string) []types.ModelDescriptor {
	if len(allow) == 0 {
		return models
	}
	set := make(map[string]struct{}, len(allow))
	for _, a := range allow {
		set[a] = struct{}{}
	}
	out := make([]types.ModelDescriptor, 0, len(models))
	for _, m := range models {
		if _, ok := set[m.Name]; ok {
			out = append(out, m)
		}
	}
	return out
}
