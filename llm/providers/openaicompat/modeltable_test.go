package openaicompat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quotapilot/gateway/types"
)

func TestModelTable_Models_ReturnsConfiguredList(t *testing.T) {
	table := NewModelTable([]types.ModelDescriptor{
		{Name: "a", SupportsJSON: true},
		{Name: "b", SupportsTools: true},
	})

	got := table.Models(context.Background())
	assert.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Name)
}

func TestModelTable_Models_ReturnsCopyNotAlias(t *testing.T) {
	table := NewModelTable([]types.ModelDescriptor{{Name: "a"}})
	got := table.Models(context.Background())
	got[0].Name = "mutated"

	again := table.Models(context.Background())
	assert.Equal(t, "a", again[0].Name)
}

func TestFilterAllowlist_EmptyReturnsUnchanged(t *testing.T) {
	models := []types.ModelDescriptor{{Name: "a"}, {Name: "b"}}
	assert.Equal(t, models, FilterAllowlist(models, nil))
}

func TestFilterAllowlist_FiltersToAllowedNames(t *testing.T) {
	models := []types.ModelDescriptor{{Name: "a"}, {Name: "b"}, {Name: "c"}}
	out := FilterAllowlist(models, []string{"b", "c"})
	assert.Len(t, out, 2)
	assert.Equal(t, "b", out[0].Name)
	assert.Equal(t, "c", out[1].Name)
}
