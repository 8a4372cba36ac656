package mistral

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newModelsServer(t *testing.T, ids ...string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(buildModelsJSON(ids)))
	}))
}

func buildModelsJSON(ids []string) string {
	out := `{"data":[`
	for i, id := range ids {
		if i > 0 {
			out += ","
		}
		out += `{"id":"` + id + `"}`
	}
	out += `]}`
	return out
}

func TestMistral_Models_FiltersToDefaultPreferredList(t *testing.T) {
	srv := newModelsServer(t, "mistral-small-latest", "mistral-large-latest", "open-mistral-nemo")
	defer srv.Close()

	p := New(Config{APIKey: "key", BaseURL: srv.URL}, nil)
	models := p.Models(context.Background())

	require.Len(t, models, 2)
	names := []string{models[0].Name, models[1].Name}
	assert.Contains(t, names, "mistral-small-latest")
	assert.Contains(t, names, "open-mistral-nemo")
	assert.NotContains(t, names, "mistral-large-latest")
}

func TestMistral_Models_HonorsConfiguredAllowlist(t *testing.T) {
	srv := newModelsServer(t, "mistral-small-latest", "codestral-latest")
	defer srv.Close()

	p := New(Config{APIKey: "key", BaseURL: srv.URL, Allowlist: []string{"codestral-latest"}}, nil)
	models := p.Models(context.Background())

	require.Len(t, models, 1)
	assert.Equal(t, "codestral-latest", models[0].Name)
}

func TestMistral_Name(t *testing.T) {
	p := New(Config{APIKey: "key"}, nil)
	assert.Equal(t, "mistral", p.Name())
}
