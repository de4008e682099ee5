package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/persona-digest/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/persona-digest/internal/core/domain"
)

func newTestSettings(env map[string]string) (*SettingsService, *memory.ConfigStore) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)
	service.getenv = func(name string) string { return env[name] }
	return service, store
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service, _ := newTestSettings(nil)

	settings, err := service.Get()

	require.NoError(t, err)
	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.Input, settings.Input)
	assert.Equal(t, defaults.Output, settings.Output)
	assert.Equal(t, defaults.Segmenter, settings.Segmenter)
	assert.Equal(t, defaults.Matcher, settings.Matcher)
	assert.Equal(t, defaults.Ranking, settings.Ranking)
	assert.Equal(t, defaults.Workers, settings.Workers)
	assert.Equal(t, defaults.Embedding, settings.Embedding)
	assert.Equal(t, defaults.Personas, settings.Personas)
}

func TestSettingsService_Set_ParsesValues(t *testing.T) {
	service, _ := newTestSettings(nil)

	require.NoError(t, service.Set("segmenter.max_length", "120"))
	require.NoError(t, service.Set("matcher.top_k", "3"))
	require.NoError(t, service.Set("embedding.requests_per_second", "2.5"))
	require.NoError(t, service.Set("embedding.timeout_seconds", "10"))
	require.NoError(t, service.Set("output.store", "sqlite"))
	require.NoError(t, service.Set("input.dir", "/data/pdfs"))
	require.NoError(t, service.Set("ranking.title_prefix", ""))

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, 120, settings.Segmenter.MaxLength)
	assert.Equal(t, 3, settings.Matcher.TopK)
	assert.Equal(t, 2.5, settings.Embedding.RequestsPerSecond)
	assert.Equal(t, 10*time.Second, settings.Embedding.Timeout)
	assert.Equal(t, domain.StoreSQLite, settings.Output.Store)
	assert.Equal(t, "/data/pdfs", settings.Input.Dir)
	assert.Empty(t, settings.Ranking.TitlePrefix)
	assert.Equal(t, "...", settings.Ranking.TitleSuffix)
}

func TestSettingsService_Set_Rejects(t *testing.T) {
	service, store := newTestSettings(nil)

	tests := []struct {
		key   string
		value string
	}{
		{"unknown.key", "x"},
		{"segmenter.max_length", "long"},
		{"segmenter.max_length", "-1"},
		{"embedding.requests_per_second", "fast"},
		{"output.store", "postgres"},
		{"embedding.provider", "anthropic"},
		{"personas.group.mood", "happy"},
		{"personas..persona", "x"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			err := service.Set(tt.key, tt.value)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
	assert.Empty(t, store.Keys())
}

func TestSettingsService_ProviderSwitchUsesProviderModel(t *testing.T) {
	service, _ := newTestSettings(nil)
	require.NoError(t, service.Set("embedding.provider", "ollama"))

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.EmbeddingProviderOllama, settings.Embedding.Provider)
	assert.Equal(t, "all-minilm", settings.Embedding.Model)

	require.NoError(t, service.Set("embedding.model", "nomic-embed-text"))
	settings, err = service.Get()
	require.NoError(t, err)
	assert.Equal(t, "nomic-embed-text", settings.Embedding.Model)
}

func TestSettingsService_InvalidStoredValuesFallBack(t *testing.T) {
	service, store := newTestSettings(nil)
	require.NoError(t, store.Set("embedding.provider", "bogus"))
	require.NoError(t, store.Set("output.store", "bogus"))

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.EmbeddingProviderHashing, settings.Embedding.Provider)
	assert.Equal(t, domain.StoreJSON, settings.Output.Store)
}

func TestSettingsService_Personas(t *testing.T) {
	service, _ := newTestSettings(nil)

	require.NoError(t, service.Set("personas.travel_queries.persona", "Travel Planner"))
	require.NoError(t, service.Set("personas.travel_queries.job_to_be_done", "Plan a trip"))
	require.NoError(t, service.Set("personas.business_analysis_sample_queries.persona", "CFO"))

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.PersonaJob{Persona: "Travel Planner", Job: "Plan a trip"}, settings.Personas["travel_queries"])
	business := settings.Personas["business_analysis_sample_queries"]
	assert.Equal(t, "CFO", business.Persona)
	assert.Equal(t, domain.DefaultPersonaJobs()["business_analysis_sample_queries"].Job, business.Job)
	assert.Len(t, settings.Personas, 4)
}

func TestSettingsService_APIKeyFromEnvironment(t *testing.T) {
	service, _ := newTestSettings(map[string]string{"OPENAI_API_KEY": "sk-env"})
	require.NoError(t, service.Set("embedding.api_key", "sk-stored"))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, "sk-env", settings.Embedding.APIKey)

	service.getenv = func(name string) string {
		if name == "DIGEST_EMBEDDING_API_KEY" {
			return "sk-digest"
		}
		return "sk-env"
	}
	settings, err = service.Get()
	require.NoError(t, err)
	assert.Equal(t, "sk-digest", settings.Embedding.APIKey)

	service.getenv = func(string) string { return "" }
	settings, err = service.Get()
	require.NoError(t, err)
	assert.Equal(t, "sk-stored", settings.Embedding.APIKey)
}

func TestSettingsService_Validate(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		service, _ := newTestSettings(nil)
		assert.NoError(t, service.Validate())
	})

	t.Run("openai without key", func(t *testing.T) {
		service, _ := newTestSettings(nil)
		require.NoError(t, service.Set("embedding.provider", "openai"))
		assert.ErrorIs(t, service.Validate(), domain.ErrInvalidInput)
	})

	t.Run("openai with key", func(t *testing.T) {
		service, _ := newTestSettings(map[string]string{"OPENAI_API_KEY": "sk"})
		require.NoError(t, service.Set("embedding.provider", "openai"))
		assert.NoError(t, service.Validate())
	})
}

func TestSettingsService_Keys(t *testing.T) {
	service, _ := newTestSettings(nil)

	keys := service.Keys()

	assert.Len(t, keys, len(settingKeys))
	assert.IsIncreasing(t, keys)
	assert.Contains(t, keys, "segmenter.max_length")
	assert.Contains(t, keys, "pipeline.query_workers")
}

func TestParsePersonaKey(t *testing.T) {
	group, field, ok := parsePersonaKey("personas.a.b.persona")
	assert.True(t, ok)
	assert.Equal(t, "a.b", group)
	assert.Equal(t, "persona", field)

	_, _, ok = parsePersonaKey("segmenter.max_length")
	assert.False(t, ok)
}
