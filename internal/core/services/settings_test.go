package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docqa/internal/core/domain"
)

// mockAIValidator records the settings it was asked to validate.
type mockAIValidator struct {
	embeddingErr error
	llmErr       error
	embedding    *domain.EmbeddingSettings
	llm          *domain.LLMSettings
}

func (m *mockAIValidator) ValidateEmbedding(config *domain.EmbeddingSettings) error {
	m.embedding = config
	return m.embeddingErr
}

func (m *mockAIValidator) ValidateLLM(config *domain.LLMSettings) error {
	m.llm = config
	return m.llmErr
}

func TestNewSettingsService(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	require.NotNil(t, service)
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSettings(), *settings)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	store := memory.NewConfigStoreFrom(map[string]any{
		"embedding.provider":        "ollama",
		"llm.provider":              "anthropic",
		"llm.model":                 "claude-3-5-haiku-latest",
		"retrieval.top_k":           int64(8),
		"retrieval.chunk_size":      "800",
		"storage.uploads_dir":       "/srv/uploads",
		"index.backend":             "postgres",
		"index.postgres_dsn":        "postgres://localhost/docqa",
		"index.distance":            "cosine",
		"grounding.verify_evidence": false,
	})
	service := NewSettingsService(store, nil)

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOllama, settings.Embedding.Provider)
	assert.Equal(t, "nomic-embed-text", settings.Embedding.Model, "model follows provider default")
	assert.Equal(t, domain.AIProviderAnthropic, settings.LLM.Provider)
	assert.Equal(t, "claude-3-5-haiku-latest", settings.LLM.Model)
	assert.Equal(t, 8, settings.Retrieval.TopK)
	assert.Equal(t, 800, settings.Retrieval.ChunkSize)
	assert.Equal(t, domain.DefaultChunkOverlap, settings.Retrieval.ChunkOverlap)
	assert.Equal(t, "/srv/uploads", settings.Storage.UploadsDir)
	assert.Equal(t, domain.IndexBackendPostgres, settings.Index.Backend)
	assert.Equal(t, domain.DistanceCosine, settings.Index.Distance)
	assert.False(t, settings.Grounding.VerifyEvidence)
}

func TestSettingsService_Get_InvalidProviderReturnsDefault(t *testing.T) {
	store := memory.NewConfigStoreFrom(map[string]any{"embedding.provider": "invalid_provider"})
	service := NewSettingsService(store, nil)

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSettings().Embedding.Provider, settings.Embedding.Provider)
}

func TestSettingsService_Get_APIKeyFallback(t *testing.T) {
	store := memory.NewConfigStoreFrom(map[string]any{
		"openai.api_key":    "sk-shared",
		"llm.provider":      "anthropic",
		"anthropic.api_key": "sk-ant",
	})
	service := NewSettingsService(store, nil)

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, "sk-shared", settings.Embedding.APIKey)
	assert.Equal(t, "sk-ant", settings.LLM.APIKey)

	require.NoError(t, store.Set("embedding.api_key", "sk-embed"))
	settings, err = service.Get()
	require.NoError(t, err)
	assert.Equal(t, "sk-embed", settings.Embedding.APIKey)
}

func TestSettingsService_Set(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	require.NoError(t, service.Set("retrieval.top_k", "9"))
	require.NoError(t, service.Set(" LLM.Provider ", "Ollama"))
	require.NoError(t, service.Set("grounding.verify_evidence", "false"))

	val, ok := store.Get("retrieval.top_k")
	require.True(t, ok)
	assert.Equal(t, 9, val)
	assert.Equal(t, "ollama", store.GetString("llm.provider"))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, 9, settings.Retrieval.TopK)
	assert.Equal(t, domain.AIProviderOllama, settings.LLM.Provider)
	assert.False(t, settings.Grounding.VerifyEvidence)
}

func TestSettingsService_Set_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown key", "search.mode", "hybrid"},
		{"non-numeric", "retrieval.top_k", "many"},
		{"zero top_k", "retrieval.top_k", "0"},
		{"overlap equals size", "retrieval.chunk_overlap", "1200"},
		{"unknown provider", "llm.provider", "mystery"},
		{"anthropic embeddings", "embedding.provider", "anthropic"},
		{"unknown metric", "index.distance", "manhattan"},
		{"postgres without dsn", "index.backend", "postgres"},
		{"bad bool", "grounding.verify_evidence", "perhaps"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewConfigStore()
			service := NewSettingsService(store, nil)

			err := service.Set(tt.key, tt.value)

			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrInvalidInput) || errors.Is(err, domain.ErrInvalidConfig))
			assert.Empty(t, store.Keys(), "nothing is written on failure")
		})
	}
}

func TestSettingsService_Keys(t *testing.T) {
	keys := NewSettingsService(memory.NewConfigStore(), nil).Keys()

	assert.Contains(t, keys, "retrieval.top_k")
	assert.Contains(t, keys, "grounding.verify_evidence")
	assert.IsIncreasing(t, keys)
}

func TestSettingsService_SetAPIKey(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	require.NoError(t, service.SetAPIKey(domain.AIProviderOpenAI, "  sk-test  "))
	assert.Equal(t, "sk-test", store.GetString("openai.api_key"))

	assert.ErrorIs(t, service.SetAPIKey(domain.AIProviderOllama, "x"), domain.ErrInvalidInput)
	assert.ErrorIs(t, service.SetAPIKey(domain.AIProviderAnthropic, " "), domain.ErrInvalidInput)
	assert.ErrorIs(t, service.SetAPIKey("other", "x"), domain.ErrInvalidInput)
}

func TestSettingsService_SetEmbeddingProvider(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	require.NoError(t, service.SetEmbeddingProvider(domain.AIProviderOllama, ""))
	assert.Equal(t, "ollama", store.GetString("embedding.provider"))
	assert.Equal(t, "nomic-embed-text", store.GetString("embedding.model"))

	err := service.SetEmbeddingProvider(domain.AIProviderAnthropic, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsService_SetLLMProvider(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	require.NoError(t, service.SetLLMProvider(domain.AIProviderAnthropic, "claude-3-5-haiku-latest"))
	assert.Equal(t, "anthropic", store.GetString("llm.provider"))
	assert.Equal(t, "claude-3-5-haiku-latest", store.GetString("llm.model"))

	assert.ErrorIs(t, service.SetLLMProvider("invalid", ""), domain.ErrInvalidInput)
}

func TestSettingsService_Validate(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)
	require.NoError(t, service.Validate())

	require.NoError(t, store.Set("retrieval.chunk_overlap", 5000))
	err := service.Validate()
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
	assert.Contains(t, err.Error(), "chunk_overlap")
}

func TestSettingsService_GetDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)

	assert.Equal(t, domain.DefaultSettings(), service.GetDefaults())
}

func TestSettingsService_ValidateProviders(t *testing.T) {
	validator := &mockAIValidator{llmErr: domain.ErrAuth}
	store := memory.NewConfigStoreFrom(map[string]any{"openai.api_key": "sk"})
	service := NewSettingsService(store, validator)

	require.NoError(t, service.ValidateEmbeddingConfig())
	require.NotNil(t, validator.embedding)
	assert.Equal(t, "sk", validator.embedding.APIKey)

	assert.ErrorIs(t, service.ValidateLLMConfig(), domain.ErrAuth)
	require.NotNil(t, validator.llm)
	assert.Equal(t, domain.AIProviderOpenAI, validator.llm.Provider)
}

func TestSettingsService_ValidateProviders_NoValidator(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)

	assert.NoError(t, service.ValidateEmbeddingConfig())
	assert.NoError(t, service.ValidateLLMConfig())
}
