package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAIProvider_IsValid tests all valid and invalid providers
func TestAIProvider_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		provider AIProvider
		expected bool
	}{
		{name: "ollama is valid", provider: AIProviderOllama, expected: true},
		{name: "openai is valid", provider: AIProviderOpenAI, expected: true},
		{name: "anthropic is valid", provider: AIProviderAnthropic, expected: true},
		{name: "empty string is invalid", provider: AIProvider(""), expected: false},
		{name: "unknown provider is invalid", provider: AIProvider("cohere"), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.provider.IsValid())
		})
	}
}

func TestAIProvider_RequiresAPIKey(t *testing.T) {
	assert.False(t, AIProviderOllama.RequiresAPIKey())
	assert.True(t, AIProviderOpenAI.RequiresAPIKey())
	assert.True(t, AIProviderAnthropic.RequiresAPIKey())
	assert.True(t, AIProviderOllama.IsLocal())
	assert.False(t, AIProviderOpenAI.IsLocal())
}

func TestDescriptions_Unknown(t *testing.T) {
	assert.Equal(t, unknownDescription, AIProvider("invalid").Description())
	assert.Equal(t, unknownDescription, DistanceMetric("dot").Description())
	assert.Equal(t, "OpenAI (cloud)", AIProviderOpenAI.Description())
}

func TestDistanceMetric_IsValid(t *testing.T) {
	assert.True(t, DistanceL2.IsValid())
	assert.True(t, DistanceCosine.IsValid())
	assert.False(t, DistanceMetric("ip").IsValid())
}

func TestIndexBackend_IsValid(t *testing.T) {
	assert.True(t, IndexBackendSQLite.IsValid())
	assert.True(t, IndexBackendPostgres.IsValid())
	assert.True(t, IndexBackendMemory.IsValid())
	assert.False(t, IndexBackend("chroma").IsValid())
}

func TestEmbeddingSettings_IsConfigured(t *testing.T) {
	tests := []struct {
		name     string
		settings EmbeddingSettings
		expected bool
	}{
		{name: "ollama needs no key", settings: EmbeddingSettings{Provider: AIProviderOllama}, expected: true},
		{name: "openai without key", settings: EmbeddingSettings{Provider: AIProviderOpenAI}, expected: false},
		{name: "openai with key", settings: EmbeddingSettings{Provider: AIProviderOpenAI, APIKey: "sk"}, expected: true},
		{name: "empty provider", settings: EmbeddingSettings{}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.settings.IsConfigured())
		})
	}
}

func TestLLMSettings_IsConfigured(t *testing.T) {
	assert.True(t, LLMSettings{Provider: AIProviderAnthropic, APIKey: "k"}.IsConfigured())
	assert.False(t, LLMSettings{Provider: AIProviderAnthropic}.IsConfigured())
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	assert.Equal(t, AIProviderOpenAI, s.Embedding.Provider)
	assert.Equal(t, "text-embedding-3-small", s.Embedding.Model)
	assert.Equal(t, "gpt-4o-mini", s.LLM.Model)
	assert.Equal(t, 5, s.Retrieval.TopK)
	assert.Equal(t, 1200, s.Retrieval.ChunkSize)
	assert.Equal(t, 150, s.Retrieval.ChunkOverlap)
	assert.Equal(t, "data/uploads", s.Storage.UploadsDir)
	assert.Equal(t, "data/index", s.Storage.IndexDir)
	assert.Equal(t, IndexBackendSQLite, s.Index.Backend)
	assert.Equal(t, "legal_docs", s.Index.Collection)
	assert.Equal(t, DistanceL2, s.Index.Distance)
	assert.True(t, s.Grounding.VerifyEvidence)
	require.NoError(t, s.Validate())
}

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
		substr string
	}{
		{name: "top_k zero", mutate: func(s *Settings) { s.Retrieval.TopK = 0 }, substr: "top_k"},
		{name: "chunk size zero", mutate: func(s *Settings) { s.Retrieval.ChunkSize = 0 }, substr: "chunk_size"},
		{name: "overlap equals size", mutate: func(s *Settings) { s.Retrieval.ChunkOverlap = s.Retrieval.ChunkSize }, substr: "chunk_overlap"},
		{name: "negative overlap", mutate: func(s *Settings) { s.Retrieval.ChunkOverlap = -1 }, substr: "chunk_overlap"},
		{name: "anthropic embeddings", mutate: func(s *Settings) { s.Embedding.Provider = AIProviderAnthropic }, substr: "does not offer embeddings"},
		{name: "unknown llm", mutate: func(s *Settings) { s.LLM.Provider = "x" }, substr: "llm provider"},
		{name: "postgres without dsn", mutate: func(s *Settings) { s.Index.Backend = IndexBackendPostgres }, substr: "postgres_dsn"},
		{name: "bad metric", mutate: func(s *Settings) { s.Index.Distance = "dot" }, substr: "distance metric"},
		{name: "empty collection", mutate: func(s *Settings) { s.Index.Collection = " " }, substr: "collection"},
		{name: "empty uploads dir", mutate: func(s *Settings) { s.Storage.UploadsDir = "" }, substr: "uploads_dir"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(&s)
			err := s.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.substr)
		})
	}
}

func TestSettings_Validate_MemoryBackendIgnoresIndexDir(t *testing.T) {
	s := DefaultSettings()
	s.Index.Backend = IndexBackendMemory
	s.Storage.IndexDir = ""
	assert.NoError(t, s.Validate())
}

func TestDefaultModels(t *testing.T) {
	for _, p := range AllEmbeddingProviders() {
		assert.NotEmpty(t, DefaultEmbeddingModels()[p], p)
	}
	for _, p := range AllLLMProviders() {
		assert.NotEmpty(t, DefaultLLMModels()[p], p)
	}
	assert.Equal(t, 1536, EmbeddingDimensions()["text-embedding-3-small"])
}
