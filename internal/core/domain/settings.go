package domain

import (
	"fmt"
	"strings"
)

const unknownDescription = "Unknown"

// Retrieval and chunking defaults.
const (
	// DefaultTopK is the number of chunks retrieved per question.
	DefaultTopK = 5

	// DefaultChunkSize is the chunk window length in characters.
	DefaultChunkSize = 1200

	// DefaultChunkOverlap is the number of characters shared by adjacent chunks.
	DefaultChunkOverlap = 150

	// DefaultCollection is the vector index collection name.
	DefaultCollection = "legal_docs"

	// DefaultUploadsDir is where uploaded documents are stored.
	DefaultUploadsDir = "data/uploads"

	// DefaultIndexDir is where the embedded vector index persists its data.
	DefaultIndexDir = "data/index"

	// DefaultPreviewBytes is the number of bytes shown by a document preview.
	DefaultPreviewBytes = 4000
)

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// DistanceMetric is the similarity measure a collection is created with.
// It is fixed for the lifetime of the collection.
type DistanceMetric string

// Supported distance metrics.
const (
	// DistanceL2 is squared Euclidean distance.
	DistanceL2 DistanceMetric = "l2"

	// DistanceCosine is 1 - cosine similarity.
	DistanceCosine DistanceMetric = "cosine"
)

// IsValid returns true if the metric is recognised.
func (m DistanceMetric) IsValid() bool {
	return m == DistanceL2 || m == DistanceCosine
}

// String returns the string representation.
func (m DistanceMetric) String() string {
	return string(m)
}

// Description returns a human-readable description of the metric.
func (m DistanceMetric) Description() string {
	switch m {
	case DistanceL2:
		return "Squared Euclidean (l2)"
	case DistanceCosine:
		return "Cosine distance (1 - cos)"
	default:
		return unknownDescription
	}
}

// IndexBackend selects the vector index implementation.
type IndexBackend string

// Available vector index backends.
const (
	// IndexBackendSQLite is the embedded, file-backed index.
	IndexBackendSQLite IndexBackend = "sqlite"

	// IndexBackendPostgres stores vectors in PostgreSQL with pgvector.
	IndexBackendPostgres IndexBackend = "postgres"

	// IndexBackendMemory keeps vectors in process memory only.
	IndexBackendMemory IndexBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b IndexBackend) IsValid() bool {
	switch b {
	case IndexBackendSQLite, IndexBackendPostgres, IndexBackendMemory:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b IndexBackend) String() string {
	return string(b)
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// RetrievalSettings controls chunking and retrieval breadth.
type RetrievalSettings struct {
	// TopK is the number of chunks retrieved per question.
	TopK int

	// ChunkSize is the chunk window length in characters.
	ChunkSize int

	// ChunkOverlap is the overlap between adjacent chunks.
	ChunkOverlap int
}

// StorageSettings locates persisted data.
type StorageSettings struct {
	UploadsDir string
	IndexDir   string
}

// IndexSettings configures the vector index.
type IndexSettings struct {
	// Backend selects the implementation.
	Backend IndexBackend

	// Collection is the collection name.
	Collection string

	// Distance is the metric used when the collection is first created.
	Distance DistanceMetric

	// PostgresDSN is the connection string for the postgres backend.
	PostgresDSN string
}

// GroundingSettings configures answer validation.
type GroundingSettings struct {
	// VerifyEvidence requires the quoted evidence to appear in a retrieved chunk.
	VerifyEvidence bool
}

// Settings holds the full, validated application configuration.
type Settings struct {
	Embedding EmbeddingSettings
	LLM       LLMSettings
	Retrieval RetrievalSettings
	Storage   StorageSettings
	Index     IndexSettings
	Grounding GroundingSettings
}

// DefaultSettings returns settings with sensible defaults.
// API keys are left empty and must come from the environment or config file.
func DefaultSettings() Settings {
	return Settings{
		Embedding: EmbeddingSettings{
			Provider: AIProviderOpenAI,
			Model:    DefaultEmbeddingModels()[AIProviderOpenAI],
		},
		LLM: LLMSettings{
			Provider: AIProviderOpenAI,
			Model:    DefaultLLMModels()[AIProviderOpenAI],
		},
		Retrieval: RetrievalSettings{
			TopK:         DefaultTopK,
			ChunkSize:    DefaultChunkSize,
			ChunkOverlap: DefaultChunkOverlap,
		},
		Storage: StorageSettings{
			UploadsDir: DefaultUploadsDir,
			IndexDir:   DefaultIndexDir,
		},
		Index: IndexSettings{
			Backend:    IndexBackendSQLite,
			Collection: DefaultCollection,
			Distance:   DistanceL2,
		},
		Grounding: GroundingSettings{
			VerifyEvidence: true,
		},
	}
}

// Validate checks that the settings are internally consistent.
func (s Settings) Validate() error {
	var problems []string

	if !s.Embedding.Provider.IsValid() {
		problems = append(problems, fmt.Sprintf("unknown embedding provider %q", s.Embedding.Provider))
	} else if !supportsEmbeddings(s.Embedding.Provider) {
		problems = append(problems, fmt.Sprintf("provider %q does not offer embeddings", s.Embedding.Provider))
	}
	if !s.LLM.Provider.IsValid() {
		problems = append(problems, fmt.Sprintf("unknown llm provider %q", s.LLM.Provider))
	}
	if s.Retrieval.TopK < 1 {
		problems = append(problems, "retrieval.top_k must be at least 1")
	}
	if s.Retrieval.ChunkSize < 1 {
		problems = append(problems, "retrieval.chunk_size must be positive")
	}
	if s.Retrieval.ChunkOverlap < 0 || s.Retrieval.ChunkOverlap >= s.Retrieval.ChunkSize {
		problems = append(problems, "retrieval.chunk_overlap must be in [0, chunk_size)")
	}
	if strings.TrimSpace(s.Storage.UploadsDir) == "" {
		problems = append(problems, "storage.uploads_dir is empty")
	}
	if !s.Index.Backend.IsValid() {
		problems = append(problems, fmt.Sprintf("unknown index backend %q", s.Index.Backend))
	}
	if s.Index.Backend == IndexBackendSQLite && strings.TrimSpace(s.Storage.IndexDir) == "" {
		problems = append(problems, "storage.index_dir is empty")
	}
	if s.Index.Backend == IndexBackendPostgres && strings.TrimSpace(s.Index.PostgresDSN) == "" {
		problems = append(problems, "index.postgres_dsn is required for the postgres backend")
	}
	if strings.TrimSpace(s.Index.Collection) == "" {
		problems = append(problems, "index.collection is empty")
	}
	if !s.Index.Distance.IsValid() {
		problems = append(problems, fmt.Sprintf("unknown distance metric %q", s.Index.Distance))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

func supportsEmbeddings(p AIProvider) bool {
	for _, candidate := range AllEmbeddingProviders() {
		if candidate == p {
			return true
		}
	}
	return false
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
