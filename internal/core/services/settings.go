package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider    = "embedding.provider"
	keyEmbedModel       = "embedding.model"
	keyEmbedBaseURL     = "embedding.base_url"
	keyEmbedAPIKey      = "embedding.api_key"
	keyLLMProvider      = "llm.provider"
	keyLLMModel         = "llm.model"
	keyLLMBaseURL       = "llm.base_url"
	keyLLMAPIKey        = "llm.api_key"
	keyTopK             = "retrieval.top_k"
	keyChunkSize        = "retrieval.chunk_size"
	keyChunkOverlap     = "retrieval.chunk_overlap"
	keyUploadsDir       = "storage.uploads_dir"
	keyIndexDir         = "storage.index_dir"
	keyIndexBackend     = "index.backend"
	keyIndexCollection  = "index.collection"
	keyIndexDistance    = "index.distance"
	keyIndexPostgresDSN = "index.postgres_dsn"
	keyVerifyEvidence   = "grounding.verify_evidence"
)

// providerKeyName is the shared API key entry for a provider, e.g. "openai.api_key".
func providerKeyName(provider domain.AIProvider) string {
	return string(provider) + ".api_key"
}

// settingField describes one user-settable key.
type settingField struct {
	// apply parses value into the bound settings.
	apply func(value string) error
	// stored converts value to the representation written to the store.
	stored func(value string) any
}

func asString(value string) any { return value }

func asInt(value string) any {
	n, _ := strconv.Atoi(value)
	return n
}

func asBool(value string) any {
	b, _ := strconv.ParseBool(value)
	return b
}

func parseInt(key string, target *int) func(string) error {
	return func(value string) error {
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be an integer, got %q", domain.ErrInvalidInput, key, value)
		}
		*target = n
		return nil
	}
}

// settingFields maps each key to a parser that writes into s.
func settingFields(s *domain.Settings) map[string]settingField {
	str := func(target *string) func(string) error {
		return func(value string) error {
			*target = value
			return nil
		}
	}
	provider := func(target *domain.AIProvider) func(string) error {
		return func(value string) error {
			p := domain.AIProvider(strings.ToLower(value))
			if !p.IsValid() {
				return fmt.Errorf("%w: unknown provider %q", domain.ErrInvalidInput, value)
			}
			*target = p
			return nil
		}
	}

	return map[string]settingField{
		keyEmbedProvider: {provider(&s.Embedding.Provider), func(v string) any { return strings.ToLower(v) }},
		keyEmbedModel:    {str(&s.Embedding.Model), asString},
		keyEmbedBaseURL:  {str(&s.Embedding.BaseURL), asString},
		keyEmbedAPIKey:   {str(&s.Embedding.APIKey), asString},
		keyLLMProvider:   {provider(&s.LLM.Provider), func(v string) any { return strings.ToLower(v) }},
		keyLLMModel:      {str(&s.LLM.Model), asString},
		keyLLMBaseURL:    {str(&s.LLM.BaseURL), asString},
		keyLLMAPIKey:     {str(&s.LLM.APIKey), asString},
		keyTopK:          {parseInt(keyTopK, &s.Retrieval.TopK), asInt},
		keyChunkSize:     {parseInt(keyChunkSize, &s.Retrieval.ChunkSize), asInt},
		keyChunkOverlap:  {parseInt(keyChunkOverlap, &s.Retrieval.ChunkOverlap), asInt},
		keyUploadsDir:    {str(&s.Storage.UploadsDir), asString},
		keyIndexDir:      {str(&s.Storage.IndexDir), asString},
		keyIndexBackend: {func(v string) error {
			s.Index.Backend = domain.IndexBackend(strings.ToLower(v))
			return nil
		}, func(v string) any { return strings.ToLower(v) }},
		keyIndexCollection: {str(&s.Index.Collection), asString},
		keyIndexDistance: {func(v string) error {
			s.Index.Distance = domain.DistanceMetric(strings.ToLower(v))
			return nil
		}, func(v string) any { return strings.ToLower(v) }},
		keyIndexPostgresDSN: {str(&s.Index.PostgresDSN), asString},
		keyVerifyEvidence: {func(v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%w: %s must be true or false, got %q", domain.ErrInvalidInput, keyVerifyEvidence, v)
			}
			s.Grounding.VerifyEvidence = b
			return nil
		}, asBool},
	}
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings.
// Unknown providers fall back to the defaults; numeric values are taken
// as stored so that Validate can report them.
func (s *SettingsService) Get() (*domain.Settings, error) {
	defaults := domain.DefaultSettings()

	embedProvider := s.getProvider(keyEmbedProvider, defaults.Embedding.Provider)
	llmProvider := s.getProvider(keyLLMProvider, defaults.LLM.Provider)

	settings := &domain.Settings{
		Embedding: domain.EmbeddingSettings{
			Provider: embedProvider,
			Model:    s.getString(keyEmbedModel, domain.DefaultEmbeddingModels()[embedProvider]),
			BaseURL:  s.configStore.GetString(keyEmbedBaseURL),
			APIKey:   s.apiKey(keyEmbedAPIKey, embedProvider),
		},
		LLM: domain.LLMSettings{
			Provider: llmProvider,
			Model:    s.getString(keyLLMModel, domain.DefaultLLMModels()[llmProvider]),
			BaseURL:  s.configStore.GetString(keyLLMBaseURL),
			APIKey:   s.apiKey(keyLLMAPIKey, llmProvider),
		},
		Retrieval: domain.RetrievalSettings{
			TopK:         s.getInt(keyTopK, defaults.Retrieval.TopK),
			ChunkSize:    s.getInt(keyChunkSize, defaults.Retrieval.ChunkSize),
			ChunkOverlap: s.getInt(keyChunkOverlap, defaults.Retrieval.ChunkOverlap),
		},
		Storage: domain.StorageSettings{
			UploadsDir: s.getString(keyUploadsDir, defaults.Storage.UploadsDir),
			IndexDir:   s.getString(keyIndexDir, defaults.Storage.IndexDir),
		},
		Index: domain.IndexSettings{
			Backend:     domain.IndexBackend(s.getString(keyIndexBackend, defaults.Index.Backend.String())),
			Collection:  s.getString(keyIndexCollection, defaults.Index.Collection),
			Distance:    domain.DistanceMetric(s.getString(keyIndexDistance, defaults.Index.Distance.String())),
			PostgresDSN: s.configStore.GetString(keyIndexPostgresDSN),
		},
		Grounding: domain.GroundingSettings{
			VerifyEvidence: s.getBool(keyVerifyEvidence, defaults.Grounding.VerifyEvidence),
		},
	}

	return settings, nil
}

// Set validates and stores a single key. The resulting settings must pass
// Validate, otherwise nothing is written.
func (s *SettingsService) Set(key, value string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	value = strings.TrimSpace(value)

	settings, err := s.Get()
	if err != nil {
		return err
	}

	field, ok := settingFields(settings)[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q (known: %s)", domain.ErrInvalidInput, key, strings.Join(s.Keys(), ", "))
	}
	if err := field.apply(value); err != nil {
		return err
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	if err := s.configStore.Set(key, field.stored(value)); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Keys returns the supported setting keys, sorted.
func (s *SettingsService) Keys() []string {
	fields := settingFields(&domain.Settings{})
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SetAPIKey stores the shared API key for a cloud provider.
func (s *SettingsService) SetAPIKey(provider domain.AIProvider, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: unknown provider %q", domain.ErrInvalidInput, provider)
	}
	if !provider.RequiresAPIKey() {
		return fmt.Errorf("%w: %s does not use an API key", domain.ErrInvalidInput, provider)
	}
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, provider)
	}
	if err := s.configStore.Set(providerKeyName(provider), apiKey); err != nil {
		return fmt.Errorf("save %s api key: %w", provider, err)
	}
	return nil
}

// SetEmbeddingProvider switches the embedding provider, resetting the model to
// the provider default when model is empty.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model string) error {
	supported := false
	for _, p := range domain.AllEmbeddingProviders() {
		if p == provider {
			supported = true
			break
		}
	}
	if !supported {
		return fmt.Errorf("%w: provider %s does not support embeddings", domain.ErrInvalidInput, provider)
	}
	if model == "" {
		model = domain.DefaultEmbeddingModels()[provider]
	}

	if err := s.configStore.Set(keyEmbedProvider, provider.String()); err != nil {
		return fmt.Errorf("save embedding provider: %w", err)
	}
	if err := s.configStore.Set(keyEmbedModel, model); err != nil {
		return fmt.Errorf("save embedding model: %w", err)
	}
	return nil
}

// SetLLMProvider switches the LLM provider, resetting the model to the
// provider default when model is empty.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid LLM provider: %s", domain.ErrInvalidInput, provider)
	}
	if model == "" {
		model = domain.DefaultLLMModels()[provider]
	}

	if err := s.configStore.Set(keyLLMProvider, provider.String()); err != nil {
		return fmt.Errorf("save llm provider: %w", err)
	}
	if err := s.configStore.Set(keyLLMModel, model); err != nil {
		return fmt.Errorf("save llm model: %w", err)
	}
	return nil
}

// Validate checks the effective settings.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return settings.Validate()
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.Settings {
	return domain.DefaultSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := strings.TrimSpace(s.configStore.GetString(key))
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, ok := s.configStore.Get(key); !ok {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, ok := s.configStore.Get(key); !ok {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	p := domain.AIProvider(strings.ToLower(s.configStore.GetString(key)))
	if !p.IsValid() {
		return defaultVal
	}
	return p
}

// apiKey prefers the role-specific key, then the provider's shared key.
func (s *SettingsService) apiKey(key string, provider domain.AIProvider) string {
	if v := strings.TrimSpace(s.configStore.GetString(key)); v != "" {
		return v
	}
	return strings.TrimSpace(s.configStore.GetString(providerKeyName(provider)))
}
