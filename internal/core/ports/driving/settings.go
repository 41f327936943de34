package driving

import "github.com/custodia-labs/docqa/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get returns the effective settings: defaults, then the config file,
	// then environment overrides.
	Get() (*domain.Settings, error)

	// Set updates a single dotted key (e.g. "retrieval.top_k") in the config file.
	Set(key, value string) error

	// Keys returns the supported dotted keys, sorted.
	Keys() []string

	// SetAPIKey stores the API key for a provider.
	SetAPIKey(provider domain.AIProvider, apiKey string) error

	// SetEmbeddingProvider switches the embedding provider; an empty model
	// selects the provider default.
	SetEmbeddingProvider(provider domain.AIProvider, model string) error

	// SetLLMProvider switches the LLM provider; an empty model selects the
	// provider default.
	SetLLMProvider(provider domain.AIProvider, model string) error

	// Validate checks the effective settings.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.Settings

	// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
	ValidateEmbeddingConfig() error

	// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
	ValidateLLMConfig() error
}
