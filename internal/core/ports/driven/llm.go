package driven

import "context"

// LLMService produces chat completions from a system and user prompt.
//
// Implementations may include:
//   - OpenAI (GPT-4o family)
//   - Anthropic (Claude)
//   - Ollama (local models)
//
// Failures are reported as domain.ErrAuth or domain.ErrService.
type LLMService interface {
	// Complete returns the assistant text for a single-turn exchange.
	Complete(ctx context.Context, system, user string, opts CompletionOptions) (string, error)

	// ModelName returns the name of the LLM model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// CompletionOptions configures a completion request.
type CompletionOptions struct {
	// MaxTokens is the maximum number of tokens to generate (0 = provider default).
	MaxTokens int

	// Temperature controls randomness. It is always sent, so 0 means deterministic.
	Temperature float64
}
