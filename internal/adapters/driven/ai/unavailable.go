package ai

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure UnavailableService implements both AI ports.
var (
	_ driven.EmbeddingService = (*UnavailableService)(nil)
	_ driven.LLMService       = (*UnavailableService)(nil)
)

// UnavailableService stands in for a provider that could not be created,
// typically because its API key is missing. Every call returns the creation
// error, so commands that never reach the provider keep working.
type UnavailableService struct {
	err error
}

// Unavailable wraps the error returned by CreateEmbeddingService or CreateLLMService.
func Unavailable(err error) *UnavailableService {
	return &UnavailableService{err: err}
}

// Err returns the creation error.
func (s *UnavailableService) Err() error {
	return s.err
}

// Embed returns the creation error.
func (s *UnavailableService) Embed(_ context.Context, _ string) ([]float32, error) {
	return nil, s.err
}

// EmbedBatch returns the creation error, except for empty input which needs no provider.
func (s *UnavailableService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	return nil, s.err
}

// Dimensions is unknown without a provider.
func (s *UnavailableService) Dimensions() int {
	return 0
}

// Complete returns the creation error.
func (s *UnavailableService) Complete(_ context.Context, _, _ string, _ driven.CompletionOptions) (string, error) {
	return "", s.err
}

// ModelName returns an empty name.
func (s *UnavailableService) ModelName() string {
	return ""
}

// Ping returns the creation error.
func (s *UnavailableService) Ping(_ context.Context) error {
	return s.err
}

// Close is a no-op.
func (s *UnavailableService) Close() error {
	return nil
}
