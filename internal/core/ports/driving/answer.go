package driving

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// AnswerService answers questions grounded in the indexed documents.
type AnswerService interface {
	// Answer retrieves evidence, asks the model and validates the reply.
	// The returned record's Text is either a validated three-line answer or
	// domain.FallbackAnswer. On success the question and answer are appended
	// to conv; on error conv is left untouched. conv may be nil.
	Answer(ctx context.Context, conv *domain.ConversationState, question string) (*domain.AnswerRecord, error)
}
