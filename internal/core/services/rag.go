package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure RagService implements the interface.
var _ driving.AnswerService = (*RagService)(nil)

// RagService answers questions from the indexed documents.
// It runs Retrieve, ComposeContext, Generate and Validate and always ends
// in either a grounded three-line answer or the fallback sentence.
type RagService struct {
	retriever *Retriever
	composer  *AnswerComposer
	validator *GroundingValidator
	topK      int
}

// NewRagService creates a RAG service. A topK below 1 uses domain.DefaultTopK.
func NewRagService(retriever *Retriever, composer *AnswerComposer, validator *GroundingValidator, topK int) *RagService {
	if topK < 1 {
		topK = domain.DefaultTopK
	}
	return &RagService{
		retriever: retriever,
		composer:  composer,
		validator: validator,
		topK:      topK,
	}
}

// TopK returns the retrieval breadth.
func (s *RagService) TopK() int {
	return s.topK
}

// Answer implements driving.AnswerService.
func (s *RagService) Answer(
	ctx context.Context, conv *domain.ConversationState, question string,
) (*domain.AnswerRecord, error) {
	logger.Section("Answer")

	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is empty", domain.ErrInvalidInput)
	}
	logger.Debug("Question: %q", question)

	result, err := s.retriever.Retrieve(ctx, question, s.topK)
	if err != nil {
		return nil, err
	}

	record := &domain.AnswerRecord{Evidence: result.Matches}
	if result.IsEmpty() {
		logger.Debug("No chunks retrieved, skipping generation")
		record.Text = domain.FallbackAnswer
		record.State = domain.AnswerUnknown
		record.Reason = domain.ReasonEmptyRetrieval
		record.Evidence = []domain.Match{}
	} else {
		reply, err := s.composer.Generate(ctx, question, result)
		if err != nil {
			return nil, err
		}
		record.Text, record.Reason = s.validator.Validate(reply, result)
		record.State = domain.AnswerAnswered
		if record.Reason != domain.ReasonNone {
			logger.Debug("Reply rejected (%s): %q", record.Reason, reply)
			record.State = domain.AnswerUnknown
		}
	}

	if conv != nil {
		conv.Append(domain.RoleUser, question)
		conv.Append(domain.RoleAssistant, record.Text)
	}

	logger.Info("Answer state: %s", record.State)
	return record, nil
}
